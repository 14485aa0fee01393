package entity

import (
	"time"

	"github.com/google/uuid"
)

type SubscriptionStatus string
type BillingPeriod string
type DetectionMethod string

const (
	SubscriptionStatusActive              SubscriptionStatus = "active"
	SubscriptionStatusPendingCancellation SubscriptionStatus = "pending_cancellation"
	SubscriptionStatusCancelled           SubscriptionStatus = "cancelled"
	SubscriptionStatusExpired             SubscriptionStatus = "expired"

	BillingPeriodMonthly   BillingPeriod = "monthly"
	BillingPeriodAnnually  BillingPeriod = "annually"
	BillingPeriodQuarterly BillingPeriod = "quarterly"
	BillingPeriodOneTime   BillingPeriod = "one-time"

	DetectionMethodRuleBased DetectionMethod = "rule_based"
	DetectionMethodLLM       DetectionMethod = "llm"
	DetectionMethodManual    DetectionMethod = "manual"
)

// Rank orders detection methods for confidence-tie resolution:
// manual beats llm beats rule_based.
func (m DetectionMethod) Rank() int {
	switch m {
	case DetectionMethodManual:
		return 3
	case DetectionMethodLLM:
		return 2
	case DetectionMethodRuleBased:
		return 1
	}
	return 0
}

// MonthlyEquivalent normalizes a price to a per-month figure.
// One-time charges contribute nothing to recurring spend.
func (p BillingPeriod) MonthlyEquivalent(price float64) float64 {
	switch p {
	case BillingPeriodMonthly:
		return price
	case BillingPeriodAnnually:
		return price / 12
	case BillingPeriodQuarterly:
		return price / 3
	}
	return 0
}

// AnnualEquivalent normalizes a price to a per-year figure.
func (p BillingPeriod) AnnualEquivalent(price float64) float64 {
	switch p {
	case BillingPeriodMonthly:
		return price * 12
	case BillingPeriodAnnually:
		return price
	case BillingPeriodQuarterly:
		return price * 4
	}
	return 0
}

// Subscription is one detected recurring subscription. The registry keeps at
// most one active row per (user, service_name); historical rows for the same
// service may coexist once cancelled or expired.
type Subscription struct {
	Id     uuid.UUID
	UserId uuid.UUID

	// Identity
	ServiceName     string
	ServiceDomain   string
	ServiceLogoURL  string
	ServiceCategory string

	// Commercial
	Price         float64
	Currency      string
	BillingPeriod BillingPeriod

	// Temporal
	FirstDetectedDate *time.Time
	NextRenewalDate   *time.Time
	LastVerifiedDate  *time.Time

	// Links & metadata
	UnsubscribeLink    string
	ManageAccountLink  string
	PaymentMethodLast4 string
	SubscriptionTier   string

	Status SubscriptionStatus

	// Detection provenance
	SourceEmailIds      []string
	DetectionConfidence float64
	DetectedBy          DetectionMethod

	CreatedAt   time.Time
	UpdatedAt   time.Time
	CancelledAt *time.Time
}

func (s *Subscription) MonthlySpend() float64 {
	return s.BillingPeriod.MonthlyEquivalent(s.Price)
}
