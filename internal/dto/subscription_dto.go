package dto

import (
	"time"

	"github.com/google/uuid"
)

type SubscriptionResponse struct {
	Id                  uuid.UUID  `json:"id"`
	ServiceName         string     `json:"service_name"`
	ServiceDomain       string     `json:"service_domain,omitempty"`
	ServiceLogoURL      string     `json:"service_logo_url,omitempty"`
	ServiceCategory     string     `json:"service_category,omitempty"`
	Price               float64    `json:"price"`
	Currency            string     `json:"currency"`
	BillingPeriod       string     `json:"billing_period"`
	MonthlyEquivalent   float64    `json:"monthly_equivalent"`
	Status              string     `json:"status"`
	SubscriptionTier    string     `json:"subscription_tier,omitempty"`
	NextRenewalDate     *time.Time `json:"next_renewal_date,omitempty"`
	DetectionConfidence float64    `json:"detection_confidence"`
	DetectedBy          string     `json:"detected_by"`
	FirstDetected       *time.Time `json:"first_detected,omitempty"`
	CancelledAt         *time.Time `json:"cancelled_at,omitempty"`
}

// SummaryResponse is the "active subscriptions summary" read model.
type SummaryResponse struct {
	UserId                uuid.UUID              `json:"user_id"`
	TotalSubscriptions    int                    `json:"total_subscriptions"`
	EstimatedMonthlySpend float64                `json:"estimated_monthly_spend"`
	EstimatedAnnualSpend  float64                `json:"estimated_annual_spend"`
	Subscriptions         []SubscriptionResponse `json:"subscriptions"`
}
