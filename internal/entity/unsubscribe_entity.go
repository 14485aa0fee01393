package entity

import (
	"time"

	"github.com/google/uuid"
)

type UnsubscribeStrategy string
type UnsubscribeStatus string

const (
	StrategyAutomated     UnsubscribeStrategy = "automated"
	StrategyManualLink    UnsubscribeStrategy = "manual_link"
	StrategyManualPhone   UnsubscribeStrategy = "manual_phone"
	StrategyEmailRequired UnsubscribeStrategy = "email_required"

	ActionStatusPending              UnsubscribeStatus = "pending"
	ActionStatusInProgress           UnsubscribeStatus = "in_progress"
	ActionStatusAwaitingConfirmation UnsubscribeStatus = "awaiting_confirmation"
	ActionStatusConfirmed            UnsubscribeStatus = "confirmed"
	ActionStatusFailed               UnsubscribeStatus = "failed"
)

// Valid reports whether the strategy is one of the supported variants.
func (s UnsubscribeStrategy) Valid() bool {
	switch s {
	case StrategyAutomated, StrategyManualLink, StrategyManualPhone, StrategyEmailRequired:
		return true
	}
	return false
}

// Manual reports whether the user performs the cancellation out-of-band.
func (s UnsubscribeStrategy) Manual() bool {
	return s != StrategyAutomated
}

// Terminal reports whether the status is an end state.
func (s UnsubscribeStatus) Terminal() bool {
	return s == ActionStatusConfirmed || s == ActionStatusFailed
}

// UnsubscribeAction is one cancellation attempt for a subscription. A
// subscription accumulates several rows over its life when earlier attempts
// fail; retry_count tracks transient retries within a single attempt.
type UnsubscribeAction struct {
	Id             uuid.UUID
	SubscriptionId uuid.UUID
	UserId         uuid.UUID

	ActionType UnsubscribeStrategy
	Status     UnsubscribeStatus

	// Execution evidence
	UnsubscribeURL string
	HTTPMethod     string
	FormData       map[string]string

	HTTPStatusCode      *int
	ResponseBodySnippet string

	// Confirmation monitoring
	ConfirmationEmailId    *string
	ConfirmationDetectedAt *time.Time
	MonitoringUntil        *time.Time

	// Retry accounting
	RetryCount  int
	MaxRetries  int
	NextRetryAt *time.Time

	ErrorMessage         string
	RequiresManualAction bool
	ManualInstructions   string

	InitiatedAt time.Time
	CompletedAt *time.Time
}
