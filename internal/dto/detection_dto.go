package dto

import (
	"github.com/google/uuid"
)

// ClassifiedEmailFact is the classifier's output for one email. The core
// treats it as untrusted input; the validate tags are enforced before any
// detection logic runs.
type ClassifiedEmailFact struct {
	UserId        uuid.UUID `json:"user_id" validate:"required"`
	SessionId     uuid.UUID `json:"session_id" validate:"required"`
	RawEmailRef   string    `json:"raw_email_ref" validate:"required"`
	ServiceHint   string    `json:"service_hint" validate:"required"`
	Price         *float64  `json:"price,omitempty" validate:"omitempty,gte=0"`
	Currency      string    `json:"currency,omitempty" validate:"omitempty,len=3"`
	BillingPeriod *string   `json:"billing_period,omitempty" validate:"omitempty,oneof=monthly annually quarterly one-time"`
	Confidence    float64   `json:"confidence" validate:"gte=0,lte=1"`
	Method        string    `json:"method" validate:"required,oneof=rule_based llm manual"`

	// Links the classifier extracted from the email body, when present.
	UnsubscribeLink   string `json:"unsubscribe_link,omitempty" validate:"omitempty,url"`
	ManageAccountLink string `json:"manage_account_link,omitempty" validate:"omitempty,url"`
}

// DetectionResult reports what the detector did with one fact.
type DetectionResult struct {
	ServiceName    string    `json:"service_name"`
	Normalized     bool      `json:"normalized"`
	SubscriptionId uuid.UUID `json:"subscription_id"`
	Created        bool      `json:"created"`
}
