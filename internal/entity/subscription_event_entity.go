package entity

import (
	"time"

	"github.com/google/uuid"
)

type SubscriptionEventType string

const (
	EventTypeDetected               SubscriptionEventType = "detected"
	EventTypeUpdated                SubscriptionEventType = "updated"
	EventTypePriceChange            SubscriptionEventType = "price_change"
	EventTypeRenewalReminder        SubscriptionEventType = "renewal_reminder"
	EventTypeCancellationInitiated  SubscriptionEventType = "cancellation_initiated"
	EventTypeCancellationSubmitted  SubscriptionEventType = "cancellation_submitted"
	EventTypeCancellationConfirmed  SubscriptionEventType = "cancellation_confirmed"
	EventTypeCancellationFailed     SubscriptionEventType = "cancellation_failed"
	EventTypeCancelled              SubscriptionEventType = "cancelled"
)

// SubscriptionEvent is an immutable audit fact tied to one subscription.
// Rows are append-only and never updated.
type SubscriptionEvent struct {
	Id             uuid.UUID
	SubscriptionId uuid.UUID
	UserId         uuid.UUID
	EventType      SubscriptionEventType
	Description    string
	Metadata       map[string]interface{}
	TriggeredBy    string
	CreatedAt      time.Time
}
