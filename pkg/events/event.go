package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "SCAN_COMPLETED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Event type codes published on the bus. Subjects are events.<code>.
const (
	TypeScanStarted           = "SCAN_STARTED"
	TypeScanCompleted         = "SCAN_COMPLETED"
	TypeScanFailed            = "SCAN_FAILED"
	TypeSubscriptionDetected  = "SUBSCRIPTION_DETECTED"
	TypeSubscriptionUpdated   = "SUBSCRIPTION_UPDATED"
	TypePriceChange           = "PRICE_CHANGE"
	TypeCancellationSubmitted = "CANCELLATION_SUBMITTED"
	TypeCancellationConfirmed = "CANCELLATION_CONFIRMED"
	TypeCancellationFailed    = "CANCELLATION_FAILED"

	// TypeConfirmationEmailDetected is consumed, not published: the mail
	// pipeline emits it when a provider's unsubscribe confirmation lands.
	TypeConfirmationEmailDetected = "CONFIRMATION_EMAIL_DETECTED"
)

// BaseEvent is the generic implementation used by publishers.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// New builds a BaseEvent stamped with the current time.
func New(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: time.Now(),
	}
}
