package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActivityScanStarted            = "scan_started"
	ActivityScanCompleted          = "scan_completed"
	ActivityScanFailed             = "scan_failed"
	ActivityScanCancelled          = "scan_cancelled"
	ActivitySubscriptionDetected   = "subscription_detected"
	ActivitySubscriptionUpdated    = "subscription_updated"
	ActivityCancellationInitiated  = "cancellation_initiated"
	ActivityCancellationSubmitted  = "cancellation_submitted"
	ActivityCancellationConfirmed  = "cancellation_confirmed"
	ActivityCancellationFailed     = "cancellation_failed"
	ActivityAccountDeleted         = "account_deleted"
)

// ActivityLogEntry is a denormalized audit record. The Related* ids are weak
// references: lookup only, never enforced, and the entry stays valid even if
// the referenced row is deleted later.
type ActivityLogEntry struct {
	Id          uuid.UUID
	UserId      uuid.UUID
	Type        string
	Description string

	RelatedSubscriptionId *uuid.UUID
	RelatedSessionId      *uuid.UUID
	RelatedActionId       *uuid.UUID

	Metadata  map[string]interface{}
	CreatedAt time.Time
}
