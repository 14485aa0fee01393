package entity

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	Id       uuid.UUID
	Email    string
	FullName string
	// CredentialRef is an opaque handle to the user's encrypted inbox token.
	// The credential vault owns the actual secret.
	CredentialRef     string
	ProfilePictureURL *string
	LastLoginAt       *time.Time
	LastScanAt        *time.Time
	// Derived aggregates, maintained by the subscription registry in the
	// same transaction as the subscription mutation that changes them.
	SubscriptionCount int
	TotalMonthlySpend float64
	IsActive          bool
	CreatedAt         time.Time
	DeletedAt         *time.Time
}

// Deleted reports whether the user has been tombstoned. A deleted user is
// excluded from every active workflow.
func (u *User) Deleted() bool {
	return u.DeletedAt != nil
}
