package entity

import (
	"time"

	"github.com/google/uuid"
)

type SessionStatus string

const (
	SessionStatusRunning   SessionStatus = "running"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusFailed    SessionStatus = "failed"
	SessionStatusCancelled SessionStatus = "cancelled"
)

// Terminal reports whether the status is one of the one-way end states.
func (s SessionStatus) Terminal() bool {
	return s == SessionStatusCompleted || s == SessionStatusFailed || s == SessionStatusCancelled
}

// ScanParams carries the search filters that produced a scan.
type ScanParams struct {
	Query      string     `json:"query,omitempty"`
	DateFrom   *time.Time `json:"date_from,omitempty"`
	DateTo     *time.Time `json:"date_to,omitempty"`
	MaxResults int        `json:"max_results,omitempty"`
}

// ImportSession tracks one inbox-scanning run for a user. At most one
// running session may exist per user at any time.
type ImportSession struct {
	Id                 uuid.UUID
	UserId             uuid.UUID
	Status             SessionStatus
	TotalEmailsFound   int
	EmailsProcessed    int
	SubscriptionsFound int
	ScanParams         ScanParams
	ErrorMessage       string
	StartedAt          time.Time
	CompletedAt        *time.Time
}
