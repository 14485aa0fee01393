package dto

import (
	"time"

	"github.com/google/uuid"
)

type StartScanRequest struct {
	Query      string     `json:"query"`
	DateFrom   *time.Time `json:"date_from,omitempty"`
	DateTo     *time.Time `json:"date_to,omitempty"`
	MaxResults int        `json:"max_results" validate:"omitempty,gte=1,lte=10000"`
}

type ScanProgressRequest struct {
	FoundDelta         int `json:"found_delta" validate:"gte=0"`
	ProcessedDelta     int `json:"processed_delta" validate:"gte=0"`
	SubscriptionsDelta int `json:"subscriptions_delta" validate:"gte=0"`
}

type FailScanRequest struct {
	Reason string `json:"reason" validate:"required"`
}

type SessionResponse struct {
	Id                 uuid.UUID  `json:"id"`
	Status             string     `json:"status"`
	TotalEmailsFound   int        `json:"total_emails_found"`
	EmailsProcessed    int        `json:"emails_processed"`
	SubscriptionsFound int        `json:"subscriptions_found"`
	ErrorMessage       string     `json:"error_message,omitempty"`
	StartedAt          time.Time  `json:"started_at"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
}
