package dto

import (
	"time"

	"github.com/google/uuid"
)

type InitiateUnsubscribeRequest struct {
	Strategy string `json:"strategy" validate:"required,oneof=automated manual_link manual_phone email_required"`
}

type UnsubscribeActionResponse struct {
	Id                   uuid.UUID  `json:"id"`
	SubscriptionId       uuid.UUID  `json:"subscription_id"`
	ActionType           string     `json:"action_type"`
	Status               string     `json:"status"`
	RetryCount           int        `json:"retry_count"`
	MaxRetries           int        `json:"max_retries"`
	NextRetryAt          *time.Time `json:"next_retry_at,omitempty"`
	HTTPStatusCode       *int       `json:"http_status_code,omitempty"`
	RequiresManualAction bool       `json:"requires_manual_action"`
	ManualInstructions   string     `json:"manual_instructions,omitempty"`
	ErrorMessage         string     `json:"error_message,omitempty"`
	InitiatedAt          time.Time  `json:"initiated_at"`
	CompletedAt          *time.Time `json:"completed_at,omitempty"`
	MonitoringUntil      *time.Time `json:"monitoring_until,omitempty"`
}
