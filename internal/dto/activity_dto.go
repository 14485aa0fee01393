package dto

import (
	"time"

	"github.com/google/uuid"
)

type ActivityResponse struct {
	Id                    uuid.UUID  `json:"id"`
	Type                  string     `json:"type"`
	Description           string     `json:"description"`
	RelatedSubscriptionId *uuid.UUID `json:"related_subscription_id,omitempty"`
	RelatedSessionId      *uuid.UUID `json:"related_session_id,omitempty"`
	RelatedActionId       *uuid.UUID `json:"related_action_id,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
}
