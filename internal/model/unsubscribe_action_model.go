package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type UnsubscribeAction struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	SubscriptionId uuid.UUID `gorm:"type:uuid;not null;index"`
	UserId         uuid.UUID `gorm:"type:uuid;not null;index"`

	ActionType string `gorm:"type:varchar(50);not null"`
	Status     string `gorm:"type:varchar(50);default:'pending';index"`

	UnsubscribeURL string         `gorm:"column:unsubscribe_url;type:text"`
	HTTPMethod     string         `gorm:"column:http_method;type:varchar(10)"`
	FormData       datatypes.JSON `gorm:"type:jsonb"`

	HTTPStatusCode      *int   `gorm:"column:http_status_code"`
	ResponseBodySnippet string `gorm:"type:text"`

	ConfirmationEmailId    *string `gorm:"type:varchar(255)"`
	ConfirmationDetectedAt *time.Time

	RetryCount  int `gorm:"default:0"`
	MaxRetries  int `gorm:"default:3"`
	NextRetryAt *time.Time

	ErrorMessage         string `gorm:"type:text"`
	RequiresManualAction bool   `gorm:"default:false"`
	ManualInstructions   string `gorm:"type:text"`

	InitiatedAt     time.Time `gorm:"default:CURRENT_TIMESTAMP"`
	CompletedAt     *time.Time
	MonitoringUntil *time.Time `gorm:"index:idx_actions_monitoring,where:status = 'awaiting_confirmation'"`
}

func (UnsubscribeAction) TableName() string {
	return "unsubscribe_actions"
}
