package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type SubscriptionEvent struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	SubscriptionId uuid.UUID `gorm:"type:uuid;not null;index"`
	UserId         uuid.UUID `gorm:"type:uuid;not null;index"`

	EventType        string         `gorm:"type:varchar(100);not null;index"`
	EventDescription string         `gorm:"type:text"`
	EventMetadata    datatypes.JSON `gorm:"type:jsonb"`

	TriggeredBy string `gorm:"type:varchar(100)"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP;index:,sort:desc"`
}

func (SubscriptionEvent) TableName() string {
	return "subscription_events"
}
