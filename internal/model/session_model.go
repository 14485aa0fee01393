package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ImportSession struct {
	Id                 uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	UserId             uuid.UUID `gorm:"type:uuid;not null;index;index:idx_sessions_user_running,unique,where:status = 'running'"`
	Status             string    `gorm:"type:varchar(50);default:'running';index"`
	TotalEmailsFound   int       `gorm:"default:0"`
	EmailsProcessed    int       `gorm:"default:0"`
	SubscriptionsFound int       `gorm:"default:0"`
	ScanParams         datatypes.JSON `gorm:"type:jsonb"`
	ErrorMessage       string         `gorm:"type:text"`
	StartedAt          time.Time      `gorm:"default:CURRENT_TIMESTAMP;index:,sort:desc"`
	CompletedAt        *time.Time
}

func (ImportSession) TableName() string {
	return "email_import_sessions"
}
