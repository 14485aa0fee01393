package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	Id                uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	Email             string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	FullName          string    `gorm:"type:varchar(255)"`
	CredentialRef     string    `gorm:"column:gmail_refresh_token;type:text;not null"`
	ProfilePictureURL *string   `gorm:"type:text"`
	LastLoginAt       *time.Time
	LastScanAt        *time.Time
	SubscriptionCount int            `gorm:"default:0"`
	TotalMonthlySpend float64        `gorm:"type:decimal(10,2);default:0"`
	IsActive          bool           `gorm:"default:true;index"`
	CreatedAt         time.Time      `gorm:"default:CURRENT_TIMESTAMP"`
	DeletedAt         gorm.DeletedAt `gorm:"index"`
}

func (User) TableName() string {
	return "users"
}
