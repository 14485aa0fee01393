package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type CatalogService struct {
	Id            uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	ServiceName   string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	ServiceDomain string    `gorm:"type:varchar(255);index"`
	LogoURL       string    `gorm:"type:text"`
	Category      string    `gorm:"type:varchar(100);index"`

	EmailDomains datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	Keywords     datatypes.JSONSlice[string] `gorm:"type:jsonb"`

	TimesDetected int      `gorm:"default:0"`
	AvgPrice      *float64 `gorm:"type:decimal(10,2)"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (CatalogService) TableName() string {
	return "service_catalog"
}
