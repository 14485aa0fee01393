package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Subscription struct {
	Id     uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	UserId uuid.UUID `gorm:"type:uuid;not null;index;index:idx_subs_user_service,unique,where:status = 'active',priority:1"`

	ServiceName     string `gorm:"type:varchar(255);not null;index;index:idx_subs_user_service,unique,where:status = 'active',priority:2"`
	ServiceDomain   string `gorm:"type:varchar(255)"`
	ServiceLogoURL  string `gorm:"column:service_logo_url;type:text"`
	ServiceCategory string `gorm:"type:varchar(100)"`

	Price         float64 `gorm:"type:decimal(10,2);not null"`
	Currency      string  `gorm:"type:varchar(3);default:'USD'"`
	BillingPeriod string  `gorm:"type:varchar(50);not null"`

	FirstDetectedDate *time.Time `gorm:"type:date"`
	NextRenewalDate   *time.Time `gorm:"type:date;index"`
	LastVerifiedDate  *time.Time

	UnsubscribeLink    string `gorm:"type:text"`
	ManageAccountLink  string `gorm:"type:text"`
	PaymentMethodLast4 string `gorm:"type:varchar(4)"`
	SubscriptionTier   string `gorm:"type:varchar(100)"`

	Status string `gorm:"type:varchar(50);default:'active';index"`

	SourceEmailIds      datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	DetectionConfidence float64                     `gorm:"type:decimal(3,2)"`
	DetectedBy          string                      `gorm:"type:varchar(50)"`

	CreatedAt   time.Time `gorm:"autoCreateTime;index:,sort:desc"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
	CancelledAt *time.Time
}

func (Subscription) TableName() string {
	return "subscriptions"
}
