package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActiveServiceForUser selects the single active subscription for a
// (user, service) pair, the registry's dedup key.
type ActiveServiceForUser struct {
	UserID      uuid.UUID
	ServiceName string
}

func (s ActiveServiceForUser) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ? AND service_name = ? AND status = 'active'", s.UserID, s.ServiceName)
}

// BySubscriptionID filters dependent rows by subscription
type BySubscriptionID struct {
	SubscriptionID uuid.UUID
}

func (s BySubscriptionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("subscription_id = ?", s.SubscriptionID)
}
