package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ActivityLogEntry deliberately has no foreign keys on the Related* columns.
// They are weak references; the log stays writable and readable even after
// the referenced rows are gone.
type ActivityLogEntry struct {
	Id     uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	UserId uuid.UUID `gorm:"type:uuid;not null;index"`

	ActivityType        string `gorm:"type:varchar(100);not null;index"`
	ActivityDescription string `gorm:"type:text;not null"`

	RelatedSubscriptionId *uuid.UUID `gorm:"type:uuid"`
	RelatedSessionId      *uuid.UUID `gorm:"type:uuid"`
	RelatedActionId       *uuid.UUID `gorm:"type:uuid"`

	ActivityMetadata datatypes.JSON `gorm:"type:jsonb"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP;index:,sort:desc"`
}

func (ActivityLogEntry) TableName() string {
	return "activity_log"
}
