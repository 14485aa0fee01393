package contract

import (
	"context"
	"time"

	"subscout-be/internal/entity"

	"github.com/google/uuid"
)

// ActivityLogRepository is the append-only audit sink. The pipeline only
// writes; reads serve external observers.
type ActivityLogRepository interface {
	Create(ctx context.Context, entry *entity.ActivityLogEntry) error
	FindRecentByUser(ctx context.Context, userId uuid.UUID, since time.Time, limit int) ([]*entity.ActivityLogEntry, error)
	DeleteAllByUserIdUnscoped(ctx context.Context, userId uuid.UUID) error
}
