package contract

import (
	"context"

	"subscout-be/internal/entity"
	"subscout-be/internal/repository/specification"

	"github.com/google/uuid"
)

// SubscriptionEventRepository is append-only; events are never updated or
// individually deleted, only cascaded away with their owning user.
type SubscriptionEventRepository interface {
	Create(ctx context.Context, event *entity.SubscriptionEvent) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SubscriptionEvent, error)
	DeleteAllByUserIdUnscoped(ctx context.Context, userId uuid.UUID) error
}
