package contract

import (
	"context"
	"time"

	"subscout-be/internal/entity"
	"subscout-be/internal/repository/specification"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	Update(ctx context.Context, user *entity.User) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error)
	// FindOneUnscoped also sees tombstoned rows. Needed anywhere a
	// deleted account must be told apart from one that never existed.
	FindOneUnscoped(ctx context.Context, specs ...specification.Specification) (*entity.User, error)
	Count(ctx context.Context) (int, error)

	// UpdateAggregates rewrites the derived counters. Always called inside
	// the same transaction as the subscription mutation they derive from.
	UpdateAggregates(ctx context.Context, userId uuid.UUID, count int, monthlySpend float64) error
	TouchLastScan(ctx context.Context, userId uuid.UUID, at time.Time) error

	SoftDelete(ctx context.Context, userId uuid.UUID) error
}
