package contract

import (
	"context"
	"time"

	"subscout-be/internal/entity"
	"subscout-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ActiveSummary aggregates the active subscriptions of one user with
// billing periods normalized to monthly and annual equivalents.
type ActiveSummary struct {
	Count        int
	MonthlySpend float64
	AnnualSpend  float64
}

type SubscriptionRepository interface {
	// Create inserts a subscription. When the row would be a second active
	// subscription for the same (user, service) the partial unique index
	// rejects it and a ConflictError is returned.
	Create(ctx context.Context, sub *entity.Subscription) error
	Update(ctx context.Context, sub *entity.Subscription) error

	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Subscription, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Subscription, error)

	// Transition is a check-and-set status move. `at` stamps cancelled_at
	// when the target status is cancelled. Returns false when the current
	// status was not in `from`.
	Transition(ctx context.Context, id uuid.UUID, from []entity.SubscriptionStatus, to entity.SubscriptionStatus, at time.Time) (bool, error)

	SummarizeActive(ctx context.Context, userId uuid.UUID) (*ActiveSummary, error)

	DeleteAllByUserIdUnscoped(ctx context.Context, userId uuid.UUID) error
}
