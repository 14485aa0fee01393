package contract

import (
	"context"
	"time"

	"subscout-be/internal/entity"
	"subscout-be/internal/repository/specification"

	"github.com/google/uuid"
)

type UnsubscribeActionRepository interface {
	Create(ctx context.Context, action *entity.UnsubscribeAction) error

	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.UnsubscribeAction, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.UnsubscribeAction, error)

	// FindOpenBySubscription returns the subscription's non-terminal action,
	// or nil when every attempt has finished.
	FindOpenBySubscription(ctx context.Context, subscriptionId uuid.UUID) (*entity.UnsubscribeAction, error)
	CountBySubscription(ctx context.Context, subscriptionId uuid.UUID) (int, error)

	// FindAwaitingConfirmation lists every action the confirmation monitor
	// must examine on its next sweep.
	FindAwaitingConfirmation(ctx context.Context) ([]*entity.UnsubscribeAction, error)

	// UpdateIfStatus writes the action through only when its current stored
	// status is one of `expected` (check-and-set). Returns false otherwise;
	// concurrent sweeps and workers rely on this to never double-finalize.
	UpdateIfStatus(ctx context.Context, action *entity.UnsubscribeAction, expected []entity.UnsubscribeStatus) (bool, error)

	// ClaimForExecution atomically takes the action into in_progress and
	// clears its retry deadline. The claim succeeds only from pending, or
	// from in_progress once next_retry_at has passed, so a concurrent
	// worker or a premature retry never fires a duplicate request.
	ClaimForExecution(ctx context.Context, actionId uuid.UUID, now time.Time) (bool, error)

	DeleteAllByUserIdUnscoped(ctx context.Context, userId uuid.UUID) error
}
