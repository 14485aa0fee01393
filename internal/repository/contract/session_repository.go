package contract

import (
	"context"
	"time"

	"subscout-be/internal/entity"
	"subscout-be/internal/repository/specification"

	"github.com/google/uuid"
)

type SessionRepository interface {
	// CreateIfNoneRunning inserts the session atomically, returning a
	// ConflictError when the user already has a running session. Backed by a
	// partial unique index, not read-then-write, so concurrent starts cannot
	// both succeed.
	CreateIfNoneRunning(ctx context.Context, session *entity.ImportSession) error

	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ImportSession, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ImportSession, error)

	// IncrementProgress adds the deltas to the counters, guarded on the
	// session still being in `running`. Returns false when the guard failed.
	IncrementProgress(ctx context.Context, id uuid.UUID, foundDelta, processedDelta, subsDelta int) (bool, error)

	// Transition moves the session from `from` to `to` with a check-and-set
	// update. Returns false when the session was not in `from`.
	Transition(ctx context.Context, id uuid.UUID, from, to entity.SessionStatus, completedAt *time.Time, errorMessage string) (bool, error)

	DeleteAllByUserIdUnscoped(ctx context.Context, userId uuid.UUID) error
}
