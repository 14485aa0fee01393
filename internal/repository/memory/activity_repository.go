package memory

import (
	"context"
	"sort"
	"time"

	"subscout-be/internal/entity"

	"github.com/google/uuid"
)

type activityLogRepository struct {
	store *Store
}

func (r *activityLogRepository) Create(ctx context.Context, entry *entity.ActivityLogEntry) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.activity[entry.Id] = cloneActivity(entry)
	return nil
}

func (r *activityLogRepository) FindRecentByUser(ctx context.Context, userId uuid.UUID, since time.Time, limit int) ([]*entity.ActivityLogEntry, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.ActivityLogEntry
	for _, e := range r.store.activity {
		if e.UserId == userId && !e.CreatedAt.Before(since) {
			out = append(out, cloneActivity(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *activityLogRepository) DeleteAllByUserIdUnscoped(ctx context.Context, userId uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for id, e := range r.store.activity {
		if e.UserId == userId {
			delete(r.store.activity, id)
		}
	}
	return nil
}
