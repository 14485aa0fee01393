package memory

import (
	"context"

	"subscout-be/internal/entity"
	"subscout-be/internal/repository/specification"

	"github.com/google/uuid"
)

type subscriptionEventRepository struct {
	store *Store
}

func (r *subscriptionEventRepository) Create(ctx context.Context, event *entity.SubscriptionEvent) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.events[event.Id] = cloneEvent(event)
	return nil
}

func (r *subscriptionEventRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SubscriptionEvent, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var rows []row
	for _, e := range r.store.events {
		rw := row{id: e.Id, userId: e.UserId, subscriptionId: e.SubscriptionId, status: string(e.EventType), createdAt: e.CreatedAt}
		if matches(rw, specs) {
			rows = append(rows, rw)
		}
	}
	rows = arrange(rows, specs)

	var out []*entity.SubscriptionEvent
	for _, rw := range rows {
		out = append(out, cloneEvent(r.store.events[rw.id]))
	}
	return out, nil
}

func (r *subscriptionEventRepository) DeleteAllByUserIdUnscoped(ctx context.Context, userId uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for id, e := range r.store.events {
		if e.UserId == userId {
			delete(r.store.events, id)
		}
	}
	return nil
}
