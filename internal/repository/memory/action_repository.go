package memory

import (
	"context"
	"time"

	"subscout-be/internal/entity"
	"subscout-be/internal/repository/specification"

	"github.com/google/uuid"
)

type unsubscribeActionRepository struct {
	store *Store
}

func (r *unsubscribeActionRepository) Create(ctx context.Context, action *entity.UnsubscribeAction) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.actions[action.Id] = cloneAction(action)
	return nil
}

func (r *unsubscribeActionRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.UnsubscribeAction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, a := range r.store.actions {
		if matches(r.toRow(a), specs) {
			return cloneAction(a), nil
		}
	}
	return nil, nil
}

func (r *unsubscribeActionRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.UnsubscribeAction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var rows []row
	for _, a := range r.store.actions {
		if rw := r.toRow(a); matches(rw, specs) {
			rows = append(rows, rw)
		}
	}
	rows = arrange(rows, specs)

	var out []*entity.UnsubscribeAction
	for _, rw := range rows {
		out = append(out, cloneAction(r.store.actions[rw.id]))
	}
	return out, nil
}

func (r *unsubscribeActionRepository) FindOpenBySubscription(ctx context.Context, subscriptionId uuid.UUID) (*entity.UnsubscribeAction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, a := range r.store.actions {
		if a.SubscriptionId == subscriptionId && !a.Status.Terminal() {
			return cloneAction(a), nil
		}
	}
	return nil, nil
}

func (r *unsubscribeActionRepository) CountBySubscription(ctx context.Context, subscriptionId uuid.UUID) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	n := 0
	for _, a := range r.store.actions {
		if a.SubscriptionId == subscriptionId {
			n++
		}
	}
	return n, nil
}

func (r *unsubscribeActionRepository) FindAwaitingConfirmation(ctx context.Context) ([]*entity.UnsubscribeAction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.UnsubscribeAction
	for _, a := range r.store.actions {
		if a.Status == entity.ActionStatusAwaitingConfirmation {
			out = append(out, cloneAction(a))
		}
	}
	return out, nil
}

func (r *unsubscribeActionRepository) UpdateIfStatus(ctx context.Context, action *entity.UnsubscribeAction, expected []entity.UnsubscribeStatus) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	existing, ok := r.store.actions[action.Id]
	if !ok {
		return false, nil
	}
	allowed := false
	for _, s := range expected {
		if existing.Status == s {
			allowed = true
			break
		}
	}
	if !allowed {
		return false, nil
	}
	c := cloneAction(action)
	// Immutable columns keep their stored values, as in the SQL update list.
	c.ActionType = existing.ActionType
	c.MaxRetries = existing.MaxRetries
	c.InitiatedAt = existing.InitiatedAt
	r.store.actions[action.Id] = c
	return true, nil
}

func (r *unsubscribeActionRepository) ClaimForExecution(ctx context.Context, actionId uuid.UUID, now time.Time) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	existing, ok := r.store.actions[actionId]
	if !ok {
		return false, nil
	}
	eligible := existing.Status == entity.ActionStatusPending ||
		(existing.Status == entity.ActionStatusInProgress &&
			existing.NextRetryAt != nil && !now.Before(*existing.NextRetryAt))
	if !eligible {
		return false, nil
	}
	existing.Status = entity.ActionStatusInProgress
	existing.NextRetryAt = nil
	return true, nil
}

func (r *unsubscribeActionRepository) DeleteAllByUserIdUnscoped(ctx context.Context, userId uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for id, a := range r.store.actions {
		if a.UserId == userId {
			delete(r.store.actions, id)
		}
	}
	return nil
}

func (r *unsubscribeActionRepository) toRow(a *entity.UnsubscribeAction) row {
	return row{id: a.Id, userId: a.UserId, subscriptionId: a.SubscriptionId, status: string(a.Status), createdAt: a.InitiatedAt}
}
