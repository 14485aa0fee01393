package memory

import (
	"context"
	"time"

	"subscout-be/internal/apperror"
	"subscout-be/internal/entity"
	"subscout-be/internal/repository/contract"
	"subscout-be/internal/repository/specification"

	"github.com/google/uuid"
)

type subscriptionRepository struct {
	store *Store
}

func (r *subscriptionRepository) Create(ctx context.Context, sub *entity.Subscription) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if sub.Status == entity.SubscriptionStatusActive {
		for _, s := range r.store.subscriptions {
			if s.UserId == sub.UserId && s.ServiceName == sub.ServiceName && s.Status == entity.SubscriptionStatusActive {
				return apperror.Conflict("subscription", "user %s already has an active subscription for %q", sub.UserId, sub.ServiceName)
			}
		}
	}
	r.store.subscriptions[sub.Id] = cloneSubscription(sub)
	return nil
}

func (r *subscriptionRepository) Update(ctx context.Context, sub *entity.Subscription) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if existing, ok := r.store.subscriptions[sub.Id]; ok {
		c := cloneSubscription(sub)
		// Status moves only through Transition; mirror the column list of
		// the SQL implementation.
		c.Status = existing.Status
		c.CancelledAt = clonePtr(existing.CancelledAt)
		r.store.subscriptions[sub.Id] = c
	}
	return nil
}

func (r *subscriptionRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Subscription, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, s := range r.store.subscriptions {
		if matches(r.toRow(s), specs) {
			return cloneSubscription(s), nil
		}
	}
	return nil, nil
}

func (r *subscriptionRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Subscription, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var rows []row
	for _, s := range r.store.subscriptions {
		if rw := r.toRow(s); matches(rw, specs) {
			rows = append(rows, rw)
		}
	}
	rows = arrange(rows, specs)

	var out []*entity.Subscription
	for _, rw := range rows {
		out = append(out, cloneSubscription(r.store.subscriptions[rw.id]))
	}
	return out, nil
}

func (r *subscriptionRepository) Transition(ctx context.Context, id uuid.UUID, from []entity.SubscriptionStatus, to entity.SubscriptionStatus, at time.Time) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	s, ok := r.store.subscriptions[id]
	if !ok {
		return false, nil
	}
	allowed := false
	for _, f := range from {
		if s.Status == f {
			allowed = true
			break
		}
	}
	if !allowed {
		return false, nil
	}
	s.Status = to
	if to == entity.SubscriptionStatusCancelled {
		t := at
		s.CancelledAt = &t
	}
	return true, nil
}

func (r *subscriptionRepository) SummarizeActive(ctx context.Context, userId uuid.UUID) (*contract.ActiveSummary, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	summary := &contract.ActiveSummary{}
	for _, s := range r.store.subscriptions {
		if s.UserId != userId || s.Status != entity.SubscriptionStatusActive {
			continue
		}
		summary.Count++
		summary.MonthlySpend += s.BillingPeriod.MonthlyEquivalent(s.Price)
		summary.AnnualSpend += s.BillingPeriod.AnnualEquivalent(s.Price)
	}
	return summary, nil
}

func (r *subscriptionRepository) DeleteAllByUserIdUnscoped(ctx context.Context, userId uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for id, s := range r.store.subscriptions {
		if s.UserId == userId {
			delete(r.store.subscriptions, id)
		}
	}
	return nil
}

func (r *subscriptionRepository) toRow(s *entity.Subscription) row {
	return row{id: s.Id, userId: s.UserId, status: string(s.Status), serviceName: s.ServiceName, createdAt: s.CreatedAt}
}
