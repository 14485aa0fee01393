package memory

import (
	"context"
	"time"

	"subscout-be/internal/entity"
	"subscout-be/internal/repository/specification"

	"github.com/google/uuid"
)

type userRepository struct {
	store *Store
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.users[user.Id] = cloneUser(user)
	return nil
}

func (r *userRepository) Update(ctx context.Context, user *entity.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if existing, ok := r.store.users[user.Id]; ok {
		c := cloneUser(user)
		c.SubscriptionCount = existing.SubscriptionCount
		c.TotalMonthlySpend = existing.TotalMonthlySpend
		r.store.users[user.Id] = c
	}
	return nil
}

func (r *userRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, u := range r.store.users {
		if u.DeletedAt != nil {
			continue
		}
		if matches(row{id: u.Id, userId: u.Id, createdAt: u.CreatedAt}, specs) {
			return cloneUser(u), nil
		}
	}
	return nil, nil
}

func (r *userRepository) FindOneUnscoped(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, u := range r.store.users {
		if matches(row{id: u.Id, userId: u.Id, createdAt: u.CreatedAt}, specs) {
			return cloneUser(u), nil
		}
	}
	return nil, nil
}

func (r *userRepository) Count(ctx context.Context) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	n := 0
	for _, u := range r.store.users {
		if u.DeletedAt == nil {
			n++
		}
	}
	return n, nil
}

func (r *userRepository) UpdateAggregates(ctx context.Context, userId uuid.UUID, count int, monthlySpend float64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if u, ok := r.store.users[userId]; ok {
		u.SubscriptionCount = count
		u.TotalMonthlySpend = monthlySpend
	}
	return nil
}

func (r *userRepository) TouchLastScan(ctx context.Context, userId uuid.UUID, at time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if u, ok := r.store.users[userId]; ok {
		t := at
		u.LastScanAt = &t
	}
	return nil
}

func (r *userRepository) SoftDelete(ctx context.Context, userId uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if u, ok := r.store.users[userId]; ok && u.DeletedAt == nil {
		now := time.Now()
		u.DeletedAt = &now
	}
	return nil
}
