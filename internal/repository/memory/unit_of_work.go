package memory

import (
	"context"

	"subscout-be/internal/repository/contract"
	"subscout-be/internal/repository/unitofwork"
)

// Factory hands out units of work backed by a shared Store. Tests use it
// in place of the GORM factory; the service layer cannot tell them apart.
type Factory struct {
	store *Store
}

func NewFactory(store *Store) *Factory {
	return &Factory{store: store}
}

func (f *Factory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &unitOfWork{store: f.store}
}

// unitOfWork emulates a database transaction with snapshot and restore.
// Begin serializes against other units of work, so writes made before a
// Rollback never leak into a concurrent transaction's view.
type unitOfWork struct {
	store *Store
	snap  *snapshot
	open  bool
}

func (u *unitOfWork) Begin(ctx context.Context) error {
	u.store.txMu.Lock()
	u.store.mu.Lock()
	u.snap = u.store.snapshot()
	u.store.mu.Unlock()
	u.open = true
	return nil
}

func (u *unitOfWork) Commit() error {
	if !u.open {
		return nil
	}
	u.snap = nil
	u.open = false
	u.store.txMu.Unlock()
	return nil
}

func (u *unitOfWork) Rollback() error {
	if !u.open {
		return nil
	}
	u.store.mu.Lock()
	u.store.restore(u.snap)
	u.store.mu.Unlock()
	u.snap = nil
	u.open = false
	u.store.txMu.Unlock()
	return nil
}

func (u *unitOfWork) UserRepository() contract.UserRepository {
	return &userRepository{store: u.store}
}

func (u *unitOfWork) SessionRepository() contract.SessionRepository {
	return &sessionRepository{store: u.store}
}

func (u *unitOfWork) SubscriptionRepository() contract.SubscriptionRepository {
	return &subscriptionRepository{store: u.store}
}

func (u *unitOfWork) SubscriptionEventRepository() contract.SubscriptionEventRepository {
	return &subscriptionEventRepository{store: u.store}
}

func (u *unitOfWork) UnsubscribeActionRepository() contract.UnsubscribeActionRepository {
	return &unsubscribeActionRepository{store: u.store}
}

func (u *unitOfWork) ActivityLogRepository() contract.ActivityLogRepository {
	return &activityLogRepository{store: u.store}
}

func (u *unitOfWork) ServiceCatalogRepository() contract.ServiceCatalogRepository {
	return &serviceCatalogRepository{store: u.store}
}
