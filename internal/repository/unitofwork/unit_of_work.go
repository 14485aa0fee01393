package unitofwork

import (
	"context"

	"subscout-be/internal/repository/contract"
)

// UnitOfWork is the single transactional boundary per state transition:
// a status change and its audit rows commit together or not at all.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	SessionRepository() contract.SessionRepository
	SubscriptionRepository() contract.SubscriptionRepository
	SubscriptionEventRepository() contract.SubscriptionEventRepository
	UnsubscribeActionRepository() contract.UnsubscribeActionRepository
	ActivityLogRepository() contract.ActivityLogRepository
	ServiceCatalogRepository() contract.ServiceCatalogRepository
}
