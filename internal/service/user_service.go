package service

import (
	"context"
	"time"

	"subscout-be/internal/apperror"
	"subscout-be/internal/entity"
	"subscout-be/internal/pkg/lock"
	"subscout-be/internal/pkg/logger"
	"subscout-be/internal/repository/specification"
	"subscout-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IUserService interface {
	// DeleteAccount tombstones the user and hard-deletes every owned row.
	DeleteAccount(ctx context.Context, userId uuid.UUID) error
}

type userService struct {
	uowFactory unitofwork.RepositoryFactory
	cache      *SummaryCache
	locks      *lock.Keyed
	logger     logger.ILogger
}

func NewUserService(
	uowFactory unitofwork.RepositoryFactory,
	cache *SummaryCache,
	log logger.ILogger,
) IUserService {
	return &userService{
		uowFactory: uowFactory,
		cache:      cache,
		locks:      lock.NewKeyed(),
		logger:     log,
	}
}

func (s *userService) DeleteAccount(ctx context.Context, userId uuid.UUID) error {
	release := s.locks.Acquire("user:" + userId.String())
	defer release()

	uow := s.uowFactory.NewUnitOfWork(ctx)

	// Unscoped so a tombstoned account can be told apart from an unknown
	// one; a repeat delete is a no-op, not a NotFoundError.
	user, err := uow.UserRepository().FindOneUnscoped(ctx, specification.ByID{ID: userId})
	if err != nil {
		return err
	}
	if user == nil {
		return apperror.NotFound("user", userId.String())
	}
	if user.Deleted() {
		// Idempotent.
		return nil
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.UserRepository().SoftDelete(ctx, userId); err != nil {
		return err
	}

	// Owned rows go with the account; the tombstoned user row stays.
	if err := uow.SessionRepository().DeleteAllByUserIdUnscoped(ctx, userId); err != nil {
		return err
	}
	if err := uow.UnsubscribeActionRepository().DeleteAllByUserIdUnscoped(ctx, userId); err != nil {
		return err
	}
	if err := uow.SubscriptionEventRepository().DeleteAllByUserIdUnscoped(ctx, userId); err != nil {
		return err
	}
	if err := uow.SubscriptionRepository().DeleteAllByUserIdUnscoped(ctx, userId); err != nil {
		return err
	}
	if err := uow.ActivityLogRepository().DeleteAllByUserIdUnscoped(ctx, userId); err != nil {
		return err
	}

	if err := uow.ActivityLogRepository().Create(ctx, &entity.ActivityLogEntry{
		Id:          uuid.New(),
		UserId:      userId,
		Type:        entity.ActivityAccountDeleted,
		Description: "Account deleted",
		CreatedAt:   time.Now(),
	}); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	s.cache.Invalidate(ctx, userId)
	s.logger.Info("user", "Account deleted", map[string]interface{}{"user_id": userId.String()})

	return nil
}
