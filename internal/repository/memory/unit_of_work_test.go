package memory

import (
	"context"
	"testing"
	"time"

	"subscout-be/internal/apperror"
	"subscout-be/internal/entity"
	"subscout-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runningSession(userId uuid.UUID) *entity.ImportSession {
	return &entity.ImportSession{
		Id:        uuid.New(),
		UserId:    userId,
		Status:    entity.SessionStatusRunning,
		StartedAt: time.Now(),
	}
}

func TestUnitOfWorkRollback(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	factory := NewFactory(store)

	uow := factory.NewUnitOfWork(ctx)
	require.NoError(t, uow.Begin(ctx))

	user := &entity.User{Id: uuid.New(), Email: "a@example.com", CreatedAt: time.Now()}
	require.NoError(t, uow.UserRepository().Create(ctx, user))
	require.NoError(t, uow.SessionRepository().CreateIfNoneRunning(ctx, runningSession(user.Id)))
	require.NoError(t, uow.Rollback())

	fresh := factory.NewUnitOfWork(ctx)
	found, err := fresh.UserRepository().FindOne(ctx, specification.ByID{ID: user.Id})
	require.NoError(t, err)
	assert.Nil(t, found)

	count, err := fresh.UserRepository().Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestUnitOfWorkCommit(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	factory := NewFactory(store)

	uow := factory.NewUnitOfWork(ctx)
	require.NoError(t, uow.Begin(ctx))

	user := &entity.User{Id: uuid.New(), Email: "a@example.com", CreatedAt: time.Now()}
	require.NoError(t, uow.UserRepository().Create(ctx, user))
	require.NoError(t, uow.Commit())

	// Rollback after commit must not undo the committed writes.
	require.NoError(t, uow.Rollback())

	fresh := factory.NewUnitOfWork(ctx)
	found, err := fresh.UserRepository().FindOne(ctx, specification.ByID{ID: user.Id})
	require.NoError(t, err)
	assert.NotNil(t, found)
}

func TestCreateIfNoneRunning(t *testing.T) {
	ctx := context.Background()
	factory := NewFactory(NewStore())
	uow := factory.NewUnitOfWork(ctx)
	userId := uuid.New()

	require.NoError(t, uow.SessionRepository().CreateIfNoneRunning(ctx, runningSession(userId)))

	err := uow.SessionRepository().CreateIfNoneRunning(ctx, runningSession(userId))
	assert.ErrorIs(t, err, apperror.ErrConflict)

	// A different user is unaffected.
	assert.NoError(t, uow.SessionRepository().CreateIfNoneRunning(ctx, runningSession(uuid.New())))
}

func TestSessionTransitionGuards(t *testing.T) {
	ctx := context.Background()
	factory := NewFactory(NewStore())
	uow := factory.NewUnitOfWork(ctx)

	session := runningSession(uuid.New())
	require.NoError(t, uow.SessionRepository().CreateIfNoneRunning(ctx, session))

	now := time.Now()
	ok, err := uow.SessionRepository().Transition(ctx, session.Id, entity.SessionStatusRunning, entity.SessionStatusCompleted, &now, "")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = uow.SessionRepository().Transition(ctx, session.Id, entity.SessionStatusRunning, entity.SessionStatusCancelled, &now, "")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = uow.SessionRepository().IncrementProgress(ctx, session.Id, 1, 1, 0)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestActiveServiceUniqueness(t *testing.T) {
	ctx := context.Background()
	factory := NewFactory(NewStore())
	uow := factory.NewUnitOfWork(ctx)
	userId := uuid.New()

	mk := func(status entity.SubscriptionStatus) *entity.Subscription {
		return &entity.Subscription{
			Id:          uuid.New(),
			UserId:      userId,
			ServiceName: "Netflix",
			Status:      status,
			CreatedAt:   time.Now(),
		}
	}

	require.NoError(t, uow.SubscriptionRepository().Create(ctx, mk(entity.SubscriptionStatusActive)))

	err := uow.SubscriptionRepository().Create(ctx, mk(entity.SubscriptionStatusActive))
	assert.ErrorIs(t, err, apperror.ErrConflict)

	// Historical rows for the same service may pile up.
	assert.NoError(t, uow.SubscriptionRepository().Create(ctx, mk(entity.SubscriptionStatusCancelled)))
}

func TestSummarizeActive(t *testing.T) {
	ctx := context.Background()
	factory := NewFactory(NewStore())
	uow := factory.NewUnitOfWork(ctx)
	userId := uuid.New()

	subs := []*entity.Subscription{
		{Id: uuid.New(), UserId: userId, ServiceName: "A", Price: 12, BillingPeriod: entity.BillingPeriodMonthly, Status: entity.SubscriptionStatusActive},
		{Id: uuid.New(), UserId: userId, ServiceName: "B", Price: 120, BillingPeriod: entity.BillingPeriodAnnually, Status: entity.SubscriptionStatusActive},
		{Id: uuid.New(), UserId: userId, ServiceName: "C", Price: 9, BillingPeriod: entity.BillingPeriodMonthly, Status: entity.SubscriptionStatusCancelled},
	}
	for _, sub := range subs {
		require.NoError(t, uow.SubscriptionRepository().Create(ctx, sub))
	}

	summary, err := uow.SubscriptionRepository().SummarizeActive(ctx, userId)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Count)
	assert.InDelta(t, 22, summary.MonthlySpend, 0.001)
}

func TestClaimForExecution(t *testing.T) {
	ctx := context.Background()
	factory := NewFactory(NewStore())
	uow := factory.NewUnitOfWork(ctx)
	now := time.Now()

	mk := func(status entity.UnsubscribeStatus, nextRetryAt *time.Time) uuid.UUID {
		action := &entity.UnsubscribeAction{
			Id:             uuid.New(),
			UserId:         uuid.New(),
			SubscriptionId: uuid.New(),
			ActionType:     entity.StrategyAutomated,
			Status:         status,
			NextRetryAt:    nextRetryAt,
			MaxRetries:     3,
			InitiatedAt:    now,
		}
		require.NoError(t, uow.UnsubscribeActionRepository().Create(ctx, action))
		return action.Id
	}

	t.Run("pending action is claimable exactly once", func(t *testing.T) {
		id := mk(entity.ActionStatusPending, nil)

		ok, err := uow.UnsubscribeActionRepository().ClaimForExecution(ctx, id, now)
		require.NoError(t, err)
		assert.True(t, ok)

		// A second claim sees in_progress with no retry deadline.
		ok, err = uow.UnsubscribeActionRepository().ClaimForExecution(ctx, id, now)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("elapsed retry deadline reopens the claim", func(t *testing.T) {
		past := now.Add(-time.Minute)
		id := mk(entity.ActionStatusInProgress, &past)

		ok, err := uow.UnsubscribeActionRepository().ClaimForExecution(ctx, id, now)
		require.NoError(t, err)
		assert.True(t, ok)

		found, err := uow.UnsubscribeActionRepository().FindOne(ctx, specification.ByID{ID: id})
		require.NoError(t, err)
		assert.Nil(t, found.NextRetryAt)
	})

	t.Run("future retry deadline refuses the claim", func(t *testing.T) {
		future := now.Add(time.Minute)
		id := mk(entity.ActionStatusInProgress, &future)

		ok, err := uow.UnsubscribeActionRepository().ClaimForExecution(ctx, id, now)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("terminal action is never claimable", func(t *testing.T) {
		id := mk(entity.ActionStatusFailed, nil)

		ok, err := uow.UnsubscribeActionRepository().ClaimForExecution(ctx, id, now)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
