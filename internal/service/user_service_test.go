package service

import (
	"context"
	"testing"

	"subscout-be/internal/apperror"
	"subscout-be/internal/entity"
	"subscout-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeleteAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("tombstones the user and purges their data", func(t *testing.T) {
		env := newTestEnv(t)
		user := env.seedUser(t)
		sub := env.seedSubscription(t, user.Id, "Netflix", 15.99, entity.BillingPeriodMonthly, entity.SubscriptionStatusActive)
		env.seedRunningSession(t, user.Id)
		_, err := env.unsubscribes.Initiate(ctx, user.Id, sub.Id, entity.StrategyAutomated)
		require.NoError(t, err)

		require.NoError(t, env.users.DeleteAccount(ctx, user.Id))

		uow := env.factory.NewUnitOfWork(ctx)

		found, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: user.Id})
		require.NoError(t, err)
		assert.Nil(t, found)

		subs, err := uow.SubscriptionRepository().FindAll(ctx, specification.ByUserID{UserID: user.Id})
		require.NoError(t, err)
		assert.Empty(t, subs)

		session, err := uow.SessionRepository().FindOne(ctx, specification.ByUserID{UserID: user.Id})
		require.NoError(t, err)
		assert.Nil(t, session)

		action, err := uow.UnsubscribeActionRepository().FindOne(ctx, specification.ByUserID{UserID: user.Id})
		require.NoError(t, err)
		assert.Nil(t, action)

		// The audit trail collapses to the deletion record itself.
		entries, err := env.activity.RecentActivity(ctx, user.Id)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, entity.ActivityAccountDeleted, entries[0].Type)
	})

	t.Run("second delete is a no-op", func(t *testing.T) {
		env := newTestEnv(t)
		user := env.seedUser(t)

		require.NoError(t, env.users.DeleteAccount(ctx, user.Id))
		require.NoError(t, env.users.DeleteAccount(ctx, user.Id))

		// The tombstone survives and is only visible unscoped.
		uow := env.factory.NewUnitOfWork(ctx)
		found, err := uow.UserRepository().FindOneUnscoped(ctx, specification.ByID{ID: user.Id})
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.True(t, found.Deleted())

		entries, err := env.activity.RecentActivity(ctx, user.Id)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("unknown user", func(t *testing.T) {
		env := newTestEnv(t)
		err := env.users.DeleteAccount(ctx, uuid.New())
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})
}

func TestRecentActivity(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.seedUser(t)

	session := env.seedRunningSession(t, user.Id)
	_, _, err := env.subscriptions.Merge(ctx, &Observation{
		UserId:      user.Id,
		ServiceName: "Netflix",
		Confidence:  0.8,
		Method:      entity.DetectionMethodRuleBased,
	})
	require.NoError(t, err)
	_, err = env.sessions.Complete(ctx, user.Id, session.Id)
	require.NoError(t, err)

	entries, err := env.activity.RecentActivity(ctx, user.Id)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Newest first.
	for i := 1; i < len(entries); i++ {
		assert.False(t, entries[i-1].CreatedAt.Before(entries[i].CreatedAt))
	}

	other := env.seedUser(t)
	theirs, err := env.activity.RecentActivity(ctx, other.Id)
	require.NoError(t, err)
	assert.Empty(t, theirs)
}
