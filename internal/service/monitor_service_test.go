package service

import (
	"context"
	"testing"
	"time"

	"subscout-be/internal/entity"
	"subscout-be/pkg/automation"
	"subscout-be/pkg/inbox"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func awaitingAction(t *testing.T, env *testEnv) (*entity.Subscription, uuid.UUID) {
	t.Helper()
	_, sub, actionId := initiateAction(t, env, entity.StrategyAutomated)
	env.capability.respond(&automation.Result{StatusCode: 200})
	_, err := env.unsubscribes.Execute(context.Background(), actionId)
	require.NoError(t, err)
	return sub, actionId
}

func TestSweep(t *testing.T) {
	ctx := context.Background()

	t.Run("confirms when a signal arrived", func(t *testing.T) {
		env := newTestEnv(t)
		sub, actionId := awaitingAction(t, env)
		env.source.put(sub.UserId, sub.ServiceName, inbox.Signal{
			EmailId:    "confirm-9",
			ObservedAt: time.Now(),
		})

		require.NoError(t, env.monitor.Sweep(ctx, time.Now()))

		action := env.getAction(t, actionId)
		assert.Equal(t, entity.ActionStatusConfirmed, action.Status)
		require.NotNil(t, action.ConfirmationEmailId)
		assert.Equal(t, "confirm-9", *action.ConfirmationEmailId)
		assert.Equal(t, entity.SubscriptionStatusCancelled, env.getSubscription(t, sub.Id).Status)
	})

	t.Run("ignores signals older than the attempt", func(t *testing.T) {
		env := newTestEnv(t)
		sub, actionId := awaitingAction(t, env)
		env.source.put(sub.UserId, sub.ServiceName, inbox.Signal{
			EmailId:    "stale",
			ObservedAt: time.Now().Add(-48 * time.Hour),
		})

		require.NoError(t, env.monitor.Sweep(ctx, time.Now()))

		assert.Equal(t, entity.ActionStatusAwaitingConfirmation, env.getAction(t, actionId).Status)
	})

	t.Run("times out past the monitoring window", func(t *testing.T) {
		env := newTestEnv(t)
		sub, actionId := awaitingAction(t, env)

		require.NoError(t, env.monitor.Sweep(ctx, time.Now().Add(8*24*time.Hour)))

		action := env.getAction(t, actionId)
		assert.Equal(t, entity.ActionStatusFailed, action.Status)
		assert.True(t, action.RequiresManualAction)
		assert.Equal(t, entity.SubscriptionStatusActive, env.getSubscription(t, sub.Id).Status)
	})

	t.Run("leaves fresh actions for the next sweep", func(t *testing.T) {
		env := newTestEnv(t)
		_, actionId := awaitingAction(t, env)

		require.NoError(t, env.monitor.Sweep(ctx, time.Now()))

		assert.Equal(t, entity.ActionStatusAwaitingConfirmation, env.getAction(t, actionId).Status)
	})

	t.Run("double sweep is idempotent", func(t *testing.T) {
		env := newTestEnv(t)
		sub, actionId := awaitingAction(t, env)
		env.source.put(sub.UserId, sub.ServiceName, inbox.Signal{
			EmailId:    "confirm-once",
			ObservedAt: time.Now(),
		})

		require.NoError(t, env.monitor.Sweep(ctx, time.Now()))
		require.NoError(t, env.monitor.Sweep(ctx, time.Now()))

		assert.Equal(t, entity.ActionStatusConfirmed, env.getAction(t, actionId).Status)

		events := env.eventsFor(t, sub.Id)
		confirmed := 0
		for _, ev := range events {
			if ev.EventType == entity.EventTypeCancellationConfirmed {
				confirmed++
			}
		}
		assert.Equal(t, 1, confirmed)
	})

	t.Run("sweeps every awaiting action independently", func(t *testing.T) {
		env := newTestEnv(t)
		subA, actionA := awaitingAction(t, env)
		subB, actionB := awaitingAction(t, env)

		env.source.put(subA.UserId, subA.ServiceName, inbox.Signal{
			EmailId:    "confirm-a",
			ObservedAt: time.Now(),
		})

		require.NoError(t, env.monitor.Sweep(ctx, time.Now()))

		assert.Equal(t, entity.ActionStatusConfirmed, env.getAction(t, actionA).Status)
		assert.Equal(t, entity.ActionStatusAwaitingConfirmation, env.getAction(t, actionB).Status)
		_ = subB
	})
}
