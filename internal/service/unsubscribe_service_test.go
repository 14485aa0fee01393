package service

import (
	"context"
	"testing"
	"time"

	"subscout-be/internal/apperror"
	"subscout-be/internal/entity"
	"subscout-be/pkg/automation"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitiate(t *testing.T) {
	ctx := context.Background()

	t.Run("moves the subscription into pending_cancellation", func(t *testing.T) {
		env := newTestEnv(t)
		user := env.seedUser(t)
		sub := env.seedSubscription(t, user.Id, "Netflix", 15.99, entity.BillingPeriodMonthly, entity.SubscriptionStatusActive)

		resp, err := env.unsubscribes.Initiate(ctx, user.Id, sub.Id, entity.StrategyAutomated)
		require.NoError(t, err)
		assert.Equal(t, string(entity.ActionStatusPending), resp.Status)
		assert.Equal(t, 3, resp.MaxRetries)

		assert.Equal(t, entity.SubscriptionStatusPendingCancellation, env.getSubscription(t, sub.Id).Status)

		events := env.eventsFor(t, sub.Id)
		require.Len(t, events, 1)
		assert.Equal(t, entity.EventTypeCancellationInitiated, events[0].EventType)
	})

	t.Run("manual strategies carry instructions from the start", func(t *testing.T) {
		env := newTestEnv(t)
		user := env.seedUser(t)
		sub := env.seedSubscription(t, user.Id, "Gym+", 30, entity.BillingPeriodMonthly, entity.SubscriptionStatusActive)

		resp, err := env.unsubscribes.Initiate(ctx, user.Id, sub.Id, entity.StrategyManualPhone)
		require.NoError(t, err)
		assert.NotEmpty(t, resp.ManualInstructions)
	})

	t.Run("unknown strategy", func(t *testing.T) {
		env := newTestEnv(t)
		user := env.seedUser(t)
		sub := env.seedSubscription(t, user.Id, "Netflix", 15.99, entity.BillingPeriodMonthly, entity.SubscriptionStatusActive)

		_, err := env.unsubscribes.Initiate(ctx, user.Id, sub.Id, entity.UnsubscribeStrategy("carrier_pigeon"))
		assert.ErrorIs(t, err, apperror.ErrValidation)
	})

	t.Run("subscription of another user is invisible", func(t *testing.T) {
		env := newTestEnv(t)
		owner := env.seedUser(t)
		stranger := env.seedUser(t)
		sub := env.seedSubscription(t, owner.Id, "Netflix", 15.99, entity.BillingPeriodMonthly, entity.SubscriptionStatusActive)

		_, err := env.unsubscribes.Initiate(ctx, stranger.Id, sub.Id, entity.StrategyAutomated)
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("open attempt blocks a second one", func(t *testing.T) {
		env := newTestEnv(t)
		user := env.seedUser(t)
		sub := env.seedSubscription(t, user.Id, "Netflix", 15.99, entity.BillingPeriodMonthly, entity.SubscriptionStatusActive)

		_, err := env.unsubscribes.Initiate(ctx, user.Id, sub.Id, entity.StrategyAutomated)
		require.NoError(t, err)

		_, err = env.unsubscribes.Initiate(ctx, user.Id, sub.Id, entity.StrategyAutomated)
		assert.ErrorIs(t, err, apperror.ErrConflict)
	})

	t.Run("cancelled subscription cannot be cancelled again", func(t *testing.T) {
		env := newTestEnv(t)
		user := env.seedUser(t)
		sub := env.seedSubscription(t, user.Id, "Netflix", 15.99, entity.BillingPeriodMonthly, entity.SubscriptionStatusCancelled)

		_, err := env.unsubscribes.Initiate(ctx, user.Id, sub.Id, entity.StrategyAutomated)
		assert.ErrorIs(t, err, apperror.ErrInvalidState)
	})
}

func initiateAction(t *testing.T, env *testEnv, strategy entity.UnsubscribeStrategy) (*entity.User, *entity.Subscription, uuid.UUID) {
	t.Helper()
	user := env.seedUser(t)
	sub := env.seedSubscription(t, user.Id, "Netflix", 15.99, entity.BillingPeriodMonthly, entity.SubscriptionStatusActive)
	resp, err := env.unsubscribes.Initiate(context.Background(), user.Id, sub.Id, strategy)
	require.NoError(t, err)
	return user, sub, resp.Id
}

// elapseRetryBackoff rewinds the action's retry deadline so the next
// Execute is eligible without sleeping through the real backoff.
func elapseRetryBackoff(t *testing.T, env *testEnv, actionId uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	action := env.getAction(t, actionId)
	past := time.Now().Add(-time.Second)
	action.NextRetryAt = &past
	uow := env.factory.NewUnitOfWork(ctx)
	ok, err := uow.UnsubscribeActionRepository().UpdateIfStatus(ctx, action,
		[]entity.UnsubscribeStatus{entity.ActionStatusInProgress})
	require.NoError(t, err)
	require.True(t, ok)
}

func TestExecuteAutomated(t *testing.T) {
	ctx := context.Background()

	t.Run("2xx moves the action into monitoring", func(t *testing.T) {
		env := newTestEnv(t)
		_, sub, actionId := initiateAction(t, env, entity.StrategyAutomated)
		env.capability.respond(&automation.Result{StatusCode: 200, BodySnippet: "ok"})

		resp, err := env.unsubscribes.Execute(ctx, actionId)
		require.NoError(t, err)
		assert.Equal(t, string(entity.ActionStatusAwaitingConfirmation), resp.Status)
		require.NotNil(t, resp.HTTPStatusCode)
		assert.Equal(t, 200, *resp.HTTPStatusCode)
		require.NotNil(t, resp.MonitoringUntil)
		assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), *resp.MonitoringUntil, time.Minute)

		// Subscription stays pending until a confirmation arrives.
		assert.Equal(t, entity.SubscriptionStatusPendingCancellation, env.getSubscription(t, sub.Id).Status)
		assert.Equal(t, 1, env.capability.callCount())
	})

	t.Run("retryable failure schedules a backoff", func(t *testing.T) {
		env := newTestEnv(t)
		_, _, actionId := initiateAction(t, env, entity.StrategyAutomated)
		env.capability.respond(&automation.Result{StatusCode: 503, Retryable: true})

		_, err := env.unsubscribes.Execute(ctx, actionId)
		assert.ErrorIs(t, err, apperror.ErrTransient)

		action := env.getAction(t, actionId)
		assert.Equal(t, entity.ActionStatusInProgress, action.Status)
		assert.Equal(t, 1, action.RetryCount)
		require.NotNil(t, action.NextRetryAt)
		assert.WithinDuration(t, time.Now().Add(time.Minute), *action.NextRetryAt, 10*time.Second)
	})

	t.Run("re-execute before the backoff deadline is refused", func(t *testing.T) {
		env := newTestEnv(t)
		_, _, actionId := initiateAction(t, env, entity.StrategyAutomated)
		env.capability.respond(&automation.Result{StatusCode: 503, Retryable: true})

		_, err := env.unsubscribes.Execute(ctx, actionId)
		require.ErrorIs(t, err, apperror.ErrTransient)
		require.Equal(t, 1, env.capability.callCount())

		_, err = env.unsubscribes.Execute(ctx, actionId)
		assert.ErrorIs(t, err, apperror.ErrInvalidState)
		assert.Equal(t, 1, env.capability.callCount())
		assert.Equal(t, 1, env.getAction(t, actionId).RetryCount)
	})

	t.Run("backoff doubles and honors the cap", func(t *testing.T) {
		cfg := defaultUnsubscribeConfig()
		cfg.MaxRetries = 10
		cfg.RetryBackoffBase = time.Minute
		cfg.RetryBackoffCap = 2 * time.Minute
		env := newTestEnvWithConfig(t, cfg)
		_, _, actionId := initiateAction(t, env, entity.StrategyAutomated)
		env.capability.respond(&automation.Result{StatusCode: 503, Retryable: true})

		want := []time.Duration{time.Minute, 2 * time.Minute, 2 * time.Minute}
		for i, delay := range want {
			if i > 0 {
				elapseRetryBackoff(t, env, actionId)
			}
			_, err := env.unsubscribes.Execute(ctx, actionId)
			require.ErrorIs(t, err, apperror.ErrTransient)

			action := env.getAction(t, actionId)
			assert.Equal(t, i+1, action.RetryCount)
			require.NotNil(t, action.NextRetryAt)
			assert.WithinDuration(t, time.Now().Add(delay), *action.NextRetryAt, 10*time.Second)
		}
	})

	t.Run("exhausted retries fail the attempt and free the subscription", func(t *testing.T) {
		env := newTestEnv(t)
		_, sub, actionId := initiateAction(t, env, entity.StrategyAutomated)
		env.capability.respond(&automation.Result{StatusCode: 503, Retryable: true})

		_, err := env.unsubscribes.Execute(ctx, actionId)
		require.ErrorIs(t, err, apperror.ErrTransient)
		elapseRetryBackoff(t, env, actionId)
		_, err = env.unsubscribes.Execute(ctx, actionId)
		require.ErrorIs(t, err, apperror.ErrTransient)
		elapseRetryBackoff(t, env, actionId)

		// The third attempt exhausts the budget and fails terminally.
		resp, err := env.unsubscribes.Execute(ctx, actionId)
		require.NoError(t, err)
		assert.Equal(t, string(entity.ActionStatusFailed), resp.Status)

		action := env.getAction(t, actionId)
		assert.Equal(t, entity.ActionStatusFailed, action.Status)
		assert.Equal(t, 3, action.RetryCount)
		assert.True(t, action.RequiresManualAction)
		assert.NotEmpty(t, action.ManualInstructions)
		assert.NotNil(t, action.CompletedAt)

		assert.Equal(t, entity.SubscriptionStatusActive, env.getSubscription(t, sub.Id).Status)

		// Execute on a terminal action is rejected.
		_, err = env.unsubscribes.Execute(ctx, actionId)
		assert.ErrorIs(t, err, apperror.ErrInvalidState)
	})

	t.Run("non-retryable failure ends the attempt immediately", func(t *testing.T) {
		env := newTestEnv(t)
		_, sub, actionId := initiateAction(t, env, entity.StrategyAutomated)
		env.capability.respond(&automation.Result{StatusCode: 404, BodySnippet: "gone"})

		resp, err := env.unsubscribes.Execute(ctx, actionId)
		require.NoError(t, err)
		assert.Equal(t, string(entity.ActionStatusFailed), resp.Status)
		assert.True(t, resp.RequiresManualAction)
		assert.Equal(t, entity.SubscriptionStatusActive, env.getSubscription(t, sub.Id).Status)
		assert.Equal(t, 1, env.capability.callCount())
	})

	t.Run("missing unsubscribe link fails without a network call", func(t *testing.T) {
		env := newTestEnv(t)
		user := env.seedUser(t)
		sub := env.seedSubscription(t, user.Id, "Netflix", 15.99, entity.BillingPeriodMonthly, entity.SubscriptionStatusActive)
		sub.UnsubscribeLink = ""
		uow := env.factory.NewUnitOfWork(ctx)
		require.NoError(t, uow.SubscriptionRepository().Update(ctx, sub))

		resp, err := env.unsubscribes.Initiate(ctx, user.Id, sub.Id, entity.StrategyAutomated)
		require.NoError(t, err)

		result, err := env.unsubscribes.Execute(ctx, resp.Id)
		require.NoError(t, err)
		assert.Equal(t, string(entity.ActionStatusFailed), result.Status)
		assert.Equal(t, 0, env.capability.callCount())
	})
}

func TestExecuteManual(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	_, sub, actionId := initiateAction(t, env, entity.StrategyManualLink)

	resp, err := env.unsubscribes.Execute(ctx, actionId)
	require.NoError(t, err)
	assert.Equal(t, string(entity.ActionStatusAwaitingConfirmation), resp.Status)
	assert.True(t, resp.RequiresManualAction)
	assert.NotEmpty(t, resp.ManualInstructions)
	require.NotNil(t, resp.MonitoringUntil)

	// No automated request is ever fired for a manual strategy.
	assert.Equal(t, 0, env.capability.callCount())
	assert.Equal(t, entity.SubscriptionStatusPendingCancellation, env.getSubscription(t, sub.Id).Status)
}

func TestFinalize(t *testing.T) {
	ctx := context.Background()

	awaiting := func(t *testing.T, env *testEnv) (*entity.Subscription, uuid.UUID) {
		_, sub, actionId := initiateAction(t, env, entity.StrategyAutomated)
		env.capability.respond(&automation.Result{StatusCode: 200})
		_, err := env.unsubscribes.Execute(ctx, actionId)
		require.NoError(t, err)
		return sub, actionId
	}

	t.Run("confirmation cancels the subscription", func(t *testing.T) {
		env := newTestEnv(t)
		sub, actionId := awaiting(t, env)

		observedAt := time.Now()
		err := env.unsubscribes.Finalize(ctx, actionId, FinalizeOutcome{
			Confirmed:  true,
			EmailId:    "confirm-123",
			ObservedAt: observedAt,
		})
		require.NoError(t, err)

		action := env.getAction(t, actionId)
		assert.Equal(t, entity.ActionStatusConfirmed, action.Status)
		require.NotNil(t, action.ConfirmationEmailId)
		assert.Equal(t, "confirm-123", *action.ConfirmationEmailId)
		assert.NotNil(t, action.CompletedAt)

		stored := env.getSubscription(t, sub.Id)
		assert.Equal(t, entity.SubscriptionStatusCancelled, stored.Status)
		assert.NotNil(t, stored.CancelledAt)

		// The cancelled subscription no longer counts toward spend.
		user := env.getUser(t, sub.UserId)
		assert.Equal(t, 0, user.SubscriptionCount)
		assert.InDelta(t, 0, user.TotalMonthlySpend, 0.001)
	})

	t.Run("timeout fails the attempt", func(t *testing.T) {
		env := newTestEnv(t)
		sub, actionId := awaiting(t, env)

		err := env.unsubscribes.Finalize(ctx, actionId, FinalizeOutcome{Confirmed: false})
		require.NoError(t, err)

		assert.Equal(t, entity.ActionStatusFailed, env.getAction(t, actionId).Status)
		assert.Equal(t, entity.SubscriptionStatusActive, env.getSubscription(t, sub.Id).Status)
	})

	t.Run("finalizing twice is harmless", func(t *testing.T) {
		env := newTestEnv(t)
		sub, actionId := awaiting(t, env)

		require.NoError(t, env.unsubscribes.Finalize(ctx, actionId, FinalizeOutcome{Confirmed: true, EmailId: "x"}))
		require.NoError(t, env.unsubscribes.Finalize(ctx, actionId, FinalizeOutcome{Confirmed: false}))

		assert.Equal(t, entity.ActionStatusConfirmed, env.getAction(t, actionId).Status)
		assert.Equal(t, entity.SubscriptionStatusCancelled, env.getSubscription(t, sub.Id).Status)
	})

	t.Run("unknown action", func(t *testing.T) {
		env := newTestEnv(t)
		err := env.unsubscribes.Finalize(ctx, uuid.New(), FinalizeOutcome{Confirmed: true})
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})
}

func TestShowAction(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user, _, actionId := initiateAction(t, env, entity.StrategyAutomated)

	resp, err := env.unsubscribes.Show(ctx, user.Id, actionId)
	require.NoError(t, err)
	assert.Equal(t, actionId, resp.Id)

	stranger := env.seedUser(t)
	_, err = env.unsubscribes.Show(ctx, stranger.Id, actionId)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
