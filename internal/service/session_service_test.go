package service

import (
	"context"
	"sync"
	"testing"

	"subscout-be/internal/apperror"
	"subscout-be/internal/dto"
	"subscout-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartScan(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a running session and logs the start", func(t *testing.T) {
		env := newTestEnv(t)
		user := env.seedUser(t)

		resp, err := env.sessions.Start(ctx, user.Id, &dto.StartScanRequest{Query: "from:billing"})
		require.NoError(t, err)
		assert.Equal(t, string(entity.SessionStatusRunning), resp.Status)

		entries, err := env.activity.RecentActivity(ctx, user.Id)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, entity.ActivityScanStarted, entries[0].Type)
		require.NotNil(t, entries[0].RelatedSessionId)
		assert.Equal(t, resp.Id, *entries[0].RelatedSessionId)

		assert.NotNil(t, env.getUser(t, user.Id).LastScanAt)
	})

	t.Run("rejects a second running session", func(t *testing.T) {
		env := newTestEnv(t)
		user := env.seedUser(t)

		_, err := env.sessions.Start(ctx, user.Id, &dto.StartScanRequest{})
		require.NoError(t, err)

		_, err = env.sessions.Start(ctx, user.Id, &dto.StartScanRequest{})
		assert.ErrorIs(t, err, apperror.ErrConflict)
	})

	t.Run("concurrent starts produce exactly one session", func(t *testing.T) {
		env := newTestEnv(t)
		user := env.seedUser(t)

		const attempts = 8
		var wg sync.WaitGroup
		errs := make([]error, attempts)
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = env.sessions.Start(ctx, user.Id, &dto.StartScanRequest{})
			}(i)
		}
		wg.Wait()

		won := 0
		for _, err := range errs {
			if err == nil {
				won++
			} else {
				assert.ErrorIs(t, err, apperror.ErrConflict)
			}
		}
		assert.Equal(t, 1, won)
	})

	t.Run("unknown user", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.sessions.Start(ctx, uuid.New(), &dto.StartScanRequest{})
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("deleted user", func(t *testing.T) {
		env := newTestEnv(t)
		user := env.seedUser(t)
		require.NoError(t, env.users.DeleteAccount(ctx, user.Id))

		_, err := env.sessions.Start(ctx, user.Id, &dto.StartScanRequest{})
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})
}

func TestRecordProgress(t *testing.T) {
	ctx := context.Background()

	t.Run("accumulates counters", func(t *testing.T) {
		env := newTestEnv(t)
		user := env.seedUser(t)
		session := env.seedRunningSession(t, user.Id)

		_, err := env.sessions.RecordProgress(ctx, user.Id, session.Id, &dto.ScanProgressRequest{
			FoundDelta: 40, ProcessedDelta: 10, SubscriptionsDelta: 2,
		})
		require.NoError(t, err)

		resp, err := env.sessions.RecordProgress(ctx, user.Id, session.Id, &dto.ScanProgressRequest{
			ProcessedDelta: 30, SubscriptionsDelta: 1,
		})
		require.NoError(t, err)

		assert.Equal(t, 40, resp.TotalEmailsFound)
		assert.Equal(t, 40, resp.EmailsProcessed)
		assert.Equal(t, 3, resp.SubscriptionsFound)
	})

	t.Run("rejects negative deltas", func(t *testing.T) {
		env := newTestEnv(t)
		user := env.seedUser(t)
		session := env.seedRunningSession(t, user.Id)

		_, err := env.sessions.RecordProgress(ctx, user.Id, session.Id, &dto.ScanProgressRequest{FoundDelta: -1})
		assert.ErrorIs(t, err, apperror.ErrValidation)
	})

	t.Run("rejects progress on a finished session", func(t *testing.T) {
		env := newTestEnv(t)
		user := env.seedUser(t)
		session := env.seedRunningSession(t, user.Id)

		_, err := env.sessions.Complete(ctx, user.Id, session.Id)
		require.NoError(t, err)

		_, err = env.sessions.RecordProgress(ctx, user.Id, session.Id, &dto.ScanProgressRequest{ProcessedDelta: 1})
		assert.ErrorIs(t, err, apperror.ErrInvalidState)
	})
}

func TestFinishScan(t *testing.T) {
	ctx := context.Background()

	t.Run("complete stamps completed_at", func(t *testing.T) {
		env := newTestEnv(t)
		user := env.seedUser(t)
		session := env.seedRunningSession(t, user.Id)

		resp, err := env.sessions.Complete(ctx, user.Id, session.Id)
		require.NoError(t, err)
		assert.Equal(t, string(entity.SessionStatusCompleted), resp.Status)
		assert.NotNil(t, resp.CompletedAt)
	})

	t.Run("complete twice is a no-op", func(t *testing.T) {
		env := newTestEnv(t)
		user := env.seedUser(t)
		session := env.seedRunningSession(t, user.Id)

		first, err := env.sessions.Complete(ctx, user.Id, session.Id)
		require.NoError(t, err)

		second, err := env.sessions.Complete(ctx, user.Id, session.Id)
		require.NoError(t, err)
		assert.Equal(t, first.Status, second.Status)
		assert.Equal(t, first.CompletedAt.Unix(), second.CompletedAt.Unix())
	})

	t.Run("crossing terminal states is rejected", func(t *testing.T) {
		env := newTestEnv(t)
		user := env.seedUser(t)
		session := env.seedRunningSession(t, user.Id)

		_, err := env.sessions.Complete(ctx, user.Id, session.Id)
		require.NoError(t, err)

		_, err = env.sessions.Cancel(ctx, user.Id, session.Id)
		assert.ErrorIs(t, err, apperror.ErrInvalidState)

		_, err = env.sessions.Fail(ctx, user.Id, session.Id, "late failure")
		assert.ErrorIs(t, err, apperror.ErrInvalidState)
	})

	t.Run("fail requires a reason", func(t *testing.T) {
		env := newTestEnv(t)
		user := env.seedUser(t)
		session := env.seedRunningSession(t, user.Id)

		_, err := env.sessions.Fail(ctx, user.Id, session.Id, "")
		assert.ErrorIs(t, err, apperror.ErrValidation)
	})

	t.Run("fail records the reason", func(t *testing.T) {
		env := newTestEnv(t)
		user := env.seedUser(t)
		session := env.seedRunningSession(t, user.Id)

		resp, err := env.sessions.Fail(ctx, user.Id, session.Id, "mailbox quota exceeded")
		require.NoError(t, err)
		assert.Equal(t, string(entity.SessionStatusFailed), resp.Status)
		assert.Equal(t, "mailbox quota exceeded", resp.ErrorMessage)
	})

	t.Run("cancel frees the user to start again", func(t *testing.T) {
		env := newTestEnv(t)
		user := env.seedUser(t)
		session := env.seedRunningSession(t, user.Id)

		_, err := env.sessions.Cancel(ctx, user.Id, session.Id)
		require.NoError(t, err)

		_, err = env.sessions.Start(ctx, user.Id, &dto.StartScanRequest{})
		assert.NoError(t, err)
	})

	t.Run("session owned by another user is invisible", func(t *testing.T) {
		env := newTestEnv(t)
		owner := env.seedUser(t)
		stranger := env.seedUser(t)
		session := env.seedRunningSession(t, owner.Id)

		_, err := env.sessions.Complete(ctx, stranger.Id, session.Id)
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})
}
