package service

import (
	"context"
	"testing"

	"subscout-be/internal/apperror"
	"subscout-be/internal/dto"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validFact(userId, sessionId uuid.UUID, hint string) *dto.ClassifiedEmailFact {
	return &dto.ClassifiedEmailFact{
		UserId:      userId,
		SessionId:   sessionId,
		RawEmailRef: "raw-" + uuid.New().String()[:8],
		ServiceHint: hint,
		Confidence:  0.8,
		Method:      "rule_based",
	}
}

func TestProcessValidation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.seedUser(t)
	session := env.seedRunningSession(t, user.Id)

	t.Run("missing required fields", func(t *testing.T) {
		fact := validFact(user.Id, session.Id, "netflix")
		fact.RawEmailRef = ""
		_, err := env.detections.Process(ctx, fact)
		assert.ErrorIs(t, err, apperror.ErrValidation)
	})

	t.Run("blank hint", func(t *testing.T) {
		_, err := env.detections.Process(ctx, validFact(user.Id, session.Id, "   "))
		assert.ErrorIs(t, err, apperror.ErrValidation)
	})

	t.Run("unknown method", func(t *testing.T) {
		fact := validFact(user.Id, session.Id, "netflix")
		fact.Method = "psychic"
		_, err := env.detections.Process(ctx, fact)
		assert.ErrorIs(t, err, apperror.ErrValidation)
	})

	t.Run("confidence out of range", func(t *testing.T) {
		fact := validFact(user.Id, session.Id, "netflix")
		fact.Confidence = 1.2
		_, err := env.detections.Process(ctx, fact)
		assert.ErrorIs(t, err, apperror.ErrValidation)
	})
}

func TestProcessSessionGuards(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.seedUser(t)

	t.Run("unknown session", func(t *testing.T) {
		_, err := env.detections.Process(ctx, validFact(user.Id, uuid.New(), "netflix"))
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("finished session rejects facts", func(t *testing.T) {
		session := env.seedRunningSession(t, user.Id)
		_, err := env.sessions.Complete(ctx, user.Id, session.Id)
		require.NoError(t, err)

		_, err = env.detections.Process(ctx, validFact(user.Id, session.Id, "netflix"))
		assert.ErrorIs(t, err, apperror.ErrInvalidState)
	})

	t.Run("session of another user is invisible", func(t *testing.T) {
		stranger := env.seedUser(t)
		session := env.seedRunningSession(t, stranger.Id)

		_, err := env.detections.Process(ctx, validFact(user.Id, session.Id, "netflix"))
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})
}

func TestProcessNormalization(t *testing.T) {
	ctx := context.Background()

	t.Run("domain match wins over raw hint", func(t *testing.T) {
		env := newTestEnv(t)
		user := env.seedUser(t)
		session := env.seedRunningSession(t, user.Id)
		catalog := env.seedCatalogEntry(t, "Netflix", "netflix.com", "streaming")

		fact := validFact(user.Id, session.Id, "billing@netflix.com")
		fact.Price = floatPtr(15.99)

		result, err := env.detections.Process(ctx, fact)
		require.NoError(t, err)
		assert.True(t, result.Normalized)
		assert.True(t, result.Created)
		assert.Equal(t, "Netflix", result.ServiceName)

		sub := env.getSubscription(t, result.SubscriptionId)
		assert.Equal(t, "netflix.com", sub.ServiceDomain)

		uow := env.factory.NewUnitOfWork(ctx)
		all, err := uow.ServiceCatalogRepository().FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, 1, all[0].TimesDetected)
		require.NotNil(t, all[0].AvgPrice)
		assert.InDelta(t, 15.99, *all[0].AvgPrice, 0.001)
		_ = catalog
	})

	t.Run("unmatched hint falls through as-is", func(t *testing.T) {
		env := newTestEnv(t)
		user := env.seedUser(t)
		session := env.seedRunningSession(t, user.Id)
		env.seedCatalogEntry(t, "Netflix", "netflix.com")

		result, err := env.detections.Process(ctx, validFact(user.Id, session.Id, "Obscure Zine Quarterly"))
		require.NoError(t, err)
		assert.False(t, result.Normalized)
		assert.Equal(t, "Obscure Zine Quarterly", result.ServiceName)
	})

	t.Run("ambiguous tie keeps the raw hint", func(t *testing.T) {
		env := newTestEnv(t)
		user := env.seedUser(t)
		session := env.seedRunningSession(t, user.Id)
		env.seedCatalogEntry(t, "Disney+", "disneyplus.test", "bundle")
		env.seedCatalogEntry(t, "HBO Max", "hbomax.test", "bundle")

		result, err := env.detections.Process(ctx, validFact(user.Id, session.Id, "your bundle receipt"))
		require.NoError(t, err)
		assert.False(t, result.Normalized)
		assert.Equal(t, "your bundle receipt", result.ServiceName)
	})

	t.Run("counters follow the fact", func(t *testing.T) {
		env := newTestEnv(t)
		user := env.seedUser(t)
		session := env.seedRunningSession(t, user.Id)

		first, err := env.detections.Process(ctx, validFact(user.Id, session.Id, "Spotify"))
		require.NoError(t, err)
		require.True(t, first.Created)

		second, err := env.detections.Process(ctx, validFact(user.Id, session.Id, "Spotify"))
		require.NoError(t, err)
		assert.False(t, second.Created)
		assert.Equal(t, first.SubscriptionId, second.SubscriptionId)

		stored := env.getSession(t, session.Id)
		assert.Equal(t, 2, stored.EmailsProcessed)
		assert.Equal(t, 1, stored.SubscriptionsFound)
	})
}
