package inbox

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

func TestHasConfirmation(t *testing.T) {
	ctx := context.Background()
	userId := uuid.New()

	t.Run("returns a recorded signal", func(t *testing.T) {
		store := NewStore(nil, nopLogger{})
		observed := time.Now()
		store.Record(userId.String(), "Netflix", Signal{EmailId: "msg-1", ObservedAt: observed})

		sig, err := store.HasConfirmation(ctx, userId, "Netflix", observed.Add(-time.Hour))
		require.NoError(t, err)
		require.NotNil(t, sig)
		assert.Equal(t, "msg-1", sig.EmailId)
	})

	t.Run("service name matching is case-insensitive", func(t *testing.T) {
		store := NewStore(nil, nopLogger{})
		store.Record(userId.String(), "NETFLIX", Signal{EmailId: "msg-1", ObservedAt: time.Now()})

		sig, err := store.HasConfirmation(ctx, userId, "netflix", time.Now().Add(-time.Minute))
		require.NoError(t, err)
		assert.NotNil(t, sig)
	})

	t.Run("signals before since are invisible", func(t *testing.T) {
		store := NewStore(nil, nopLogger{})
		store.Record(userId.String(), "Netflix", Signal{EmailId: "stale", ObservedAt: time.Now().Add(-time.Hour)})

		sig, err := store.HasConfirmation(ctx, userId, "Netflix", time.Now())
		require.NoError(t, err)
		assert.Nil(t, sig)
	})

	t.Run("unknown user yields nothing", func(t *testing.T) {
		store := NewStore(nil, nopLogger{})
		sig, err := store.HasConfirmation(ctx, uuid.New(), "Netflix", time.Time{})
		require.NoError(t, err)
		assert.Nil(t, sig)
	})

	t.Run("start without a broker is a no-op", func(t *testing.T) {
		store := NewStore(nil, nopLogger{})
		assert.NoError(t, store.Start())
	})
}
