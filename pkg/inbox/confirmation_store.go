package inbox

import (
	"context"
	"fmt"
	"strings"
	"time"

	"subscout-be/internal/pkg/logger"
	"subscout-be/pkg/events"
	natsPkg "subscout-be/pkg/nats"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// Signal is one observed provider confirmation, keyed by the user and the
// service it belongs to.
type Signal struct {
	EmailId    string
	ObservedAt time.Time
}

// Store keeps recently observed unsubscribe confirmations in memory. The
// mail pipeline publishes CONFIRMATION_EMAIL_DETECTED events; the monitor
// polls this store on every sweep. Entries expire on their own once the
// monitoring window is comfortably past.
type Store struct {
	cache  *cache.Cache
	sub    *natsPkg.Subscriber
	logger logger.ILogger
}

func NewStore(sub *natsPkg.Subscriber, log logger.ILogger) *Store {
	return &Store{
		cache:  cache.New(14*24*time.Hour, time.Hour),
		sub:    sub,
		logger: log,
	}
}

// Start subscribes to the confirmation subject with a durable consumer.
// Nil-safe when NATS is unavailable, matching the rest of the wiring.
func (s *Store) Start() error {
	if s.sub == nil {
		s.logger.Warn("inbox", "NATS unavailable, confirmation feed disabled", nil)
		return nil
	}

	subject := fmt.Sprintf("events.%s", events.TypeConfirmationEmailDetected)
	return s.sub.Subscribe(subject, "subscout-confirmation-store", s.handle)
}

func (s *Store) handle(ctx context.Context, event events.Event) error {
	payload := event.Payload()

	userId, _ := payload["user_id"].(string)
	serviceName, _ := payload["service_name"].(string)
	emailId, _ := payload["email_id"].(string)
	if userId == "" || serviceName == "" || emailId == "" {
		s.logger.Warn("inbox", "Dropping malformed confirmation event", map[string]interface{}{
			"payload": payload,
		})
		return nil
	}

	observedAt := time.Now()
	if raw, ok := payload["detected_at"].(string); ok {
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			observedAt = ts
		}
	}

	s.Record(userId, serviceName, Signal{EmailId: emailId, ObservedAt: observedAt})
	return nil
}

// Record stores a confirmation signal. Exposed so tests and the dev profile
// can feed signals without a broker.
func (s *Store) Record(userId, serviceName string, sig Signal) {
	s.cache.Set(key(userId, serviceName), sig, cache.DefaultExpiration)
}

// HasConfirmation reports the signal for the user and service if one was
// observed at or after since.
func (s *Store) HasConfirmation(ctx context.Context, userId uuid.UUID, serviceName string, since time.Time) (*Signal, error) {
	raw, found := s.cache.Get(key(userId.String(), serviceName))
	if !found {
		return nil, nil
	}

	sig := raw.(Signal)
	if sig.ObservedAt.Before(since) {
		return nil, nil
	}
	return &sig, nil
}

func key(userId, serviceName string) string {
	return userId + "|" + strings.ToLower(serviceName)
}
