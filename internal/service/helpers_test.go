package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"subscout-be/internal/config"
	"subscout-be/internal/entity"
	"subscout-be/internal/repository/memory"
	"subscout-be/internal/repository/specification"
	"subscout-be/pkg/automation"
	"subscout-be/pkg/inbox"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// nopLogger satisfies logger.ILogger without producing output.
type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

// stubCapability replays a scripted sequence of results and records every
// request it receives. When the script runs out it keeps returning the
// last result.
type stubCapability struct {
	mu       sync.Mutex
	script   []*automation.Result
	requests []automation.Request
}

func (c *stubCapability) Invoke(ctx context.Context, req automation.Request) (*automation.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = append(c.requests, req)
	if len(c.script) == 0 {
		return &automation.Result{StatusCode: 200}, nil
	}
	result := c.script[0]
	if len(c.script) > 1 {
		c.script = c.script[1:]
	}
	return result, nil
}

func (c *stubCapability) respond(results ...*automation.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.script = results
}

func (c *stubCapability) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.requests)
}

// stubSource is an in-memory ConfirmationSource with the same since-filter
// the inbox store applies.
type stubSource struct {
	mu      sync.Mutex
	signals map[string]inbox.Signal
}

func newStubSource() *stubSource {
	return &stubSource{signals: make(map[string]inbox.Signal)}
}

func (s *stubSource) put(userId uuid.UUID, serviceName string, sig inbox.Signal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signals[userId.String()+"|"+serviceName] = sig
}

func (s *stubSource) HasConfirmation(ctx context.Context, userId uuid.UUID, serviceName string, since time.Time) (*inbox.Signal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sig, ok := s.signals[userId.String()+"|"+serviceName]
	if !ok || sig.ObservedAt.Before(since) {
		return nil, nil
	}
	out := sig
	return &out, nil
}

type testEnv struct {
	store   *memory.Store
	factory *memory.Factory

	capability *stubCapability
	source     *stubSource

	sessions      ISessionService
	subscriptions ISubscriptionService
	detections    IDetectionService
	unsubscribes  IUnsubscribeService
	monitor       IMonitorService
	activity      IActivityService
	users         IUserService
}

func defaultUnsubscribeConfig() config.UnsubscribeConfig {
	return config.UnsubscribeConfig{
		MaxRetries:       3,
		RetryBackoffBase: time.Minute,
		RetryBackoffCap:  time.Hour,
		MonitoringWindow: 7 * 24 * time.Hour,
		RequestTimeout:   5 * time.Second,
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithConfig(t, defaultUnsubscribeConfig())
}

func newTestEnvWithConfig(t *testing.T, cfg config.UnsubscribeConfig) *testEnv {
	t.Helper()

	store := memory.NewStore()
	factory := memory.NewFactory(store)
	log := nopLogger{}
	cache := NewSummaryCache(nil, log)
	capability := &stubCapability{}
	source := newStubSource()

	subscriptions := NewSubscriptionService(factory, nil, cache, log)
	unsubscribes := NewUnsubscribeService(factory, capability, nil, nil, cache, cfg, log)

	return &testEnv{
		store:         store,
		factory:       factory,
		capability:    capability,
		source:        source,
		sessions:      NewSessionService(factory, nil, log),
		subscriptions: subscriptions,
		detections:    NewDetectionService(factory, subscriptions, log),
		unsubscribes:  unsubscribes,
		monitor:       NewMonitorService(factory, source, unsubscribes, log),
		activity:      NewActivityService(factory),
		users:         NewUserService(factory, cache, log),
	}
}

func (e *testEnv) seedUser(t *testing.T) *entity.User {
	t.Helper()
	user := &entity.User{
		Id:        uuid.New(),
		Email:     "user-" + uuid.New().String()[:8] + "@example.com",
		FullName:  "Test User",
		IsActive:  true,
		CreatedAt: time.Now(),
	}
	uow := e.factory.NewUnitOfWork(context.Background())
	require.NoError(t, uow.UserRepository().Create(context.Background(), user))
	return user
}

func (e *testEnv) seedSubscription(t *testing.T, userId uuid.UUID, serviceName string, price float64, period entity.BillingPeriod, status entity.SubscriptionStatus) *entity.Subscription {
	t.Helper()
	now := time.Now()
	sub := &entity.Subscription{
		Id:                  uuid.New(),
		UserId:              userId,
		ServiceName:         serviceName,
		Price:               price,
		Currency:            "USD",
		BillingPeriod:       period,
		Status:              status,
		UnsubscribeLink:     "https://example.com/unsubscribe",
		DetectionConfidence: 0.8,
		DetectedBy:          entity.DetectionMethodRuleBased,
		FirstDetectedDate:   &now,
		LastVerifiedDate:    &now,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	uow := e.factory.NewUnitOfWork(context.Background())
	require.NoError(t, uow.SubscriptionRepository().Create(context.Background(), sub))
	return sub
}

func (e *testEnv) seedRunningSession(t *testing.T, userId uuid.UUID) *entity.ImportSession {
	t.Helper()
	session := &entity.ImportSession{
		Id:        uuid.New(),
		UserId:    userId,
		Status:    entity.SessionStatusRunning,
		StartedAt: time.Now(),
	}
	uow := e.factory.NewUnitOfWork(context.Background())
	require.NoError(t, uow.SessionRepository().CreateIfNoneRunning(context.Background(), session))
	return session
}

func (e *testEnv) seedCatalogEntry(t *testing.T, serviceName, domain string, keywords ...string) *entity.CatalogService {
	t.Helper()
	svc := &entity.CatalogService{
		Id:            uuid.New(),
		ServiceName:   serviceName,
		ServiceDomain: domain,
		Category:      "streaming",
		EmailDomains:  []string{domain},
		Keywords:      keywords,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	uow := e.factory.NewUnitOfWork(context.Background())
	require.NoError(t, uow.ServiceCatalogRepository().Create(context.Background(), svc))
	return svc
}

func (e *testEnv) getSubscription(t *testing.T, id uuid.UUID) *entity.Subscription {
	t.Helper()
	uow := e.factory.NewUnitOfWork(context.Background())
	sub, err := uow.SubscriptionRepository().FindOne(context.Background(), specification.ByID{ID: id})
	require.NoError(t, err)
	require.NotNil(t, sub)
	return sub
}

func (e *testEnv) getAction(t *testing.T, id uuid.UUID) *entity.UnsubscribeAction {
	t.Helper()
	uow := e.factory.NewUnitOfWork(context.Background())
	action, err := uow.UnsubscribeActionRepository().FindOne(context.Background(), specification.ByID{ID: id})
	require.NoError(t, err)
	require.NotNil(t, action)
	return action
}

func (e *testEnv) getSession(t *testing.T, id uuid.UUID) *entity.ImportSession {
	t.Helper()
	uow := e.factory.NewUnitOfWork(context.Background())
	session, err := uow.SessionRepository().FindOne(context.Background(), specification.ByID{ID: id})
	require.NoError(t, err)
	require.NotNil(t, session)
	return session
}

func (e *testEnv) getUser(t *testing.T, id uuid.UUID) *entity.User {
	t.Helper()
	uow := e.factory.NewUnitOfWork(context.Background())
	user, err := uow.UserRepository().FindOne(context.Background(), specification.ByID{ID: id})
	require.NoError(t, err)
	require.NotNil(t, user)
	return user
}

func (e *testEnv) eventsFor(t *testing.T, subscriptionId uuid.UUID) []*entity.SubscriptionEvent {
	t.Helper()
	uow := e.factory.NewUnitOfWork(context.Background())
	events, err := uow.SubscriptionEventRepository().FindAll(context.Background(),
		specification.BySubscriptionID{SubscriptionID: subscriptionId})
	require.NoError(t, err)
	return events
}

func floatPtr(v float64) *float64 { return &v }

func billingPtr(p entity.BillingPeriod) *entity.BillingPeriod { return &p }
