package memory

import (
	"sync"
	"time"

	"subscout-be/internal/entity"

	"github.com/google/uuid"
)

// Store is the shared in-memory backing for every repository. All access
// goes through mu so check-and-set operations observe a consistent state
// under concurrent callers, matching what the SQL schema's partial unique
// indexes and guarded updates give the GORM implementations.
type Store struct {
	mu sync.Mutex

	// txMu serializes units of work so a snapshot/restore pair never
	// interleaves with another transaction's writes.
	txMu sync.Mutex

	users         map[uuid.UUID]*entity.User
	sessions      map[uuid.UUID]*entity.ImportSession
	subscriptions map[uuid.UUID]*entity.Subscription
	events        map[uuid.UUID]*entity.SubscriptionEvent
	actions       map[uuid.UUID]*entity.UnsubscribeAction
	activity      map[uuid.UUID]*entity.ActivityLogEntry
	catalog       map[uuid.UUID]*entity.CatalogService
}

func NewStore() *Store {
	return &Store{
		users:         make(map[uuid.UUID]*entity.User),
		sessions:      make(map[uuid.UUID]*entity.ImportSession),
		subscriptions: make(map[uuid.UUID]*entity.Subscription),
		events:        make(map[uuid.UUID]*entity.SubscriptionEvent),
		actions:       make(map[uuid.UUID]*entity.UnsubscribeAction),
		activity:      make(map[uuid.UUID]*entity.ActivityLogEntry),
		catalog:       make(map[uuid.UUID]*entity.CatalogService),
	}
}

type snapshot struct {
	users         map[uuid.UUID]*entity.User
	sessions      map[uuid.UUID]*entity.ImportSession
	subscriptions map[uuid.UUID]*entity.Subscription
	events        map[uuid.UUID]*entity.SubscriptionEvent
	actions       map[uuid.UUID]*entity.UnsubscribeAction
	activity      map[uuid.UUID]*entity.ActivityLogEntry
	catalog       map[uuid.UUID]*entity.CatalogService
}

func (s *Store) snapshot() *snapshot {
	snap := &snapshot{
		users:         make(map[uuid.UUID]*entity.User, len(s.users)),
		sessions:      make(map[uuid.UUID]*entity.ImportSession, len(s.sessions)),
		subscriptions: make(map[uuid.UUID]*entity.Subscription, len(s.subscriptions)),
		events:        make(map[uuid.UUID]*entity.SubscriptionEvent, len(s.events)),
		actions:       make(map[uuid.UUID]*entity.UnsubscribeAction, len(s.actions)),
		activity:      make(map[uuid.UUID]*entity.ActivityLogEntry, len(s.activity)),
		catalog:       make(map[uuid.UUID]*entity.CatalogService, len(s.catalog)),
	}
	for k, v := range s.users {
		snap.users[k] = cloneUser(v)
	}
	for k, v := range s.sessions {
		snap.sessions[k] = cloneSession(v)
	}
	for k, v := range s.subscriptions {
		snap.subscriptions[k] = cloneSubscription(v)
	}
	for k, v := range s.events {
		snap.events[k] = cloneEvent(v)
	}
	for k, v := range s.actions {
		snap.actions[k] = cloneAction(v)
	}
	for k, v := range s.activity {
		snap.activity[k] = cloneActivity(v)
	}
	for k, v := range s.catalog {
		snap.catalog[k] = cloneCatalog(v)
	}
	return snap
}

func (s *Store) restore(snap *snapshot) {
	s.users = snap.users
	s.sessions = snap.sessions
	s.subscriptions = snap.subscriptions
	s.events = snap.events
	s.actions = snap.actions
	s.activity = snap.activity
	s.catalog = snap.catalog
}

func cloneUser(u *entity.User) *entity.User {
	c := *u
	c.ProfilePictureURL = clonePtr(u.ProfilePictureURL)
	c.LastLoginAt = clonePtr(u.LastLoginAt)
	c.LastScanAt = clonePtr(u.LastScanAt)
	c.DeletedAt = clonePtr(u.DeletedAt)
	return &c
}

func cloneSession(s *entity.ImportSession) *entity.ImportSession {
	c := *s
	c.CompletedAt = clonePtr(s.CompletedAt)
	c.ScanParams.DateFrom = clonePtr(s.ScanParams.DateFrom)
	c.ScanParams.DateTo = clonePtr(s.ScanParams.DateTo)
	return &c
}

func cloneSubscription(s *entity.Subscription) *entity.Subscription {
	c := *s
	c.FirstDetectedDate = clonePtr(s.FirstDetectedDate)
	c.NextRenewalDate = clonePtr(s.NextRenewalDate)
	c.LastVerifiedDate = clonePtr(s.LastVerifiedDate)
	c.CancelledAt = clonePtr(s.CancelledAt)
	c.SourceEmailIds = append([]string(nil), s.SourceEmailIds...)
	return &c
}

func cloneEvent(e *entity.SubscriptionEvent) *entity.SubscriptionEvent {
	c := *e
	c.Metadata = cloneMeta(e.Metadata)
	return &c
}

func cloneAction(a *entity.UnsubscribeAction) *entity.UnsubscribeAction {
	c := *a
	c.HTTPStatusCode = clonePtr(a.HTTPStatusCode)
	c.ConfirmationEmailId = clonePtr(a.ConfirmationEmailId)
	c.ConfirmationDetectedAt = clonePtr(a.ConfirmationDetectedAt)
	c.MonitoringUntil = clonePtr(a.MonitoringUntil)
	c.NextRetryAt = clonePtr(a.NextRetryAt)
	c.CompletedAt = clonePtr(a.CompletedAt)
	if a.FormData != nil {
		c.FormData = make(map[string]string, len(a.FormData))
		for k, v := range a.FormData {
			c.FormData[k] = v
		}
	}
	return &c
}

func cloneActivity(e *entity.ActivityLogEntry) *entity.ActivityLogEntry {
	c := *e
	c.RelatedSubscriptionId = clonePtr(e.RelatedSubscriptionId)
	c.RelatedSessionId = clonePtr(e.RelatedSessionId)
	c.RelatedActionId = clonePtr(e.RelatedActionId)
	c.Metadata = cloneMeta(e.Metadata)
	return &c
}

func cloneCatalog(s *entity.CatalogService) *entity.CatalogService {
	c := *s
	c.AvgPrice = clonePtr(s.AvgPrice)
	c.EmailDomains = append([]string(nil), s.EmailDomains...)
	c.Keywords = append([]string(nil), s.Keywords...)
	return &c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneMeta(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return nil
	}
	c := make(map[string]interface{}, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

// row is the flattened view the spec matcher works against.
type row struct {
	id             uuid.UUID
	userId         uuid.UUID
	subscriptionId uuid.UUID
	status         string
	serviceName    string
	createdAt      time.Time
}
