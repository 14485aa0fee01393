package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"subscout-be/internal/apperror"
	"subscout-be/internal/dto"
	"subscout-be/internal/entity"
	"subscout-be/internal/pkg/logger"
	"subscout-be/internal/repository/specification"
	"subscout-be/internal/repository/unitofwork"
	"subscout-be/pkg/events"
	natsPkg "subscout-be/pkg/nats"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Observation is one detected sighting of a subscription, already
// normalized against the catalog where possible.
type Observation struct {
	UserId          uuid.UUID
	ServiceName     string
	ServiceDomain   string
	ServiceLogoURL  string
	ServiceCategory string

	Price         *float64
	Currency      string
	BillingPeriod *entity.BillingPeriod

	UnsubscribeLink   string
	ManageAccountLink string

	EvidenceId string
	Confidence float64
	Method     entity.DetectionMethod
	ObservedAt time.Time
}

type ISubscriptionService interface {
	// Merge folds an observation into the registry: create when the user
	// has no active subscription for the service, field-wise merge
	// otherwise. Returns the resulting subscription and whether a new row
	// was created.
	Merge(ctx context.Context, obs *Observation) (*entity.Subscription, bool, error)

	GetAll(ctx context.Context, userId uuid.UUID) ([]dto.SubscriptionResponse, error)
	Summary(ctx context.Context, userId uuid.UUID) (*dto.SummaryResponse, error)
}

type subscriptionService struct {
	uowFactory unitofwork.RepositoryFactory
	natsPub    *natsPkg.Publisher
	cache      *SummaryCache
	logger     logger.ILogger
}

func NewSubscriptionService(
	uowFactory unitofwork.RepositoryFactory,
	natsPub *natsPkg.Publisher,
	cache *SummaryCache,
	log logger.ILogger,
) ISubscriptionService {
	return &subscriptionService{
		uowFactory: uowFactory,
		natsPub:    natsPub,
		cache:      cache,
		logger:     log,
	}
}

func (s *subscriptionService) Merge(ctx context.Context, obs *Observation) (*entity.Subscription, bool, error) {
	if obs.ServiceName == "" {
		return nil, false, apperror.Invalid("service_name", "must not be empty")
	}
	if obs.Confidence < 0 || obs.Confidence > 1 {
		return nil, false, apperror.Invalid("confidence", "must be within [0,1]")
	}

	// A concurrent create for the same (user, service) loses against the
	// unique index; the loser re-runs once and lands on the merge path.
	for attempt := 0; attempt < 2; attempt++ {
		sub, created, err := s.mergeOnce(ctx, obs)
		if err == nil {
			s.cache.Invalidate(ctx, obs.UserId)
			return sub, created, nil
		}
		if !errors.Is(err, apperror.ErrConflict) {
			return nil, false, err
		}
	}
	return nil, false, apperror.Conflict("subscription", "merge lost two consecutive races for %s", obs.ServiceName)
}

func (s *subscriptionService) mergeOnce(ctx context.Context, obs *Observation) (*entity.Subscription, bool, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if err := uow.Begin(ctx); err != nil {
		return nil, false, err
	}
	defer uow.Rollback()

	existing, err := uow.SubscriptionRepository().FindOne(ctx, specification.ActiveServiceForUser{
		UserID:      obs.UserId,
		ServiceName: obs.ServiceName,
	})
	if err != nil {
		return nil, false, err
	}

	var (
		sub     *entity.Subscription
		created bool
	)
	if existing == nil {
		sub, err = s.createFromObservation(ctx, uow, obs)
		created = true
	} else {
		sub, err = s.mergeIntoExisting(ctx, uow, existing, obs)
	}
	if err != nil {
		return nil, false, err
	}

	// Derived aggregates change with every merge and must commit with it.
	if err := s.recomputeAggregates(ctx, uow, obs.UserId); err != nil {
		return nil, false, err
	}

	if err := uow.Commit(); err != nil {
		return nil, false, err
	}

	eventType := events.TypeSubscriptionUpdated
	if created {
		eventType = events.TypeSubscriptionDetected
	}
	s.publish(ctx, eventType, map[string]interface{}{
		"subscription_id": sub.Id.String(),
		"user_id":         obs.UserId.String(),
		"service_name":    sub.ServiceName,
	})

	return sub, created, nil
}

func (s *subscriptionService) createFromObservation(ctx context.Context, uow unitofwork.UnitOfWork, obs *Observation) (*entity.Subscription, error) {
	now := obs.ObservedAt
	if now.IsZero() {
		now = time.Now()
	}

	sub := &entity.Subscription{
		Id:                  uuid.New(),
		UserId:              obs.UserId,
		ServiceName:         obs.ServiceName,
		ServiceDomain:       obs.ServiceDomain,
		ServiceLogoURL:      obs.ServiceLogoURL,
		ServiceCategory:     obs.ServiceCategory,
		UnsubscribeLink:     obs.UnsubscribeLink,
		ManageAccountLink:   obs.ManageAccountLink,
		Currency:            obs.Currency,
		BillingPeriod:       entity.BillingPeriodMonthly,
		Status:              entity.SubscriptionStatusActive,
		DetectionConfidence: obs.Confidence,
		DetectedBy:          obs.Method,
		FirstDetectedDate:   &now,
		LastVerifiedDate:    &now,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if obs.Price != nil {
		sub.Price = *obs.Price
	}
	if obs.BillingPeriod != nil {
		sub.BillingPeriod = *obs.BillingPeriod
	}
	if obs.EvidenceId != "" {
		sub.SourceEmailIds = []string{obs.EvidenceId}
	}

	if err := uow.SubscriptionRepository().Create(ctx, sub); err != nil {
		return nil, err
	}

	if err := uow.SubscriptionEventRepository().Create(ctx, &entity.SubscriptionEvent{
		Id:             uuid.New(),
		SubscriptionId: sub.Id,
		UserId:         obs.UserId,
		EventType:      entity.EventTypeDetected,
		Description:    fmt.Sprintf("Detected %s subscription", sub.ServiceName),
		Metadata: map[string]interface{}{
			"confidence": obs.Confidence,
			"method":     string(obs.Method),
		},
		TriggeredBy: string(obs.Method),
		CreatedAt:   now,
	}); err != nil {
		return nil, err
	}

	if err := uow.ActivityLogRepository().Create(ctx, &entity.ActivityLogEntry{
		Id:                    uuid.New(),
		UserId:                obs.UserId,
		Type:                  entity.ActivitySubscriptionDetected,
		Description:           fmt.Sprintf("Found %s subscription", sub.ServiceName),
		RelatedSubscriptionId: &sub.Id,
		CreatedAt:             now,
	}); err != nil {
		return nil, err
	}

	return sub, nil
}

// mergeIntoExisting applies the field-wise merge policy: a field is
// overwritten only when the new observation carries strictly greater
// confidence, wins the tie-break, or the field was never set. Price and
// billing changes always leave a price_change event behind, adopted or not.
func (s *subscriptionService) mergeIntoExisting(ctx context.Context, uow unitofwork.UnitOfWork, sub *entity.Subscription, obs *Observation) (*entity.Subscription, error) {
	now := obs.ObservedAt
	if now.IsZero() {
		now = time.Now()
	}

	newWins := obs.Confidence > sub.DetectionConfidence
	if obs.Confidence == sub.DetectionConfidence {
		// Equal confidence: higher-ranked method wins; equal rank goes to
		// the newer observation.
		newWins = obs.Method.Rank() >= sub.DetectedBy.Rank()
	}

	priceChanged := obs.Price != nil && *obs.Price != sub.Price
	billingChanged := obs.BillingPeriod != nil && *obs.BillingPeriod != sub.BillingPeriod

	if priceChanged || billingChanged {
		meta := map[string]interface{}{
			"old_price":   sub.Price,
			"old_billing": string(sub.BillingPeriod),
			"adopted":     newWins,
		}
		if obs.Price != nil {
			meta["new_price"] = *obs.Price
		}
		if obs.BillingPeriod != nil {
			meta["new_billing"] = string(*obs.BillingPeriod)
		}
		if err := uow.SubscriptionEventRepository().Create(ctx, &entity.SubscriptionEvent{
			Id:             uuid.New(),
			SubscriptionId: sub.Id,
			UserId:         sub.UserId,
			EventType:      entity.EventTypePriceChange,
			Description:    fmt.Sprintf("Price or billing change observed for %s", sub.ServiceName),
			Metadata:       meta,
			TriggeredBy:    string(obs.Method),
			CreatedAt:      now,
		}); err != nil {
			return nil, err
		}
	} else {
		if err := uow.SubscriptionEventRepository().Create(ctx, &entity.SubscriptionEvent{
			Id:             uuid.New(),
			SubscriptionId: sub.Id,
			UserId:         sub.UserId,
			EventType:      entity.EventTypeUpdated,
			Description:    fmt.Sprintf("Re-detected %s subscription", sub.ServiceName),
			Metadata: map[string]interface{}{
				"confidence": obs.Confidence,
				"method":     string(obs.Method),
			},
			TriggeredBy: string(obs.Method),
			CreatedAt:   now,
		}); err != nil {
			return nil, err
		}
	}

	if newWins {
		if obs.Price != nil {
			sub.Price = *obs.Price
		}
		if obs.Currency != "" {
			sub.Currency = obs.Currency
		}
		if obs.UnsubscribeLink != "" {
			sub.UnsubscribeLink = obs.UnsubscribeLink
		}
		if obs.ManageAccountLink != "" {
			sub.ManageAccountLink = obs.ManageAccountLink
		}
		if obs.BillingPeriod != nil {
			sub.BillingPeriod = *obs.BillingPeriod
		}
		sub.DetectionConfidence = obs.Confidence
		sub.DetectedBy = obs.Method
	}

	// Null or empty fields accept data from any observation.
	if sub.ServiceDomain == "" {
		sub.ServiceDomain = obs.ServiceDomain
	}
	if sub.ServiceLogoURL == "" {
		sub.ServiceLogoURL = obs.ServiceLogoURL
	}
	if sub.ServiceCategory == "" {
		sub.ServiceCategory = obs.ServiceCategory
	}
	if sub.Currency == "" {
		sub.Currency = obs.Currency
	}
	if sub.UnsubscribeLink == "" {
		sub.UnsubscribeLink = obs.UnsubscribeLink
	}
	if sub.ManageAccountLink == "" {
		sub.ManageAccountLink = obs.ManageAccountLink
	}
	if sub.Price == 0 && obs.Price != nil {
		sub.Price = *obs.Price
	}

	if obs.EvidenceId != "" {
		sub.SourceEmailIds = appendUnique(sub.SourceEmailIds, obs.EvidenceId)
	}
	sub.LastVerifiedDate = &now
	sub.UpdatedAt = now

	if err := uow.SubscriptionRepository().Update(ctx, sub); err != nil {
		return nil, err
	}

	if err := uow.ActivityLogRepository().Create(ctx, &entity.ActivityLogEntry{
		Id:                    uuid.New(),
		UserId:                sub.UserId,
		Type:                  entity.ActivitySubscriptionUpdated,
		Description:           fmt.Sprintf("Updated %s subscription", sub.ServiceName),
		RelatedSubscriptionId: &sub.Id,
		CreatedAt:             now,
	}); err != nil {
		return nil, err
	}

	return sub, nil
}

func (s *subscriptionService) recomputeAggregates(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID) error {
	summary, err := uow.SubscriptionRepository().SummarizeActive(ctx, userId)
	if err != nil {
		return err
	}
	return uow.UserRepository().UpdateAggregates(ctx, userId, summary.Count, summary.MonthlySpend)
}

func (s *subscriptionService) GetAll(ctx context.Context, userId uuid.UUID) ([]dto.SubscriptionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	subs, err := uow.SubscriptionRepository().FindAll(ctx,
		specification.ByUserID{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	result := make([]dto.SubscriptionResponse, 0, len(subs))
	for _, sub := range subs {
		result = append(result, subscriptionToResponse(sub))
	}
	return result, nil
}

func (s *subscriptionService) Summary(ctx context.Context, userId uuid.UUID) (*dto.SummaryResponse, error) {
	if cached := s.cache.Get(ctx, userId); cached != nil {
		return cached, nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	subs, err := uow.SubscriptionRepository().FindAll(ctx,
		specification.ByUserID{UserID: userId},
		specification.ByStatus{Status: string(entity.SubscriptionStatusActive)},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	summary := &dto.SummaryResponse{
		UserId:        userId,
		Subscriptions: make([]dto.SubscriptionResponse, 0, len(subs)),
	}
	for _, sub := range subs {
		summary.TotalSubscriptions++
		summary.EstimatedMonthlySpend += sub.MonthlySpend()
		summary.EstimatedAnnualSpend += sub.BillingPeriod.AnnualEquivalent(sub.Price)
		summary.Subscriptions = append(summary.Subscriptions, subscriptionToResponse(sub))
	}

	s.cache.Set(ctx, userId, summary)
	return summary, nil
}

func (s *subscriptionService) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.natsPub == nil {
		return
	}
	if err := s.natsPub.Publish(ctx, events.New(eventType, data)); err != nil {
		s.logger.Warn("subscription", "Failed to publish event", map[string]interface{}{
			"event": eventType,
			"error": err.Error(),
		})
	}
}

func subscriptionToResponse(sub *entity.Subscription) dto.SubscriptionResponse {
	return dto.SubscriptionResponse{
		Id:                  sub.Id,
		ServiceName:         sub.ServiceName,
		ServiceDomain:       sub.ServiceDomain,
		ServiceLogoURL:      sub.ServiceLogoURL,
		ServiceCategory:     sub.ServiceCategory,
		Price:               sub.Price,
		Currency:            sub.Currency,
		BillingPeriod:       string(sub.BillingPeriod),
		MonthlyEquivalent:   sub.MonthlySpend(),
		Status:              string(sub.Status),
		SubscriptionTier:    sub.SubscriptionTier,
		NextRenewalDate:     sub.NextRenewalDate,
		DetectionConfidence: sub.DetectionConfidence,
		DetectedBy:          string(sub.DetectedBy),
		FirstDetected:       sub.FirstDetectedDate,
		CancelledAt:         sub.CancelledAt,
	}
}

func appendUnique(list []string, item string) []string {
	for _, v := range list {
		if v == item {
			return list
		}
	}
	return append(list, item)
}

// SummaryCache keeps the per-user summary read model in Redis. Nil-safe:
// without a Redis client every lookup is a miss and queries hit SQL.
type SummaryCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger logger.ILogger
}

func NewSummaryCache(rdb *redis.Client, log logger.ILogger) *SummaryCache {
	return &SummaryCache{rdb: rdb, ttl: 5 * time.Minute, logger: log}
}

func summaryKey(userId uuid.UUID) string {
	return "subscout:summary:" + userId.String()
}

func (c *SummaryCache) Get(ctx context.Context, userId uuid.UUID) *dto.SummaryResponse {
	if c == nil || c.rdb == nil {
		return nil
	}
	raw, err := c.rdb.Get(ctx, summaryKey(userId)).Bytes()
	if err != nil {
		return nil
	}
	var summary dto.SummaryResponse
	if err := json.Unmarshal(raw, &summary); err != nil {
		return nil
	}
	return &summary
}

func (c *SummaryCache) Set(ctx context.Context, userId uuid.UUID, summary *dto.SummaryResponse) {
	if c == nil || c.rdb == nil {
		return
	}
	raw, err := json.Marshal(summary)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, summaryKey(userId), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("subscription", "Failed to cache summary", map[string]interface{}{"error": err.Error()})
	}
}

func (c *SummaryCache) Invalidate(ctx context.Context, userId uuid.UUID) {
	if c == nil || c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, summaryKey(userId)).Err(); err != nil {
		c.logger.Warn("subscription", "Failed to invalidate summary cache", map[string]interface{}{"error": err.Error()})
	}
}
