package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"subscout-be/internal/apperror"
	"subscout-be/internal/dto"
	"subscout-be/internal/entity"
	"subscout-be/internal/pkg/logger"
	"subscout-be/internal/pkg/serverutils"
	"subscout-be/internal/repository/specification"
	"subscout-be/internal/repository/unitofwork"

	"github.com/patrickmn/go-cache"
)

const catalogCacheKey = "catalog:all"

type IDetectionService interface {
	// Process validates one classified-email fact, normalizes its service
	// hint against the catalog and folds it into the registry.
	Process(ctx context.Context, fact *dto.ClassifiedEmailFact) (*dto.DetectionResult, error)
}

type detectionService struct {
	uowFactory          unitofwork.RepositoryFactory
	subscriptionService ISubscriptionService
	catalogCache        *cache.Cache
	logger              logger.ILogger
}

func NewDetectionService(
	uowFactory unitofwork.RepositoryFactory,
	subscriptionService ISubscriptionService,
	log logger.ILogger,
) IDetectionService {
	return &detectionService{
		uowFactory:          uowFactory,
		subscriptionService: subscriptionService,
		catalogCache:        cache.New(5*time.Minute, 10*time.Minute),
		logger:              log,
	}
}

func (s *detectionService) Process(ctx context.Context, fact *dto.ClassifiedEmailFact) (*dto.DetectionResult, error) {
	if err := serverutils.ValidateRequest(fact); err != nil {
		return nil, err
	}
	if strings.TrimSpace(fact.ServiceHint) == "" {
		return nil, apperror.Invalid("service_hint", "must not be blank")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.SessionRepository().FindOne(ctx,
		specification.ByID{ID: fact.SessionId},
		specification.ByUserID{UserID: fact.UserId},
	)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperror.NotFound("session", fact.SessionId.String())
	}
	if session.Status != entity.SessionStatusRunning {
		return nil, apperror.InvalidState("session", "ingest detection", string(session.Status))
	}

	obs := &Observation{
		UserId:            fact.UserId,
		Price:             fact.Price,
		Currency:          fact.Currency,
		EvidenceId:        fact.RawEmailRef,
		Confidence:        fact.Confidence,
		Method:            entity.DetectionMethod(fact.Method),
		UnsubscribeLink:   fact.UnsubscribeLink,
		ManageAccountLink: fact.ManageAccountLink,
		ObservedAt:        time.Now(),
	}
	if fact.BillingPeriod != nil {
		bp := entity.BillingPeriod(*fact.BillingPeriod)
		obs.BillingPeriod = &bp
	}

	matched, err := s.normalizeHint(ctx, uow, fact.ServiceHint)
	normalized := false
	switch {
	case err == nil && matched != nil:
		obs.ServiceName = matched.ServiceName
		obs.ServiceDomain = matched.ServiceDomain
		obs.ServiceLogoURL = matched.LogoURL
		obs.ServiceCategory = matched.Category
		normalized = true
	case errors.Is(err, apperror.ErrAmbiguous):
		// Two catalog entries matched with equal weight; guessing would
		// attach evidence to the wrong service. Keep the raw hint.
		s.logger.Warn("detection", "Ambiguous service hint, keeping raw", map[string]interface{}{
			"hint": fact.ServiceHint,
		})
		obs.ServiceName = strings.TrimSpace(fact.ServiceHint)
	case err != nil:
		return nil, err
	default:
		obs.ServiceName = strings.TrimSpace(fact.ServiceHint)
	}

	sub, created, err := s.subscriptionService.Merge(ctx, obs)
	if err != nil {
		return nil, err
	}

	// Session counters track ingest progress; monotonic, so a separate
	// guarded update is enough.
	subsDelta := 0
	if created {
		subsDelta = 1
	}
	if _, err := uow.SessionRepository().IncrementProgress(ctx, session.Id, 0, 1, subsDelta); err != nil {
		s.logger.Warn("detection", "Failed to bump session counters", map[string]interface{}{
			"session_id": session.Id.String(),
			"error":      err.Error(),
		})
	}

	if normalized {
		if err := uow.ServiceCatalogRepository().RecordDetection(ctx, matched.Id, fact.Price); err != nil {
			s.logger.Warn("detection", "Failed to bump catalog stats", map[string]interface{}{
				"service": matched.ServiceName,
				"error":   err.Error(),
			})
		}
	}

	return &dto.DetectionResult{
		ServiceName:    obs.ServiceName,
		Normalized:     normalized,
		SubscriptionId: sub.Id,
		Created:        created,
	}, nil
}

// normalizeHint resolves a raw hint to a catalog entry. Domain matches
// weigh more than keyword matches; a single best score wins, an exact tie
// between different entries is ambiguous, no match returns nil.
func (s *detectionService) normalizeHint(ctx context.Context, uow unitofwork.UnitOfWork, hint string) (*entity.CatalogService, error) {
	catalog, err := s.loadCatalog(ctx, uow)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(strings.TrimSpace(hint))

	var (
		best      *entity.CatalogService
		bestScore int
		tied      []string
	)
	for _, svc := range catalog {
		score := 0
		for _, domain := range svc.EmailDomains {
			if domain != "" && strings.Contains(needle, strings.ToLower(domain)) {
				score += 2
			}
		}
		for _, kw := range svc.Keywords {
			if kw != "" && strings.Contains(needle, strings.ToLower(kw)) {
				score++
			}
		}
		if strings.Contains(needle, strings.ToLower(svc.ServiceName)) {
			score += 2
		}

		if score == 0 {
			continue
		}
		if score > bestScore {
			best = svc
			bestScore = score
			tied = tied[:0]
		} else if score == bestScore {
			tied = append(tied, svc.ServiceName)
		}
	}

	if best == nil {
		return nil, nil
	}
	if len(tied) > 0 {
		return nil, &apperror.AmbiguousServiceError{
			Hint:       hint,
			Candidates: append([]string{best.ServiceName}, tied...),
		}
	}
	return best, nil
}

func (s *detectionService) loadCatalog(ctx context.Context, uow unitofwork.UnitOfWork) ([]*entity.CatalogService, error) {
	if cached, found := s.catalogCache.Get(catalogCacheKey); found {
		return cached.([]*entity.CatalogService), nil
	}

	catalog, err := uow.ServiceCatalogRepository().FindAll(ctx)
	if err != nil {
		return nil, err
	}

	s.catalogCache.Set(catalogCacheKey, catalog, cache.DefaultExpiration)
	return catalog, nil
}
