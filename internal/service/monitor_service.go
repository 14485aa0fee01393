package service

import (
	"context"
	"time"

	"subscout-be/internal/entity"
	"subscout-be/internal/pkg/logger"
	"subscout-be/internal/repository/specification"
	"subscout-be/internal/repository/unitofwork"
	"subscout-be/pkg/inbox"

	"github.com/google/uuid"
)

// ConfirmationSource reports whether a provider confirmation for the user
// and service was observed at or after the given time.
type ConfirmationSource interface {
	HasConfirmation(ctx context.Context, userId uuid.UUID, serviceName string, since time.Time) (*inbox.Signal, error)
}

type IMonitorService interface {
	// Sweep examines every action in awaiting_confirmation exactly once:
	// confirm when a signal arrived, time out when the window is past,
	// otherwise leave it for the next sweep.
	Sweep(ctx context.Context, now time.Time) error

	// Run sweeps on the given cadence until the context is cancelled.
	Run(ctx context.Context, interval time.Duration)
}

type monitorService struct {
	uowFactory  unitofwork.RepositoryFactory
	source      ConfirmationSource
	unsubscribe IUnsubscribeService
	logger      logger.ILogger
}

func NewMonitorService(
	uowFactory unitofwork.RepositoryFactory,
	source ConfirmationSource,
	unsubscribe IUnsubscribeService,
	log logger.ILogger,
) IMonitorService {
	return &monitorService{
		uowFactory:  uowFactory,
		source:      source,
		unsubscribe: unsubscribe,
		logger:      log,
	}
}

func (s *monitorService) Sweep(ctx context.Context, now time.Time) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	actions, err := uow.UnsubscribeActionRepository().FindAwaitingConfirmation(ctx)
	if err != nil {
		return err
	}

	for _, action := range actions {
		if err := s.examine(ctx, uow, action, now); err != nil {
			// One stuck action must not starve the rest of the sweep.
			s.logger.Error("monitor", "Failed to examine action", map[string]interface{}{
				"action_id": action.Id.String(),
				"error":     err.Error(),
			})
		}
	}

	return nil
}

func (s *monitorService) examine(ctx context.Context, uow unitofwork.UnitOfWork, action *entity.UnsubscribeAction, now time.Time) error {
	sub, err := uow.SubscriptionRepository().FindOne(ctx, specification.ByID{ID: action.SubscriptionId})
	if err != nil {
		return err
	}
	if sub == nil {
		return nil
	}

	signal, err := s.source.HasConfirmation(ctx, action.UserId, sub.ServiceName, action.InitiatedAt)
	if err != nil {
		return err
	}

	if signal != nil {
		return s.unsubscribe.Finalize(ctx, action.Id, FinalizeOutcome{
			Confirmed:  true,
			EmailId:    signal.EmailId,
			ObservedAt: signal.ObservedAt,
		})
	}

	if action.MonitoringUntil != nil && now.After(*action.MonitoringUntil) {
		return s.unsubscribe.Finalize(ctx, action.Id, FinalizeOutcome{Confirmed: false})
	}

	return nil
}

func (s *monitorService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("monitor", "Confirmation monitor started", map[string]interface{}{
		"interval": interval.String(),
	})

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("monitor", "Confirmation monitor stopped", nil)
			return
		case <-ticker.C:
			if err := s.Sweep(ctx, time.Now()); err != nil {
				s.logger.Error("monitor", "Sweep failed", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}
	}
}
