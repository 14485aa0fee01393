package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"subscout-be/internal/apperror"
	"subscout-be/internal/config"
	"subscout-be/internal/dto"
	"subscout-be/internal/entity"
	"subscout-be/internal/pkg/lock"
	"subscout-be/internal/pkg/logger"
	"subscout-be/internal/pkg/mailer"
	"subscout-be/internal/repository/specification"
	"subscout-be/internal/repository/unitofwork"
	"subscout-be/pkg/automation"
	"subscout-be/pkg/events"
	natsPkg "subscout-be/pkg/nats"

	"github.com/google/uuid"
)

// FinalizeOutcome is what the confirmation monitor observed for an action
// in awaiting_confirmation.
type FinalizeOutcome struct {
	Confirmed  bool
	EmailId    string
	ObservedAt time.Time
}

type IUnsubscribeService interface {
	Initiate(ctx context.Context, userId, subscriptionId uuid.UUID, strategy entity.UnsubscribeStrategy) (*dto.UnsubscribeActionResponse, error)
	// Execute runs one attempt. A recoverable provider failure returns a
	// TransientExecutionError after the retry has been scheduled; calling
	// again before the backoff deadline is an InvalidStateError.
	Execute(ctx context.Context, actionId uuid.UUID) (*dto.UnsubscribeActionResponse, error)
	Finalize(ctx context.Context, actionId uuid.UUID, outcome FinalizeOutcome) error
	Show(ctx context.Context, userId, actionId uuid.UUID) (*dto.UnsubscribeActionResponse, error)
}

type unsubscribeService struct {
	uowFactory unitofwork.RepositoryFactory
	capability automation.Capability
	mailer     mailer.IEmailService
	natsPub    *natsPkg.Publisher
	cache      *SummaryCache
	locks      *lock.Keyed
	cfg        config.UnsubscribeConfig
	logger     logger.ILogger
}

func NewUnsubscribeService(
	uowFactory unitofwork.RepositoryFactory,
	capability automation.Capability,
	emailService mailer.IEmailService,
	natsPub *natsPkg.Publisher,
	cache *SummaryCache,
	cfg config.UnsubscribeConfig,
	log logger.ILogger,
) IUnsubscribeService {
	return &unsubscribeService{
		uowFactory: uowFactory,
		capability: capability,
		mailer:     emailService,
		natsPub:    natsPub,
		cache:      cache,
		locks:      lock.NewKeyed(),
		cfg:        cfg,
		logger:     log,
	}
}

func (s *unsubscribeService) Initiate(ctx context.Context, userId, subscriptionId uuid.UUID, strategy entity.UnsubscribeStrategy) (*dto.UnsubscribeActionResponse, error) {
	if !strategy.Valid() {
		return nil, apperror.Invalid("strategy", "unknown strategy %q", strategy)
	}

	release := s.locks.Acquire("subscription:" + subscriptionId.String())
	defer release()

	uow := s.uowFactory.NewUnitOfWork(ctx)

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	sub, err := uow.SubscriptionRepository().FindOne(ctx,
		specification.ByID{ID: subscriptionId},
		specification.ByUserID{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, apperror.NotFound("subscription", subscriptionId.String())
	}

	open, err := uow.UnsubscribeActionRepository().FindOpenBySubscription(ctx, subscriptionId)
	if err != nil {
		return nil, err
	}
	if open != nil {
		return nil, apperror.Conflict("unsubscribe_action", "attempt %s is still open", open.Id)
	}

	now := time.Now()
	ok, err := uow.SubscriptionRepository().Transition(ctx, subscriptionId,
		[]entity.SubscriptionStatus{entity.SubscriptionStatusActive},
		entity.SubscriptionStatusPendingCancellation, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperror.InvalidState("subscription", "initiate cancellation", string(sub.Status))
	}

	action := &entity.UnsubscribeAction{
		Id:             uuid.New(),
		SubscriptionId: subscriptionId,
		UserId:         userId,
		ActionType:     strategy,
		Status:         entity.ActionStatusPending,
		UnsubscribeURL: sub.UnsubscribeLink,
		HTTPMethod:     "POST",
		MaxRetries:     s.cfg.MaxRetries,
		InitiatedAt:    now,
	}
	if strategy.Manual() {
		action.ManualInstructions = manualInstructions(strategy, sub)
	}

	if err := uow.UnsubscribeActionRepository().Create(ctx, action); err != nil {
		return nil, err
	}

	if err := uow.SubscriptionEventRepository().Create(ctx, &entity.SubscriptionEvent{
		Id:             uuid.New(),
		SubscriptionId: subscriptionId,
		UserId:         userId,
		EventType:      entity.EventTypeCancellationInitiated,
		Description:    fmt.Sprintf("Cancellation of %s initiated (%s)", sub.ServiceName, strategy),
		TriggeredBy:    "user",
		CreatedAt:      now,
	}); err != nil {
		return nil, err
	}

	if err := uow.ActivityLogRepository().Create(ctx, &entity.ActivityLogEntry{
		Id:                    uuid.New(),
		UserId:                userId,
		Type:                  entity.ActivityCancellationInitiated,
		Description:           fmt.Sprintf("Started cancelling %s", sub.ServiceName),
		RelatedSubscriptionId: &subscriptionId,
		RelatedActionId:       &action.Id,
		CreatedAt:             now,
	}); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, userId)

	return actionToResponse(action), nil
}

func (s *unsubscribeService) Execute(ctx context.Context, actionId uuid.UUID) (*dto.UnsubscribeActionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	action, err := uow.UnsubscribeActionRepository().FindOne(ctx, specification.ByID{ID: actionId})
	if err != nil {
		return nil, err
	}
	if action == nil {
		return nil, apperror.NotFound("unsubscribe_action", actionId.String())
	}

	switch action.Status {
	case entity.ActionStatusPending, entity.ActionStatusInProgress:
	default:
		return nil, apperror.InvalidState("unsubscribe_action", "execute", string(action.Status))
	}
	if action.NextRetryAt != nil && time.Now().Before(*action.NextRetryAt) {
		return nil, apperror.InvalidState("unsubscribe_action", "execute",
			fmt.Sprintf("in_progress, retry scheduled for %s", action.NextRetryAt.Format(time.RFC3339)))
	}

	if action.ActionType.Manual() {
		return s.executeManual(ctx, action)
	}
	return s.executeAutomated(ctx, action)
}

// executeManual moves a manual-strategy action straight into monitoring:
// the user performs the cancellation themselves and we watch for the
// provider's confirmation.
func (s *unsubscribeService) executeManual(ctx context.Context, action *entity.UnsubscribeAction) (*dto.UnsubscribeActionResponse, error) {
	release := s.locks.Acquire("action:" + action.Id.String())
	defer release()

	uow := s.uowFactory.NewUnitOfWork(ctx)

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	now := time.Now()
	monitoringUntil := now.Add(s.cfg.MonitoringWindow)

	action.Status = entity.ActionStatusAwaitingConfirmation
	action.MonitoringUntil = &monitoringUntil
	action.RequiresManualAction = true

	ok, err := uow.UnsubscribeActionRepository().UpdateIfStatus(ctx, action,
		[]entity.UnsubscribeStatus{entity.ActionStatusPending})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperror.InvalidState("unsubscribe_action", "execute", "concurrently modified")
	}

	if err := s.recordSubmission(ctx, uow, action, now, "Manual cancellation handed to user"); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.notifyManualAction(ctx, action)
	s.publish(ctx, events.TypeCancellationSubmitted, action)

	return actionToResponse(action), nil
}

func (s *unsubscribeService) executeAutomated(ctx context.Context, action *entity.UnsubscribeAction) (*dto.UnsubscribeActionResponse, error) {
	if action.UnsubscribeURL == "" {
		return s.failAction(ctx, action, "no unsubscribe link available")
	}

	// Claim the attempt before doing network work. The claim only
	// succeeds from pending or from an elapsed retry deadline, so a
	// concurrent Execute can never fire a duplicate request.
	uow := s.uowFactory.NewUnitOfWork(ctx)
	ok, err := uow.UnsubscribeActionRepository().ClaimForExecution(ctx, action.Id, time.Now())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperror.InvalidState("unsubscribe_action", "execute", "claimed by a concurrent worker")
	}
	action.Status = entity.ActionStatusInProgress
	action.NextRetryAt = nil

	// The capability call happens outside every lock and transaction; only
	// its outcome is applied under the lock.
	invokeCtx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	result, err := s.capability.Invoke(invokeCtx, automation.Request{
		URL:      action.UnsubscribeURL,
		Method:   action.HTTPMethod,
		FormData: action.FormData,
	})
	cancel()
	if err != nil {
		return nil, err
	}

	if result.StatusCode >= 200 && result.StatusCode < 300 {
		return s.submitAction(ctx, action, result)
	}
	if result.Retryable {
		return s.scheduleRetry(ctx, action, result)
	}
	return s.failActionWithResult(ctx, action, result,
		fmt.Sprintf("provider rejected the request with status %d", result.StatusCode))
}

func (s *unsubscribeService) submitAction(ctx context.Context, action *entity.UnsubscribeAction, result *automation.Result) (*dto.UnsubscribeActionResponse, error) {
	release := s.locks.Acquire("action:" + action.Id.String())
	defer release()

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	now := time.Now()
	monitoringUntil := now.Add(s.cfg.MonitoringWindow)

	action.Status = entity.ActionStatusAwaitingConfirmation
	action.HTTPStatusCode = &result.StatusCode
	action.ResponseBodySnippet = result.BodySnippet
	action.MonitoringUntil = &monitoringUntil
	action.NextRetryAt = nil
	action.ErrorMessage = ""

	ok, err := uow.UnsubscribeActionRepository().UpdateIfStatus(ctx, action,
		[]entity.UnsubscribeStatus{entity.ActionStatusInProgress})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperror.InvalidState("unsubscribe_action", "submit", "concurrently modified")
	}

	if err := s.recordSubmission(ctx, uow, action, now, "Unsubscribe request accepted by provider"); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.publish(ctx, events.TypeCancellationSubmitted, action)

	return actionToResponse(action), nil
}

func (s *unsubscribeService) scheduleRetry(ctx context.Context, action *entity.UnsubscribeAction, result *automation.Result) (*dto.UnsubscribeActionResponse, error) {
	nextRetryCount := action.RetryCount + 1
	if nextRetryCount >= action.MaxRetries {
		action.RetryCount = nextRetryCount
		return s.failActionWithResult(ctx, action, result,
			fmt.Sprintf("gave up after %d attempts", nextRetryCount))
	}

	release := s.locks.Acquire("action:" + action.Id.String())
	defer release()

	uow := s.uowFactory.NewUnitOfWork(ctx)

	now := time.Now()
	retryAt := now.Add(s.backoff(nextRetryCount))

	action.Status = entity.ActionStatusInProgress
	action.RetryCount = nextRetryCount
	action.NextRetryAt = &retryAt
	if result.StatusCode != 0 {
		action.HTTPStatusCode = &result.StatusCode
	}
	action.ResponseBodySnippet = result.BodySnippet
	action.ErrorMessage = fmt.Sprintf("attempt %d failed transiently", nextRetryCount)

	ok, err := uow.UnsubscribeActionRepository().UpdateIfStatus(ctx, action,
		[]entity.UnsubscribeStatus{entity.ActionStatusInProgress})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperror.InvalidState("unsubscribe_action", "schedule retry", "concurrently modified")
	}

	s.logger.Info("unsubscribe", "Retry scheduled", map[string]interface{}{
		"action_id":   action.Id.String(),
		"retry_count": action.RetryCount,
		"next_retry":  retryAt,
	})

	return nil, &apperror.TransientExecutionError{StatusCode: result.StatusCode}
}

func (s *unsubscribeService) failAction(ctx context.Context, action *entity.UnsubscribeAction, reason string) (*dto.UnsubscribeActionResponse, error) {
	return s.failActionWithResult(ctx, action, nil, reason)
}

// failActionWithResult ends the attempt: the action fails, the user is
// asked to act manually and the subscription returns to active so it is
// never stuck in pending_cancellation.
func (s *unsubscribeService) failActionWithResult(ctx context.Context, action *entity.UnsubscribeAction, result *automation.Result, reason string) (*dto.UnsubscribeActionResponse, error) {
	release := s.locks.Acquire("action:" + action.Id.String())
	defer release()

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	now := time.Now()

	action.Status = entity.ActionStatusFailed
	action.RequiresManualAction = true
	action.ErrorMessage = reason
	action.NextRetryAt = nil
	action.CompletedAt = &now
	if result != nil {
		if result.StatusCode != 0 {
			action.HTTPStatusCode = &result.StatusCode
		}
		action.ResponseBodySnippet = result.BodySnippet
	}
	if action.ManualInstructions == "" {
		action.ManualInstructions = "Automated cancellation failed. Use the provider's account page to cancel directly."
	}

	ok, err := uow.UnsubscribeActionRepository().UpdateIfStatus(ctx, action,
		[]entity.UnsubscribeStatus{entity.ActionStatusPending, entity.ActionStatusInProgress, entity.ActionStatusAwaitingConfirmation})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperror.InvalidState("unsubscribe_action", "fail", "concurrently modified")
	}

	if _, err := uow.SubscriptionRepository().Transition(ctx, action.SubscriptionId,
		[]entity.SubscriptionStatus{entity.SubscriptionStatusPendingCancellation},
		entity.SubscriptionStatusActive, now); err != nil {
		return nil, err
	}

	if err := uow.SubscriptionEventRepository().Create(ctx, &entity.SubscriptionEvent{
		Id:             uuid.New(),
		SubscriptionId: action.SubscriptionId,
		UserId:         action.UserId,
		EventType:      entity.EventTypeCancellationFailed,
		Description:    "Cancellation attempt failed: " + reason,
		TriggeredBy:    "system",
		CreatedAt:      now,
	}); err != nil {
		return nil, err
	}

	if err := uow.ActivityLogRepository().Create(ctx, &entity.ActivityLogEntry{
		Id:                    uuid.New(),
		UserId:                action.UserId,
		Type:                  entity.ActivityCancellationFailed,
		Description:           "Cancellation attempt failed, manual action needed",
		RelatedSubscriptionId: &action.SubscriptionId,
		RelatedActionId:       &action.Id,
		CreatedAt:             now,
	}); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, action.UserId)
	s.notifyManualAction(ctx, action)
	s.publish(ctx, events.TypeCancellationFailed, action)

	return actionToResponse(action), nil
}

func (s *unsubscribeService) Finalize(ctx context.Context, actionId uuid.UUID, outcome FinalizeOutcome) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	action, err := uow.UnsubscribeActionRepository().FindOne(ctx, specification.ByID{ID: actionId})
	if err != nil {
		return err
	}
	if action == nil {
		return apperror.NotFound("unsubscribe_action", actionId.String())
	}
	if action.Status != entity.ActionStatusAwaitingConfirmation {
		// Already finalized by a concurrent sweep; nothing to do.
		return nil
	}

	if outcome.Confirmed {
		return s.finalizeConfirmed(ctx, action, outcome)
	}

	_, err = s.failActionWithResult(ctx, action, nil, "no confirmation arrived within the monitoring window")
	if errors.Is(err, apperror.ErrInvalidState) {
		// Lost the race against another sweep; the action is finalized.
		return nil
	}
	return err
}

func (s *unsubscribeService) finalizeConfirmed(ctx context.Context, action *entity.UnsubscribeAction, outcome FinalizeOutcome) error {
	release := s.locks.Acquire("action:" + action.Id.String())
	defer release()

	uow := s.uowFactory.NewUnitOfWork(ctx)

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	now := time.Now()
	observedAt := outcome.ObservedAt
	if observedAt.IsZero() {
		observedAt = now
	}

	action.Status = entity.ActionStatusConfirmed
	action.ConfirmationEmailId = &outcome.EmailId
	action.ConfirmationDetectedAt = &observedAt
	action.CompletedAt = &now

	ok, err := uow.UnsubscribeActionRepository().UpdateIfStatus(ctx, action,
		[]entity.UnsubscribeStatus{entity.ActionStatusAwaitingConfirmation})
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	if _, err := uow.SubscriptionRepository().Transition(ctx, action.SubscriptionId,
		[]entity.SubscriptionStatus{entity.SubscriptionStatusPendingCancellation},
		entity.SubscriptionStatusCancelled, now); err != nil {
		return err
	}

	if err := uow.SubscriptionEventRepository().Create(ctx, &entity.SubscriptionEvent{
		Id:             uuid.New(),
		SubscriptionId: action.SubscriptionId,
		UserId:         action.UserId,
		EventType:      entity.EventTypeCancellationConfirmed,
		Description:    "Provider confirmed the cancellation",
		Metadata: map[string]interface{}{
			"confirmation_email_id": outcome.EmailId,
			"observed_at":           observedAt.Format(time.RFC3339),
		},
		TriggeredBy: "system",
		CreatedAt:   now,
	}); err != nil {
		return err
	}

	if err := uow.ActivityLogRepository().Create(ctx, &entity.ActivityLogEntry{
		Id:                    uuid.New(),
		UserId:                action.UserId,
		Type:                  entity.ActivityCancellationConfirmed,
		Description:           "Cancellation confirmed by the provider",
		RelatedSubscriptionId: &action.SubscriptionId,
		RelatedActionId:       &action.Id,
		CreatedAt:             now,
	}); err != nil {
		return err
	}

	if err := s.recomputeUserAggregates(ctx, uow, action.UserId); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	s.cache.Invalidate(ctx, action.UserId)
	s.publish(ctx, events.TypeCancellationConfirmed, action)
	s.notifyConfirmed(ctx, action)

	return nil
}

func (s *unsubscribeService) Show(ctx context.Context, userId, actionId uuid.UUID) (*dto.UnsubscribeActionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	action, err := uow.UnsubscribeActionRepository().FindOne(ctx,
		specification.ByID{ID: actionId},
		specification.ByUserID{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if action == nil {
		return nil, apperror.NotFound("unsubscribe_action", actionId.String())
	}
	return actionToResponse(action), nil
}

func (s *unsubscribeService) recordSubmission(ctx context.Context, uow unitofwork.UnitOfWork, action *entity.UnsubscribeAction, now time.Time, description string) error {
	if err := uow.SubscriptionEventRepository().Create(ctx, &entity.SubscriptionEvent{
		Id:             uuid.New(),
		SubscriptionId: action.SubscriptionId,
		UserId:         action.UserId,
		EventType:      entity.EventTypeCancellationSubmitted,
		Description:    description,
		TriggeredBy:    "system",
		CreatedAt:      now,
	}); err != nil {
		return err
	}

	return uow.ActivityLogRepository().Create(ctx, &entity.ActivityLogEntry{
		Id:                    uuid.New(),
		UserId:                action.UserId,
		Type:                  entity.ActivityCancellationSubmitted,
		Description:           description,
		RelatedSubscriptionId: &action.SubscriptionId,
		RelatedActionId:       &action.Id,
		CreatedAt:             now,
	})
}

func (s *unsubscribeService) recomputeUserAggregates(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID) error {
	summary, err := uow.SubscriptionRepository().SummarizeActive(ctx, userId)
	if err != nil {
		return err
	}
	return uow.UserRepository().UpdateAggregates(ctx, userId, summary.Count, summary.MonthlySpend)
}

// backoff doubles per retry from the configured base up to the cap.
func (s *unsubscribeService) backoff(retry int) time.Duration {
	d := s.cfg.RetryBackoffBase
	for i := 1; i < retry; i++ {
		d *= 2
		if d >= s.cfg.RetryBackoffCap {
			return s.cfg.RetryBackoffCap
		}
	}
	if d > s.cfg.RetryBackoffCap {
		return s.cfg.RetryBackoffCap
	}
	return d
}

func (s *unsubscribeService) notifyManualAction(ctx context.Context, action *entity.UnsubscribeAction) {
	if s.mailer == nil {
		return
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: action.UserId})
	if err != nil || user == nil {
		return
	}
	sub, err := uow.SubscriptionRepository().FindOne(ctx, specification.ByID{ID: action.SubscriptionId})
	if err != nil || sub == nil {
		return
	}
	if err := s.mailer.SendManualActionRequired(user.Email, sub.ServiceName, action.ManualInstructions); err != nil {
		s.logger.Warn("unsubscribe", "Failed to send manual action mail", map[string]interface{}{
			"action_id": action.Id.String(),
			"error":     err.Error(),
		})
	}
}

func (s *unsubscribeService) notifyConfirmed(ctx context.Context, action *entity.UnsubscribeAction) {
	if s.mailer == nil {
		return
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: action.UserId})
	if err != nil || user == nil {
		return
	}
	sub, err := uow.SubscriptionRepository().FindOne(ctx, specification.ByID{ID: action.SubscriptionId})
	if err != nil || sub == nil {
		return
	}
	if err := s.mailer.SendCancellationConfirmed(user.Email, sub.ServiceName); err != nil {
		s.logger.Warn("unsubscribe", "Failed to send confirmation mail", map[string]interface{}{
			"action_id": action.Id.String(),
			"error":     err.Error(),
		})
	}
}

func (s *unsubscribeService) publish(ctx context.Context, eventType string, action *entity.UnsubscribeAction) {
	if s.natsPub == nil {
		return
	}
	if err := s.natsPub.Publish(ctx, events.New(eventType, map[string]interface{}{
		"action_id":       action.Id.String(),
		"subscription_id": action.SubscriptionId.String(),
		"user_id":         action.UserId.String(),
	})); err != nil {
		s.logger.Warn("unsubscribe", "Failed to publish event", map[string]interface{}{
			"event": eventType,
			"error": err.Error(),
		})
	}
}

func manualInstructions(strategy entity.UnsubscribeStrategy, sub *entity.Subscription) string {
	switch strategy {
	case entity.StrategyManualLink:
		link := sub.UnsubscribeLink
		if link == "" {
			link = sub.ManageAccountLink
		}
		return fmt.Sprintf("Open %s and follow the cancellation flow for %s.", link, sub.ServiceName)
	case entity.StrategyManualPhone:
		return fmt.Sprintf("Call %s customer support and ask them to cancel your subscription.", sub.ServiceName)
	case entity.StrategyEmailRequired:
		return fmt.Sprintf("Send a cancellation request to %s support from your registered address.", sub.ServiceName)
	}
	return ""
}

func actionToResponse(action *entity.UnsubscribeAction) *dto.UnsubscribeActionResponse {
	return &dto.UnsubscribeActionResponse{
		Id:                   action.Id,
		SubscriptionId:       action.SubscriptionId,
		ActionType:           string(action.ActionType),
		Status:               string(action.Status),
		RetryCount:           action.RetryCount,
		MaxRetries:           action.MaxRetries,
		NextRetryAt:          action.NextRetryAt,
		HTTPStatusCode:       action.HTTPStatusCode,
		RequiresManualAction: action.RequiresManualAction,
		ManualInstructions:   action.ManualInstructions,
		ErrorMessage:         action.ErrorMessage,
		InitiatedAt:          action.InitiatedAt,
		CompletedAt:          action.CompletedAt,
		MonitoringUntil:      action.MonitoringUntil,
	}
}
