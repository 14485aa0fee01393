package service

import (
	"context"
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
)

type ISessionService interface {
	Start(ctx context.Context, userId uuid.UUID, req *dto.StartScanRequest) (*dto.SessionResponse, error)
	RecordProgress(ctx context.Context, userId, sessionId uuid.UUID, req *dto.ScanProgressRequest) (*dto.SessionResponse, error)
	Complete(ctx context.Context, userId, sessionId uuid.UUID) (*dto.SessionResponse, error)
	Fail(ctx context.Context, userId, sessionId uuid.UUID, reason string) (*dto.SessionResponse, error)
	Cancel(ctx context.Context, userId, sessionId uuid.UUID) (*dto.SessionResponse, error)
	Show(ctx context.Context, userId, sessionId uuid.UUID) (*dto.SessionResponse, error)
}

type sessionService struct {
	uowFactory unitofwork.RepositoryFactory
	natsPub    *natsPkg.Publisher
	logger     logger.ILogger
}

func NewSessionService(
	uowFactory unitofwork.RepositoryFactory,
	natsPub *natsPkg.Publisher,
	log logger.ILogger,
) ISessionService {
	return &sessionService{
		uowFactory: uowFactory,
		natsPub:    natsPub,
		logger:     log,
	}
}

func (s *sessionService) Start(ctx context.Context, userId uuid.UUID, req *dto.StartScanRequest) (*dto.SessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil || user.Deleted() {
		return nil, apperror.NotFound("user", userId.String())
	}

	now := time.Now()
	session := entity.ImportSession{
		Id:     uuid.New(),
		UserId: userId,
		Status: entity.SessionStatusRunning,
		ScanParams: entity.ScanParams{
			Query:      req.Query,
			DateFrom:   req.DateFrom,
			DateTo:     req.DateTo,
			MaxResults: req.MaxResults,
		},
		StartedAt: now,
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	// The storage layer rejects a second running session for the user, so
	// concurrent starts cannot both win.
	if err := uow.SessionRepository().CreateIfNoneRunning(ctx, &session); err != nil {
		return nil, err
	}

	if err := uow.UserRepository().TouchLastScan(ctx, userId, now); err != nil {
		return nil, err
	}

	if err := uow.ActivityLogRepository().Create(ctx, &entity.ActivityLogEntry{
		Id:               uuid.New(),
		UserId:           userId,
		Type:             entity.ActivityScanStarted,
		Description:      "Inbox scan started",
		RelatedSessionId: &session.Id,
		CreatedAt:        now,
	}); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.publish(ctx, events.TypeScanStarted, map[string]interface{}{
		"session_id": session.Id.String(),
		"user_id":    userId.String(),
	})

	return sessionToResponse(&session), nil
}

func (s *sessionService) RecordProgress(ctx context.Context, userId, sessionId uuid.UUID, req *dto.ScanProgressRequest) (*dto.SessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if req.FoundDelta < 0 || req.ProcessedDelta < 0 || req.SubscriptionsDelta < 0 {
		return nil, apperror.Invalid("progress", "deltas must be non-negative")
	}

	ok, err := uow.SessionRepository().IncrementProgress(ctx, sessionId, req.FoundDelta, req.ProcessedDelta, req.SubscriptionsDelta)
	if err != nil {
		return nil, err
	}

	session, err := s.ownedSession(ctx, uow, userId, sessionId)
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, apperror.InvalidState("session", "record progress", string(session.Status))
	}

	return sessionToResponse(session), nil
}

func (s *sessionService) Complete(ctx context.Context, userId, sessionId uuid.UUID) (*dto.SessionResponse, error) {
	return s.finish(ctx, userId, sessionId, entity.SessionStatusCompleted, "")
}

func (s *sessionService) Fail(ctx context.Context, userId, sessionId uuid.UUID, reason string) (*dto.SessionResponse, error) {
	if reason == "" {
		return nil, apperror.Invalid("reason", "must not be empty")
	}
	return s.finish(ctx, userId, sessionId, entity.SessionStatusFailed, reason)
}

func (s *sessionService) Cancel(ctx context.Context, userId, sessionId uuid.UUID) (*dto.SessionResponse, error) {
	return s.finish(ctx, userId, sessionId, entity.SessionStatusCancelled, "")
}

// finish performs the one-way transition out of running. Re-entering the
// same terminal state is a no-op; crossing between terminal states is an
// ordering bug and surfaces as InvalidStateError.
func (s *sessionService) finish(ctx context.Context, userId, sessionId uuid.UUID, target entity.SessionStatus, errorMessage string) (*dto.SessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	now := time.Now()
	ok, err := uow.SessionRepository().Transition(ctx, sessionId, entity.SessionStatusRunning, target, &now, errorMessage)
	if err != nil {
		return nil, err
	}

	session, err := s.ownedSession(ctx, uow, userId, sessionId)
	if err != nil {
		return nil, err
	}

	if !ok {
		if session.Status == target {
			// Idempotent re-entry.
			return sessionToResponse(session), nil
		}
		return nil, apperror.InvalidState("session", fmt.Sprintf("transition to %s", target), string(session.Status))
	}

	activityType, description, eventType := finishFacts(target, session)
	if err := uow.ActivityLogRepository().Create(ctx, &entity.ActivityLogEntry{
		Id:               uuid.New(),
		UserId:           userId,
		Type:             activityType,
		Description:      description,
		RelatedSessionId: &sessionId,
		CreatedAt:        now,
	}); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	if eventType != "" {
		s.publish(ctx, eventType, map[string]interface{}{
			"session_id":          sessionId.String(),
			"user_id":             userId.String(),
			"subscriptions_found": session.SubscriptionsFound,
		})
	}

	return sessionToResponse(session), nil
}

func (s *sessionService) Show(ctx context.Context, userId, sessionId uuid.UUID) (*dto.SessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := s.ownedSession(ctx, uow, userId, sessionId)
	if err != nil {
		return nil, err
	}
	return sessionToResponse(session), nil
}

func (s *sessionService) ownedSession(ctx context.Context, uow unitofwork.UnitOfWork, userId, sessionId uuid.UUID) (*entity.ImportSession, error) {
	session, err := uow.SessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.ByUserID{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperror.NotFound("session", sessionId.String())
	}
	return session, nil
}

func (s *sessionService) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.natsPub == nil {
		return
	}
	if err := s.natsPub.Publish(ctx, events.New(eventType, data)); err != nil {
		s.logger.Warn("session", "Failed to publish event", map[string]interface{}{
			"event": eventType,
			"error": err.Error(),
		})
	}
}

func finishFacts(target entity.SessionStatus, session *entity.ImportSession) (activityType, description, eventType string) {
	switch target {
	case entity.SessionStatusCompleted:
		return entity.ActivityScanCompleted,
			fmt.Sprintf("Inbox scan completed: %d subscriptions found", session.SubscriptionsFound),
			events.TypeScanCompleted
	case entity.SessionStatusFailed:
		return entity.ActivityScanFailed, "Inbox scan failed: " + session.ErrorMessage, events.TypeScanFailed
	case entity.SessionStatusCancelled:
		return entity.ActivityScanCancelled, "Inbox scan cancelled", ""
	}
	return "", "", ""
}

func sessionToResponse(session *entity.ImportSession) *dto.SessionResponse {
	return &dto.SessionResponse{
		Id:                 session.Id,
		Status:             string(session.Status),
		TotalEmailsFound:   session.TotalEmailsFound,
		EmailsProcessed:    session.EmailsProcessed,
		SubscriptionsFound: session.SubscriptionsFound,
		ErrorMessage:       session.ErrorMessage,
		StartedAt:          session.StartedAt,
		CompletedAt:        session.CompletedAt,
	}
}
