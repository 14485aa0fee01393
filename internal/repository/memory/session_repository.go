package memory

import (
	"context"
	"time"

	"subscout-be/internal/apperror"
	"subscout-be/internal/entity"
	"subscout-be/internal/repository/specification"

	"github.com/google/uuid"
)

type sessionRepository struct {
	store *Store
}

func (r *sessionRepository) CreateIfNoneRunning(ctx context.Context, session *entity.ImportSession) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, s := range r.store.sessions {
		if s.UserId == session.UserId && s.Status == entity.SessionStatusRunning {
			return apperror.Conflict("import_session", "user %s already has a running scan", session.UserId)
		}
	}
	r.store.sessions[session.Id] = cloneSession(session)
	return nil
}

func (r *sessionRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ImportSession, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, s := range r.store.sessions {
		if matches(r.toRow(s), specs) {
			return cloneSession(s), nil
		}
	}
	return nil, nil
}

func (r *sessionRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ImportSession, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var rows []row
	for _, s := range r.store.sessions {
		if rw := r.toRow(s); matches(rw, specs) {
			rows = append(rows, rw)
		}
	}
	rows = arrange(rows, specs)

	var out []*entity.ImportSession
	for _, rw := range rows {
		out = append(out, cloneSession(r.store.sessions[rw.id]))
	}
	return out, nil
}

func (r *sessionRepository) IncrementProgress(ctx context.Context, id uuid.UUID, foundDelta, processedDelta, subsDelta int) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	s, ok := r.store.sessions[id]
	if !ok || s.Status != entity.SessionStatusRunning {
		return false, nil
	}
	s.TotalEmailsFound += foundDelta
	s.EmailsProcessed += processedDelta
	s.SubscriptionsFound += subsDelta
	return true, nil
}

func (r *sessionRepository) Transition(ctx context.Context, id uuid.UUID, from, to entity.SessionStatus, completedAt *time.Time, errorMessage string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	s, ok := r.store.sessions[id]
	if !ok || s.Status != from {
		return false, nil
	}
	s.Status = to
	s.CompletedAt = clonePtr(completedAt)
	s.ErrorMessage = errorMessage
	return true, nil
}

func (r *sessionRepository) DeleteAllByUserIdUnscoped(ctx context.Context, userId uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for id, s := range r.store.sessions {
		if s.UserId == userId {
			delete(r.store.sessions, id)
		}
	}
	return nil
}

func (r *sessionRepository) toRow(s *entity.ImportSession) row {
	return row{id: s.Id, userId: s.UserId, status: string(s.Status), createdAt: s.StartedAt}
}
