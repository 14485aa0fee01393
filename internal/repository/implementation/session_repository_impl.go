package implementation

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"subscout-be/internal/apperror"
	"subscout-be/internal/entity"
	"subscout-be/internal/model"
	"subscout-be/internal/repository/contract"
	"subscout-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type sessionRepositoryImpl struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) contract.SessionRepository {
	return &sessionRepositoryImpl{db: db}
}

func (r *sessionRepositoryImpl) CreateIfNoneRunning(ctx context.Context, session *entity.ImportSession) error {
	ms, err := r.mapToModel(session)
	if err != nil {
		return err
	}
	// The partial unique index on (user_id) WHERE status = 'running' is the
	// arbiter; two concurrent inserts cannot both win.
	if err := r.db.WithContext(ctx).Create(ms).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperror.Conflict("import_session", "user %s already has a running scan", session.UserId)
		}
		return err
	}
	return nil
}

func (r *sessionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ImportSession, error) {
	var ms model.ImportSession
	query := r.db.WithContext(ctx)

	for _, spec := range specs {
		query = spec.Apply(query)
	}

	if err := query.First(&ms).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}

	return r.mapToEntity(&ms)
}

func (r *sessionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ImportSession, error) {
	var msList []*model.ImportSession
	query := r.db.WithContext(ctx)

	for _, spec := range specs {
		query = spec.Apply(query)
	}

	if err := query.Find(&msList).Error; err != nil {
		return nil, err
	}

	var sessions []*entity.ImportSession
	for _, ms := range msList {
		s, err := r.mapToEntity(ms)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}

func (r *sessionRepositoryImpl) IncrementProgress(ctx context.Context, id uuid.UUID, foundDelta, processedDelta, subsDelta int) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.ImportSession{}).
		Where("id = ? AND status = ?", id, entity.SessionStatusRunning).
		Updates(map[string]interface{}{
			"total_emails_found":  gorm.Expr("total_emails_found + ?", foundDelta),
			"emails_processed":    gorm.Expr("emails_processed + ?", processedDelta),
			"subscriptions_found": gorm.Expr("subscriptions_found + ?", subsDelta),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *sessionRepositoryImpl) Transition(ctx context.Context, id uuid.UUID, from, to entity.SessionStatus, completedAt *time.Time, errorMessage string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.ImportSession{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":        to,
			"completed_at":  completedAt,
			"error_message": errorMessage,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *sessionRepositoryImpl) DeleteAllByUserIdUnscoped(ctx context.Context, userId uuid.UUID) error {
	return r.db.WithContext(ctx).Unscoped().Where("user_id = ?", userId).Delete(&model.ImportSession{}).Error
}

func (r *sessionRepositoryImpl) mapToModel(s *entity.ImportSession) (*model.ImportSession, error) {
	params, err := json.Marshal(s.ScanParams)
	if err != nil {
		return nil, err
	}
	return &model.ImportSession{
		Id:                 s.Id,
		UserId:             s.UserId,
		Status:             string(s.Status),
		TotalEmailsFound:   s.TotalEmailsFound,
		EmailsProcessed:    s.EmailsProcessed,
		SubscriptionsFound: s.SubscriptionsFound,
		ScanParams:         datatypes.JSON(params),
		ErrorMessage:       s.ErrorMessage,
		StartedAt:          s.StartedAt,
		CompletedAt:        s.CompletedAt,
	}, nil
}

func (r *sessionRepositoryImpl) mapToEntity(ms *model.ImportSession) (*entity.ImportSession, error) {
	s := &entity.ImportSession{
		Id:                 ms.Id,
		UserId:             ms.UserId,
		Status:             entity.SessionStatus(ms.Status),
		TotalEmailsFound:   ms.TotalEmailsFound,
		EmailsProcessed:    ms.EmailsProcessed,
		SubscriptionsFound: ms.SubscriptionsFound,
		ErrorMessage:       ms.ErrorMessage,
		StartedAt:          ms.StartedAt,
		CompletedAt:        ms.CompletedAt,
	}
	if len(ms.ScanParams) > 0 {
		if err := json.Unmarshal(ms.ScanParams, &s.ScanParams); err != nil {
			return nil, err
		}
	}
	return s, nil
}
