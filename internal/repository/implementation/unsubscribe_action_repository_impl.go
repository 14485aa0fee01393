package implementation

import (
	"context"
	"encoding/json"
	"time"

	"subscout-be/internal/entity"
	"subscout-be/internal/model"
	"subscout-be/internal/repository/contract"
	"subscout-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var nonTerminalStatuses = []string{
	string(entity.ActionStatusPending),
	string(entity.ActionStatusInProgress),
	string(entity.ActionStatusAwaitingConfirmation),
}

type unsubscribeActionRepositoryImpl struct {
	db *gorm.DB
}

func NewUnsubscribeActionRepository(db *gorm.DB) contract.UnsubscribeActionRepository {
	return &unsubscribeActionRepositoryImpl{db: db}
}

func (r *unsubscribeActionRepositoryImpl) Create(ctx context.Context, action *entity.UnsubscribeAction) error {
	ma, err := r.mapToModel(action)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(ma).Error
}

func (r *unsubscribeActionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.UnsubscribeAction, error) {
	var ma model.UnsubscribeAction
	query := r.db.WithContext(ctx)

	for _, spec := range specs {
		query = spec.Apply(query)
	}

	if err := query.First(&ma).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}

	return r.mapToEntity(&ma)
}

func (r *unsubscribeActionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.UnsubscribeAction, error) {
	var maList []*model.UnsubscribeAction
	query := r.db.WithContext(ctx)

	for _, spec := range specs {
		query = spec.Apply(query)
	}

	if err := query.Find(&maList).Error; err != nil {
		return nil, err
	}

	var actions []*entity.UnsubscribeAction
	for _, ma := range maList {
		a, err := r.mapToEntity(ma)
		if err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}
	return actions, nil
}

func (r *unsubscribeActionRepositoryImpl) FindOpenBySubscription(ctx context.Context, subscriptionId uuid.UUID) (*entity.UnsubscribeAction, error) {
	var ma model.UnsubscribeAction
	err := r.db.WithContext(ctx).
		Where("subscription_id = ? AND status IN ?", subscriptionId, nonTerminalStatuses).
		First(&ma).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return r.mapToEntity(&ma)
}

func (r *unsubscribeActionRepositoryImpl) CountBySubscription(ctx context.Context, subscriptionId uuid.UUID) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.UnsubscribeAction{}).
		Where("subscription_id = ?", subscriptionId).
		Count(&count).Error
	return int(count), err
}

func (r *unsubscribeActionRepositoryImpl) FindAwaitingConfirmation(ctx context.Context) ([]*entity.UnsubscribeAction, error) {
	return r.FindAll(ctx, specification.ByStatus{Status: string(entity.ActionStatusAwaitingConfirmation)})
}

func (r *unsubscribeActionRepositoryImpl) UpdateIfStatus(ctx context.Context, action *entity.UnsubscribeAction, expected []entity.UnsubscribeStatus) (bool, error) {
	statuses := make([]string, len(expected))
	for i, s := range expected {
		statuses[i] = string(s)
	}

	formData, err := marshalFormData(action.FormData)
	if err != nil {
		return false, err
	}

	res := r.db.WithContext(ctx).Model(&model.UnsubscribeAction{}).
		Where("id = ? AND status IN ?", action.Id, statuses).
		Updates(map[string]interface{}{
			"status":                   string(action.Status),
			"unsubscribe_url":          action.UnsubscribeURL,
			"http_method":              action.HTTPMethod,
			"form_data":                formData,
			"http_status_code":         action.HTTPStatusCode,
			"response_body_snippet":    action.ResponseBodySnippet,
			"confirmation_email_id":    action.ConfirmationEmailId,
			"confirmation_detected_at": action.ConfirmationDetectedAt,
			"retry_count":              action.RetryCount,
			"next_retry_at":            action.NextRetryAt,
			"error_message":            action.ErrorMessage,
			"requires_manual_action":   action.RequiresManualAction,
			"manual_instructions":      action.ManualInstructions,
			"completed_at":             action.CompletedAt,
			"monitoring_until":         action.MonitoringUntil,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *unsubscribeActionRepositoryImpl) ClaimForExecution(ctx context.Context, actionId uuid.UUID, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.UnsubscribeAction{}).
		Where("id = ?", actionId).
		Where("status = ? OR (status = ? AND next_retry_at IS NOT NULL AND next_retry_at <= ?)",
			string(entity.ActionStatusPending), string(entity.ActionStatusInProgress), now).
		Updates(map[string]interface{}{
			"status":        string(entity.ActionStatusInProgress),
			"next_retry_at": nil,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *unsubscribeActionRepositoryImpl) DeleteAllByUserIdUnscoped(ctx context.Context, userId uuid.UUID) error {
	return r.db.WithContext(ctx).Unscoped().Where("user_id = ?", userId).Delete(&model.UnsubscribeAction{}).Error
}

func marshalFormData(data map[string]string) (datatypes.JSON, error) {
	if data == nil {
		return nil, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

func (r *unsubscribeActionRepositoryImpl) mapToModel(a *entity.UnsubscribeAction) (*model.UnsubscribeAction, error) {
	formData, err := marshalFormData(a.FormData)
	if err != nil {
		return nil, err
	}
	return &model.UnsubscribeAction{
		Id:                     a.Id,
		SubscriptionId:         a.SubscriptionId,
		UserId:                 a.UserId,
		ActionType:             string(a.ActionType),
		Status:                 string(a.Status),
		UnsubscribeURL:         a.UnsubscribeURL,
		HTTPMethod:             a.HTTPMethod,
		FormData:               formData,
		HTTPStatusCode:         a.HTTPStatusCode,
		ResponseBodySnippet:    a.ResponseBodySnippet,
		ConfirmationEmailId:    a.ConfirmationEmailId,
		ConfirmationDetectedAt: a.ConfirmationDetectedAt,
		RetryCount:             a.RetryCount,
		MaxRetries:             a.MaxRetries,
		NextRetryAt:            a.NextRetryAt,
		ErrorMessage:           a.ErrorMessage,
		RequiresManualAction:   a.RequiresManualAction,
		ManualInstructions:     a.ManualInstructions,
		InitiatedAt:            a.InitiatedAt,
		CompletedAt:            a.CompletedAt,
		MonitoringUntil:        a.MonitoringUntil,
	}, nil
}

func (r *unsubscribeActionRepositoryImpl) mapToEntity(ma *model.UnsubscribeAction) (*entity.UnsubscribeAction, error) {
	a := &entity.UnsubscribeAction{
		Id:                     ma.Id,
		SubscriptionId:         ma.SubscriptionId,
		UserId:                 ma.UserId,
		ActionType:             entity.UnsubscribeStrategy(ma.ActionType),
		Status:                 entity.UnsubscribeStatus(ma.Status),
		UnsubscribeURL:         ma.UnsubscribeURL,
		HTTPMethod:             ma.HTTPMethod,
		HTTPStatusCode:         ma.HTTPStatusCode,
		ResponseBodySnippet:    ma.ResponseBodySnippet,
		ConfirmationEmailId:    ma.ConfirmationEmailId,
		ConfirmationDetectedAt: ma.ConfirmationDetectedAt,
		RetryCount:             ma.RetryCount,
		MaxRetries:             ma.MaxRetries,
		NextRetryAt:            ma.NextRetryAt,
		ErrorMessage:           ma.ErrorMessage,
		RequiresManualAction:   ma.RequiresManualAction,
		ManualInstructions:     ma.ManualInstructions,
		InitiatedAt:            ma.InitiatedAt,
		CompletedAt:            ma.CompletedAt,
		MonitoringUntil:        ma.MonitoringUntil,
	}
	if len(ma.FormData) > 0 {
		if err := json.Unmarshal(ma.FormData, &a.FormData); err != nil {
			return nil, err
		}
	}
	return a, nil
}
