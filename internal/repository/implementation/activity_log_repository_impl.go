package implementation

import (
	"context"
	"encoding/json"
	"time"

	"subscout-be/internal/entity"
	"subscout-be/internal/model"
	"subscout-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type activityLogRepositoryImpl struct {
	db *gorm.DB
}

func NewActivityLogRepository(db *gorm.DB) contract.ActivityLogRepository {
	return &activityLogRepositoryImpl{db: db}
}

func (r *activityLogRepositoryImpl) Create(ctx context.Context, entry *entity.ActivityLogEntry) error {
	me, err := r.mapToModel(entry)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(me).Error
}

func (r *activityLogRepositoryImpl) FindRecentByUser(ctx context.Context, userId uuid.UUID, since time.Time, limit int) ([]*entity.ActivityLogEntry, error) {
	var meList []*model.ActivityLogEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND created_at >= ?", userId, since).
		Order("created_at DESC").
		Limit(limit).
		Find(&meList).Error
	if err != nil {
		return nil, err
	}

	var entries []*entity.ActivityLogEntry
	for _, me := range meList {
		e, err := r.mapToEntity(me)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (r *activityLogRepositoryImpl) DeleteAllByUserIdUnscoped(ctx context.Context, userId uuid.UUID) error {
	return r.db.WithContext(ctx).Unscoped().Where("user_id = ?", userId).Delete(&model.ActivityLogEntry{}).Error
}

func (r *activityLogRepositoryImpl) mapToModel(e *entity.ActivityLogEntry) (*model.ActivityLogEntry, error) {
	var meta datatypes.JSON
	if e.Metadata != nil {
		raw, err := json.Marshal(e.Metadata)
		if err != nil {
			return nil, err
		}
		meta = datatypes.JSON(raw)
	}
	return &model.ActivityLogEntry{
		Id:                    e.Id,
		UserId:                e.UserId,
		ActivityType:          e.Type,
		ActivityDescription:   e.Description,
		RelatedSubscriptionId: e.RelatedSubscriptionId,
		RelatedSessionId:      e.RelatedSessionId,
		RelatedActionId:       e.RelatedActionId,
		ActivityMetadata:      meta,
		CreatedAt:             e.CreatedAt,
	}, nil
}

func (r *activityLogRepositoryImpl) mapToEntity(me *model.ActivityLogEntry) (*entity.ActivityLogEntry, error) {
	e := &entity.ActivityLogEntry{
		Id:                    me.Id,
		UserId:                me.UserId,
		Type:                  me.ActivityType,
		Description:           me.ActivityDescription,
		RelatedSubscriptionId: me.RelatedSubscriptionId,
		RelatedSessionId:      me.RelatedSessionId,
		RelatedActionId:       me.RelatedActionId,
		CreatedAt:             me.CreatedAt,
	}
	if len(me.ActivityMetadata) > 0 {
		if err := json.Unmarshal(me.ActivityMetadata, &e.Metadata); err != nil {
			return nil, err
		}
	}
	return e, nil
}
