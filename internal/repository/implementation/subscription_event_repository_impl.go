package implementation

import (
	"context"
	"encoding/json"

	"subscout-be/internal/entity"
	"subscout-be/internal/model"
	"subscout-be/internal/repository/contract"
	"subscout-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type subscriptionEventRepositoryImpl struct {
	db *gorm.DB
}

func NewSubscriptionEventRepository(db *gorm.DB) contract.SubscriptionEventRepository {
	return &subscriptionEventRepositoryImpl{db: db}
}

func (r *subscriptionEventRepositoryImpl) Create(ctx context.Context, event *entity.SubscriptionEvent) error {
	me, err := r.mapToModel(event)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(me).Error
}

func (r *subscriptionEventRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SubscriptionEvent, error) {
	var meList []*model.SubscriptionEvent
	query := r.db.WithContext(ctx)

	for _, spec := range specs {
		query = spec.Apply(query)
	}

	if err := query.Find(&meList).Error; err != nil {
		return nil, err
	}

	var events []*entity.SubscriptionEvent
	for _, me := range meList {
		e, err := r.mapToEntity(me)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, nil
}

func (r *subscriptionEventRepositoryImpl) DeleteAllByUserIdUnscoped(ctx context.Context, userId uuid.UUID) error {
	return r.db.WithContext(ctx).Unscoped().Where("user_id = ?", userId).Delete(&model.SubscriptionEvent{}).Error
}

func (r *subscriptionEventRepositoryImpl) mapToModel(e *entity.SubscriptionEvent) (*model.SubscriptionEvent, error) {
	var meta datatypes.JSON
	if e.Metadata != nil {
		raw, err := json.Marshal(e.Metadata)
		if err != nil {
			return nil, err
		}
		meta = datatypes.JSON(raw)
	}
	return &model.SubscriptionEvent{
		Id:               e.Id,
		SubscriptionId:   e.SubscriptionId,
		UserId:           e.UserId,
		EventType:        string(e.EventType),
		EventDescription: e.Description,
		EventMetadata:    meta,
		TriggeredBy:      e.TriggeredBy,
		CreatedAt:        e.CreatedAt,
	}, nil
}

func (r *subscriptionEventRepositoryImpl) mapToEntity(me *model.SubscriptionEvent) (*entity.SubscriptionEvent, error) {
	e := &entity.SubscriptionEvent{
		Id:             me.Id,
		SubscriptionId: me.SubscriptionId,
		UserId:         me.UserId,
		EventType:      entity.SubscriptionEventType(me.EventType),
		Description:    me.EventDescription,
		TriggeredBy:    me.TriggeredBy,
		CreatedAt:      me.CreatedAt,
	}
	if len(me.EventMetadata) > 0 {
		if err := json.Unmarshal(me.EventMetadata, &e.Metadata); err != nil {
			return nil, err
		}
	}
	return e, nil
}
