package service

import (
	"context"
	"time"

	"subscout-be/internal/dto"
	"subscout-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// recentActivityWindow bounds the read model to the last 30 days.
const recentActivityWindow = 30 * 24 * time.Hour

const recentActivityLimit = 100

type IActivityService interface {
	RecentActivity(ctx context.Context, userId uuid.UUID) ([]*dto.ActivityResponse, error)
}

type activityService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewActivityService(uowFactory unitofwork.RepositoryFactory) IActivityService {
	return &activityService{uowFactory: uowFactory}
}

func (s *activityService) RecentActivity(ctx context.Context, userId uuid.UUID) ([]*dto.ActivityResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	since := time.Now().Add(-recentActivityWindow)
	entries, err := uow.ActivityLogRepository().FindRecentByUser(ctx, userId, since, recentActivityLimit)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.ActivityResponse, 0, len(entries))
	for _, entry := range entries {
		result = append(result, &dto.ActivityResponse{
			Id:                    entry.Id,
			Type:                  entry.Type,
			Description:           entry.Description,
			RelatedSubscriptionId: entry.RelatedSubscriptionId,
			RelatedSessionId:      entry.RelatedSessionId,
			RelatedActionId:       entry.RelatedActionId,
			CreatedAt:             entry.CreatedAt,
		})
	}

	return result, nil
}
