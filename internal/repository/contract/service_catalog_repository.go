package contract

import (
	"context"

	"subscout-be/internal/entity"

	"github.com/google/uuid"
)

type ServiceCatalogRepository interface {
	Create(ctx context.Context, svc *entity.CatalogService) error
	FindAll(ctx context.Context) ([]*entity.CatalogService, error)
	Count(ctx context.Context) (int, error)

	// RecordDetection bumps times_detected and folds the observed price into
	// the running average. Statistics only; never authoritative for a user.
	RecordDetection(ctx context.Context, id uuid.UUID, price *float64) error
}
