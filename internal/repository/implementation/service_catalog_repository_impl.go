package implementation

import (
	"context"

	"subscout-be/internal/entity"
	"subscout-be/internal/model"
	"subscout-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type serviceCatalogRepositoryImpl struct {
	db *gorm.DB
}

func NewServiceCatalogRepository(db *gorm.DB) contract.ServiceCatalogRepository {
	return &serviceCatalogRepositoryImpl{db: db}
}

func (r *serviceCatalogRepositoryImpl) Create(ctx context.Context, svc *entity.CatalogService) error {
	return r.db.WithContext(ctx).Create(r.mapToModel(svc)).Error
}

func (r *serviceCatalogRepositoryImpl) FindAll(ctx context.Context) ([]*entity.CatalogService, error) {
	var msList []*model.CatalogService
	if err := r.db.WithContext(ctx).Order("service_name ASC").Find(&msList).Error; err != nil {
		return nil, err
	}

	var services []*entity.CatalogService
	for _, ms := range msList {
		services = append(services, r.mapToEntity(ms))
	}
	return services, nil
}

func (r *serviceCatalogRepositoryImpl) Count(ctx context.Context) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.CatalogService{}).Count(&count).Error
	return int(count), err
}

func (r *serviceCatalogRepositoryImpl) RecordDetection(ctx context.Context, id uuid.UUID, price *float64) error {
	updates := map[string]interface{}{
		"times_detected": gorm.Expr("times_detected + 1"),
	}
	if price != nil {
		// Running average folded in-place so concurrent bumps stay consistent.
		updates["avg_price"] = gorm.Expr(
			"CASE WHEN avg_price IS NULL THEN ? ELSE (avg_price * times_detected + ?) / (times_detected + 1) END",
			*price, *price,
		)
	}
	return r.db.WithContext(ctx).Model(&model.CatalogService{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *serviceCatalogRepositoryImpl) mapToModel(s *entity.CatalogService) *model.CatalogService {
	return &model.CatalogService{
		Id:            s.Id,
		ServiceName:   s.ServiceName,
		ServiceDomain: s.ServiceDomain,
		LogoURL:       s.LogoURL,
		Category:      s.Category,
		EmailDomains:  datatypes.NewJSONSlice(s.EmailDomains),
		Keywords:      datatypes.NewJSONSlice(s.Keywords),
		TimesDetected: s.TimesDetected,
		AvgPrice:      s.AvgPrice,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

func (r *serviceCatalogRepositoryImpl) mapToEntity(ms *model.CatalogService) *entity.CatalogService {
	return &entity.CatalogService{
		Id:            ms.Id,
		ServiceName:   ms.ServiceName,
		ServiceDomain: ms.ServiceDomain,
		LogoURL:       ms.LogoURL,
		Category:      ms.Category,
		EmailDomains:  []string(ms.EmailDomains),
		Keywords:      []string(ms.Keywords),
		TimesDetected: ms.TimesDetected,
		AvgPrice:      ms.AvgPrice,
		CreatedAt:     ms.CreatedAt,
		UpdatedAt:     ms.UpdatedAt,
	}
}
