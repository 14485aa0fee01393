package memory

import (
	"context"
	"sort"

	"subscout-be/internal/apperror"
	"subscout-be/internal/entity"

	"github.com/google/uuid"
)

type serviceCatalogRepository struct {
	store *Store
}

func (r *serviceCatalogRepository) Create(ctx context.Context, svc *entity.CatalogService) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.catalog {
		if existing.ServiceName == svc.ServiceName {
			return apperror.Conflict("service_catalog", "service name already registered")
		}
	}
	r.store.catalog[svc.Id] = cloneCatalog(svc)
	return nil
}

func (r *serviceCatalogRepository) FindAll(ctx context.Context) ([]*entity.CatalogService, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]*entity.CatalogService, 0, len(r.store.catalog))
	for _, svc := range r.store.catalog {
		out = append(out, cloneCatalog(svc))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ServiceName < out[j].ServiceName })
	return out, nil
}

func (r *serviceCatalogRepository) Count(ctx context.Context) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return len(r.store.catalog), nil
}

func (r *serviceCatalogRepository) RecordDetection(ctx context.Context, id uuid.UUID, price *float64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	svc, ok := r.store.catalog[id]
	if !ok {
		return nil
	}
	if price != nil {
		if svc.AvgPrice == nil {
			svc.AvgPrice = clonePtr(price)
		} else {
			folded := (*svc.AvgPrice*float64(svc.TimesDetected) + *price) / float64(svc.TimesDetected+1)
			svc.AvgPrice = &folded
		}
	}
	svc.TimesDetected++
	return nil
}
