package implementation

import (
	"context"
	"time"

	"subscout-be/internal/entity"
	"subscout-be/internal/model"
	"subscout-be/internal/repository/contract"
	"subscout-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type userRepositoryImpl struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) contract.UserRepository {
	return &userRepositoryImpl{db: db}
}

func (r *userRepositoryImpl) Create(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).Create(r.mapToModel(user)).Error
}

func (r *userRepositoryImpl) Update(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", user.Id).
		Updates(map[string]interface{}{
			"email":               user.Email,
			"full_name":           user.FullName,
			"profile_picture_url": user.ProfilePictureURL,
			"last_login_at":       user.LastLoginAt,
			"is_active":           user.IsActive,
		}).Error
}

func (r *userRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	var mu model.User
	query := r.db.WithContext(ctx)

	for _, spec := range specs {
		query = spec.Apply(query)
	}

	if err := query.First(&mu).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}

	return r.mapToEntity(&mu), nil
}

func (r *userRepositoryImpl) FindOneUnscoped(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	var mu model.User
	query := r.db.WithContext(ctx).Unscoped()

	for _, spec := range specs {
		query = spec.Apply(query)
	}

	if err := query.First(&mu).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}

	return r.mapToEntity(&mu), nil
}

func (r *userRepositoryImpl) Count(ctx context.Context) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.User{}).Count(&count).Error
	return int(count), err
}

func (r *userRepositoryImpl) UpdateAggregates(ctx context.Context, userId uuid.UUID, count int, monthlySpend float64) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userId).
		Updates(map[string]interface{}{
			"subscription_count":  count,
			"total_monthly_spend": monthlySpend,
		}).Error
}

func (r *userRepositoryImpl) TouchLastScan(ctx context.Context, userId uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userId).
		Update("last_scan_at", at).Error
}

func (r *userRepositoryImpl) SoftDelete(ctx context.Context, userId uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.User{}, userId).Error
}

func (r *userRepositoryImpl) mapToModel(u *entity.User) *model.User {
	mu := &model.User{
		Id:                u.Id,
		Email:             u.Email,
		FullName:          u.FullName,
		CredentialRef:     u.CredentialRef,
		ProfilePictureURL: u.ProfilePictureURL,
		LastLoginAt:       u.LastLoginAt,
		LastScanAt:        u.LastScanAt,
		SubscriptionCount: u.SubscriptionCount,
		TotalMonthlySpend: u.TotalMonthlySpend,
		IsActive:          u.IsActive,
		CreatedAt:         u.CreatedAt,
	}
	if u.DeletedAt != nil {
		mu.DeletedAt = gorm.DeletedAt{Time: *u.DeletedAt, Valid: true}
	}
	return mu
}

func (r *userRepositoryImpl) mapToEntity(mu *model.User) *entity.User {
	u := &entity.User{
		Id:                mu.Id,
		Email:             mu.Email,
		FullName:          mu.FullName,
		CredentialRef:     mu.CredentialRef,
		ProfilePictureURL: mu.ProfilePictureURL,
		LastLoginAt:       mu.LastLoginAt,
		LastScanAt:        mu.LastScanAt,
		SubscriptionCount: mu.SubscriptionCount,
		TotalMonthlySpend: mu.TotalMonthlySpend,
		IsActive:          mu.IsActive,
		CreatedAt:         mu.CreatedAt,
	}
	if mu.DeletedAt.Valid {
		t := mu.DeletedAt.Time
		u.DeletedAt = &t
	}
	return u
}
