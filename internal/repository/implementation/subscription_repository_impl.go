package implementation

import (
	"context"
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

type subscriptionRepositoryImpl struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) contract.SubscriptionRepository {
	return &subscriptionRepositoryImpl{db: db}
}

func (r *subscriptionRepositoryImpl) Create(ctx context.Context, sub *entity.Subscription) error {
	if err := r.db.WithContext(ctx).Create(r.mapToModel(sub)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperror.Conflict("subscription", "user %s already has an active subscription for %q", sub.UserId, sub.ServiceName)
		}
		return err
	}
	return nil
}

func (r *subscriptionRepositoryImpl) Update(ctx context.Context, sub *entity.Subscription) error {
	return r.db.WithContext(ctx).Model(&model.Subscription{}).
		Where("id = ?", sub.Id).
		Updates(map[string]interface{}{
			"service_domain":       sub.ServiceDomain,
			"service_logo_url":     sub.ServiceLogoURL,
			"service_category":     sub.ServiceCategory,
			"price":                sub.Price,
			"currency":             sub.Currency,
			"billing_period":       string(sub.BillingPeriod),
			"next_renewal_date":    sub.NextRenewalDate,
			"last_verified_date":   sub.LastVerifiedDate,
			"unsubscribe_link":     sub.UnsubscribeLink,
			"manage_account_link":  sub.ManageAccountLink,
			"payment_method_last4": sub.PaymentMethodLast4,
			"subscription_tier":    sub.SubscriptionTier,
			"source_email_ids":     datatypes.NewJSONSlice(sub.SourceEmailIds),
			"detection_confidence": sub.DetectionConfidence,
			"detected_by":          string(sub.DetectedBy),
		}).Error
}

func (r *subscriptionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Subscription, error) {
	var ms model.Subscription
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

	return r.mapToEntity(&ms), nil
}

func (r *subscriptionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Subscription, error) {
	var msList []*model.Subscription
	query := r.db.WithContext(ctx)

	for _, spec := range specs {
		query = spec.Apply(query)
	}

	if err := query.Find(&msList).Error; err != nil {
		return nil, err
	}

	var subs []*entity.Subscription
	for _, ms := range msList {
		subs = append(subs, r.mapToEntity(ms))
	}
	return subs, nil
}

func (r *subscriptionRepositoryImpl) Transition(ctx context.Context, id uuid.UUID, from []entity.SubscriptionStatus, to entity.SubscriptionStatus, at time.Time) (bool, error) {
	statuses := make([]string, len(from))
	for i, s := range from {
		statuses[i] = string(s)
	}

	updates := map[string]interface{}{"status": string(to)}
	if to == entity.SubscriptionStatusCancelled {
		updates["cancelled_at"] = at
	}

	res := r.db.WithContext(ctx).Model(&model.Subscription{}).
		Where("id = ? AND status IN ?", id, statuses).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *subscriptionRepositoryImpl) SummarizeActive(ctx context.Context, userId uuid.UUID) (*contract.ActiveSummary, error) {
	var row struct {
		Count   int
		Monthly float64
		Annual  float64
	}
	err := r.db.WithContext(ctx).Model(&model.Subscription{}).
		Select(`COUNT(*) AS count,
			COALESCE(SUM(CASE
				WHEN billing_period = 'monthly' THEN price
				WHEN billing_period = 'annually' THEN price / 12
				WHEN billing_period = 'quarterly' THEN price / 3
				ELSE 0 END), 0) AS monthly,
			COALESCE(SUM(CASE
				WHEN billing_period = 'monthly' THEN price * 12
				WHEN billing_period = 'annually' THEN price
				WHEN billing_period = 'quarterly' THEN price * 4
				ELSE 0 END), 0) AS annual`).
		Where("user_id = ? AND status = 'active'", userId).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &contract.ActiveSummary{Count: row.Count, MonthlySpend: row.Monthly, AnnualSpend: row.Annual}, nil
}

func (r *subscriptionRepositoryImpl) DeleteAllByUserIdUnscoped(ctx context.Context, userId uuid.UUID) error {
	return r.db.WithContext(ctx).Unscoped().Where("user_id = ?", userId).Delete(&model.Subscription{}).Error
}

func (r *subscriptionRepositoryImpl) mapToModel(s *entity.Subscription) *model.Subscription {
	return &model.Subscription{
		Id:                  s.Id,
		UserId:              s.UserId,
		ServiceName:         s.ServiceName,
		ServiceDomain:       s.ServiceDomain,
		ServiceLogoURL:      s.ServiceLogoURL,
		ServiceCategory:     s.ServiceCategory,
		Price:               s.Price,
		Currency:            s.Currency,
		BillingPeriod:       string(s.BillingPeriod),
		FirstDetectedDate:   s.FirstDetectedDate,
		NextRenewalDate:     s.NextRenewalDate,
		LastVerifiedDate:    s.LastVerifiedDate,
		UnsubscribeLink:     s.UnsubscribeLink,
		ManageAccountLink:   s.ManageAccountLink,
		PaymentMethodLast4:  s.PaymentMethodLast4,
		SubscriptionTier:    s.SubscriptionTier,
		Status:              string(s.Status),
		SourceEmailIds:      datatypes.NewJSONSlice(s.SourceEmailIds),
		DetectionConfidence: s.DetectionConfidence,
		DetectedBy:          string(s.DetectedBy),
		CreatedAt:           s.CreatedAt,
		UpdatedAt:           s.UpdatedAt,
		CancelledAt:         s.CancelledAt,
	}
}

func (r *subscriptionRepositoryImpl) mapToEntity(ms *model.Subscription) *entity.Subscription {
	return &entity.Subscription{
		Id:                  ms.Id,
		UserId:              ms.UserId,
		ServiceName:         ms.ServiceName,
		ServiceDomain:       ms.ServiceDomain,
		ServiceLogoURL:      ms.ServiceLogoURL,
		ServiceCategory:     ms.ServiceCategory,
		Price:               ms.Price,
		Currency:            ms.Currency,
		BillingPeriod:       entity.BillingPeriod(ms.BillingPeriod),
		FirstDetectedDate:   ms.FirstDetectedDate,
		NextRenewalDate:     ms.NextRenewalDate,
		LastVerifiedDate:    ms.LastVerifiedDate,
		UnsubscribeLink:     ms.UnsubscribeLink,
		ManageAccountLink:   ms.ManageAccountLink,
		PaymentMethodLast4:  ms.PaymentMethodLast4,
		SubscriptionTier:    ms.SubscriptionTier,
		Status:              entity.SubscriptionStatus(ms.Status),
		SourceEmailIds:      []string(ms.SourceEmailIds),
		DetectionConfidence: ms.DetectionConfidence,
		DetectedBy:          entity.DetectionMethod(ms.DetectedBy),
		CreatedAt:           ms.CreatedAt,
		UpdatedAt:           ms.UpdatedAt,
		CancelledAt:         ms.CancelledAt,
	}
}
