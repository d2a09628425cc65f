package db

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rohanbsher/immigration-ai/internal/domain"
)

type SubscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// Upsert applies a webhook-driven subscription state. Keyed on firm so a
// replayed or reordered webhook converges instead of duplicating rows.
func (r *SubscriptionRepository) Upsert(ctx context.Context, sub domain.Subscription) error {
	if r.db == nil {
		return errDBUnavailable
	}
	model := SubscriptionModel{
		ID:                   sub.ID,
		FirmID:               sub.FirmID,
		StripeCustomerID:     sub.StripeCustomerID,
		StripeSubscriptionID: sub.StripeSubscriptionID,
		Plan:                 string(sub.Plan),
		Status:               string(sub.Status),
		CurrentPeriodEnd:     sub.CurrentPeriodEnd,
		CreatedAt:            sub.CreatedAt,
		UpdatedAt:            sub.UpdatedAt,
	}
	return translateError(r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "firm_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"stripe_customer_id", "stripe_subscription_id", "plan", "status",
			"current_period_end", "updated_at",
		}),
	}).Create(&model).Error)
}

func (r *SubscriptionRepository) GetByFirm(ctx context.Context, firmID string) (domain.Subscription, error) {
	if r.db == nil {
		return domain.Subscription{}, errDBUnavailable
	}
	var model SubscriptionModel
	err := r.db.WithContext(ctx).First(&model, "firm_id = ?", firmID).Error
	if err != nil {
		return domain.Subscription{}, translateError(err)
	}
	return toSubscription(model), nil
}

func (r *SubscriptionRepository) GetByStripeSubscription(ctx context.Context, stripeSubID string) (domain.Subscription, error) {
	if r.db == nil {
		return domain.Subscription{}, errDBUnavailable
	}
	var model SubscriptionModel
	err := r.db.WithContext(ctx).First(&model, "stripe_subscription_id = ?", stripeSubID).Error
	if err != nil {
		return domain.Subscription{}, translateError(err)
	}
	return toSubscription(model), nil
}

func toSubscription(model SubscriptionModel) domain.Subscription {
	return domain.Subscription{
		ID:                   model.ID,
		FirmID:               model.FirmID,
		StripeCustomerID:     model.StripeCustomerID,
		StripeSubscriptionID: model.StripeSubscriptionID,
		Plan:                 domain.Plan(model.Plan),
		Status:               domain.SubscriptionStatus(model.Status),
		CurrentPeriodEnd:     model.CurrentPeriodEnd,
		CreatedAt:            model.CreatedAt,
		UpdatedAt:            model.UpdatedAt,
	}
}
