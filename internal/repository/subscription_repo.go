package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/qs3c/bio_go_server/internal/model"
)

type SubscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func (r *SubscriptionRepository) GetBySubscriptionID(ctx context.Context, subscriptionID string) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.WithContext(ctx).Where("stripe_subscription_id = ?", subscriptionID).First(&sub).Error
	if err != nil {
		return nil, translate(err)
	}
	return &sub, nil
}

// Upsert 按 Stripe 订阅 ID 写入或更新状态
func (r *SubscriptionRepository) Upsert(ctx context.Context, sub *model.Subscription) error {
	return translate(r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "stripe_subscription_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"user_id":            sub.UserID,
			"stripe_customer_id": sub.StripeCustomerID,
			"status":             sub.Status,
			"updated_at":         time.Now(),
		}),
	}).Create(sub).Error)
}

// CountActiveByUser 用户仍有效的订阅数
func (r *SubscriptionRepository) CountActiveByUser(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Subscription{}).
		Where("user_id = ? AND status = ?", userID, model.SubscriptionStatusActive).
		Count(&count).Error
	return count, err
}

type BillingEventRepository struct {
	db *gorm.DB
}

func NewBillingEventRepository(db *gorm.DB) *BillingEventRepository {
	return &BillingEventRepository{db: db}
}

func (r *BillingEventRepository) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.BillingEvent{}).Where("event_id = ?", eventID).Count(&count).Error
	return count > 0, err
}

// MarkProcessed 重复写入忽略
func (r *BillingEventRepository) MarkProcessed(ctx context.Context, eventID, eventType string) error {
	event := &model.BillingEvent{
		EventID:     eventID,
		Type:        eventType,
		ProcessedAt: time.Now(),
	}
	return translate(r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(event).Error)
}
