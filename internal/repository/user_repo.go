package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/qs3c/bio_go_server/internal/model"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return translate(r.db.WithContext(ctx).Create(user).Error)
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *UserRepository) GetByStripeCustomerID(ctx context.Context, customerID string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("stripe_customer_id = ?", customerID).First(&user).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

// SetStripeCustomerID 保存 Stripe 客户引用
func (r *UserRepository) SetStripeCustomerID(ctx context.Context, id int64, customerID string) error {
	return r.updateFields(ctx, id, map[string]interface{}{
		"stripe_customer_id": customerID,
	})
}

// SetPremium 更新会员标记
func (r *UserRepository) SetPremium(ctx context.Context, id int64, premium bool) error {
	return r.updateFields(ctx, id, map[string]interface{}{
		"is_premium": premium,
	})
}

// ActivatePremium 开通会员并记录客户引用，customerID 为空时只改标记
func (r *UserRepository) ActivatePremium(ctx context.Context, id int64, customerID string) error {
	fields := map[string]interface{}{
		"is_premium": true,
	}
	if customerID != "" {
		fields["stripe_customer_id"] = customerID
	}
	return r.updateFields(ctx, id, fields)
}

func (r *UserRepository) updateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return translate(r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(fields).Error)
}
