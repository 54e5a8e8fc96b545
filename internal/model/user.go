package model

import (
	"time"
)

type User struct {
	ID               int64     `gorm:"primaryKey" json:"id"`
	Email            string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash     string    `gorm:"size:255;not null" json:"-"`
	IsPremium        bool      `gorm:"not null;default:false" json:"isPremium"`
	StripeCustomerID *string   `gorm:"size:255;uniqueIndex" json:"-"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"-"`
}

func (User) TableName() string {
	return "users"
}

// HasBillingCustomer 是否已关联 Stripe 客户
func (u *User) HasBillingCustomer() bool {
	return u.StripeCustomerID != nil && *u.StripeCustomerID != ""
}
