package model

import (
	"time"
)

const (
	SubscriptionStatusActive   = "active"
	SubscriptionStatusCanceled = "canceled"
	// 欠费停用，可恢复
	SubscriptionStatusInactive = "inactive"
)

// Subscription Stripe 订阅的本地镜像
type Subscription struct {
	ID                   int64     `gorm:"primaryKey" json:"id"`
	UserID               int64     `gorm:"not null;index" json:"userId"`
	StripeCustomerID     string    `gorm:"size:255;not null;index" json:"-"`
	StripeSubscriptionID string    `gorm:"size:255;not null;uniqueIndex" json:"-"`
	Status               string    `gorm:"size:20;not null;default:active;index" json:"status"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}

// BillingEvent 已处理的 webhook 事件，用于去重
type BillingEvent struct {
	EventID     string    `gorm:"primaryKey;size:255" json:"eventId"`
	Type        string    `gorm:"size:100;not null" json:"type"`
	ProcessedAt time.Time `gorm:"not null" json:"processedAt"`
}

func (BillingEvent) TableName() string {
	return "billing_events"
}
