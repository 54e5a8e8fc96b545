package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/qs3c/bio_go_server/internal/model"
)

var userSeq int64

// TestPassword 测试用户的明文密码
const TestPassword = "password123"

// TestUser 创建测试用户，密码为 TestPassword
func TestUser(t *testing.T, db *gorm.DB, opts ...func(*model.User)) *model.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	user := &model.User{
		Email:        fmt.Sprintf("test_%d_%d@example.com", time.Now().UnixNano(), atomic.AddInt64(&userSeq, 1)),
		PasswordHash: string(hash),
		IsPremium:    false,
	}

	for _, opt := range opts {
		opt(user)
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// WithEmail 设置邮箱
func WithEmail(email string) func(*model.User) {
	return func(u *model.User) {
		u.Email = email
	}
}

// WithPremium 设置会员状态
func WithPremium(premium bool) func(*model.User) {
	return func(u *model.User) {
		u.IsPremium = premium
	}
}

// WithStripeCustomer 设置 Stripe 客户 ID
func WithStripeCustomer(customerID string) func(*model.User) {
	return func(u *model.User) {
		u.StripeCustomerID = &customerID
	}
}

// TestDailyUsage 写入某日计数
func TestDailyUsage(t *testing.T, db *gorm.DB, userID int64, date string, count int) *model.DailyUsage {
	t.Helper()

	usage := &model.DailyUsage{
		UserID:    userID,
		UsageDate: date,
		Count:     count,
	}

	if err := db.Create(usage).Error; err != nil {
		t.Fatalf("Failed to create daily usage: %v", err)
	}

	return usage
}

// TestGeneration 创建生成记录
func TestGeneration(t *testing.T, db *gorm.DB, userID int64, bio string) *model.Generation {
	t.Helper()

	generation := &model.Generation{
		UserID:   userID,
		BioText:  bio,
		Platform: "instagram",
	}

	if err := db.Create(generation).Error; err != nil {
		t.Fatalf("Failed to create generation: %v", err)
	}

	return generation
}

// TestSubscription 创建订阅镜像
func TestSubscription(t *testing.T, db *gorm.DB, userID int64, customerID, subscriptionID, status string) *model.Subscription {
	t.Helper()

	sub := &model.Subscription{
		UserID:               userID,
		StripeCustomerID:     customerID,
		StripeSubscriptionID: subscriptionID,
		Status:               status,
	}

	if err := db.Create(sub).Error; err != nil {
		t.Fatalf("Failed to create subscription: %v", err)
	}

	return sub
}
