package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/bio_go_server/config"
	"github.com/qs3c/bio_go_server/internal/pkg/billing"
	"github.com/qs3c/bio_go_server/internal/repository"
)

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:      "test-secret-key-for-testing",
			ExpireHours: 24 * 30,
		},
		Auth: config.AuthConfig{
			MinPasswordLength: 6,
			BcryptCost:        4,
		},
		Quota: config.QuotaConfig{
			FreeDailyLimit: 3,
			Timezone:       "UTC",
			Store:          "database",
			RetentionDays:  90,
		},
	}
}

// fixedClock 测试用固定时钟
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

type fakeGenerator struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []string
}

func (g *fakeGenerator) Complete(ctx context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return "", g.err
	}
	return g.reply, nil
}

func (g *fakeGenerator) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.prompts)
}

// fakeBillingProvider 按签名字符串返回预置事件
type fakeBillingProvider struct {
	events          map[string]*billing.Event
	customerSeq     int
	customersByUser map[int64]int
	checkoutCalls   []string
	portalCalls     []string
	failCheckout    bool
}

func newFakeBillingProvider() *fakeBillingProvider {
	return &fakeBillingProvider{
		events:          make(map[string]*billing.Event),
		customersByUser: make(map[int64]int),
	}
}

func (p *fakeBillingProvider) CreateCustomer(ctx context.Context, userID int64, email string) (string, error) {
	p.customerSeq++
	p.customersByUser[userID]++
	return fmt.Sprintf("cus_fake_%d", p.customerSeq), nil
}

func (p *fakeBillingProvider) CreateCheckoutSession(ctx context.Context, userID int64, customerID string) (string, error) {
	if p.failCheckout {
		return "", errors.New("stripe unavailable")
	}
	p.checkoutCalls = append(p.checkoutCalls, customerID)
	return "https://checkout.stripe.test/c/pay/cs_test_123", nil
}

func (p *fakeBillingProvider) CreatePortalSession(ctx context.Context, customerID string) (string, error) {
	p.portalCalls = append(p.portalCalls, customerID)
	return "https://billing.stripe.test/p/session/" + customerID, nil
}

func (p *fakeBillingProvider) ParseWebhook(payload []byte, signature string) (*billing.Event, error) {
	event, ok := p.events[signature]
	if !ok {
		return nil, billing.ErrInvalidSignature
	}
	return event, nil
}

// sign 注册一个事件并返回对应的签名
func (p *fakeBillingProvider) sign(event *billing.Event) string {
	sig := "sig_" + event.ID
	p.events[sig] = event
	return sig
}

type serviceSet struct {
	db         *gorm.DB
	cfg        *config.Config
	userRepo   *repository.UserRepository
	usageRepo  *repository.UsageRepository
	subRepo    *repository.SubscriptionRepository
	auth       *AuthService
	quota      *QuotaService
	billing    *BillingService
	generation *GenerationService
	users      *UserService
	generator  *fakeGenerator
	provider   *fakeBillingProvider
}

func newServiceSet(db *gorm.DB, now time.Time) *serviceSet {
	cfg := testConfig()

	userRepo := repository.NewUserRepository(db)
	usageRepo := repository.NewUsageRepository(db)
	generationRepo := repository.NewGenerationRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)

	quota := NewQuotaService(usageRepo, cfg)
	quota.now = fixedClock(now)

	generator := &fakeGenerator{reply: "Coffee lover ☕ | Building things"}
	provider := newFakeBillingProvider()

	return &serviceSet{
		db:        db,
		cfg:       cfg,
		userRepo:  userRepo,
		usageRepo: usageRepo,
		subRepo:   subRepo,
		auth:      NewAuthService(userRepo, cfg),
		quota:     quota,
		billing: NewBillingService(provider, userRepo, subRepo,
			repository.NewBillingEventRepository(db)),
		generation: NewGenerationService(userRepo, generationRepo, quota, generator),
		users:      NewUserService(userRepo, generationRepo, quota),
		generator:  generator,
		provider:   provider,
	}
}
