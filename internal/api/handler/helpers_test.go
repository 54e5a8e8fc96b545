package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/bio_go_server/config"
	"github.com/qs3c/bio_go_server/internal/api/middleware"
	"github.com/qs3c/bio_go_server/internal/pkg/billing"
	"github.com/qs3c/bio_go_server/internal/pkg/response"
	"github.com/qs3c/bio_go_server/internal/repository"
	"github.com/qs3c/bio_go_server/internal/service"
	"github.com/qs3c/bio_go_server/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	return &config.Config{
		JWT:   config.JWTConfig{Secret: "test-secret-key", ExpireHours: 24},
		Auth:  config.AuthConfig{MinPasswordLength: 6, BcryptCost: 4},
		Quota: config.QuotaConfig{FreeDailyLimit: 3, Timezone: "UTC", Store: "database"},
	}
}

type stubGenerator struct {
	err error
}

func (g *stubGenerator) Complete(ctx context.Context, prompt string) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	return "Night owl 🦉 | Shipping code", nil
}

type stubProvider struct {
	events map[string]*billing.Event
}

func (p *stubProvider) CreateCustomer(ctx context.Context, userID int64, email string) (string, error) {
	return "cus_stub", nil
}

func (p *stubProvider) CreateCheckoutSession(ctx context.Context, userID int64, customerID string) (string, error) {
	return "https://checkout.stripe.test/session", nil
}

func (p *stubProvider) CreatePortalSession(ctx context.Context, customerID string) (string, error) {
	if customerID == "cus_broken" {
		return "", errors.New("stripe down")
	}
	return "https://billing.stripe.test/portal", nil
}

func (p *stubProvider) ParseWebhook(payload []byte, signature string) (*billing.Event, error) {
	event, ok := p.events[signature]
	if !ok {
		return nil, billing.ErrInvalidSignature
	}
	return event, nil
}

type testEnv struct {
	db          *gorm.DB
	authService *service.AuthService
	generator   *stubGenerator
	provider    *stubProvider
	auth        *AuthHandler
	user        *UserHandler
	quota       *QuotaHandler
	generate    *GenerateHandler
	billing     *BillingHandler
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	cfg := testConfig()
	userRepo := repository.NewUserRepository(db)
	generationRepo := repository.NewGenerationRepository(db)

	authService := service.NewAuthService(userRepo, cfg)
	quotaService := service.NewQuotaService(repository.NewUsageRepository(db), cfg)
	generator := &stubGenerator{}
	provider := &stubProvider{events: make(map[string]*billing.Event)}
	userService := service.NewUserService(userRepo, generationRepo, quotaService)
	billingService := service.NewBillingService(provider, userRepo,
		repository.NewSubscriptionRepository(db),
		repository.NewBillingEventRepository(db))

	return &testEnv{
		db:          db,
		authService: authService,
		generator:   generator,
		provider:    provider,
		auth:        NewAuthHandler(authService),
		user:        NewUserHandler(userService),
		quota:       NewQuotaHandler(userService),
		generate:    NewGenerateHandler(service.NewGenerationService(userRepo, generationRepo, quotaService, generator)),
		billing:     NewBillingHandler(billingService),
	}
}

// asUser 模拟认证中间件
func asUser(userID int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Next()
	}
}

func performRequest(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	return resp
}

func dataMap(t *testing.T, resp response.Response) map[string]interface{} {
	t.Helper()
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok, "response data is not an object: %#v", resp.Data)
	return data
}
