package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/bio_go_server/config"
	"github.com/qs3c/bio_go_server/internal/api/handler"
	"github.com/qs3c/bio_go_server/internal/pkg/billing"
	"github.com/qs3c/bio_go_server/internal/pkg/response"
	"github.com/qs3c/bio_go_server/internal/repository"
	"github.com/qs3c/bio_go_server/internal/service"
	"github.com/qs3c/bio_go_server/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type echoGenerator struct{}

func (echoGenerator) Complete(ctx context.Context, prompt string) (string, error) {
	return "Dreamer ✨ | Maker", nil
}

// signedEvents 签名即事件表
type signedEvents map[string]*billing.Event

func (signedEvents) CreateCustomer(ctx context.Context, userID int64, email string) (string, error) {
	return "cus_e2e", nil
}

func (signedEvents) CreateCheckoutSession(ctx context.Context, userID int64, customerID string) (string, error) {
	return "https://checkout.stripe.test/e2e", nil
}

func (signedEvents) CreatePortalSession(ctx context.Context, customerID string) (string, error) {
	return "https://billing.stripe.test/e2e", nil
}

func (e signedEvents) ParseWebhook(payload []byte, signature string) (*billing.Event, error) {
	if event, ok := e[signature]; ok {
		return event, nil
	}
	return nil, billing.ErrInvalidSignature
}

func setupRouter(t *testing.T) (*gin.Engine, signedEvents) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	cfg := &config.Config{
		Server: config.ServerConfig{Mode: "test"},
		JWT:    config.JWTConfig{Secret: "e2e-secret", ExpireHours: 720},
		Auth:   config.AuthConfig{MinPasswordLength: 6, BcryptCost: 4},
		Quota:  config.QuotaConfig{FreeDailyLimit: 3, Timezone: "UTC", Store: "database"},
		CORS: config.CORSConfig{
			AllowedOrigins: []string{"http://localhost:3000"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type", "Authorization"},
		},
	}

	events := signedEvents{}
	userRepo := repository.NewUserRepository(db)
	generationRepo := repository.NewGenerationRepository(db)

	authService := service.NewAuthService(userRepo, cfg)
	quotaService := service.NewQuotaService(repository.NewUsageRepository(db), cfg)
	userService := service.NewUserService(userRepo, generationRepo, quotaService)
	generationService := service.NewGenerationService(userRepo, generationRepo, quotaService, echoGenerator{})
	billingService := service.NewBillingService(events, userRepo,
		repository.NewSubscriptionRepository(db),
		repository.NewBillingEventRepository(db))

	router := NewRouter(
		handler.NewAuthHandler(authService),
		handler.NewUserHandler(userService),
		handler.NewQuotaHandler(userService),
		handler.NewGenerateHandler(generationService),
		handler.NewBillingHandler(billingService),
		authService,
		cfg,
	)

	return router.Setup(), events
}

func call(t *testing.T, engine http.Handler, method, path, token string, body interface{}) (*httptest.ResponseRecorder, response.Response) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w, resp
}

func data(t *testing.T, resp response.Response) map[string]interface{} {
	t.Helper()
	m, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	return m
}

func TestRouter_Health(t *testing.T) {
	engine, _ := setupRouter(t)

	w, resp := call(t, engine, "GET", "/api/v1/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", data(t, resp)["status"])
}

func TestRouter_ProtectedRoutesRequireToken(t *testing.T) {
	engine, _ := setupRouter(t)

	for _, route := range []struct{ method, path string }{
		{"GET", "/api/v1/profile"},
		{"GET", "/api/v1/quota"},
		{"GET", "/api/v1/generations"},
		{"POST", "/api/v1/generate"},
		{"POST", "/api/v1/billing/checkout"},
		{"POST", "/api/v1/billing/portal"},
	} {
		w, resp := call(t, engine, route.method, route.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, route.path)
		assert.Equal(t, response.CodeAuthFailed, resp.Code, route.path)
	}
}

func TestRouter_EndToEnd(t *testing.T) {
	engine, events := setupRouter(t)

	credentials := map[string]string{"email": "e2e@example.com", "password": "password123"}

	w, resp := call(t, engine, "POST", "/api/v1/auth/register", "", credentials)
	require.Equal(t, http.StatusOK, w.Code)
	account := data(t, resp)["account"].(map[string]interface{})
	userID := int64(account["id"].(float64))

	w, resp = call(t, engine, "POST", "/api/v1/auth/login", "", credentials)
	require.Equal(t, http.StatusOK, w.Code)
	token := data(t, resp)["token"].(string)

	bio := map[string]string{"name": "Ada", "niche": "coding"}
	for i := 0; i < 3; i++ {
		w, resp = call(t, engine, "POST", "/api/v1/generate", token, bio)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Dreamer ✨ | Maker", data(t, resp)["bio"])
	}

	w, resp = call(t, engine, "POST", "/api/v1/generate", token, bio)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, true, data(t, resp)["needsUpgrade"])

	w, resp = call(t, engine, "GET", "/api/v1/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(3), data(t, resp)["totalGenerations"])
	assert.Equal(t, float64(3), data(t, resp)["dailyUsage"])

	events["sig-activate"] = &billing.Event{
		ID:             "evt_e2e",
		Type:           "checkout.session.completed",
		Kind:           billing.EventActivated,
		UserRef:        strconv.FormatInt(userID, 10),
		CustomerID:     "cus_e2e",
		SubscriptionID: "sub_e2e",
	}

	req := httptest.NewRequest("POST", "/api/v1/billing/webhook", bytes.NewBufferString(`{}`))
	req.Header.Set("Stripe-Signature", "sig-activate")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	w, resp = call(t, engine, "POST", "/api/v1/generate", token, bio)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, data(t, resp)["isPremium"])

	w, resp = call(t, engine, "GET", "/api/v1/quota", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(-1), data(t, resp)["dailyLimit"])

	w, resp = call(t, engine, "POST", "/api/v1/billing/portal", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://billing.stripe.test/e2e", data(t, resp)["url"])
}

func TestRouter_GenerateValidatesBeforeQuota(t *testing.T) {
	engine, _ := setupRouter(t)

	credentials := map[string]string{"email": "limit@example.com", "password": "password123"}
	w, resp := call(t, engine, "POST", "/api/v1/auth/register", "", credentials)
	require.Equal(t, http.StatusOK, w.Code)
	token := data(t, resp)["token"].(string)

	bio := map[string]string{"name": "Ada", "niche": "coding"}
	for i := 0; i < 3; i++ {
		w, _ = call(t, engine, "POST", "/api/v1/generate", token, bio)
		require.Equal(t, http.StatusOK, w.Code)
	}

	// 额度已用完，缺字段的请求仍返回参数错误
	w, resp = call(t, engine, "POST", "/api/v1/generate", token, map[string]string{"name": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, response.CodeParamError, resp.Code)

	w, resp = call(t, engine, "POST", "/api/v1/generate", token, bio)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, response.CodeQuotaExceeded, resp.Code)
}

func TestRouter_WebhookBadSignature(t *testing.T) {
	engine, _ := setupRouter(t)

	req := httptest.NewRequest("POST", "/api/v1/billing/webhook", bytes.NewBufferString(`{}`))
	req.Header.Set("Stripe-Signature", "t=1,v1=forged")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
