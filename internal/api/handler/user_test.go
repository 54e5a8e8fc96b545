package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/bio_go_server/internal/model"
	"github.com/qs3c/bio_go_server/internal/testutil"
)

func TestUserHandler_GetProfile(t *testing.T) {
	env := setupEnv(t)
	user := testutil.TestUser(t, env.db)
	testutil.TestGeneration(t, env.db, user.ID, "hello")
	testutil.TestDailyUsage(t, env.db, user.ID, time.Now().UTC().Format(model.DateLayout), 1)

	router := gin.New()
	router.GET("/profile", asUser(user.ID), env.user.GetProfile)

	w := performRequest(router, "GET", "/profile", nil)
	require.Equal(t, http.StatusOK, w.Code)

	data := dataMap(t, parseResponse(t, w))
	assert.Equal(t, float64(1), data["totalGenerations"])
	assert.Equal(t, float64(1), data["dailyUsage"])
	account := data["account"].(map[string]interface{})
	assert.Equal(t, user.Email, account["email"])
}

func TestUserHandler_GetProfile_Unauthenticated(t *testing.T) {
	env := setupEnv(t)

	router := gin.New()
	router.GET("/profile", env.user.GetProfile)

	w := performRequest(router, "GET", "/profile", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUserHandler_GetProfile_AccountGone(t *testing.T) {
	env := setupEnv(t)

	router := gin.New()
	router.GET("/profile", asUser(99999), env.user.GetProfile)

	w := performRequest(router, "GET", "/profile", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUserHandler_ListGenerations(t *testing.T) {
	env := setupEnv(t)
	user := testutil.TestUser(t, env.db)
	for i := 0; i < 3; i++ {
		testutil.TestGeneration(t, env.db, user.ID, "bio")
	}

	router := gin.New()
	router.GET("/generations", asUser(user.ID), env.user.ListGenerations)

	w := performRequest(router, "GET", "/generations?page=1&page_size=2", nil)
	require.Equal(t, http.StatusOK, w.Code)

	data := dataMap(t, parseResponse(t, w))
	assert.Equal(t, float64(3), data["total"])
	assert.Equal(t, float64(2), data["page_size"])
	assert.Len(t, data["items"], 2)

	w = performRequest(router, "GET", "/generations?page_size=1000", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQuotaHandler_GetQuota(t *testing.T) {
	env := setupEnv(t)
	free := testutil.TestUser(t, env.db)
	premium := testutil.TestUser(t, env.db, testutil.WithPremium(true))

	router := gin.New()
	router.GET("/quota/free", asUser(free.ID), env.quota.GetQuota)
	router.GET("/quota/premium", asUser(premium.ID), env.quota.GetQuota)

	w := performRequest(router, "GET", "/quota/free", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := dataMap(t, parseResponse(t, w))
	assert.Equal(t, float64(3), data["dailyLimit"])
	assert.Equal(t, float64(3), data["dailyRemain"])

	w = performRequest(router, "GET", "/quota/premium", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data = dataMap(t, parseResponse(t, w))
	assert.Equal(t, true, data["isPremium"])
	assert.Equal(t, float64(-1), data["dailyLimit"])
}
