package api

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/bio_go_server/config"
	"github.com/qs3c/bio_go_server/internal/api/handler"
	"github.com/qs3c/bio_go_server/internal/api/middleware"
	"github.com/qs3c/bio_go_server/internal/service"
)

type Router struct {
	authHandler     *handler.AuthHandler
	userHandler     *handler.UserHandler
	quotaHandler    *handler.QuotaHandler
	generateHandler *handler.GenerateHandler
	billingHandler  *handler.BillingHandler
	authService     *service.AuthService
	cfg             *config.Config
}

func NewRouter(
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	quotaHandler *handler.QuotaHandler,
	generateHandler *handler.GenerateHandler,
	billingHandler *handler.BillingHandler,
	authService *service.AuthService,
	cfg *config.Config,
) *Router {
	return &Router{
		authHandler:     authHandler,
		userHandler:     userHandler,
		quotaHandler:    quotaHandler,
		generateHandler: generateHandler,
		billingHandler:  billingHandler,
		authService:     authService,
		cfg:             cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	if r.cfg.Server.Mode == "debug" {
		engine.Use(gin.Logger())
	}
	engine.Use(middleware.CORS(r.cfg.CORS))

	api := engine.Group("/api/v1")
	{
		api.GET("/health", handler.Health)

		// 公开接口 - 认证
		auth := api.Group("/auth")
		{
			auth.POST("/register", r.authHandler.Register)
			auth.POST("/login", r.authHandler.Login)
		}

		// Stripe 回调，靠签名认证
		api.POST("/billing/webhook", r.billingHandler.Webhook)

		// 需要认证的接口
		authenticated := api.Group("")
		authenticated.Use(middleware.Auth(r.authService))
		{
			authenticated.GET("/profile", r.userHandler.GetProfile)
			authenticated.GET("/quota", r.quotaHandler.GetQuota)
			authenticated.GET("/generations", r.userHandler.ListGenerations)

			// 先校验请求再做配额准入，由生成服务完成
			authenticated.POST("/generate", r.generateHandler.Generate)

			billing := authenticated.Group("/billing")
			{
				billing.POST("/checkout", r.billingHandler.Checkout)
				billing.POST("/portal", r.billingHandler.Portal)
			}
		}
	}

	return engine
}
