package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/qs3c/bio_go_server/config"
	"github.com/qs3c/bio_go_server/internal/api"
	"github.com/qs3c/bio_go_server/internal/api/handler"
	"github.com/qs3c/bio_go_server/internal/database"
	"github.com/qs3c/bio_go_server/internal/pkg/billing"
	"github.com/qs3c/bio_go_server/internal/pkg/cron"
	"github.com/qs3c/bio_go_server/internal/pkg/llm"
	"github.com/qs3c/bio_go_server/internal/repository"
	"github.com/qs3c/bio_go_server/internal/service"
)

func main() {
	// 加载配置
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	setupLogger(cfg.Server.Mode)

	// 初始化数据库
	db, err := database.NewDB(&cfg.Database, cfg.Server.Mode)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	slog.Info("database connected", "driver", cfg.Database.Driver)

	// 每日计数存储
	var usageStore service.UsageStore
	switch cfg.Quota.Store {
	case "redis":
		rdb, err := database.NewRedis(&cfg.Redis)
		if err != nil {
			log.Fatalf("Failed to connect redis: %v", err)
		}
		defer rdb.Close()
		usageStore = repository.NewRedisUsageStore(rdb, cfg.Quota.RedisKeyPrefix)
		slog.Info("redis connected", "addr", fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port))
	default:
		usageStore = repository.NewUsageRepository(db)
	}

	// 外部服务
	if cfg.LLM.APIKey == "" {
		slog.Warn("llm.api_key is empty, generation requests will fail")
	}
	if cfg.Stripe.SecretKey == "" || cfg.Stripe.WebhookSecret == "" {
		slog.Warn("stripe is not fully configured, billing requests will fail")
	}
	llmClient := llm.NewClient(&cfg.LLM)
	stripeClient := billing.NewClient(&cfg.Stripe)

	// 初始化 Repository
	userRepo := repository.NewUserRepository(db)
	generationRepo := repository.NewGenerationRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	billingEventRepo := repository.NewBillingEventRepository(db)

	// 初始化 Service
	authService := service.NewAuthService(userRepo, cfg)
	quotaService := service.NewQuotaService(usageStore, cfg)
	userService := service.NewUserService(userRepo, generationRepo, quotaService)
	generationService := service.NewGenerationService(userRepo, generationRepo, quotaService, llmClient)
	billingService := service.NewBillingService(stripeClient, userRepo, subscriptionRepo, billingEventRepo)

	// 定时清理过期计数
	cronService := cron.NewService(quotaService, cfg.Quota.Location())
	cronService.Start()
	defer cronService.Stop()

	// 初始化 Handler
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	quotaHandler := handler.NewQuotaHandler(userService)
	generateHandler := handler.NewGenerateHandler(generationService)
	billingHandler := handler.NewBillingHandler(billingService)

	// 初始化 Router
	router := api.NewRouter(
		authHandler,
		userHandler,
		quotaHandler,
		generateHandler,
		billingHandler,
		authService,
		cfg,
	)
	engine := router.Setup()

	// 启动服务器
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	slog.Info("server starting", "addr", addr, "mode", cfg.Server.Mode)
	if err := engine.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func setupLogger(mode string) {
	level := slog.LevelInfo
	if mode == "debug" {
		level = slog.LevelDebug
	}

	var h slog.Handler
	if mode == "release" {
		h = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		h = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(h))
}
