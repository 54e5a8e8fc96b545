package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Quota    QuotaConfig    `mapstructure:"quota"`
	Stripe   StripeConfig   `mapstructure:"stripe"`
	LLM      LLMConfig      `mapstructure:"llm"`
	CORS     CORSConfig     `mapstructure:"cors"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Driver       string `mapstructure:"driver"` // sqlite, mysql
	DSN          string `mapstructure:"dsn"`
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

type AuthConfig struct {
	MinPasswordLength int `mapstructure:"min_password_length"`
	BcryptCost        int `mapstructure:"bcrypt_cost"`
}

type QuotaConfig struct {
	FreeDailyLimit int    `mapstructure:"free_daily_limit"`
	Timezone       string `mapstructure:"timezone"`
	Store          string `mapstructure:"store"` // database, redis
	RedisKeyPrefix string `mapstructure:"redis_key_prefix"`
	RetentionDays  int    `mapstructure:"retention_days"`
}

type StripeConfig struct {
	SecretKey     string `mapstructure:"secret_key"`
	WebhookSecret string `mapstructure:"webhook_secret"`
	PriceID       string `mapstructure:"price_id"`
	Currency      string `mapstructure:"currency"`
	UnitAmount    int64  `mapstructure:"unit_amount"` // 最小货币单位，499 = 4.99
	ProductName   string `mapstructure:"product_name"`
	FrontendURL   string `mapstructure:"frontend_url"`
}

type LLMConfig struct {
	APIKey         string  `mapstructure:"api_key"`
	BaseURL        string  `mapstructure:"base_url"`
	Model          string  `mapstructure:"model"`
	MaxTokens      int     `mapstructure:"max_tokens"`
	Temperature    float64 `mapstructure:"temperature"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

// 部署平台常用的环境变量别名
var envBindings = map[string]string{
	"jwt.secret":             "JWT_SECRET",
	"quota.free_daily_limit": "FREE_DAILY_LIMIT",
	"stripe.secret_key":      "STRIPE_SECRET_KEY",
	"stripe.webhook_secret":  "STRIPE_WEBHOOK_SECRET",
	"stripe.price_id":        "STRIPE_PRICE_ID",
	"stripe.frontend_url":    "FRONTEND_URL",
	"llm.api_key":            "OPENAI_API_KEY",
	"database.dsn":           "DATABASE_URL",
	"server.port":            "PORT",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.mode", "debug")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "bio.db")
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_open_conns", 20)

	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.pool_size", 10)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expire_hours", 24*30)

	v.SetDefault("auth.min_password_length", 6)
	v.SetDefault("auth.bcrypt_cost", 10)

	v.SetDefault("quota.free_daily_limit", 3)
	v.SetDefault("quota.timezone", "UTC")
	v.SetDefault("quota.store", "database")
	v.SetDefault("quota.redis_key_prefix", "bio:usage:")
	v.SetDefault("quota.retention_days", 90)

	v.SetDefault("stripe.secret_key", "")
	v.SetDefault("stripe.webhook_secret", "")
	v.SetDefault("stripe.price_id", "")
	v.SetDefault("stripe.currency", "eur")
	v.SetDefault("stripe.unit_amount", 499)
	v.SetDefault("stripe.product_name", "Premium subscription")
	v.SetDefault("stripe.frontend_url", "http://localhost:3000")

	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.model", "gpt-3.5-turbo")
	v.SetDefault("llm.max_tokens", 100)
	v.SetDefault("llm.temperature", 0.9)
	v.SetDefault("llm.timeout_seconds", 30)

	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Content-Type", "Authorization"})
}

// Load 读取配置：默认值 < 配置文件 < 环境变量（含 .env）
func Load(configPath string) (*Config, error) {
	// .env 不存在时忽略
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	// 优先尝试读取 config.local.yaml（包含真实密钥，不提交到git）
	if configPath != "" {
		localConfigPath := filepath.Join(filepath.Dir(configPath), "config.local.yaml")
		if _, err := os.Stat(localConfigPath); err == nil {
			configPath = localConfigPath
		}
	}

	// 环境变量覆盖
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for key, env := range envBindings {
		if err := v.BindEnv(key, strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, err
		}
	}

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			v.SetConfigFile(configPath)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate 启动时校验，缺失签名密钥直接失败
func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWT.Secret) == "" {
		return errors.New("config: jwt.secret is required (set JWT_SECRET)")
	}
	if c.JWT.ExpireHours <= 0 {
		return errors.New("config: jwt.expire_hours must be positive")
	}
	if c.Auth.MinPasswordLength <= 0 {
		return errors.New("config: auth.min_password_length must be positive")
	}
	if c.Quota.FreeDailyLimit < 0 {
		return errors.New("config: quota.free_daily_limit must not be negative")
	}
	if _, err := time.LoadLocation(c.Quota.Timezone); err != nil {
		return fmt.Errorf("config: invalid quota.timezone %q: %w", c.Quota.Timezone, err)
	}

	switch c.Quota.Store {
	case "database", "redis":
	default:
		return fmt.Errorf("config: unknown quota.store %q", c.Quota.Store)
	}

	switch c.Database.Driver {
	case "sqlite", "mysql":
	default:
		return fmt.Errorf("config: unknown database.driver %q", c.Database.Driver)
	}

	return nil
}

// Location 配额日期所用时区
func (c QuotaConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// HTTPTimeout LLM 请求超时
func (c LLMConfig) HTTPTimeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}
