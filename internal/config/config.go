package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	"habitrack/internal/storage"
)

const (
	envDevelopment   = "development"
	defaultJWTSecret = "change-me"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	// Anything but "development" requires a real JWT_SECRET.
	AppEnv          string        `env:"APP_ENV" envDefault:"development"`
	ServerPort      string        `env:"SERVER_PORT" envDefault:"8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	DBDriver string `env:"DB_DRIVER" envDefault:"mysql"`
	DBDSN    string `env:"DB_DSN" envDefault:"user:password@tcp(localhost:3306)/habitrack?charset=utf8mb4&parseTime=True&loc=Local"`
	ResetDB  bool   `env:"RESET_DB" envDefault:"false"`

	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`
	RedisPass string `env:"REDIS_PASSWORD"`

	JWTSecret  string `env:"JWT_SECRET" envDefault:"change-me"`
	BcryptCost int    `env:"BCRYPT_COST" envDefault:"10"`
	// Marks the refresh_token cookie Secure. Enable behind TLS.
	CookieSecure bool `env:"COOKIE_SECURE" envDefault:"false"`

	DefaultUserEmail string `env:"DEFAULT_USER_EMAIL" envDefault:"default@habitrack.local"`

	RateLimitRPS       float64 `env:"RATE_LIMIT_RPS" envDefault:"10"`
	RateLimitBurst     int     `env:"RATE_LIMIT_BURST" envDefault:"20"`
	RateLimitAuthRPS   float64 `env:"RATE_LIMIT_AUTH_RPS" envDefault:"2"`
	RateLimitAuthBurst int     `env:"RATE_LIMIT_AUTH_BURST" envDefault:"5"`

	// Empty URL disables event publishing.
	RabbitMQURL   string `env:"RABBITMQ_URL"`
	RabbitMQQueue string `env:"RABBITMQ_QUEUE" envDefault:"user.events"`

	// Empty bucket disables profile photo uploads.
	S3Endpoint      string `env:"S3_ENDPOINT"`
	S3Region        string `env:"S3_REGION" envDefault:"us-east-1"`
	S3AccessKeyID   string `env:"S3_ACCESS_KEY_ID"`
	S3SecretKey     string `env:"S3_SECRET_ACCESS_KEY"`
	S3Bucket        string `env:"S3_BUCKET"`
	S3PublicBaseURL string `env:"S3_PUBLIC_BASE_URL"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"LOG_FILE" envDefault:"logs/habitrack.log"`

	SwaggerHost string `env:"SWAGGER_HOST"`
}

// Load builds Config from the environment, reading .env first when it exists.
func Load() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, fmt.Errorf("BCRYPT_COST out of range: %d", cfg.BcryptCost)
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must not be empty")
	}
	if cfg.UsesDefaultJWTSecret() && cfg.AppEnv != envDevelopment {
		return nil, fmt.Errorf("JWT_SECRET must be set when APP_ENV=%s", cfg.AppEnv)
	}
	return cfg, nil
}

// UsesDefaultJWTSecret reports whether tokens are signed with the built-in development secret.
func (c *Config) UsesDefaultJWTSecret() bool {
	return c.JWTSecret == defaultJWTSecret
}

// PhotoStorageEnabled reports whether object storage is configured.
func (c *Config) PhotoStorageEnabled() bool {
	return c.S3Bucket != ""
}

// S3 returns the object storage settings.
func (c *Config) S3() storage.S3Config {
	return storage.S3Config{
		Endpoint:      c.S3Endpoint,
		Region:        c.S3Region,
		AccessKeyID:   c.S3AccessKeyID,
		SecretKey:     c.S3SecretKey,
		Bucket:        c.S3Bucket,
		PublicBaseURL: c.S3PublicBaseURL,
	}
}
