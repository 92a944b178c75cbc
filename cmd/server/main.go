package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"

	"habitrack/docs" // swagger docs
	"habitrack/internal/auth"
	"habitrack/internal/cache"
	"habitrack/internal/config"
	"habitrack/internal/db"
	"habitrack/internal/events"
	"habitrack/internal/handler"
	"habitrack/internal/logger"
	"habitrack/internal/middleware"
	"habitrack/internal/repository"
	"habitrack/internal/router"
	"habitrack/internal/service"
	"habitrack/internal/storage"
)

// @title Habitrack API
// @version 1.0
// @description Habit tracking API with JWT authentication, user profiles and habit definitions.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("load config", "err", err)
	}

	lg, err := logger.New(logger.Config{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		log.Fatal("init logger", "err", err)
	}

	if cfg.UsesDefaultJWTSecret() {
		lg.Warn("JWT_SECRET not set, signing tokens with the development secret")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gormDB, err := db.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		lg.Fatal("database init", "err", err)
	}

	if cfg.ResetDB {
		lg.Warn("RESET_DB=true detected, dropping all tables")
		if err := db.Reset(gormDB); err != nil {
			lg.Fatal("reset database", "err", err)
		}
	}
	if err := db.Migrate(gormDB); err != nil {
		lg.Fatal("migrate database", "err", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()
	if err := cacheClient.Ping(ctx); err != nil {
		lg.Warn("redis unavailable, continuing without cache", "addr", cfg.RedisAddr, "err", err)
	}

	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.RabbitMQURL != "" {
		client, err := events.NewClient(cfg.RabbitMQURL, cfg.RabbitMQQueue, lg)
		if err != nil {
			lg.Fatal("rabbitmq init", "err", err)
		}
		defer client.Close()
		publisher = client
	}

	var photos storage.PhotoStore
	if cfg.PhotoStorageEnabled() {
		store, err := storage.NewS3Store(ctx, cfg.S3())
		if err != nil {
			lg.Fatal("object storage init", "err", err)
		}
		photos = store
	} else {
		lg.Info("S3_BUCKET not set, profile photo uploads disabled")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	habitRepo := repository.NewHabitRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtService, tokenStore, publisher, lg, cfg.BcryptCost)
	userService := service.NewUserService(userRepo, cacheClient, photos, publisher, lg, service.UserServiceConfig{
		BcryptCost:       cfg.BcryptCost,
		DefaultUserEmail: cfg.DefaultUserEmail,
	})
	habitService := service.NewHabitService(habitRepo)

	apiLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	defer apiLimiter.Stop()
	authLimiter := middleware.NewRateLimiter(cfg.RateLimitAuthRPS, cfg.RateLimitAuthBurst)
	defer authLimiter.Stop()

	e := echo.New()
	e.HideBanner = true

	router.Register(e, router.Deps{
		Logger:       lg,
		JWT:          jwtService,
		TokenStore:   tokenStore,
		APILimiter:   apiLimiter,
		AuthLimiter:  authLimiter,
		AuthHandler:  handler.NewAuthHandler(authService, cfg.CookieSecure),
		UserHandler:  handler.NewUserHandler(userService),
		HabitHandler: handler.NewHabitHandler(habitService),
	})

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}

	addr := ":" + cfg.ServerPort
	go func() {
		lg.Info("server listening", "addr", addr, "swagger", "/swagger/index.html")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("server start", "err", err)
		}
	}()

	<-ctx.Done()
	lg.Info("shutting down", "timeout", cfg.ShutdownTimeout)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		lg.Error("graceful shutdown", "err", err)
	}
}
