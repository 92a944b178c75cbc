package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"

	"habitrack/internal/config"
	"habitrack/internal/events"
	"habitrack/internal/logger"
	"habitrack/internal/storage"
	"habitrack/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("load config", "err", err)
	}
	lg, err := logger.New(logger.Config{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		log.Fatal("init logger", "err", err)
	}
	lg = lg.WithPrefix("habitrack-worker")

	if cfg.RabbitMQURL == "" {
		lg.Fatal("RABBITMQ_URL is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var photos storage.PhotoStore
	if cfg.PhotoStorageEnabled() {
		store, err := storage.NewS3Store(ctx, cfg.S3())
		if err != nil {
			lg.Fatal("object storage init", "err", err)
		}
		photos = store
	}

	client, err := events.NewClient(cfg.RabbitMQURL, cfg.RabbitMQQueue, lg)
	if err != nil {
		lg.Fatal("rabbitmq init", "err", err)
	}
	defer client.Close()

	h := worker.NewUserEventHandler(photos, lg)
	lg.Info("consuming user events", "queue", cfg.RabbitMQQueue)
	if err := client.ConsumeUserEvents(ctx, h.Handle); err != nil {
		lg.Error("consumer stopped", "err", err)
		return
	}
	lg.Info("worker stopped")
}
