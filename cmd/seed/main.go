package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"

	"habitrack/internal/auth"
	"habitrack/internal/config"
	"habitrack/internal/db"
	apperrors "habitrack/internal/errors"
	"habitrack/internal/events"
	"habitrack/internal/logger"
	"habitrack/internal/model"
	"habitrack/internal/repository"
	"habitrack/internal/service"
)

// SeedCmd creates the default user and, optionally, a few sample habits.
type SeedCmd struct {
	Email        string `help:"Default user email." default:"${default_email}"`
	Name         string `help:"Default user name." default:"default"`
	Password     string `help:"Default user password." default:"habitrack-default" env:"DEFAULT_USER_PASSWORD"`
	SampleHabits bool   `help:"Create sample habits when the user has none." default:"true" negatable:""`
	Reset        bool   `help:"Drop all tables before seeding."`
}

type seedContext struct {
	cfg    *config.Config
	logger *log.Logger
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("load config", "err", err)
	}
	lg, err := logger.New(logger.Config{Level: cfg.LogLevel})
	if err != nil {
		log.Fatal("init logger", "err", err)
	}

	var cmd SeedCmd
	kctx := kong.Parse(&cmd,
		kong.Name("seed"),
		kong.Description("Seed the habitrack database with the default user."),
		kong.UsageOnError(),
		kong.Vars{"default_email": cfg.DefaultUserEmail},
	)
	if err := kctx.Run(&seedContext{cfg: cfg, logger: lg}); err != nil {
		lg.Fatal("seed failed", "err", err)
	}
}

// Run executes the seed.
func (c *SeedCmd) Run(sc *seedContext) error {
	ctx := context.Background()

	gormDB, err := db.Open(sc.cfg.DBDriver, sc.cfg.DBDSN)
	if err != nil {
		return err
	}
	if c.Reset {
		sc.logger.Warn("dropping all tables")
		if err := db.Reset(gormDB); err != nil {
			return err
		}
	}
	if err := db.Migrate(gormDB); err != nil {
		return err
	}

	userRepo := repository.NewUserRepository(gormDB)
	habitRepo := repository.NewHabitRepository(gormDB)
	authService := service.NewAuthService(
		userRepo,
		auth.NewJWTService(sc.cfg.JWTSecret),
		auth.NewTokenStore(nil),
		events.NoopPublisher{},
		sc.logger,
		sc.cfg.BcryptCost,
	)

	_, err = authService.Register(ctx, service.RegisterInput{
		Email:    c.Email,
		Name:     c.Name,
		Password: c.Password,
	})
	switch {
	case err == nil:
		sc.logger.Info("default user created", "email", c.Email)
	case errors.Is(err, apperrors.ErrEmailExists):
		sc.logger.Info("default user already present", "email", c.Email)
	default:
		return fmt.Errorf("create default user: %w", err)
	}

	if !c.SampleHabits {
		return nil
	}

	user, err := userRepo.FindByEmail(ctx, c.Email)
	if err != nil {
		return fmt.Errorf("load default user: %w", err)
	}
	habitService := service.NewHabitService(habitRepo)
	existing, err := habitService.ListHabits(ctx, user.ID)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		sc.logger.Info("sample habits already present", "count", len(existing))
		return nil
	}

	samples := sampleHabits(time.Now().UTC())
	for _, input := range samples {
		if _, err := habitService.CreateHabit(ctx, user.ID, input); err != nil {
			return fmt.Errorf("create habit %q: %w", input.Title, err)
		}
	}
	sc.logger.Info("sample habits created", "count", len(samples))
	return nil
}

func sampleHabits(now time.Time) []service.HabitInput {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	morning := "07:00"
	evening := "21:30"
	return []service.HabitInput{
		{
			Title:     "Morning run",
			Action:    "run",
			Value:     decimal.NewFromInt(3),
			Unit:      "km",
			Time:      &morning,
			StartDate: start,
			Days:      []model.HabitRecordDay{model.Monday, model.Wednesday, model.Friday},
		},
		{
			Title:     "Read",
			Action:    "read pages",
			Value:     decimal.NewFromInt(20),
			Unit:      "pages",
			Time:      &evening,
			StartDate: start,
			Days:      model.HabitRecordDays,
		},
		{
			Title:     "Drink water",
			Action:    "drink",
			Value:     decimal.RequireFromString("1.5"),
			Unit:      "L",
			StartDate: start,
			Days:      model.HabitRecordDays,
		},
	}
}
