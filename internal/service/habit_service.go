package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "habitrack/internal/errors"
	"habitrack/internal/model"
	"habitrack/internal/repository"
)

// HabitService handles habit definitions.
type HabitService interface {
	CreateHabit(ctx context.Context, userID uuid.UUID, input HabitInput) (*HabitDTO, error)
	ListHabits(ctx context.Context, userID uuid.UUID) ([]HabitDTO, error)
	GetHabit(ctx context.Context, userID uuid.UUID, id uint) (*HabitDTO, error)
	UpdateHabit(ctx context.Context, userID uuid.UUID, id uint, input HabitInput) (*HabitDTO, error)
	DeleteHabit(ctx context.Context, userID uuid.UUID, id uint) error
}

type habitService struct {
	repo repository.HabitRepository
}

// NewHabitService creates a new habit service.
func NewHabitService(repo repository.HabitRepository) HabitService {
	return &habitService{repo: repo}
}

func validatePeriod(input HabitInput) error {
	if input.EndDate != nil && input.EndDate.Before(input.StartDate) {
		return apperrors.ErrInvalidHabitPeriod
	}
	return nil
}

func applyInput(h *model.Habit, input HabitInput) {
	h.Title = input.Title
	h.Action = input.Action
	h.Value = input.Value
	h.Unit = input.Unit
	h.Time = input.Time
	h.StartDate = input.StartDate
	h.EndDate = input.EndDate
	h.SetDays(input.Days)
}

// CreateHabit persists a new habit owned by userID.
func (s *habitService) CreateHabit(ctx context.Context, userID uuid.UUID, input HabitInput) (*HabitDTO, error) {
	if err := validatePeriod(input); err != nil {
		return nil, err
	}

	habit := &model.Habit{UserID: userID}
	applyInput(habit, input)

	if err := s.repo.Create(ctx, habit); err != nil {
		return nil, fmt.Errorf("create habit: %w", err)
	}
	dto := NewHabitDTO(habit)
	return &dto, nil
}

// ListHabits lists the habits of userID.
func (s *habitService) ListHabits(ctx context.Context, userID uuid.UUID) ([]HabitDTO, error) {
	habits, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}
	out := make([]HabitDTO, 0, len(habits))
	for i := range habits {
		out = append(out, NewHabitDTO(&habits[i]))
	}
	return out, nil
}

// GetHabit returns one habit owned by userID.
func (s *habitService) GetHabit(ctx context.Context, userID uuid.UUID, id uint) (*HabitDTO, error) {
	habit, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, mapHabitErr(err, "get habit")
	}
	dto := NewHabitDTO(habit)
	return &dto, nil
}

// UpdateHabit replaces the editable fields and days of a habit.
func (s *habitService) UpdateHabit(ctx context.Context, userID uuid.UUID, id uint, input HabitInput) (*HabitDTO, error) {
	if err := validatePeriod(input); err != nil {
		return nil, err
	}

	var updated *model.Habit
	err := s.repo.WithTransaction(ctx, func(ctx context.Context, repo repository.HabitRepository) error {
		habit, err := repo.FindByID(ctx, userID, id)
		if err != nil {
			return err
		}
		applyInput(habit, input)
		if err := repo.Update(ctx, habit); err != nil {
			return err
		}
		updated = habit
		return nil
	})
	if err != nil {
		return nil, mapHabitErr(err, "update habit")
	}
	dto := NewHabitDTO(updated)
	return &dto, nil
}

// DeleteHabit removes a habit owned by userID.
func (s *habitService) DeleteHabit(ctx context.Context, userID uuid.UUID, id uint) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return mapHabitErr(err, "delete habit")
	}
	return nil
}

func mapHabitErr(err error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.ErrHabitNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
