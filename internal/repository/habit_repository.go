package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"habitrack/internal/model"
)

// HabitRepository defines habit persistence operations.
// Every lookup is scoped to the owning user.
type HabitRepository interface {
	Create(ctx context.Context, habit *model.Habit) error
	FindByID(ctx context.Context, userID uuid.UUID, id uint) (*model.Habit, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Habit, error)
	Update(ctx context.Context, habit *model.Habit) error
	Delete(ctx context.Context, userID uuid.UUID, id uint) error
	// Transaction methods
	WithTransaction(ctx context.Context, fn func(ctx context.Context, repo HabitRepository) error) error
}

type habitRepository struct {
	db *gorm.DB
}

// NewHabitRepository creates a new habit repository.
func NewHabitRepository(db *gorm.DB) HabitRepository {
	return &habitRepository{db: db}
}

// Create inserts the habit and its day rows.
func (r *habitRepository) Create(ctx context.Context, habit *model.Habit) error {
	return r.db.WithContext(ctx).Create(habit).Error
}

// FindByID finds a habit by ID owned by userID.
func (r *habitRepository) FindByID(ctx context.Context, userID uuid.UUID, id uint) (*model.Habit, error) {
	var habit model.Habit
	if err := r.db.WithContext(ctx).Preload("Days").
		Where("id = ? AND user_id = ?", id, userID).
		First(&habit).Error; err != nil {
		return nil, err
	}
	return &habit, nil
}

// ListByUser lists all habits of a user ordered by ID.
func (r *habitRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Habit, error) {
	var habits []model.Habit
	if err := r.db.WithContext(ctx).Preload("Days").
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&habits).Error; err != nil {
		return nil, err
	}
	return habits, nil
}

// Update saves the habit columns and replaces its day rows.
func (r *habitRepository) Update(ctx context.Context, habit *model.Habit) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("habit_id = ?", habit.ID).Delete(&model.HabitDay{}).Error; err != nil {
		return err
	}
	if err := db.Omit("Days").Save(habit).Error; err != nil {
		return err
	}
	if len(habit.Days) == 0 {
		return nil
	}
	for i := range habit.Days {
		habit.Days[i].ID = 0
		habit.Days[i].HabitID = habit.ID
	}
	return db.Create(&habit.Days).Error
}

// Delete removes a habit owned by userID together with its day rows.
func (r *habitRepository) Delete(ctx context.Context, userID uuid.UUID, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owned := tx.Model(&model.Habit{}).Select("id").Where("id = ? AND user_id = ?", id, userID)
		if err := tx.Where("habit_id IN (?)", owned).Delete(&model.HabitDay{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&model.Habit{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// WithTransaction executes a function within a database transaction.
func (r *habitRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo HabitRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &habitRepository{db: tx}
		return fn(ctx, txRepo)
	})
}
