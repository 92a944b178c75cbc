package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"habitrack/internal/cache"
	apperrors "habitrack/internal/errors"
	"habitrack/internal/events"
	"habitrack/internal/model"
	"habitrack/internal/repository"
	"habitrack/internal/storage"
)

const userCacheTTL = 5 * time.Minute

// UserService exposes profile operations.
type UserService interface {
	GetUserInfoByID(ctx context.Context, id uuid.UUID) (*UserInfo, error)
	GetDefaultUser(ctx context.Context) (*UserInfo, error)
	GetUserProfile(info *UserInfo) *UserProfile
	ComparePasswordByID(ctx context.Context, id uuid.UUID, password string) (bool, error)
	UpdateUserPassword(ctx context.Context, id uuid.UUID, currentPassword, targetPassword string) error
	UpdateUserProfile(ctx context.Context, id uuid.UUID, update model.ProfileUpdate) error
	UploadProfilePhoto(ctx context.Context, id uuid.UUID, filename, contentType string, body io.Reader) (string, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

// UserServiceConfig holds the non-injected settings of UserService.
type UserServiceConfig struct {
	BcryptCost       int
	DefaultUserEmail string
}

type userService struct {
	repo      repository.UserRepository
	cache     *cache.Client
	photos    storage.PhotoStore
	publisher events.Publisher
	logger    *log.Logger
	cfg       UserServiceConfig
}

// NewUserService builds a UserService. photos may be nil to disable uploads.
func NewUserService(
	repo repository.UserRepository,
	cacheClient *cache.Client,
	photos storage.PhotoStore,
	publisher events.Publisher,
	logger *log.Logger,
	cfg UserServiceConfig,
) UserService {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = defaultBcryptCost
	}
	return &userService{
		repo:      repo,
		cache:     cacheClient,
		photos:    photos,
		publisher: publisher,
		logger:    logger,
		cfg:       cfg,
	}
}

func (s *userService) cacheKey(id uuid.UUID) string {
	return fmt.Sprintf("user:%s", id)
}

func (s *userService) invalidate(ctx context.Context, id uuid.UUID) {
	_ = s.cache.Delete(ctx, s.cacheKey(id))
}

// GetUserInfoByID returns the public projection of a user, read through the cache.
func (s *userService) GetUserInfoByID(ctx context.Context, id uuid.UUID) (*UserInfo, error) {
	var cached UserInfo
	if s.cache.GetJSON(ctx, s.cacheKey(id), &cached) {
		return &cached, nil
	}

	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}

	info := NewUserInfo(user)
	_ = s.cache.SetJSON(ctx, s.cacheKey(id), info, userCacheTTL)
	return info, nil
}

// GetDefaultUser returns the configured default user.
func (s *userService) GetDefaultUser(ctx context.Context) (*UserInfo, error) {
	user, err := s.repo.FindByEmail(ctx, s.cfg.DefaultUserEmail)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUnavailableUser
		}
		return nil, fmt.Errorf("find default user: %w", err)
	}
	return NewUserInfo(user), nil
}

// GetUserProfile narrows user info to the profile shape.
func (s *userService) GetUserProfile(info *UserInfo) *UserProfile {
	return &UserProfile{
		ID:     info.ID,
		Email:  info.Email,
		Name:   info.Name,
		Photo:  info.Photo,
		Streak: info.Streak,
		Role:   info.Role,
	}
}

// ComparePasswordByID reports whether password matches the stored hash.
func (s *userService) ComparePasswordByID(ctx context.Context, id uuid.UUID, password string) (bool, error) {
	user, err := s.findUser(ctx, id)
	if err != nil {
		return false, err
	}
	return verifyPassword(user.PasswordHash, password), nil
}

// UpdateUserPassword replaces the password when currentPassword matches.
func (s *userService) UpdateUserPassword(ctx context.Context, id uuid.UUID, currentPassword, targetPassword string) error {
	match, err := s.ComparePasswordByID(ctx, id, currentPassword)
	if err != nil {
		return err
	}
	if !match {
		return apperrors.ErrPasswordMismatch
	}

	hashed, err := hashPassword(targetPassword, s.cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.repo.UpdatePassword(ctx, id, hashed); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUnavailableUser
		}
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// UpdateUserProfile writes the provided profile fields.
func (s *userService) UpdateUserProfile(ctx context.Context, id uuid.UUID, update model.ProfileUpdate) error {
	if update.Name != nil {
		other, err := s.repo.FindByName(ctx, *update.Name)
		switch {
		case err == nil && other.ID != id:
			return apperrors.ErrNameExists
		case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
			return fmt.Errorf("check name existence: %w", err)
		}
	}

	if err := s.repo.UpdateProfile(ctx, id, update); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.ErrNameExists
		}
		return fmt.Errorf("update profile: %w", err)
	}
	s.invalidate(ctx, id)
	return nil
}

// UploadProfilePhoto stores the image and points the user's photo at it.
func (s *userService) UploadProfilePhoto(ctx context.Context, id uuid.UUID, filename, contentType string, body io.Reader) (string, error) {
	if s.photos == nil {
		return "", apperrors.ErrPhotoStorageDisabled
	}

	user, err := s.findUser(ctx, id)
	if err != nil {
		return "", err
	}

	key := storage.PhotoKey(id.String(), uuid.NewString(), strings.ToLower(filepath.Ext(filename)))
	url, err := s.photos.Upload(ctx, key, body, contentType)
	if err != nil {
		return "", fmt.Errorf("upload photo: %w", err)
	}

	if err := s.repo.UpdateProfile(ctx, id, model.ProfileUpdate{Photo: &url}); err != nil {
		return "", fmt.Errorf("update photo: %w", err)
	}
	s.invalidate(ctx, id)

	if user.Photo != nil && *user.Photo != "" {
		if err := s.photos.Delete(ctx, *user.Photo); err != nil {
			s.logger.Warn("delete previous photo", "user_id", id, "err", err)
		}
	}
	return url, nil
}

// DeleteUser removes the user and its habits.
func (s *userService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	user, err := s.findUser(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUnavailableUser
		}
		return fmt.Errorf("delete user: %w", err)
	}
	s.invalidate(ctx, id)

	event := events.UserEvent{
		Type:       events.UserDeleted,
		UserID:     user.ID,
		Email:      user.Email,
		Photo:      user.Photo,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.publisher.PublishUserEvent(ctx, event); err != nil {
		s.logger.Warn("publish user event", "type", event.Type, "user_id", id, "err", err)
	}
	return nil
}

func (s *userService) findUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUnavailableUser
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}
