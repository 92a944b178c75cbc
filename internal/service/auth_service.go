package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"

	"habitrack/internal/auth"
	apperrors "habitrack/internal/errors"
	"habitrack/internal/events"
	"habitrack/internal/model"
	"habitrack/internal/repository"
)

// AuthService handles authentication operations.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*UserInfo, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	CheckEmailExist(ctx context.Context, email string) (bool, error)
	CheckNameExist(ctx context.Context, name string) (bool, error)
	RefreshToken(ctx context.Context, refreshToken string) (accessToken string, err error)
	Logout(ctx context.Context, refreshToken string, access *auth.Claims) error
}

type authService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
	publisher  events.Publisher
	logger     *log.Logger
	bcryptCost int
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	userRepo repository.UserRepository,
	jwtService *auth.JWTService,
	tokenStore auth.TokenStoreInterface,
	publisher events.Publisher,
	logger *log.Logger,
	bcryptCost int,
) AuthService {
	if bcryptCost == 0 {
		bcryptCost = defaultBcryptCost
	}
	return &authService{
		userRepo:   userRepo,
		jwtService: jwtService,
		tokenStore: tokenStore,
		publisher:  publisher,
		logger:     logger,
		bcryptCost: bcryptCost,
	}
}

// Register creates a new user with a hashed password.
func (s *authService) Register(ctx context.Context, input RegisterInput) (*UserInfo, error) {
	exists, err := s.userRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, fmt.Errorf("check email existence: %w", err)
	}
	if exists {
		return nil, apperrors.ErrEmailExists
	}

	exists, err = s.userRepo.ExistsByName(ctx, input.Name)
	if err != nil {
		return nil, fmt.Errorf("check name existence: %w", err)
	}
	if exists {
		return nil, apperrors.ErrNameExists
	}

	hashedPassword, err := hashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Email:              input.Email,
		Name:               input.Name,
		PasswordHash:       hashedPassword,
		Role:               model.RoleUser,
		OS:                 input.OS,
		MarketingAgreement: input.MarketingAgreement,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, s.duplicateUser(ctx, input.Email)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.publish(ctx, events.UserEvent{
		Type:       events.UserRegistered,
		UserID:     user.ID,
		Email:      user.Email,
		OccurredAt: time.Now().UTC(),
	})
	return NewUserInfo(user), nil
}

// Login authenticates a user and returns access and refresh tokens.
func (s *authService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if !verifyPassword(user.PasswordHash, password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	accessToken, err := s.jwtService.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	tokenID, refreshToken, err := s.jwtService.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	if err := s.tokenStore.StoreRefreshToken(ctx, tokenID, user.ID, user.Email, auth.RefreshTokenExpiry); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         NewUserInfo(user),
	}, nil
}

// CheckEmailExist reports whether a user with email exists.
func (s *authService) CheckEmailExist(ctx context.Context, email string) (bool, error) {
	return s.userRepo.ExistsByEmail(ctx, email)
}

// CheckNameExist reports whether a user with name exists.
func (s *authService) CheckNameExist(ctx context.Context, name string) (bool, error) {
	return s.userRepo.ExistsByName(ctx, name)
}

// RefreshToken validates a refresh token and returns a new access token.
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return "", apperrors.ErrInvalidRefreshToken
	}

	storedUserID, storedEmail, err := s.tokenStore.GetRefreshToken(ctx, claims.ID)
	if err != nil {
		return "", apperrors.ErrInvalidRefreshToken
	}
	if storedUserID != claims.UserID || storedEmail != claims.Email {
		return "", apperrors.ErrInvalidRefreshToken
	}

	// Role may have changed since the refresh token was issued.
	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperrors.ErrInvalidRefreshToken
		}
		return "", fmt.Errorf("find user: %w", err)
	}

	accessToken, err := s.jwtService.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return "", fmt.Errorf("generate access token: %w", err)
	}
	return accessToken, nil
}

// Logout invalidates a refresh token and blacklists the current access token.
func (s *authService) Logout(ctx context.Context, refreshToken string, access *auth.Claims) error {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil || (access != nil && claims.UserID != access.UserID) {
		return apperrors.ErrInvalidRefreshToken
	}

	if err := s.tokenStore.DeleteRefreshToken(ctx, claims.ID); err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}

	if access != nil && access.ID != "" {
		if err := s.tokenStore.BlacklistAccessToken(ctx, access.ID, access.Remaining()); err != nil {
			return fmt.Errorf("blacklist access token: %w", err)
		}
	}
	return nil
}

// duplicateUser resolves a unique-index violation lost to a concurrent registration.
func (s *authService) duplicateUser(ctx context.Context, email string) error {
	if exists, err := s.userRepo.ExistsByEmail(ctx, email); err == nil && exists {
		return apperrors.ErrEmailExists
	}
	return apperrors.ErrNameExists
}

func (s *authService) publish(ctx context.Context, event events.UserEvent) {
	if err := s.publisher.PublishUserEvent(ctx, event); err != nil {
		s.logger.Warn("publish user event", "type", event.Type, "user_id", event.UserID, "err", err)
	}
}
