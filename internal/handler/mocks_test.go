package handler_test

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"habitrack/internal/auth"
	"habitrack/internal/model"
	"habitrack/internal/service"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, input service.RegisterInput) (*service.UserInfo, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UserInfo), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*service.Session, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Session), args.Error(1)
}

func (m *MockAuthService) CheckEmailExist(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockAuthService) CheckNameExist(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

func (m *MockAuthService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	args := m.Called(ctx, refreshToken)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, refreshToken string, access *auth.Claims) error {
	args := m.Called(ctx, refreshToken, access)
	return args.Error(0)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetUserInfoByID(ctx context.Context, id uuid.UUID) (*service.UserInfo, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UserInfo), args.Error(1)
}

func (m *MockUserService) GetDefaultUser(ctx context.Context) (*service.UserInfo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UserInfo), args.Error(1)
}

func (m *MockUserService) GetUserProfile(info *service.UserInfo) *service.UserProfile {
	return &service.UserProfile{ID: info.ID, Email: info.Email, Name: info.Name, Photo: info.Photo, Streak: info.Streak, Role: info.Role}
}

func (m *MockUserService) ComparePasswordByID(ctx context.Context, id uuid.UUID, password string) (bool, error) {
	args := m.Called(ctx, id, password)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserService) UpdateUserPassword(ctx context.Context, id uuid.UUID, currentPassword, targetPassword string) error {
	args := m.Called(ctx, id, currentPassword, targetPassword)
	return args.Error(0)
}

func (m *MockUserService) UpdateUserProfile(ctx context.Context, id uuid.UUID, update model.ProfileUpdate) error {
	args := m.Called(ctx, id, update)
	return args.Error(0)
}

func (m *MockUserService) UploadProfilePhoto(ctx context.Context, id uuid.UUID, filename, contentType string, body io.Reader) (string, error) {
	args := m.Called(ctx, id, filename, contentType, body)
	return args.String(0), args.Error(1)
}

func (m *MockUserService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockHabitService struct {
	mock.Mock
}

func (m *MockHabitService) CreateHabit(ctx context.Context, userID uuid.UUID, input service.HabitInput) (*service.HabitDTO, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.HabitDTO), args.Error(1)
}

func (m *MockHabitService) ListHabits(ctx context.Context, userID uuid.UUID) ([]service.HabitDTO, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.HabitDTO), args.Error(1)
}

func (m *MockHabitService) GetHabit(ctx context.Context, userID uuid.UUID, id uint) (*service.HabitDTO, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.HabitDTO), args.Error(1)
}

func (m *MockHabitService) UpdateHabit(ctx context.Context, userID uuid.UUID, id uint, input service.HabitInput) (*service.HabitDTO, error) {
	args := m.Called(ctx, userID, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.HabitDTO), args.Error(1)
}

func (m *MockHabitService) DeleteHabit(ctx context.Context, userID uuid.UUID, id uint) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}
