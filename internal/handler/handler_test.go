package handler_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"habitrack/internal/auth"
	apperrors "habitrack/internal/errors"
	"habitrack/internal/handler"
	"habitrack/internal/logger"
	"habitrack/internal/middleware"
	"habitrack/internal/model"
	"habitrack/internal/router"
	"habitrack/internal/service"
)

type testServer struct {
	e      *echo.Echo
	jwt    *auth.JWTService
	auth   *MockAuthService
	users  *MockUserService
	habits *MockHabitService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	s := &testServer{
		e:      echo.New(),
		jwt:    auth.NewJWTService("test-secret"),
		auth:   new(MockAuthService),
		users:  new(MockUserService),
		habits: new(MockHabitService),
	}
	apiLimiter := middleware.NewRateLimiter(1000, 1000)
	authLimiter := middleware.NewRateLimiter(1000, 1000)
	t.Cleanup(apiLimiter.Stop)
	t.Cleanup(authLimiter.Stop)

	router.Register(s.e, router.Deps{
		Logger:       logger.Discard(),
		JWT:          s.jwt,
		TokenStore:   auth.NewTokenStore(nil),
		APILimiter:   apiLimiter,
		AuthLimiter:  authLimiter,
		AuthHandler:  handler.NewAuthHandler(s.auth, false),
		UserHandler:  handler.NewUserHandler(s.users),
		HabitHandler: handler.NewHabitHandler(s.habits),
	})
	return s
}

func (s *testServer) token(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	token, err := s.jwt.GenerateAccessToken(userID, "a@b.c", model.RoleUser)
	require.NoError(t, err)
	return token
}

func (s *testServer) do(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Code
}

func TestAuthHandler_Register(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		setupMock func(*MockAuthService)
		status    int
		code      string
	}{
		{
			name: "created",
			body: `{"email":"a@b.c","name":"abc","password":"password123","os":"ios"}`,
			setupMock: func(m *MockAuthService) {
				m.On("Register", mock.Anything, mock.MatchedBy(func(in service.RegisterInput) bool {
					return in.Email == "a@b.c" && in.OS != nil && *in.OS == "ios"
				})).Return(&service.UserInfo{ID: uuid.New(), Email: "a@b.c", Name: "abc"}, nil)
			},
			status: http.StatusCreated,
		},
		{
			name:      "invalid email",
			body:      `{"email":"nope","name":"abc","password":"password123"}`,
			setupMock: func(*MockAuthService) {},
			status:    http.StatusBadRequest,
			code:      "VALIDATION_ERROR",
		},
		{
			name:      "password over bcrypt byte limit",
			body:      `{"email":"a@b.c","name":"abc","password":"` + strings.Repeat("비", 30) + `"}`,
			setupMock: func(*MockAuthService) {},
			status:    http.StatusBadRequest,
			code:      "VALIDATION_ERROR",
		},
		{
			name:      "malformed json",
			body:      `{"email":`,
			setupMock: func(*MockAuthService) {},
			status:    http.StatusBadRequest,
			code:      "INVALID_REQUEST",
		},
		{
			name: "email taken",
			body: `{"email":"a@b.c","name":"abc","password":"password123"}`,
			setupMock: func(m *MockAuthService) {
				m.On("Register", mock.Anything, mock.Anything).Return(nil, apperrors.ErrEmailExists)
			},
			status: http.StatusConflict,
			code:   "EMAIL_ALREADY_EXISTS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			tt.setupMock(s.auth)

			rec := s.do(http.MethodPost, "/api/auth/register", tt.body, "")
			assert.Equal(t, tt.status, rec.Code)
			if tt.code != "" {
				assert.Equal(t, tt.code, errorCode(t, rec))
			}
			s.auth.AssertExpectations(t)
		})
	}
}

func TestAuthHandler_LoginSetsRefreshCookie(t *testing.T) {
	s := newTestServer(t)
	s.auth.On("Login", mock.Anything, "a@b.c", "password123").Return(&service.Session{
		AccessToken:  "access",
		RefreshToken: "refresh",
		User:         &service.UserInfo{Email: "a@b.c"},
	}, nil)

	rec := s.do(http.MethodPost, "/api/auth/login", `{"email":"a@b.c","password":"password123"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var session service.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	assert.Equal(t, "access", session.AccessToken)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "refresh_token", cookies[0].Name)
	assert.Equal(t, "refresh", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestAuthHandler_LoginInvalidCredentials(t *testing.T) {
	s := newTestServer(t)
	s.auth.On("Login", mock.Anything, "a@b.c", "wrong").Return(nil, apperrors.ErrInvalidCredentials)

	rec := s.do(http.MethodPost, "/api/auth/login", `{"email":"a@b.c","password":"wrong"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", errorCode(t, rec))
}

func TestAuthHandler_DuplicateChecks(t *testing.T) {
	s := newTestServer(t)
	s.auth.On("CheckEmailExist", mock.Anything, "a@b.c").Return(true, nil)
	s.auth.On("CheckNameExist", mock.Anything, "free").Return(false, nil)

	rec := s.do(http.MethodGet, "/api/auth/email/duplicate/a@b.c", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "true", strings.TrimSpace(rec.Body.String()))

	rec = s.do(http.MethodGet, "/api/auth/name/duplicate/free", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "false", strings.TrimSpace(rec.Body.String()))
}

func TestAuthHandler_RefreshFromCookie(t *testing.T) {
	s := newTestServer(t)
	s.auth.On("RefreshToken", mock.Anything, "from-cookie").Return("new-access", nil)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: "from-cookie"})
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"accessToken":"new-access"}`, rec.Body.String())
}

func TestAuthHandler_RefreshMissingToken(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/api/auth/refresh", `{}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthHandler_Logout(t *testing.T) {
	s := newTestServer(t)
	userID := uuid.New()
	s.auth.On("Logout", mock.Anything, "refresh", mock.MatchedBy(func(c *auth.Claims) bool {
		return c.UserID == userID && c.ID != ""
	})).Return(nil)

	rec := s.do(http.MethodPost, "/api/auth/logout", `{"refreshToken":"refresh"}`, s.token(t, userID))
	assert.Equal(t, http.StatusOK, rec.Code)
	s.auth.AssertExpectations(t)

	rec = s.do(http.MethodPost, "/api/auth/logout", `{"refreshToken":"refresh"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUserHandler_Me(t *testing.T) {
	s := newTestServer(t)
	userID := uuid.New()
	s.users.On("GetUserInfoByID", mock.Anything, userID).Return(&service.UserInfo{
		ID: userID, Email: "a@b.c", Name: "abc", Role: model.RoleUser, Streak: 4,
	}, nil)

	rec := s.do(http.MethodGet, "/api/users/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodGet, "/api/users/me", "", "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodGet, "/api/users/me", "", s.token(t, userID))
	require.Equal(t, http.StatusOK, rec.Code)
	var profile map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	assert.Equal(t, "abc", profile["name"])
	assert.NotContains(t, profile, "marketingAgreement")

	rec = s.do(http.MethodGet, "/api/users/me/info", "", s.token(t, userID))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"marketingAgreement":false`)
}

func TestUserHandler_DeletedUserIsUnavailable(t *testing.T) {
	s := newTestServer(t)
	userID := uuid.New()
	s.users.On("GetUserInfoByID", mock.Anything, userID).Return(nil, apperrors.ErrUnavailableUser)

	rec := s.do(http.MethodGet, "/api/users/me/info", "", s.token(t, userID))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAVAILABLE_USER", errorCode(t, rec))
}

func TestUserHandler_DefaultUser(t *testing.T) {
	s := newTestServer(t)
	s.users.On("GetDefaultUser", mock.Anything).Return(&service.UserInfo{Name: "default"}, nil)

	rec := s.do(http.MethodGet, "/api/users/default", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"default"`)
}

func TestUserHandler_UpdatePassword(t *testing.T) {
	s := newTestServer(t)
	userID := uuid.New()
	s.users.On("UpdateUserPassword", mock.Anything, userID, "old-password", "new-password").Return(nil).Once()
	s.users.On("UpdateUserPassword", mock.Anything, userID, "bad", "new-password").Return(apperrors.ErrPasswordMismatch).Once()

	rec := s.do(http.MethodPatch, "/api/users/me/password", `{"currentPassword":"old-password","targetPassword":"new-password"}`, s.token(t, userID))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodPatch, "/api/users/me/password", `{"currentPassword":"bad","targetPassword":"new-password"}`, s.token(t, userID))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "PASSWORD_MISMATCH", errorCode(t, rec))

	rec = s.do(http.MethodPatch, "/api/users/me/password", `{"currentPassword":"old-password","targetPassword":"short"}`, s.token(t, userID))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUserHandler_UpdateProfile(t *testing.T) {
	s := newTestServer(t)
	userID := uuid.New()
	name := "renamed"
	s.users.On("UpdateUserProfile", mock.Anything, userID, model.ProfileUpdate{Name: &name}).Return(nil)

	rec := s.do(http.MethodPatch, "/api/users/me", `{"name":"renamed"}`, s.token(t, userID))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	s.users.AssertExpectations(t)
}

func TestUserHandler_UploadPhoto(t *testing.T) {
	s := newTestServer(t)
	userID := uuid.New()
	s.users.On("UploadProfilePhoto", mock.Anything, userID, "me.png", "image/png", mock.Anything).
		Return("http://minio/photos/users/me.png", nil)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="photo"; filename="me.png"`)
	header.Set("Content-Type", "image/png")
	part, err := w.CreatePart(header)
	require.NoError(t, err)
	_, _ = part.Write([]byte("png-bytes"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPut, "/api/users/me/photo", &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+s.token(t, userID))
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"photo":"http://minio/photos/users/me.png"}`, rec.Body.String())
}

func TestUserHandler_DeleteMe(t *testing.T) {
	s := newTestServer(t)
	userID := uuid.New()
	s.users.On("DeleteUser", mock.Anything, userID).Return(nil)

	rec := s.do(http.MethodDelete, "/api/users/me", "", s.token(t, userID))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	s.users.AssertExpectations(t)
}

const habitBody = `{"title":"Read","action":"read pages","value":20,"unit":"pages","time":"21:30","startDate":"2026-01-01","endDate":"2026-12-31","days":["MON","FRI"]}`

func TestHabitHandler_Create(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		setupMock func(*MockHabitService, uuid.UUID)
		status    int
		code      string
	}{
		{
			name: "created",
			body: habitBody,
			setupMock: func(m *MockHabitService, userID uuid.UUID) {
				m.On("CreateHabit", mock.Anything, userID, mock.MatchedBy(func(in service.HabitInput) bool {
					return in.Title == "Read" && in.Value.IntPart() == 20 &&
						in.StartDate.Format(service.DateLayout) == "2026-01-01" &&
						in.EndDate != nil && len(in.Days) == 2
				})).Return(&service.HabitDTO{ID: 1, Title: "Read", Days: []model.HabitRecordDay{model.Monday, model.Friday}}, nil)
			},
			status: http.StatusCreated,
		},
		{
			name:      "unknown weekday",
			body:      strings.Replace(habitBody, `"FRI"`, `"FUN"`, 1),
			setupMock: func(*MockHabitService, uuid.UUID) {},
			status:    http.StatusBadRequest,
			code:      "VALIDATION_ERROR",
		},
		{
			name:      "bad clock",
			body:      strings.Replace(habitBody, `"21:30"`, `"9pm"`, 1),
			setupMock: func(*MockHabitService, uuid.UUID) {},
			status:    http.StatusBadRequest,
			code:      "VALIDATION_ERROR",
		},
		{
			name:      "bad date",
			body:      strings.Replace(habitBody, `"2026-01-01"`, `"01/01/2026"`, 1),
			setupMock: func(*MockHabitService, uuid.UUID) {},
			status:    http.StatusBadRequest,
			code:      "VALIDATION_ERROR",
		},
		{
			name:      "negative value",
			body:      strings.Replace(habitBody, `"value":20`, `"value":-1`, 1),
			setupMock: func(*MockHabitService, uuid.UUID) {},
			status:    http.StatusBadRequest,
			code:      "VALIDATION_ERROR",
		},
		{
			name: "end before start",
			body: habitBody,
			setupMock: func(m *MockHabitService, userID uuid.UUID) {
				m.On("CreateHabit", mock.Anything, userID, mock.Anything).Return(nil, apperrors.ErrInvalidHabitPeriod)
			},
			status: http.StatusBadRequest,
			code:   "INVALID_HABIT_PERIOD",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			userID := uuid.New()
			tt.setupMock(s.habits, userID)

			rec := s.do(http.MethodPost, "/api/habits", tt.body, s.token(t, userID))
			assert.Equal(t, tt.status, rec.Code)
			if tt.code != "" {
				assert.Equal(t, tt.code, errorCode(t, rec))
			}
			s.habits.AssertExpectations(t)
		})
	}
}

func TestHabitHandler_ReadUpdateDelete(t *testing.T) {
	s := newTestServer(t)
	userID := uuid.New()
	token := s.token(t, userID)

	s.habits.On("ListHabits", mock.Anything, userID).Return([]service.HabitDTO{{ID: 1}, {ID: 2}}, nil)
	s.habits.On("GetHabit", mock.Anything, userID, uint(1)).Return(&service.HabitDTO{ID: 1, Title: "Read"}, nil)
	s.habits.On("GetHabit", mock.Anything, userID, uint(99)).Return(nil, apperrors.ErrHabitNotFound)
	s.habits.On("UpdateHabit", mock.Anything, userID, uint(1), mock.Anything).Return(&service.HabitDTO{ID: 1, Title: "Read"}, nil)
	s.habits.On("DeleteHabit", mock.Anything, userID, uint(1)).Return(nil)

	rec := s.do(http.MethodGet, "/api/habits", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []service.HabitDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 2)

	rec = s.do(http.MethodGet, "/api/habits/1", "", token)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/api/habits/99", "", token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "HABIT_NOT_FOUND", errorCode(t, rec))

	rec = s.do(http.MethodGet, "/api/habits/abc", "", token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPut, "/api/habits/1", habitBody, token)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodDelete, "/api/habits/1", "", token)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	s.habits.AssertExpectations(t)
}

func TestSecuredRoutes_RejectRefreshTokenAsBearer(t *testing.T) {
	s := newTestServer(t)
	_, refresh, err := s.jwt.GenerateRefreshToken(uuid.New(), "a@b.c")
	require.NoError(t, err)

	for _, path := range []string{"/api/habits", "/api/users/me", "/api/users/me/info"} {
		t.Run(path, func(t *testing.T) {
			rec := s.do(http.MethodGet, path, "", refresh)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "UNAUTHORIZED", errorCode(t, rec))
		})
	}
	s.habits.AssertNotCalled(t, "ListHabits", mock.Anything, mock.Anything)
	s.users.AssertNotCalled(t, "GetUserInfoByID", mock.Anything, mock.Anything)
}

func TestHabitHandler_GetRendersNumericValue(t *testing.T) {
	s := newTestServer(t)
	userID := uuid.New()
	evening := "21:30"
	habit := &model.Habit{
		ID:        7,
		UserID:    userID,
		Title:     "Drink water",
		Action:    "drink",
		Value:     decimal.RequireFromString("1.5"),
		Unit:      "L",
		Time:      &evening,
		StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Days:      []model.HabitDay{{Day: model.Friday}, {Day: model.Monday}},
	}
	dto := service.NewHabitDTO(habit)
	s.habits.On("GetHabit", mock.Anything, userID, uint(7)).Return(&dto, nil)

	rec := s.do(http.MethodGet, "/api/habits/7", "", s.token(t, userID))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"id": 7,
		"title": "Drink water",
		"action": "drink",
		"value": 1.5,
		"unit": "L",
		"time": "21:30",
		"startDate": "2026-01-01",
		"days": ["MON", "FRI"]
	}`, rec.Body.String())
}
