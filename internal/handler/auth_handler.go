package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"habitrack/internal/auth"
	"habitrack/internal/errors"
	"habitrack/internal/service"
)

const refreshCookieName = "refresh_token"

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService  service.AuthService
	secureCookie bool
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService, secureCookie bool) *AuthHandler {
	return &AuthHandler{authService: authService, secureCookie: secureCookie}
}

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Email              string  `json:"email" validate:"required,email,max=255"`
	Name               string  `json:"name" validate:"required,min=2,max=100"`
	Password           string  `json:"password" validate:"required,min=8,pwbytes"`
	OS                 *string `json:"os" validate:"omitempty,max=50"`
	MarketingAgreement bool    `json:"marketingAgreement"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest carries a refresh token. It may be empty when the cookie is set.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// AccessTokenResponse is returned by a token refresh.
type AccessTokenResponse struct {
	AccessToken string `json:"accessToken"`
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// Register godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration data"
// @Success 201 {object} service.UserInfo
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.authService.Register(c.Request().Context(), service.RegisterInput{
		Email:              req.Email,
		Name:               req.Name,
		Password:           req.Password,
		OS:                 req.OS,
		MarketingAgreement: req.MarketingAgreement,
	})
	if err != nil {
		return fail(err)
	}

	return c.JSON(http.StatusCreated, user)
}

// Login godoc
// @Summary Login user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} service.Session
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	session, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return fail(err)
	}

	c.SetCookie(h.refreshCookie(session.RefreshToken, int(auth.RefreshTokenExpiry/time.Second)))
	return c.JSON(http.StatusOK, session)
}

// CheckEmailExist godoc
// @Summary Check whether an email is taken
// @Tags auth
// @Produce json
// @Param email path string true "Email"
// @Success 200 {boolean} boolean
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/email/duplicate/{email} [get]
func (h *AuthHandler) CheckEmailExist(c echo.Context) error {
	exists, err := h.authService.CheckEmailExist(c.Request().Context(), c.Param("email"))
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, exists)
}

// CheckNameExist godoc
// @Summary Check whether a name is taken
// @Tags auth
// @Produce json
// @Param name path string true "Name"
// @Success 200 {boolean} boolean
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/name/duplicate/{name} [get]
func (h *AuthHandler) CheckNameExist(c echo.Context) error {
	exists, err := h.authService.CheckNameExist(c.Request().Context(), c.Param("name"))
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, exists)
}

// Refresh godoc
// @Summary Refresh access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest false "Refresh token, falls back to the refresh_token cookie"
// @Success 200 {object} AccessTokenResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	token, err := h.refreshToken(c)
	if err != nil {
		return err
	}

	accessToken, err := h.authService.RefreshToken(c.Request().Context(), token)
	if err != nil {
		return fail(err)
	}

	return c.JSON(http.StatusOK, AccessTokenResponse{AccessToken: accessToken})
}

// Logout godoc
// @Summary Logout user
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body RefreshRequest false "Refresh token, falls back to the refresh_token cookie"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	claims, ok := CurrentClaims(c)
	if !ok {
		return errUnauthorized
	}

	token, err := h.refreshToken(c)
	if err != nil {
		return err
	}

	if err := h.authService.Logout(c.Request().Context(), token, claims); err != nil {
		return fail(err)
	}

	c.SetCookie(h.refreshCookie("", -1))
	return c.JSON(http.StatusOK, MessageResponse{Message: "logged out successfully"})
}

func (h *AuthHandler) refreshToken(c echo.Context) (string, error) {
	var req RefreshRequest
	if err := c.Bind(&req); err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_REQUEST",
		})
	}
	if req.RefreshToken != "" {
		return req.RefreshToken, nil
	}
	if cookie, err := c.Cookie(refreshCookieName); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}
	return "", echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
		Error: "refresh token is required",
		Code:  "VALIDATION_ERROR",
	})
}

func (h *AuthHandler) refreshCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     refreshCookieName,
		Value:    value,
		Path:     "/api/auth",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}
