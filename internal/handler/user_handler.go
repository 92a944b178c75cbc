package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"habitrack/internal/errors"
	"habitrack/internal/model"
	"habitrack/internal/service"
)

// maxPhotoSize bounds profile photo uploads.
const maxPhotoSize = 5 << 20

// UserHandler bundles profile endpoints.
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// UpdatePasswordRequest changes the caller's password.
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	TargetPassword  string `json:"targetPassword" validate:"required,min=8,pwbytes"`
}

// UpdateProfileRequest carries the optional profile fields.
type UpdateProfileRequest struct {
	Name               *string `json:"name" validate:"omitempty,min=2,max=100"`
	Photo              *string `json:"photo" validate:"omitempty,url,max=512"`
	OS                 *string `json:"os" validate:"omitempty,max=50"`
	MarketingAgreement *bool   `json:"marketingAgreement"`
}

// PhotoResponse is returned after a photo upload.
type PhotoResponse struct {
	Photo string `json:"photo"`
}

// GetDefaultUser godoc
// @Summary Get the default user
// @Tags users
// @Produce json
// @Success 200 {object} service.UserInfo
// @Failure 401 {object} errors.ErrorResponse
// @Router /users/default [get]
func (h *UserHandler) GetDefaultUser(c echo.Context) error {
	info, err := h.svc.GetDefaultUser(c.Request().Context())
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, info)
}

// GetProfile godoc
// @Summary Get the caller's profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.UserProfile
// @Failure 401 {object} errors.ErrorResponse
// @Router /users/me [get]
func (h *UserHandler) GetProfile(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	info, err := h.svc.GetUserInfoByID(c.Request().Context(), userID)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, h.svc.GetUserProfile(info))
}

// GetInfo godoc
// @Summary Get the caller's full user info
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.UserInfo
// @Failure 401 {object} errors.ErrorResponse
// @Router /users/me/info [get]
func (h *UserHandler) GetInfo(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	info, err := h.svc.GetUserInfoByID(c.Request().Context(), userID)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, info)
}

// UpdatePassword godoc
// @Summary Change the caller's password
// @Tags users
// @Accept json
// @Security BearerAuth
// @Param request body UpdatePasswordRequest true "Current and new password"
// @Success 204
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /users/me/password [patch]
func (h *UserHandler) UpdatePassword(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	var req UpdatePasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.svc.UpdateUserPassword(c.Request().Context(), userID, req.CurrentPassword, req.TargetPassword); err != nil {
		return fail(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// UpdateProfile godoc
// @Summary Update the caller's profile
// @Tags users
// @Accept json
// @Security BearerAuth
// @Param request body UpdateProfileRequest true "Fields to change"
// @Success 204
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /users/me [patch]
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	var req UpdateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	update := model.ProfileUpdate{
		Name:               req.Name,
		Photo:              req.Photo,
		OS:                 req.OS,
		MarketingAgreement: req.MarketingAgreement,
	}
	if err := h.svc.UpdateUserProfile(c.Request().Context(), userID, update); err != nil {
		return fail(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// UploadPhoto godoc
// @Summary Upload the caller's profile photo
// @Tags users
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param photo formData file true "Image file"
// @Success 200 {object} PhotoResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 503 {object} errors.ErrorResponse
// @Router /users/me/photo [put]
func (h *UserHandler) UploadPhoto(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	file, err := c.FormFile("photo")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "photo file is required",
			Code:  "INVALID_REQUEST",
		})
	}
	contentType := file.Header.Get(echo.HeaderContentType)
	if file.Size > maxPhotoSize || !strings.HasPrefix(contentType, "image/") {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "photo must be an image of at most 5MB",
			Code:  "VALIDATION_ERROR",
		})
	}

	src, err := file.Open()
	if err != nil {
		return fail(err)
	}
	defer src.Close()

	url, err := h.svc.UploadProfilePhoto(c.Request().Context(), userID, file.Filename, contentType, src)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, PhotoResponse{Photo: url})
}

// DeleteMe godoc
// @Summary Delete the caller's account and habits
// @Tags users
// @Security BearerAuth
// @Success 204
// @Failure 401 {object} errors.ErrorResponse
// @Router /users/me [delete]
func (h *UserHandler) DeleteMe(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteUser(c.Request().Context(), userID); err != nil {
		return fail(err)
	}
	return c.NoContent(http.StatusNoContent)
}
