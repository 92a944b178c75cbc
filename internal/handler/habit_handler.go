package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"habitrack/internal/errors"
	"habitrack/internal/model"
	"habitrack/internal/service"
)

// HabitHandler handles habit endpoints.
type HabitHandler struct {
	habitService service.HabitService
}

// NewHabitHandler creates a new habit handler.
func NewHabitHandler(habitService service.HabitService) *HabitHandler {
	return &HabitHandler{habitService: habitService}
}

// HabitRequest is the payload of habit create and update.
type HabitRequest struct {
	Title     string                 `json:"title" validate:"required,max=100"`
	Action    string                 `json:"action" validate:"required,max=255"`
	Value     decimal.Decimal        `json:"value" swaggertype:"number"`
	Unit      string                 `json:"unit" validate:"required,max=20"`
	Time      *string                `json:"time" validate:"omitempty,clock"`
	StartDate string                 `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate   *string                `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
	Days      []model.HabitRecordDay `json:"days" validate:"required,min=1,max=7,dive,weekday"`
}

func (r HabitRequest) toInput() (service.HabitInput, error) {
	start, err := time.Parse(service.DateLayout, r.StartDate)
	if err != nil {
		return service.HabitInput{}, err
	}
	input := service.HabitInput{
		Title:     r.Title,
		Action:    r.Action,
		Value:     r.Value,
		Unit:      r.Unit,
		Time:      r.Time,
		StartDate: start,
		Days:      r.Days,
	}
	if r.EndDate != nil {
		end, err := time.Parse(service.DateLayout, *r.EndDate)
		if err != nil {
			return service.HabitInput{}, err
		}
		input.EndDate = &end
	}
	return input, nil
}

func (h *HabitHandler) bindHabit(c echo.Context) (service.HabitInput, error) {
	var req HabitRequest
	if err := bindAndValidate(c, &req); err != nil {
		return service.HabitInput{}, err
	}
	if req.Value.IsNegative() {
		return service.HabitInput{}, echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "value must not be negative",
			Code:  "VALIDATION_ERROR",
		})
	}
	input, err := req.toInput()
	if err != nil {
		return service.HabitInput{}, echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_ERROR",
		})
	}
	return input, nil
}

func habitID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid habit ID",
			Code:  "INVALID_ID",
		})
	}
	return uint(id), nil
}

// CreateHabit godoc
// @Summary Create a habit
// @Tags habits
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body HabitRequest true "Habit"
// @Success 201 {object} service.HabitDTO
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /habits [post]
func (h *HabitHandler) CreateHabit(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	input, err := h.bindHabit(c)
	if err != nil {
		return err
	}

	habit, err := h.habitService.CreateHabit(c.Request().Context(), userID, input)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusCreated, habit)
}

// ListHabits godoc
// @Summary List the caller's habits
// @Tags habits
// @Produce json
// @Security BearerAuth
// @Success 200 {array} service.HabitDTO
// @Failure 401 {object} errors.ErrorResponse
// @Router /habits [get]
func (h *HabitHandler) ListHabits(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	habits, err := h.habitService.ListHabits(c.Request().Context(), userID)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, habits)
}

// GetHabit godoc
// @Summary Get a habit
// @Tags habits
// @Produce json
// @Security BearerAuth
// @Param id path int true "Habit ID"
// @Success 200 {object} service.HabitDTO
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /habits/{id} [get]
func (h *HabitHandler) GetHabit(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	id, err := habitID(c)
	if err != nil {
		return err
	}
	habit, err := h.habitService.GetHabit(c.Request().Context(), userID, id)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, habit)
}

// UpdateHabit godoc
// @Summary Replace a habit
// @Tags habits
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Habit ID"
// @Param request body HabitRequest true "Habit"
// @Success 200 {object} service.HabitDTO
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /habits/{id} [put]
func (h *HabitHandler) UpdateHabit(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	id, err := habitID(c)
	if err != nil {
		return err
	}
	input, err := h.bindHabit(c)
	if err != nil {
		return err
	}
	habit, err := h.habitService.UpdateHabit(c.Request().Context(), userID, id, input)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, habit)
}

// DeleteHabit godoc
// @Summary Delete a habit
// @Tags habits
// @Security BearerAuth
// @Param id path int true "Habit ID"
// @Success 204
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /habits/{id} [delete]
func (h *HabitHandler) DeleteHabit(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	id, err := habitID(c)
	if err != nil {
		return err
	}
	if err := h.habitService.DeleteHabit(c.Request().Context(), userID, id); err != nil {
		return fail(err)
	}
	return c.NoContent(http.StatusNoContent)
}
