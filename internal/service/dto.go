package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"habitrack/internal/model"
)

// DateLayout is the wire format of habit dates.
const DateLayout = "2006-01-02"

// UserInfo is the public projection of a user. It never carries the password hash.
type UserInfo struct {
	ID                 uuid.UUID `json:"id"`
	CreatedAt          time.Time `json:"createdAt"`
	Email              string    `json:"email"`
	Name               string    `json:"name"`
	Role               string    `json:"role"`
	Photo              *string   `json:"photo"`
	OS                 *string   `json:"os"`
	Streak             int       `json:"streak"`
	MarketingAgreement bool      `json:"marketingAgreement"`
}

// NewUserInfo projects a stored user.
func NewUserInfo(u *model.User) *UserInfo {
	return &UserInfo{
		ID:                 u.ID,
		CreatedAt:          u.CreatedAt,
		Email:              u.Email,
		Name:               u.Name,
		Role:               u.Role,
		Photo:              u.Photo,
		OS:                 u.OS,
		Streak:             u.Streak,
		MarketingAgreement: u.MarketingAgreement,
	}
}

// UserProfile is the shape returned by the profile endpoint.
type UserProfile struct {
	ID     uuid.UUID `json:"id"`
	Email  string    `json:"email"`
	Name   string    `json:"name"`
	Photo  *string   `json:"photo"`
	Streak int       `json:"streak"`
	Role   string    `json:"role"`
}

// Session is returned by a successful login.
type Session struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	User         *UserInfo `json:"user"`
}

// RegisterInput carries the fields of a new account.
type RegisterInput struct {
	Email              string
	Name               string
	Password           string
	OS                 *string
	MarketingAgreement bool
}

// HabitInput carries the editable fields of a habit.
type HabitInput struct {
	Title     string
	Action    string
	Value     decimal.Decimal
	Unit      string
	Time      *string
	StartDate time.Time
	EndDate   *time.Time
	Days      []model.HabitRecordDay
}

// HabitDTO is the shape of a habit returned to callers.
type HabitDTO struct {
	ID        uint                   `json:"id"`
	Title     string                 `json:"title"`
	Action    string                 `json:"action"`
	Value     float64                `json:"value"`
	Unit      string                 `json:"unit"`
	Time      *string                `json:"time"`
	StartDate string                 `json:"startDate"`
	EndDate   *string                `json:"endDate,omitempty"`
	Days      []model.HabitRecordDay `json:"days"`
}

// NewHabitDTO projects a stored habit.
func NewHabitDTO(h *model.Habit) HabitDTO {
	dto := HabitDTO{
		ID:        h.ID,
		Title:     h.Title,
		Action:    h.Action,
		Value:     h.Value.InexactFloat64(),
		Unit:      h.Unit,
		Time:      h.Time,
		StartDate: h.StartDate.Format(DateLayout),
		Days:      h.DayValues(),
	}
	if h.EndDate != nil {
		end := h.EndDate.Format(DateLayout)
		dto.EndDate = &end
	}
	return dto
}
