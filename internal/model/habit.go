package model

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// HabitRecordDay is a weekday a habit recurs on.
type HabitRecordDay string

const (
	Monday    HabitRecordDay = "MON"
	Tuesday   HabitRecordDay = "TUE"
	Wednesday HabitRecordDay = "WED"
	Thursday  HabitRecordDay = "THU"
	Friday    HabitRecordDay = "FRI"
	Saturday  HabitRecordDay = "SAT"
	Sunday    HabitRecordDay = "SUN"
)

// HabitRecordDays lists every day in week order.
var HabitRecordDays = []HabitRecordDay{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

var dayOrder = map[HabitRecordDay]int{
	Monday: 0, Tuesday: 1, Wednesday: 2, Thursday: 3, Friday: 4, Saturday: 5, Sunday: 6,
}

// Valid reports whether d is a known weekday.
func (d HabitRecordDay) Valid() bool {
	_, ok := dayOrder[d]
	return ok
}

// NormalizeDays returns the days in week order with duplicates and unknown values dropped.
func NormalizeDays(days []HabitRecordDay) []HabitRecordDay {
	seen := make(map[HabitRecordDay]struct{}, len(days))
	out := make([]HabitRecordDay, 0, len(days))
	for _, d := range days {
		if !d.Valid() {
			continue
		}
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return dayOrder[out[i]] < dayOrder[out[j]] })
	return out
}

// Habit is a recurring action owned by a user.
type Habit struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	UserID    uuid.UUID       `json:"userId" gorm:"type:char(36);not null;index"`
	Title     string          `json:"title" gorm:"size:100;not null"`
	Action    string          `json:"action" gorm:"size:255;not null"`
	Value     decimal.Decimal `json:"value" gorm:"type:decimal(10,2);not null"`
	Unit      string          `json:"unit" gorm:"size:20;not null"`
	Time      *string         `json:"time" gorm:"size:5"` // HH:MM
	StartDate time.Time       `json:"startDate" gorm:"type:date;not null"`
	EndDate   *time.Time      `json:"endDate" gorm:"type:date"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`

	// Relations
	Days []HabitDay `json:"days" gorm:"foreignKey:HabitID;constraint:OnDelete:CASCADE"`
}

// DayValues returns the habit's days in week order.
func (h *Habit) DayValues() []HabitRecordDay {
	days := make([]HabitRecordDay, 0, len(h.Days))
	for _, d := range h.Days {
		days = append(days, d.Day)
	}
	return NormalizeDays(days)
}

// SetDays replaces the day rows with the normalized set.
func (h *Habit) SetDays(days []HabitRecordDay) {
	normalized := NormalizeDays(days)
	h.Days = make([]HabitDay, 0, len(normalized))
	for _, d := range normalized {
		h.Days = append(h.Days, HabitDay{HabitID: h.ID, Day: d})
	}
}

// HabitDay links a habit to one weekday.
type HabitDay struct {
	ID      uint           `json:"-" gorm:"primaryKey"`
	HabitID uint           `json:"-" gorm:"not null;uniqueIndex:idx_habit_day"`
	Day     HabitRecordDay `json:"day" gorm:"size:3;not null;uniqueIndex:idx_habit_day"`
}
