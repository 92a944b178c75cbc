package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Roles a user can hold.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// User represents an authenticated user in the system.
type User struct {
	ID                 uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Email              string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	Name               string    `json:"name" gorm:"uniqueIndex;size:100;not null"`
	PasswordHash       string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	Role               string    `json:"role" gorm:"size:20;not null;default:'USER'"`
	Photo              *string   `json:"photo" gorm:"size:512"`
	OS                 *string   `json:"os" gorm:"column:os;size:50"`
	Streak             int       `json:"streak" gorm:"not null;default:0"`
	MarketingAgreement bool      `json:"marketingAgreement" gorm:"not null;default:false"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`

	// Relations
	Habits []Habit `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate sets UUID and role before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}

// ProfileUpdate carries the optional fields of a profile update.
// Nil fields are left untouched.
type ProfileUpdate struct {
	Name               *string
	Photo              *string
	OS                 *string
	MarketingAgreement *bool
}

// Columns returns the column/value map for the provided fields.
func (p ProfileUpdate) Columns() map[string]interface{} {
	cols := make(map[string]interface{})
	if p.Name != nil {
		cols["name"] = *p.Name
	}
	if p.Photo != nil {
		cols["photo"] = *p.Photo
	}
	if p.OS != nil {
		cols["os"] = *p.OS
	}
	if p.MarketingAgreement != nil {
		cols["marketing_agreement"] = *p.MarketingAgreement
	}
	return cols
}
