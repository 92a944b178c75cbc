package router

import (
	"regexp"

	"github.com/go-playground/validator/v10"

	"habitrack/internal/model"
)

var clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// bcrypt only looks at the first 72 bytes of a password.
const maxPasswordBytes = 72

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator registers the domain tags:
//
//	weekday  a HabitRecordDay (MON..SUN)
//	clock    a 24h "HH:MM" time of day
//	pwbytes  a password bcrypt can hash (at most 72 bytes)
func NewValidator() *CustomValidator {
	v := validator.New()
	_ = v.RegisterValidation("weekday", func(fl validator.FieldLevel) bool {
		return model.HabitRecordDay(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		return clockPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("pwbytes", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= maxPasswordBytes
	})
	return &CustomValidator{validator: v}
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
