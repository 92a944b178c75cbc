package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrUnavailableUser is returned when the referenced user does not exist.
	ErrUnavailableUser = errors.New("unavailable user")
	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidRefreshToken is returned when refresh token is invalid or expired.
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
	// ErrEmailExists is returned when registering with a taken email.
	ErrEmailExists = errors.New("email already exists")
	// ErrNameExists is returned when registering or renaming to a taken name.
	ErrNameExists = errors.New("name already exists")
	// ErrPasswordTooLong is returned when a password exceeds what bcrypt can hash.
	ErrPasswordTooLong = errors.New("password must be at most 72 bytes")
	// ErrPasswordMismatch is returned when the current password does not match.
	ErrPasswordMismatch = errors.New("Password mismatch")
	// ErrHabitNotFound is returned when a habit is missing or owned by someone else.
	ErrHabitNotFound = errors.New("habit not found")
	// ErrInvalidHabitPeriod is returned when a habit ends before it starts.
	ErrInvalidHabitPeriod = errors.New("endDate must not be before startDate")
	// ErrPhotoStorageDisabled is returned when no object storage is configured.
	ErrPhotoStorageDisabled = errors.New("photo storage is not configured")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

var mappings = []struct {
	err    error
	status int
	code   string
}{
	{ErrUnavailableUser, http.StatusUnauthorized, "UNAVAILABLE_USER"},
	{ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
	{ErrInvalidRefreshToken, http.StatusUnauthorized, "INVALID_REFRESH_TOKEN"},
	{ErrEmailExists, http.StatusConflict, "EMAIL_ALREADY_EXISTS"},
	{ErrNameExists, http.StatusConflict, "NAME_ALREADY_EXISTS"},
	{ErrPasswordMismatch, http.StatusConflict, "PASSWORD_MISMATCH"},
	{ErrPasswordTooLong, http.StatusBadRequest, "VALIDATION_ERROR"},
	{ErrHabitNotFound, http.StatusNotFound, "HABIT_NOT_FOUND"},
	{ErrInvalidHabitPeriod, http.StatusBadRequest, "INVALID_HABIT_PERIOD"},
	{ErrPhotoStorageDisabled, http.StatusServiceUnavailable, "PHOTO_STORAGE_DISABLED"},
}

// MapErrorToHTTP maps domain errors to HTTP errors. Wrapped errors are unwrapped.
func MapErrorToHTTP(err error) *HTTPError {
	for _, m := range mappings {
		if errors.Is(err, m.err) {
			return NewHTTPError(m.status, m.err.Error(), m.code)
		}
	}
	return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
}
