package handler

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"habitrack/internal/auth"
	"habitrack/internal/errors"
)

// ContextKeyUser is where echo-jwt stores the parsed *jwt.Token.
const ContextKeyUser = "user"

// bindAndValidate binds the request into req and runs the registered validator.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_REQUEST",
		})
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_ERROR",
		})
	}
	return nil
}

// fail maps a service error to an echo HTTP error.
func fail(err error) error {
	httpErr := errors.MapErrorToHTTP(err)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}

var errUnauthorized = echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
	Error: "invalid or missing token",
	Code:  "UNAUTHORIZED",
})

// CurrentClaims returns the claims of the authenticated request.
func CurrentClaims(c echo.Context) (*auth.Claims, bool) {
	token, ok := c.Get(ContextKeyUser).(*jwt.Token)
	if !ok || token == nil {
		return nil, false
	}
	claims, ok := token.Claims.(*auth.Claims)
	if !ok || claims.UserID == uuid.Nil {
		return nil, false
	}
	return claims, true
}

func currentUserID(c echo.Context) (uuid.UUID, error) {
	claims, ok := CurrentClaims(c)
	if !ok {
		return uuid.Nil, errUnauthorized
	}
	return claims.UserID, nil
}
