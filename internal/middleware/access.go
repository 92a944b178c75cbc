package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"habitrack/internal/auth"
	"habitrack/internal/errors"
	"habitrack/internal/handler"
)

// RequireAccessToken must run after the JWT middleware. It refuses refresh
// tokens presented as bearer tokens and access tokens blacklisted by a logout.
func RequireAccessToken(store auth.TokenStoreInterface) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := handler.CurrentClaims(c)
			if !ok || !claims.IsAccess() {
				return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
					Error: "invalid or missing token",
					Code:  "UNAUTHORIZED",
				})
			}
			revoked, _ := store.IsAccessTokenBlacklisted(c.Request().Context(), claims.ID)
			if revoked {
				return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
					Error: "token has been revoked",
					Code:  "TOKEN_REVOKED",
				})
			}
			return next(c)
		}
	}
}
