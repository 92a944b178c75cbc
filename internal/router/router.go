package router

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"habitrack/internal/auth"
	"habitrack/internal/errors"
	"habitrack/internal/handler"
	"habitrack/internal/middleware"
)

// Deps are the components the router wires together.
type Deps struct {
	Logger      *log.Logger
	JWT         *auth.JWTService
	TokenStore  auth.TokenStoreInterface
	APILimiter  *middleware.RateLimiter
	AuthLimiter *middleware.RateLimiter

	AuthHandler  *handler.AuthHandler
	UserHandler  *handler.UserHandler
	HabitHandler *handler.HabitHandler
}

// Register wires routes and middleware.
func Register(e *echo.Echo, d Deps) {
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(d.Logger))
	e.Use(echomw.Recover())

	e.Validator = NewValidator()

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api", d.APILimiter.Middleware())

	jwtAuth := echojwt.WithConfig(echojwt.Config{
		SigningKey:  d.JWT.Secret(),
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		NewClaimsFunc: func(echo.Context) jwt.Claims {
			return new(auth.Claims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
				Error: "invalid or missing token",
				Code:  "UNAUTHORIZED",
			})
		},
	})
	secured := []echo.MiddlewareFunc{jwtAuth, middleware.RequireAccessToken(d.TokenStore)}

	// Auth routes
	authGroup := api.Group("/auth", d.AuthLimiter.Middleware())
	authGroup.POST("/login", d.AuthHandler.Login)
	authGroup.POST("/register", d.AuthHandler.Register)
	authGroup.GET("/email/duplicate/:email", d.AuthHandler.CheckEmailExist)
	authGroup.GET("/name/duplicate/:name", d.AuthHandler.CheckNameExist)
	authGroup.POST("/refresh", d.AuthHandler.Refresh)
	authGroup.POST("/logout", d.AuthHandler.Logout, secured...)

	// User routes
	users := api.Group("/users")
	users.GET("/default", d.UserHandler.GetDefaultUser)
	me := users.Group("/me", secured...)
	me.GET("", d.UserHandler.GetProfile)
	me.GET("/info", d.UserHandler.GetInfo)
	me.PATCH("/password", d.UserHandler.UpdatePassword)
	me.PATCH("", d.UserHandler.UpdateProfile)
	me.PUT("/photo", d.UserHandler.UploadPhoto)
	me.DELETE("", d.UserHandler.DeleteMe)

	// Habit routes
	habits := api.Group("/habits", secured...)
	habits.POST("", d.HabitHandler.CreateHabit)
	habits.GET("", d.HabitHandler.ListHabits)
	habits.GET("/:id", d.HabitHandler.GetHabit)
	habits.PUT("/:id", d.HabitHandler.UpdateHabit)
	habits.DELETE("/:id", d.HabitHandler.DeleteHabit)
}
