package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"tasky/internal/config"
	"tasky/internal/handler"
	"tasky/internal/metrics"
	appmw "tasky/internal/middleware"
)

// Handlers groups the HTTP handlers wired by Register.
type Handlers struct {
	Auth     *handler.AuthHandler
	Tasks    *handler.TaskHandler
	Users    *handler.UserHandler
	Calendar *handler.CalendarHandler
}

// Deps are the cross-cutting collaborators of the router.
type Deps struct {
	Authenticator appmw.Authenticator
	Metrics       *metrics.Collector
	Gatherer      prometheus.Gatherer
	Log           *zap.Logger
}

// Register wires routes and middleware.
func Register(e *echo.Echo, cfg *config.Config, h Handlers, deps Deps) {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}

	e.Use(middleware.RequestID())
	if deps.Metrics != nil {
		e.Use(deps.Metrics.Middleware())
	}
	e.Use(appmw.RequestLogger(log.Named("http")))
	e.Use(middleware.Recover())
	if cfg.CORSAllowedOrigin != "" {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     []string{cfg.CORSAllowedOrigin},
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
			AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization},
			AllowCredentials: true,
		}))
	}

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	if deps.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(metrics.Handler(deps.Gatherer)))
	}
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")
	if cfg.RateLimit > 0 {
		api.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rate.Limit(cfg.RateLimit))))
	}

	// Public routes
	api.GET("/auth/signin/google", h.Auth.SignIn)
	api.GET("/auth/callback/google", h.Auth.Callback)
	api.GET("/auth/session", h.Auth.Session)
	api.POST("/auth/signout", h.Auth.SignOut)

	// Secured routes (require a session)
	secured := api.Group("", appmw.RequireSession(deps.Authenticator))

	secured.GET("/tasks", h.Tasks.ListTasks)
	secured.POST("/tasks", h.Tasks.CreateTask)
	secured.DELETE("/tasks", h.Tasks.DeleteTaskByBody)
	secured.GET("/tasks/:id", h.Tasks.GetTask)
	secured.PATCH("/tasks/:id", h.Tasks.UpdateTask)
	secured.PUT("/tasks/:id", h.Tasks.UpdateTask)
	secured.DELETE("/tasks/:id", h.Tasks.DeleteTask)

	secured.GET("/users", h.Users.GetUserByEmail)
	secured.POST("/users", h.Users.CreateUser)
	secured.GET("/users/:id", h.Users.GetUser)
	secured.PUT("/users/:id", h.Users.UpdateUser)
	secured.DELETE("/users/:id", h.Users.DeleteUser)

	secured.GET("/calendar", h.Calendar.GetCalendar)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
