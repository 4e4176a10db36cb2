package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "tasky/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"tasky/internal/auth"
	"tasky/internal/cache"
	"tasky/internal/calendar"
	"tasky/internal/config"
	"tasky/internal/db"
	"tasky/internal/handler"
	"tasky/internal/logger"
	"tasky/internal/metrics"
	"tasky/internal/repository"
	"tasky/internal/router"
	"tasky/internal/service"
)

// @title Tasky API
// @version 1.0
// @description Personal tasks and calendar API with Google sign-in.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("load config", zap.Error(err))
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		zap.NewExample().Fatal("init logger", zap.Error(err))
	}
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	weekStart, err := calendar.ParseWeekday(cfg.WeekStart)
	if err != nil {
		log.Fatal("invalid WEEK_START", zap.Error(err))
	}

	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatal("database init", zap.Error(err))
	}

	if cfg.ResetDB {
		log.Warn("RESET_DB=true detected, dropping all tables")
		if err := db.Reset(gormDB); err != nil {
			log.Warn("failed to drop tables", zap.Error(err))
		}
	}

	if err := db.Migrate(gormDB); err != nil {
		log.Fatal("auto-migrate", zap.Error(err))
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, log.Named("cache"))

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	taskRepo := repository.NewTaskRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.SessionSecret, cfg.SessionMaxAge)
	tokenStore := auth.NewTokenStore(cacheClient)
	google := auth.NewGoogleProvider(auth.GoogleConfig{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
	})

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtService, tokenStore, cacheClient, log.Named("auth"))
	taskService := service.NewTaskService(taskRepo, userRepo, cacheClient, log.Named("tasks"))
	userService := service.NewUserService(userRepo, cacheClient)

	collector := metrics.NewCollector(prometheus.DefaultRegisterer)

	// Initialize handlers
	handlers := router.Handlers{
		Auth: handler.NewAuthHandler(authService, google, collector, handler.AuthHandlerConfig{
			BaseURL:      cfg.BaseURL,
			CookieSecure: cfg.CookieSecure,
		}, log),
		Tasks:    handler.NewTaskHandler(taskService, collector, log),
		Users:    handler.NewUserHandler(userService, log),
		Calendar: handler.NewCalendarHandler(taskService, weekStart, log),
	}

	e := echo.New()
	e.HideBanner = true

	// Register routes
	router.Register(e, cfg, handlers, router.Deps{
		Authenticator: authService,
		Metrics:       collector,
		Gatherer:      prometheus.DefaultGatherer,
		Log:           log,
	})

	log.Info("swagger documentation available", zap.String("url", swaggerURL(cfg)))

	addr := ":" + cfg.ServerPort
	go func() {
		log.Info("server listening", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server start", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", zap.Error(err))
	}
	if err := cacheClient.Close(); err != nil {
		log.Warn("close cache", zap.Error(err))
	}
}

// swaggerURL builds the docs URL; SWAGGER_HOST may already include a scheme.
func swaggerURL(cfg *config.Config) string {
	host := cfg.SwaggerHost
	if host == "" {
		host = "localhost:" + cfg.ServerPort
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return host + "/swagger/index.html"
}
