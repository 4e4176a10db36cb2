package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application level configuration loaded from environment variables
// and, when TASKY_CONFIG points at a file, from that file.
type Config struct {
	ServerPort string

	DBDriver    string
	DatabaseDSN string
	ResetDB     bool

	RedisAddr string
	RedisDB   int
	RedisPass string

	SessionSecret string
	SessionMaxAge time.Duration

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	BaseURL           string
	CookieSecure      bool
	CORSAllowedOrigin string
	RateLimit         float64

	LogLevel    string
	SwaggerHost string
	WeekStart   string
}

var defaults = map[string]any{
	"SERVER_PORT":          "8080",
	"DB_DRIVER":            "mysql",
	"DATABASE_DSN":         "user:password@tcp(localhost:3306)/tasky?charset=utf8mb4&parseTime=True&loc=UTC",
	"RESET_DB":             false,
	"REDIS_ADDR":           "localhost:6379",
	"REDIS_DB":             0,
	"REDIS_PASSWORD":       "",
	"SESSION_SECRET":       "",
	"SESSION_MAX_AGE":      30 * 24 * time.Hour,
	"GOOGLE_CLIENT_ID":     "",
	"GOOGLE_CLIENT_SECRET": "",
	"GOOGLE_REDIRECT_URL":  "http://localhost:8080/api/auth/callback/google",
	"BASE_URL":             "http://localhost:3000/calendar",
	"COOKIE_SECURE":        false,
	"CORS_ALLOWED_ORIGIN":  "http://localhost:3000",
	"RATE_LIMIT":           20.0,
	"LOG_LEVEL":            "info",
	"SWAGGER_HOST":         "",
	"WEEK_START":           "sunday",
}

// Load builds Config from environment with sensible defaults.
func Load() (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if path := v.GetString("TASKY_CONFIG"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	return &Config{
		ServerPort:         v.GetString("SERVER_PORT"),
		DBDriver:           strings.ToLower(v.GetString("DB_DRIVER")),
		DatabaseDSN:        v.GetString("DATABASE_DSN"),
		ResetDB:            v.GetBool("RESET_DB"),
		RedisAddr:          v.GetString("REDIS_ADDR"),
		RedisDB:            v.GetInt("REDIS_DB"),
		RedisPass:          v.GetString("REDIS_PASSWORD"),
		SessionSecret:      v.GetString("SESSION_SECRET"),
		SessionMaxAge:      v.GetDuration("SESSION_MAX_AGE"),
		GoogleClientID:     v.GetString("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: v.GetString("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  v.GetString("GOOGLE_REDIRECT_URL"),
		BaseURL:            v.GetString("BASE_URL"),
		CookieSecure:       v.GetBool("COOKIE_SECURE"),
		CORSAllowedOrigin:  v.GetString("CORS_ALLOWED_ORIGIN"),
		RateLimit:          v.GetFloat64("RATE_LIMIT"),
		LogLevel:           v.GetString("LOG_LEVEL"),
		SwaggerHost:        v.GetString("SWAGGER_HOST"),
		WeekStart:          strings.ToLower(v.GetString("WEEK_START")),
	}, nil
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	var missing []string
	if c.GoogleClientID == "" {
		missing = append(missing, "GOOGLE_CLIENT_ID")
	}
	if c.GoogleClientSecret == "" {
		missing = append(missing, "GOOGLE_CLIENT_SECRET")
	}
	if c.SessionSecret == "" {
		missing = append(missing, "SESSION_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("required settings are not set: %v", missing)
	}
	if c.SessionMaxAge <= 0 {
		return errors.New("SESSION_MAX_AGE must be positive")
	}
	switch c.DBDriver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	return nil
}
