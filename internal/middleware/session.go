// Package middleware holds the echo middleware shared by the API routes.
package middleware

import (
	"context"
	"net/http"
	"strings"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"tasky/internal/auth"
	"tasky/internal/errors"
)

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "tasky_session"

const sessionContextKey = "session"

// Authenticator validates a session token.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*auth.Session, error)
}

// RequireSession rejects requests without a valid session token with 401. The
// token is read from the Authorization bearer header or the session cookie.
func RequireSession(authn Authenticator) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  sessionContextKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ,cookie:" + SessionCookieName,
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return authn.Authenticate(c.Request().Context(), token)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
				Error: errors.ErrUnauthorized.Error(),
				Code:  "UNAUTHORIZED",
			})
		},
	})
}

// SessionFromContext returns the session stored by RequireSession.
func SessionFromContext(c echo.Context) (*auth.Session, bool) {
	s, ok := c.Get(sessionContextKey).(*auth.Session)
	return s, ok && s != nil
}

// WithSession stores s on the context. Used by tests and optional-session routes.
func WithSession(c echo.Context, s *auth.Session) {
	c.Set(sessionContextKey, s)
}

// TokenFromRequest extracts the raw session token without validating it.
func TokenFromRequest(c echo.Context) string {
	if h := c.Request().Header.Get(echo.HeaderAuthorization); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := c.Cookie(SessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}
