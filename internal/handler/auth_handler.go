package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"tasky/internal/auth"
	"tasky/internal/errors"
	"tasky/internal/metrics"
	"tasky/internal/middleware"
	"tasky/internal/service"
)

// OAuthStateCookieName holds the CSRF state between sign-in and callback.
const OAuthStateCookieName = "tasky_oauth_state"

const oauthStateMaxAge = 10 * time.Minute

// AuthHandlerConfig configures cookies and redirects.
type AuthHandlerConfig struct {
	BaseURL      string
	CookieSecure bool
}

// AuthHandler handles the OAuth sign-in flow and session endpoints.
type AuthHandler struct {
	authService service.AuthService
	provider    auth.OAuthProvider
	metrics     metrics.Recorder
	config      AuthHandlerConfig
	log         *zap.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService, provider auth.OAuthProvider, rec metrics.Recorder, cfg AuthHandlerConfig, log *zap.Logger) *AuthHandler {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &AuthHandler{
		authService: authService,
		provider:    provider,
		metrics:     rec,
		config:      cfg,
		log:         orNop(log).Named("auth"),
	}
}

// SignInResponse is returned by the callback to JSON clients.
type SignInResponse struct {
	Token   string        `json:"token"`
	Session *auth.Session `json:"session"`
}

func (h *AuthHandler) cookie(name, value string, maxAge time.Duration) *http.Cookie {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
	if maxAge > 0 {
		c.MaxAge = int(maxAge.Seconds())
		c.Expires = time.Now().Add(maxAge)
	} else {
		c.MaxAge = -1
	}
	return c
}

// SignIn godoc
// @Summary Start the OAuth sign-in
// @Tags auth
// @Success 307
// @Router /auth/signin/{provider} [get]
func (h *AuthHandler) SignIn(c echo.Context) error {
	state := uuid.NewString()
	c.SetCookie(h.cookie(OAuthStateCookieName, state, oauthStateMaxAge))
	return c.Redirect(http.StatusTemporaryRedirect, h.provider.AuthCodeURL(state))
}

// Callback godoc
// @Summary Finish the OAuth sign-in
// @Description Reconciles the provider identity with the users table and sets the session cookie.
// @Description JSON clients (Accept: application/json) receive the token instead of a redirect.
// @Tags auth
// @Produce json
// @Param code query string true "Authorization code"
// @Param state query string true "OAuth state"
// @Success 200 {object} SignInResponse
// @Success 302
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /auth/callback/{provider} [get]
func (h *AuthHandler) Callback(c echo.Context) error {
	state := c.QueryParam("state")
	stateCookie, err := c.Cookie(OAuthStateCookieName)
	if err != nil || state == "" || stateCookie.Value != state {
		h.log.Warn("oauth state mismatch")
		return badRequest("INVALID_STATE", "invalid state parameter")
	}
	c.SetCookie(h.cookie(OAuthStateCookieName, "", 0))

	if providerErr := c.QueryParam("error"); providerErr != "" {
		h.log.Warn("provider denied sign-in", zap.String("error", providerErr))
		return fail(c, h.log, errors.ErrUnauthorized)
	}
	code := c.QueryParam("code")
	if code == "" {
		return badRequest("MISSING_CODE", "missing authorization code")
	}

	claims, err := h.provider.Exchange(c.Request().Context(), code)
	if err != nil {
		h.log.Error("oauth exchange failed", zap.String("provider", h.provider.Name()), zap.Error(err))
		return fail(c, h.log, errors.ErrUnauthorized)
	}

	result, err := h.authService.SignIn(c.Request().Context(), *claims)
	if err != nil {
		return fail(c, h.log, err)
	}
	h.metrics.RecordSignIn(string(result.Outcome))

	c.SetCookie(h.cookie(middleware.SessionCookieName, result.Token, time.Until(result.Session.Expires)))

	if strings.Contains(c.Request().Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON) {
		return c.JSON(http.StatusOK, SignInResponse{Token: result.Token, Session: result.Session})
	}
	return c.Redirect(http.StatusFound, h.config.BaseURL)
}

// Session godoc
// @Summary Current session
// @Description Returns an empty object when not signed in.
// @Tags auth
// @Produce json
// @Success 200 {object} auth.Session
// @Router /auth/session [get]
func (h *AuthHandler) Session(c echo.Context) error {
	token := middleware.TokenFromRequest(c)
	if token == "" {
		return c.JSON(http.StatusOK, struct{}{})
	}
	sess, err := h.authService.Authenticate(c.Request().Context(), token)
	if err != nil {
		return c.JSON(http.StatusOK, struct{}{})
	}
	return c.JSON(http.StatusOK, sess)
}

// SignOut godoc
// @Summary Sign out
// @Tags auth
// @Produce json
// @Success 200 {object} MessageResponse
// @Router /auth/signout [post]
func (h *AuthHandler) SignOut(c echo.Context) error {
	if token := middleware.TokenFromRequest(c); token != "" {
		if err := h.authService.SignOut(c.Request().Context(), token); err != nil {
			h.log.Error("failed to revoke session", zap.Error(err))
		}
	}
	c.SetCookie(h.cookie(middleware.SessionCookieName, "", 0))
	return c.JSON(http.StatusOK, MessageResponse{Message: "signed out"})
}
