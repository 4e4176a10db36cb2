package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"tasky/internal/auth"
	"tasky/internal/errors"
	"tasky/internal/middleware"
)

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// fail converts a domain error into an echo HTTP error carrying ErrorResponse.
// Server side causes are logged here and never sent to the client.
func fail(c echo.Context, log *zap.Logger, err error) error {
	httpErr := errors.MapErrorToHTTP(err)
	if httpErr.StatusCode >= http.StatusInternalServerError {
		log.Error("request failed",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	}
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}

func badRequest(code, message string) error {
	return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{Error: message, Code: code})
}

func invalidBody() error {
	return badRequest("INVALID_REQUEST", "invalid request body")
}

// parseID parses a positive integer id.
func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, errors.ErrInvalidID
	}
	return uint(id), nil
}

// currentSession returns the session put on the context by the session gate.
func currentSession(c echo.Context) (*auth.Session, error) {
	s, ok := middleware.SessionFromContext(c)
	if !ok {
		return nil, errors.ErrUnauthorized
	}
	return s, nil
}

func orNop(log *zap.Logger) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}
