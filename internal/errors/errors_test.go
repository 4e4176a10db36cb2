package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToHTTP(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", NewValidationError("name", "is required"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"task name", ErrTaskNameRequired, http.StatusBadRequest, "TASK_NAME_REQUIRED"},
		{"wrapped status", fmt.Errorf("create: %w", ErrInvalidStatus), http.StatusBadRequest, "INVALID_STATUS"},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"forbidden", ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{"task not found", ErrTaskNotFound, http.StatusNotFound, "TASK_NOT_FOUND"},
		{"user not found", ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND"},
		{"conflict", ErrUserAlreadyExists, http.StatusConflict, "USER_ALREADY_EXISTS"},
		{"persistence", Persistence("list tasks", errors.New("connection refused")), http.StatusInternalServerError, "INTERNAL_ERROR"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpErr := MapErrorToHTTP(tt.err)
			assert.Equal(t, tt.wantStatus, httpErr.StatusCode)
			assert.Equal(t, tt.wantCode, httpErr.Code)
		})
	}
}

func TestMapErrorToHTTP_DoesNotLeakPersistenceCause(t *testing.T) {
	err := Persistence("delete task", errors.New("dial tcp 10.0.0.3:3306: connection refused"))
	resp := MapErrorToHTTP(err).ToErrorResponse()
	assert.Equal(t, "internal server error", resp.Error)
	assert.NotContains(t, resp.Error, "10.0.0.3")
}

func TestPersistence(t *testing.T) {
	assert.NoError(t, Persistence("noop", nil))

	cause := errors.New("deadlock")
	err := Persistence("update task", cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "update task: deadlock", err.Error())
}
