package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized is returned when the request carries no valid session.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden is returned when a session acts on another user's account.
	ErrForbidden = errors.New("forbidden")
	// ErrTaskNotFound is returned when a task does not exist or is not owned by the caller.
	ErrTaskNotFound = errors.New("task not found")
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserAlreadyExists is returned when creating a user with a taken email.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrTaskNameRequired is returned when a task name is missing or blank.
	ErrTaskNameRequired = errors.New("task name is required")
	// ErrInvalidStatus is returned for a status outside PENDING, IN_PROGRESS, COMPLETED.
	ErrInvalidStatus = errors.New("invalid task status")
	// ErrInvalidEventDate is returned when event_date cannot be parsed.
	ErrInvalidEventDate = errors.New("invalid event date")
	// ErrInvalidID is returned when a path or body id is not a positive integer.
	ErrInvalidID = errors.New("invalid id")
	// ErrEmailRequired is returned when an email is needed but missing.
	ErrEmailRequired = errors.New("email is required")
)

// ValidationError describes malformed client input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError creates a validation error for a field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// PersistenceError wraps an unexpected storage failure. Its message is never
// sent to clients.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Persistence wraps err as a PersistenceError. A nil err stays nil.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Err: err}
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	var vErr *ValidationError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &vErr):
		return NewHTTPError(http.StatusBadRequest, vErr.Error(), "VALIDATION_ERROR")
	case errors.Is(err, ErrTaskNameRequired):
		return NewHTTPError(http.StatusBadRequest, ErrTaskNameRequired.Error(), "TASK_NAME_REQUIRED")
	case errors.Is(err, ErrInvalidStatus):
		return NewHTTPError(http.StatusBadRequest, ErrInvalidStatus.Error(), "INVALID_STATUS")
	case errors.Is(err, ErrInvalidEventDate):
		return NewHTTPError(http.StatusBadRequest, ErrInvalidEventDate.Error(), "INVALID_EVENT_DATE")
	case errors.Is(err, ErrInvalidID):
		return NewHTTPError(http.StatusBadRequest, ErrInvalidID.Error(), "INVALID_ID")
	case errors.Is(err, ErrEmailRequired):
		return NewHTTPError(http.StatusBadRequest, ErrEmailRequired.Error(), "EMAIL_REQUIRED")
	case errors.Is(err, ErrUnauthorized):
		return NewHTTPError(http.StatusUnauthorized, ErrUnauthorized.Error(), "UNAUTHORIZED")
	case errors.Is(err, ErrForbidden):
		return NewHTTPError(http.StatusForbidden, ErrForbidden.Error(), "FORBIDDEN")
	case errors.Is(err, ErrTaskNotFound):
		return NewHTTPError(http.StatusNotFound, ErrTaskNotFound.Error(), "TASK_NOT_FOUND")
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, ErrUserNotFound.Error(), "USER_NOT_FOUND")
	case errors.Is(err, ErrUserAlreadyExists):
		return NewHTTPError(http.StatusConflict, ErrUserAlreadyExists.Error(), "USER_ALREADY_EXISTS")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
