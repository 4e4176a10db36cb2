package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"tasky/internal/errors"
	"tasky/internal/model"
	"tasky/internal/service"
)

// UserHandler bundles user HTTP handlers.
type UserHandler struct {
	svc service.UserService
	log *zap.Logger
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService, log *zap.Logger) *UserHandler {
	return &UserHandler{svc: svc, log: orNop(log).Named("users")}
}

// CreateUserRequest represents a user creation request.
type CreateUserRequest struct {
	Name           string  `json:"name" validate:"max=255"`
	Email          string  `json:"email" validate:"required,email"`
	ProfilePicture *string `json:"profile_picture,omitempty" validate:"omitempty,url"`
}

// UpdateUserRequest represents a partial profile update.
type UpdateUserRequest struct {
	Name           *string `json:"name,omitempty" validate:"omitempty,max=255"`
	ProfilePicture *string `json:"profile_picture,omitempty"`
}

// self resolves :id and checks that it is the session user.
func (h *UserHandler) self(c echo.Context) (uint, error) {
	sess, err := currentSession(c)
	if err != nil {
		return 0, err
	}
	id, err := parseID(c.Param("id"))
	if err != nil {
		return 0, err
	}
	if strconv.FormatUint(uint64(id), 10) != sess.ID {
		return 0, errors.ErrForbidden
	}
	return id, nil
}

// GetUserByEmail godoc
// @Summary Look up the signed-in user by email
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param email query string true "Email address"
// @Success 200 {object} model.User
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users [get]
func (h *UserHandler) GetUserByEmail(c echo.Context) error {
	sess, err := currentSession(c)
	if err != nil {
		return fail(c, h.log, err)
	}
	email := strings.TrimSpace(c.QueryParam("email"))
	if email == "" {
		return fail(c, h.log, errors.ErrEmailRequired)
	}
	if !strings.EqualFold(email, sess.Email) {
		return fail(c, h.log, errors.ErrForbidden)
	}

	ctx := c.Request().Context()
	// Sessions issued from stored users carry the row id; read it through the cache.
	if id, perr := strconv.ParseUint(sess.ID, 10, 64); perr == nil {
		user, err := h.svc.GetUser(ctx, uint(id))
		if err != nil {
			return fail(c, h.log, err)
		}
		if strings.EqualFold(user.Email, email) {
			return c.JSON(http.StatusOK, user)
		}
	}

	user, err := h.svc.GetUserByEmail(ctx, email)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, user)
}

// CreateUser godoc
// @Summary Create user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param user body CreateUserRequest true "User payload"
// @Success 201 {object} model.User
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /users [post]
func (h *UserHandler) CreateUser(c echo.Context) error {
	var req CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody()
	}
	if err := c.Validate(&req); err != nil {
		return fail(c, h.log, errors.NewValidationError("", err.Error()))
	}

	created, err := h.svc.CreateUser(c.Request().Context(), service.CreateUserInput{
		Name:           req.Name,
		Email:          req.Email,
		ProfilePicture: req.ProfilePicture,
	})
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, created)
}

// GetUser godoc
// @Summary Get the signed-in user with their tasks
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} model.User
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := h.self(c)
	if err != nil {
		return fail(c, h.log, err)
	}
	user, err := h.svc.GetUserWithTasks(c.Request().Context(), id)
	if err != nil {
		return fail(c, h.log, err)
	}
	if user.Tasks == nil {
		user.Tasks = []model.Task{}
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateUser godoc
// @Summary Update the signed-in user's profile
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body UpdateUserRequest true "Fields to change"
// @Success 200 {object} model.User
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id} [put]
func (h *UserHandler) UpdateUser(c echo.Context) error {
	id, err := h.self(c)
	if err != nil {
		return fail(c, h.log, err)
	}

	var req UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody()
	}
	if err := c.Validate(&req); err != nil {
		return fail(c, h.log, errors.NewValidationError("name", err.Error()))
	}

	user, err := h.svc.UpdateUser(c.Request().Context(), id, service.UpdateUserInput{
		Name:           req.Name,
		ProfilePicture: req.ProfilePicture,
	})
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, user)
}

// DeleteUser godoc
// @Summary Delete the signed-in user and all of their tasks
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} MessageResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id} [delete]
func (h *UserHandler) DeleteUser(c echo.Context) error {
	id, err := h.self(c)
	if err != nil {
		return fail(c, h.log, err)
	}
	if err := h.svc.DeleteUser(c.Request().Context(), id); err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "user deleted"})
}
