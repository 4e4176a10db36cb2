package handler

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"tasky/internal/errors"
	"tasky/internal/metrics"
	"tasky/internal/model"
	"tasky/internal/service"
)

// TaskHandler handles task endpoints. Every route acts on the session user's tasks only.
type TaskHandler struct {
	tasks   service.TaskService
	metrics metrics.Recorder
	log     *zap.Logger
}

// NewTaskHandler creates a new task handler.
func NewTaskHandler(tasks service.TaskService, rec metrics.Recorder, log *zap.Logger) *TaskHandler {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &TaskHandler{tasks: tasks, metrics: rec, log: orNop(log).Named("tasks")}
}

// CreateTaskRequest represents a task creation request.
type CreateTaskRequest struct {
	Name      string  `json:"name" validate:"max=255"`
	Status    string  `json:"status,omitempty"`
	EventDate *string `json:"event_date,omitempty"`
}

// UpdateTaskRequest represents a partial task update. Omitted fields keep their
// value; "event_date": null clears the date.
type UpdateTaskRequest struct {
	Name      *string      `json:"name,omitempty" validate:"omitempty,max=255"`
	Status    *string      `json:"status,omitempty"`
	EventDate optionalText `json:"event_date" swaggertype:"string"`
}

// DeleteTaskRequest is the body of the deprecated DELETE /tasks call.
type DeleteTaskRequest struct {
	TaskID uint `json:"task_id"`
}

// optionalText tells an absent JSON field apart from an explicit null.
type optionalText struct {
	Set   bool
	Null  bool
	Value string
}

func (o *optionalText) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Null = true
		return nil
	}
	return json.Unmarshal(b, &o.Value)
}

// ListTasks godoc
// @Summary List the signed-in user's tasks
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param status query string false "ALL, PENDING, IN_PROGRESS or COMPLETED"
// @Success 200 {array} model.Task
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /tasks [get]
func (h *TaskHandler) ListTasks(c echo.Context) error {
	sess, err := currentSession(c)
	if err != nil {
		return fail(c, h.log, err)
	}
	filter, ok := model.ParseStatusFilter(c.QueryParam("status"))
	if !ok {
		return fail(c, h.log, errors.ErrInvalidStatus)
	}

	tasks, err := h.tasks.ListTasks(c.Request().Context(), sess.Email, filter)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, tasks)
}

// CreateTask godoc
// @Summary Create a task
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTaskRequest true "Task data"
// @Success 201 {object} model.Task
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /tasks [post]
func (h *TaskHandler) CreateTask(c echo.Context) error {
	sess, err := currentSession(c)
	if err != nil {
		return fail(c, h.log, err)
	}

	var req CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody()
	}
	if err := c.Validate(&req); err != nil {
		return fail(c, h.log, errors.NewValidationError("name", err.Error()))
	}

	in := service.CreateTaskInput{Name: req.Name, Status: model.TaskStatus(req.Status)}
	if req.EventDate != nil {
		if in.EventDate, err = service.ParseEventDate(*req.EventDate); err != nil {
			return fail(c, h.log, err)
		}
	}

	task, err := h.tasks.CreateTask(c.Request().Context(), sess.Email, in)
	h.metrics.RecordTaskMutation("create", err)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, task)
}

// GetTask godoc
// @Summary Get one of the signed-in user's tasks
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param id path int true "Task ID"
// @Success 200 {object} model.Task
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /tasks/{id} [get]
func (h *TaskHandler) GetTask(c echo.Context) error {
	sess, err := currentSession(c)
	if err != nil {
		return fail(c, h.log, err)
	}
	id, err := parseID(c.Param("id"))
	if err != nil {
		return fail(c, h.log, err)
	}

	task, err := h.tasks.GetTask(c.Request().Context(), sess.Email, id)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, task)
}

// UpdateTask godoc
// @Summary Partially update a task
// @Description Fields left out of the body keep their stored value.
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Task ID"
// @Param request body UpdateTaskRequest true "Fields to change"
// @Success 200 {object} model.Task
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /tasks/{id} [patch]
func (h *TaskHandler) UpdateTask(c echo.Context) error {
	sess, err := currentSession(c)
	if err != nil {
		return fail(c, h.log, err)
	}
	id, err := parseID(c.Param("id"))
	if err != nil {
		return fail(c, h.log, err)
	}

	var req UpdateTaskRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody()
	}
	if err := c.Validate(&req); err != nil {
		return fail(c, h.log, errors.NewValidationError("name", err.Error()))
	}

	in := service.UpdateTaskInput{Name: req.Name}
	if req.Status != nil {
		status := model.TaskStatus(*req.Status)
		in.Status = &status
	}
	if req.EventDate.Set {
		if req.EventDate.Null {
			in.ClearEventDate = true
		} else {
			date, err := service.ParseEventDate(req.EventDate.Value)
			if err != nil {
				return fail(c, h.log, err)
			}
			in.EventDate = date
			in.ClearEventDate = date == nil
		}
	}

	task, err := h.tasks.UpdateTask(c.Request().Context(), sess.Email, id, in)
	h.metrics.RecordTaskMutation("update", err)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, task)
}

// DeleteTask godoc
// @Summary Delete a task
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param id path int true "Task ID"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return fail(c, h.log, err)
	}
	return h.deleteTask(c, id)
}

// DeleteTaskByBody godoc
// @Summary Delete a task by body field
// @Description Deprecated: use DELETE /tasks/{id}. Same ownership rules apply.
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body DeleteTaskRequest true "Task to delete"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Deprecated
// @Router /tasks [delete]
func (h *TaskHandler) DeleteTaskByBody(c echo.Context) error {
	var req DeleteTaskRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody()
	}
	if req.TaskID == 0 {
		return fail(c, h.log, errors.ErrInvalidID)
	}

	c.Response().Header().Set("Deprecation", "true")
	c.Response().Header().Set("Link", `</api/tasks/{id}>; rel="successor-version"`)
	return h.deleteTask(c, req.TaskID)
}

func (h *TaskHandler) deleteTask(c echo.Context, id uint) error {
	sess, err := currentSession(c)
	if err != nil {
		return fail(c, h.log, err)
	}

	err = h.tasks.DeleteTask(c.Request().Context(), sess.Email, id)
	h.metrics.RecordTaskMutation("delete", err)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "task deleted"})
}
