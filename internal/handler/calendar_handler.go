package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"tasky/internal/calendar"
	"tasky/internal/errors"
	"tasky/internal/model"
	"tasky/internal/service"
)

// CalendarHandler serves month grids filled with the session user's tasks.
type CalendarHandler struct {
	tasks     service.TaskService
	weekStart time.Weekday
	now       func() time.Time
	log       *zap.Logger
}

// NewCalendarHandler creates a calendar handler. weekStart is used when the
// request does not name one.
func NewCalendarHandler(tasks service.TaskService, weekStart time.Weekday, log *zap.Logger) *CalendarHandler {
	return &CalendarHandler{tasks: tasks, weekStart: weekStart, now: time.Now, log: orNop(log).Named("calendar")}
}

// CalendarResponse is a month grid.
type CalendarResponse struct {
	Month     string          `json:"month"`
	WeekStart string          `json:"week_start"`
	Weekdays  []string        `json:"weekdays"`
	Days      []calendar.Cell `json:"days"`
}

// GetCalendar godoc
// @Summary Month grid with the signed-in user's tasks
// @Tags calendar
// @Produce json
// @Security BearerAuth
// @Param month query string false "Month as YYYY-MM, defaults to the current month"
// @Param week_start query string false "First day of the week, e.g. sunday or monday"
// @Param tz query string false "IANA time zone used to place tasks on days, defaults to UTC"
// @Param status query string false "ALL, PENDING, IN_PROGRESS or COMPLETED"
// @Success 200 {object} CalendarResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /calendar [get]
func (h *CalendarHandler) GetCalendar(c echo.Context) error {
	sess, err := currentSession(c)
	if err != nil {
		return fail(c, h.log, err)
	}

	loc := time.UTC
	if tz := c.QueryParam("tz"); tz != "" {
		if loc, err = time.LoadLocation(tz); err != nil {
			return fail(c, h.log, errors.NewValidationError("tz", "unknown time zone"))
		}
	}
	month, err := calendar.ParseMonth(c.QueryParam("month"), h.now(), loc)
	if err != nil {
		return fail(c, h.log, errors.NewValidationError("month", err.Error()))
	}
	weekStart := h.weekStart
	if ws := c.QueryParam("week_start"); ws != "" {
		if weekStart, err = calendar.ParseWeekday(ws); err != nil {
			return fail(c, h.log, errors.NewValidationError("week_start", err.Error()))
		}
	}
	filter, ok := model.ParseStatusFilter(c.QueryParam("status"))
	if !ok {
		return fail(c, h.log, errors.ErrInvalidStatus)
	}

	tasks, err := h.tasks.ListTasks(c.Request().Context(), sess.Email, filter)
	if err != nil {
		return fail(c, h.log, err)
	}

	return c.JSON(http.StatusOK, CalendarResponse{
		Month:     month.Format("2006-01"),
		WeekStart: strings.ToLower(weekStart.String()),
		Weekdays:  calendar.WeekdayHeaders(weekStart),
		Days:      calendar.Layout(month, weekStart, tasks),
	})
}
