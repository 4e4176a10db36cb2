package render

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"tasky/internal/calendar"
	"tasky/internal/model"
)

func TestStatusColor_UnknownFallsBackToRed(t *testing.T) {
	assert.Equal(t, completedColor, StatusColor(model.TaskStatusCompleted))
	assert.Equal(t, unknownColor, StatusColor("ARCHIVED"))
	assert.Equal(t, unknownColor, StatusColor(""))
	assert.Equal(t, "UNKNOWN", StatusLabel("ARCHIVED"))
	assert.Equal(t, "IN PROGRESS", StatusLabel(model.TaskStatusInProgress))
}

func TestTaskList(t *testing.T) {
	date := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	out := TaskList([]model.Task{
		{ID: 1, Name: "Standup", Status: model.TaskStatusPending, EventDate: &date},
		{ID: 0, Name: "Saving…", Status: "WEIRD"},
	}, time.UTC)

	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], "2024-03-15")
	assert.Contains(t, lines[0], "Standup")
	assert.Contains(t, lines[1], "UNKNOWN")

	assert.Contains(t, TaskList(nil, time.UTC), "no tasks")
}

func TestMonth(t *testing.T) {
	ref := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	date := time.Date(2024, 3, 15, 23, 0, 0, 0, time.UTC)
	cells := calendar.Layout(ref, time.Sunday, []model.Task{{ID: 1, Name: "Deploy", Status: model.TaskStatusCompleted, EventDate: &date}})

	out := Month(ref, time.Sunday, cells)
	assert.Contains(t, out, "March 2024")
	assert.Contains(t, out, "Deploy")
	assert.Contains(t, out, "Sun")
	assert.Greater(t, lipgloss.Width(out), 7*(cellWidth-1))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}
