// Package render draws task lists and month grids for the terminal.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"tasky/internal/calendar"
	"tasky/internal/model"
)

const cellWidth = 14

var (
	pendingColor    = lipgloss.Color("#EAB308")
	inProgressColor = lipgloss.Color("#3B82F6")
	completedColor  = lipgloss.Color("#22C55E")
	unknownColor    = lipgloss.Color("#EF4444")
	mutedColor      = lipgloss.Color("#6B7280")

	headerStyle  = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(mutedColor)
	dayStyle     = lipgloss.NewStyle().Bold(true)
	cellStyle    = lipgloss.NewStyle().Width(cellWidth).Padding(0, 1)
	outsideStyle = cellStyle.Foreground(mutedColor)
)

// StatusColor returns the colour for a status. Unknown statuses are red.
func StatusColor(s model.TaskStatus) lipgloss.Color {
	switch s {
	case model.TaskStatusPending:
		return pendingColor
	case model.TaskStatusInProgress:
		return inProgressColor
	case model.TaskStatusCompleted:
		return completedColor
	default:
		return unknownColor
	}
}

// StatusLabel returns a human label, "UNKNOWN" for values outside the enum.
func StatusLabel(s model.TaskStatus) string {
	if !s.Valid() {
		return "UNKNOWN"
	}
	return strings.ReplaceAll(string(s), "_", " ")
}

func statusBadge(s model.TaskStatus) string {
	return lipgloss.NewStyle().Foreground(StatusColor(s)).Render(StatusLabel(s))
}

// TaskList renders one line per task.
func TaskList(tasks []model.Task, loc *time.Location) string {
	if len(tasks) == 0 {
		return mutedStyle.Render("no tasks")
	}

	var b strings.Builder
	for _, t := range tasks {
		date := "          "
		if t.EventDate != nil {
			date = calendar.DateKey(*t.EventDate, loc)
		}
		id := fmt.Sprintf("#%d", t.ID)
		if t.ID == 0 {
			id = "#…"
		}
		fmt.Fprintf(&b, "%-6s %s  %-12s %s\n", id, mutedStyle.Render(date), statusBadge(t.Status), t.Name)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Month renders a grid of cells, one row per week, each cell listing its tasks.
func Month(ref time.Time, weekStart time.Weekday, cells []calendar.Cell) string {
	title := headerStyle.Render(ref.Format("January 2006"))

	headers := make([]string, 0, 7)
	for _, h := range calendar.WeekdayHeaders(weekStart) {
		headers = append(headers, cellStyle.Inherit(headerStyle).Render(h))
	}
	rows := []string{title, lipgloss.JoinHorizontal(lipgloss.Top, headers...)}

	for _, week := range calendar.Weeks(cells) {
		rendered := make([]string, 0, len(week))
		for _, c := range week {
			rendered = append(rendered, renderCell(c))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, rendered...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func renderCell(c calendar.Cell) string {
	style := cellStyle
	if !c.InMonth {
		style = outsideStyle
	}

	lines := []string{dayStyle.Render(fmt.Sprintf("%2d", c.Date.Day()))}
	for _, t := range c.Tasks {
		name := truncate(t.Name, cellWidth-4)
		lines = append(lines, lipgloss.NewStyle().Foreground(StatusColor(t.Status)).Render("• "+name))
	}
	return style.Render(strings.Join(lines, "\n"))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
