// Package calendar computes month grids and places tasks on their days.
package calendar

import (
	"fmt"
	"strings"
	"time"

	"tasky/internal/model"
)

// DateKeyLayout is the layout of the day keys produced by DateKey.
const DateKeyLayout = time.DateOnly

// Day is one cell of a month grid.
type Day struct {
	Date    time.Time `json:"date"`
	Key     string    `json:"key"`
	InMonth bool      `json:"in_month"`
}

// Cell is a grid day with the tasks scheduled on it.
type Cell struct {
	Day
	Tasks []model.Task `json:"tasks"`
}

// MonthGrid returns the days from the weekStart on or before the first of ref's
// month through the last day of that week containing the month's last day.
// The result always holds whole weeks. Dates are midnight in ref's location.
func MonthGrid(ref time.Time, weekStart time.Weekday) []Day {
	loc := ref.Location()
	first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, loc)
	last := first.AddDate(0, 1, -1)

	start := first.AddDate(0, 0, -offset(first.Weekday(), weekStart))
	end := last.AddDate(0, 0, 6-offset(last.Weekday(), weekStart))

	var days []Day
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, Day{
			Date:    d,
			Key:     d.Format(DateKeyLayout),
			InMonth: d.Month() == first.Month(),
		})
	}
	return days
}

// offset is how many days d lies after weekStart within a week.
func offset(d, weekStart time.Weekday) int {
	return (int(d) - int(weekStart) + 7) % 7
}

// DateKey returns the calendar date of t in loc as YYYY-MM-DD. Time of day is ignored.
func DateKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DateKeyLayout)
}

// Bucket groups tasks by the date of their event in loc. Tasks without an
// event date are left out.
func Bucket(tasks []model.Task, loc *time.Location) map[string][]model.Task {
	buckets := make(map[string][]model.Task)
	for _, t := range tasks {
		if t.EventDate == nil {
			continue
		}
		key := DateKey(*t.EventDate, loc)
		buckets[key] = append(buckets[key], t)
	}
	return buckets
}

// Layout builds the month grid for ref with every task placed on its day.
func Layout(ref time.Time, weekStart time.Weekday, tasks []model.Task) []Cell {
	days := MonthGrid(ref, weekStart)
	buckets := Bucket(tasks, ref.Location())

	cells := make([]Cell, len(days))
	for i, d := range days {
		cells[i] = Cell{Day: d, Tasks: buckets[d.Key]}
		if cells[i].Tasks == nil {
			cells[i].Tasks = []model.Task{}
		}
	}
	return cells
}

// Weeks splits a grid into rows of seven.
func Weeks[T any](days []T) [][]T {
	rows := make([][]T, 0, len(days)/7)
	for i := 0; i+7 <= len(days); i += 7 {
		rows = append(rows, days[i:i+7])
	}
	return rows
}

// ParseMonth parses "YYYY-MM" into the first of that month in loc. An empty
// string means the current month.
func ParseMonth(v string, now time.Time, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	if v == "" {
		n := now.In(loc)
		return time.Date(n.Year(), n.Month(), 1, 0, 0, 0, 0, loc), nil
	}
	t, err := time.ParseInLocation("2006-01", v, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("month %q must look like 2024-03", v)
	}
	return t, nil
}

// ParseWeekday parses an English weekday name or its three letter prefix.
func ParseWeekday(v string) (time.Weekday, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return time.Sunday, nil
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if v == name || v == name[:3] {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("unknown weekday %q", v)
}

// WeekdayHeaders returns short weekday names starting at weekStart.
func WeekdayHeaders(weekStart time.Weekday) []string {
	headers := make([]string, 7)
	for i := range headers {
		headers[i] = time.Weekday((int(weekStart) + i) % 7).String()[:3]
	}
	return headers
}
