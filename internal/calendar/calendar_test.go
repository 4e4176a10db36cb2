package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasky/internal/model"
)

func TestMonthGrid_WholeWeeksCoveringMonth(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		berlin = time.FixedZone("CET", 3600)
	}

	for _, loc := range []*time.Location{time.UTC, berlin} {
		for year := 2023; year <= 2025; year++ {
			for month := time.January; month <= time.December; month++ {
				for ws := time.Sunday; ws <= time.Saturday; ws++ {
					ref := time.Date(year, month, 17, 13, 0, 0, 0, loc)
					days := MonthGrid(ref, ws)

					require.Zero(t, len(days)%7, "%s %d ws=%s", month, year, ws)
					assert.Equal(t, ws, days[0].Date.Weekday())
					assert.Equal(t, (ws+6)%7, days[len(days)-1].Date.Weekday())

					seen := map[int]bool{}
					for i, d := range days {
						if i > 0 {
							assert.Equal(t, days[i-1].Date.AddDate(0, 0, 1), d.Date, "consecutive days")
						}
						if d.Date.Month() == month {
							assert.True(t, d.InMonth)
							seen[d.Date.Day()] = true
						} else {
							assert.False(t, d.InMonth)
						}
					}
					daysInMonth := time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
					assert.Len(t, seen, daysInMonth)
				}
			}
		}
	}
}

func TestMonthGrid_March2024(t *testing.T) {
	days := MonthGrid(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), time.Sunday)

	require.Len(t, days, 42)
	assert.Equal(t, "2024-02-25", days[0].Key)
	assert.Equal(t, "2024-04-06", days[len(days)-1].Key)

	monday := MonthGrid(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), time.Monday)
	require.Len(t, monday, 35)
	assert.Equal(t, "2024-02-26", monday[0].Key)
	assert.Equal(t, "2024-03-31", monday[len(monday)-1].Key)
}

func TestBucket_IgnoresTimeOfDay(t *testing.T) {
	morning := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	night := time.Date(2024, 3, 15, 23, 0, 0, 0, time.UTC)
	next := time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC)

	tasks := []model.Task{
		{ID: 1, Name: "standup", EventDate: &morning},
		{ID: 2, Name: "deploy", EventDate: &night},
		{ID: 3, Name: "retro", EventDate: &next},
		{ID: 4, Name: "someday"},
	}

	buckets := Bucket(tasks, time.UTC)
	require.Len(t, buckets["2024-03-15"], 2)
	assert.Equal(t, uint(1), buckets["2024-03-15"][0].ID)
	assert.Equal(t, uint(2), buckets["2024-03-15"][1].ID)
	assert.Len(t, buckets["2024-03-16"], 1)
	assert.Len(t, buckets, 2)

	cells := Layout(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), time.Sunday, tasks)
	for _, c := range cells {
		switch c.Key {
		case "2024-03-15":
			assert.Len(t, c.Tasks, 2)
		case "2024-03-16":
			assert.Len(t, c.Tasks, 1)
		default:
			assert.Empty(t, c.Tasks)
		}
	}
}

func TestDateKey_UsesLocation(t *testing.T) {
	ts := time.Date(2024, 3, 15, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-15", DateKey(ts, time.UTC))
	assert.Equal(t, "2024-03-16", DateKey(ts, time.FixedZone("UTC+2", 2*3600)))
	assert.Equal(t, "2024-03-15", DateKey(ts, nil))
}

func TestWeeks(t *testing.T) {
	rows := Weeks(MonthGrid(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), time.Sunday))
	require.Len(t, rows, 6)
	for _, r := range rows {
		assert.Len(t, r, 7)
	}
}

func TestParseMonth(t *testing.T) {
	now := time.Date(2024, 7, 19, 10, 0, 0, 0, time.UTC)

	got, err := ParseMonth("2024-03", now, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), got)

	got, err = ParseMonth("", now, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), got)

	_, err = ParseMonth("March", now, time.UTC)
	assert.Error(t, err)
}

func TestParseWeekday(t *testing.T) {
	for in, want := range map[string]time.Weekday{
		"":       time.Sunday,
		"sunday": time.Sunday,
		"Monday": time.Monday,
		"sat":    time.Saturday,
		" WED ":  time.Wednesday,
	} {
		got, err := ParseWeekday(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseWeekday("someday")
	assert.Error(t, err)
}

func TestWeekdayHeaders(t *testing.T) {
	assert.Equal(t, []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}, WeekdayHeaders(time.Sunday))
	assert.Equal(t, []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}, WeekdayHeaders(time.Monday))
}
