package model

import "time"

// TaskStatus represents the progress of a task.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "PENDING"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusCompleted  TaskStatus = "COMPLETED"
)

// TaskStatuses lists the known statuses in display order.
var TaskStatuses = []TaskStatus{TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted}

// Valid reports whether s is one of the known statuses.
// Values read back from storage or the wire may be unknown; callers render them
// with a fallback instead of failing.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return true
	default:
		return false
	}
}

// Task is a named item owned by a single user and optionally tied to a calendar date.
type Task struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	Name      string     `json:"name" gorm:"size:255;not null"`
	Status    TaskStatus `json:"status" gorm:"type:varchar(20);not null;default:'PENDING';index;check:chk_tasks_status,status IN ('PENDING','IN_PROGRESS','COMPLETED')"`
	EventDate *time.Time `json:"event_date"`
	UserID    uint       `json:"user_id" gorm:"not null;index"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	// Relations
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// StatusFilter selects tasks by status. StatusFilterAll matches every task.
type StatusFilter string

// StatusFilterAll disables status filtering.
const StatusFilterAll StatusFilter = "ALL"

// ParseStatusFilter converts user input into a filter. Empty input means ALL.
func ParseStatusFilter(v string) (StatusFilter, bool) {
	if v == "" || StatusFilter(v) == StatusFilterAll {
		return StatusFilterAll, true
	}
	if !TaskStatus(v).Valid() {
		return "", false
	}
	return StatusFilter(v), true
}

// Matches reports whether the task passes the filter.
func (f StatusFilter) Matches(t Task) bool {
	return f == StatusFilterAll || f == "" || TaskStatus(f) == t.Status
}

// FilterTasks returns the tasks matching f, preserving input order.
func FilterTasks(tasks []Task, f StatusFilter) []Task {
	if f == StatusFilterAll || f == "" {
		return tasks
	}
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Matches(t) {
			out = append(out, t)
		}
	}
	return out
}
