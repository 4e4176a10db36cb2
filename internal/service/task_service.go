package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"tasky/internal/cache"
	apperrors "tasky/internal/errors"
	"tasky/internal/model"
	"tasky/internal/repository"
)

const taskListCacheTTL = 5 * time.Minute

// CreateTaskInput carries the fields of a new task. An empty Status means PENDING.
type CreateTaskInput struct {
	Name      string
	Status    model.TaskStatus
	EventDate *time.Time
}

// UpdateTaskInput carries a partial update. Nil fields are left unchanged;
// ClearEventDate sets the event date to null.
type UpdateTaskInput struct {
	Name           *string
	Status         *model.TaskStatus
	EventDate      *time.Time
	ClearEventDate bool
}

// TaskService manages the tasks of the signed-in user. Every method resolves the
// owner from the session email and never touches another user's tasks.
type TaskService interface {
	ListTasks(ctx context.Context, email string, filter model.StatusFilter) ([]model.Task, error)
	GetTask(ctx context.Context, email string, id uint) (*model.Task, error)
	CreateTask(ctx context.Context, email string, in CreateTaskInput) (*model.Task, error)
	UpdateTask(ctx context.Context, email string, id uint, in UpdateTaskInput) (*model.Task, error)
	DeleteTask(ctx context.Context, email string, id uint) error
}

type taskService struct {
	tasks repository.TaskRepository
	users repository.UserRepository
	cache *cache.Client
	log   *zap.Logger
}

// NewTaskService creates a new task service.
func NewTaskService(tasks repository.TaskRepository, users repository.UserRepository, cache *cache.Client, log *zap.Logger) TaskService {
	if log == nil {
		log = zap.NewNop()
	}
	return &taskService{tasks: tasks, users: users, cache: cache, log: log.Named("tasks")}
}

func taskListCacheKey(userID uint) string {
	return fmt.Sprintf("tasks:user:%d", userID)
}

// owner resolves the user behind a session email. A session whose user row is
// gone is treated as signed out.
func (s *taskService) owner(ctx context.Context, email string) (*model.User, error) {
	if email == "" {
		return nil, apperrors.ErrUnauthorized
	}
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, apperrors.Persistence("find task owner", err)
	}
	return user, nil
}

// ownedTask loads a task and hides tasks owned by someone else behind not found.
func (s *taskService) ownedTask(ctx context.Context, userID, id uint) (*model.Task, error) {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTaskNotFound
		}
		return nil, apperrors.Persistence("find task", err)
	}
	if task.UserID != userID {
		return nil, apperrors.ErrTaskNotFound
	}
	return task, nil
}

func (s *taskService) invalidate(ctx context.Context, userID uint) {
	_ = s.cache.Delete(ctx, taskListCacheKey(userID))
}

// ListTasks returns the user's tasks matching filter.
func (s *taskService) ListTasks(ctx context.Context, email string, filter model.StatusFilter) ([]model.Task, error) {
	user, err := s.owner(ctx, email)
	if err != nil {
		return nil, err
	}

	key := taskListCacheKey(user.ID)
	if data, _ := s.cache.Get(ctx, key); data != nil {
		var cached []model.Task
		if err := json.Unmarshal(data, &cached); err == nil {
			return model.FilterTasks(cached, filter), nil
		}
	}

	tasks, err := s.tasks.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, apperrors.Persistence("list tasks", err)
	}

	if payload, err := json.Marshal(tasks); err == nil {
		_ = s.cache.Set(ctx, key, payload, taskListCacheTTL)
	}
	return model.FilterTasks(tasks, filter), nil
}

// GetTask returns one of the user's tasks.
func (s *taskService) GetTask(ctx context.Context, email string, id uint) (*model.Task, error) {
	user, err := s.owner(ctx, email)
	if err != nil {
		return nil, err
	}
	return s.ownedTask(ctx, user.ID, id)
}

// CreateTask validates the input and stores a task owned by the user.
func (s *taskService) CreateTask(ctx context.Context, email string, in CreateTaskInput) (*model.Task, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperrors.ErrTaskNameRequired
	}
	status := in.Status
	if status == "" {
		status = model.TaskStatusPending
	}
	if !status.Valid() {
		return nil, apperrors.ErrInvalidStatus
	}

	user, err := s.owner(ctx, email)
	if err != nil {
		return nil, err
	}

	task := &model.Task{
		Name:      name,
		Status:    status,
		EventDate: in.EventDate,
		UserID:    user.ID,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, apperrors.Persistence("create task", err)
	}
	s.invalidate(ctx, user.ID)

	s.log.Debug("task created", zap.Uint("task_id", task.ID), zap.Uint("user_id", user.ID))
	return task, nil
}

// UpdateTask applies a partial update to one of the user's tasks.
func (s *taskService) UpdateTask(ctx context.Context, email string, id uint, in UpdateTaskInput) (*model.Task, error) {
	fields := map[string]interface{}{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperrors.ErrTaskNameRequired
		}
		fields["name"] = name
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, apperrors.ErrInvalidStatus
		}
		fields["status"] = *in.Status
	}
	switch {
	case in.ClearEventDate:
		fields["event_date"] = nil
	case in.EventDate != nil:
		fields["event_date"] = *in.EventDate
	}

	user, err := s.owner(ctx, email)
	if err != nil {
		return nil, err
	}
	if _, err := s.ownedTask(ctx, user.ID, id); err != nil {
		return nil, err
	}

	if err := s.tasks.UpdateFields(ctx, id, fields); err != nil {
		return nil, apperrors.Persistence("update task", err)
	}
	s.invalidate(ctx, user.ID)

	return s.ownedTask(ctx, user.ID, id)
}

// DeleteTask removes one of the user's tasks. A missing or foreign task is not found.
func (s *taskService) DeleteTask(ctx context.Context, email string, id uint) error {
	user, err := s.owner(ctx, email)
	if err != nil {
		return err
	}
	if err := s.tasks.Delete(ctx, id, user.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrTaskNotFound
		}
		return apperrors.Persistence("delete task", err)
	}
	s.invalidate(ctx, user.ID)
	return nil
}

// ParseEventDate accepts RFC 3339 timestamps and YYYY-MM-DD dates. An empty
// string means no date.
func ParseEventDate(v string) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", time.DateOnly} {
		if t, err := time.Parse(layout, v); err == nil {
			return &t, nil
		}
	}
	return nil, apperrors.ErrInvalidEventDate
}
