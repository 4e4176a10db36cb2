// Package taskcache keeps a local mirror of the signed-in user's task list in
// sync with the server. Mutations are applied to the mirror first and
// reconciled with the server afterwards.
package taskcache

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"tasky/internal/model"
)

// Store serves the task list from the mirror and keeps it converging to the
// server. It is safe for concurrent use.
type Store struct {
	mu     sync.Mutex
	remote Remote
	mirror Mirror
	log    *zap.Logger
}

// NewStore creates a store. A nil mirror keeps the list in memory.
func NewStore(remote Remote, mirror Mirror, log *zap.Logger) *Store {
	if mirror == nil {
		mirror = &MemoryMirror{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{remote: remote, mirror: mirror, log: log.Named("taskcache")}
}

// Tasks returns the mirror when it holds anything, otherwise fetches from the server.
func (s *Store) Tasks(ctx context.Context) ([]model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.mirror.Load()
	if err != nil {
		s.log.Warn("mirror unreadable, fetching", zap.Error(err))
	}
	if len(tasks) > 0 {
		return tasks, nil
	}
	return s.refreshLocked(ctx)
}

// Refresh replaces the mirror with the server's list.
func (s *Store) Refresh(ctx context.Context) ([]model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshLocked(ctx)
}

func (s *Store) refreshLocked(ctx context.Context) ([]model.Task, error) {
	tasks, err := s.remote.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch tasks: %w", err)
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	if err := s.mirror.Save(tasks); err != nil {
		s.log.Warn("saving mirror failed", zap.Error(err))
	}
	return tasks, nil
}

// Create appends a placeholder task (ID 0) to the mirror, then creates the task
// on the server and swaps the placeholder for the stored task. When the server
// call fails the mirror is reconciled with a full fetch, or restored to its
// previous content when that fetch fails too. The create error is returned.
// A create on an empty mirror fetches the whole list afterwards, so the mirror
// never holds just the new task.
func (s *Store) Create(ctx context.Context, in NewTask) (*model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot, _ := s.mirror.Load()

	status := in.Status
	if status == "" {
		status = model.TaskStatusPending
	}
	placeholder := model.Task{Name: in.Name, Status: status, EventDate: in.EventDate}
	optimistic := append(cloneTasks(snapshot), placeholder)
	s.save(optimistic)

	created, err := s.remote.CreateTask(ctx, in)
	if err != nil {
		s.reconcileLocked(ctx, snapshot)
		return nil, err
	}

	if len(snapshot) == 0 {
		// The mirror never held the server list; adopt it whole.
		if _, err := s.refreshLocked(ctx); err == nil {
			return created, nil
		}
	}
	optimistic[len(optimistic)-1] = *created
	s.save(optimistic)
	return created, nil
}

// Delete removes the task from the mirror, then from the server. Failures are
// reconciled the same way as Create.
func (s *Store) Delete(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot, _ := s.mirror.Load()

	remaining := make([]model.Task, 0, len(snapshot))
	for _, t := range snapshot {
		if t.ID != id {
			remaining = append(remaining, t)
		}
	}
	s.save(remaining)

	if err := s.remote.DeleteTask(ctx, id); err != nil {
		s.reconcileLocked(ctx, snapshot)
		return err
	}
	return nil
}

// reconcileLocked makes the mirror match the server after a failed mutation.
func (s *Store) reconcileLocked(ctx context.Context, snapshot []model.Task) {
	if _, err := s.refreshLocked(ctx); err != nil {
		s.log.Warn("reconcile fetch failed, restoring snapshot", zap.Error(err))
		s.save(snapshot)
	}
}

func (s *Store) save(tasks []model.Task) {
	if err := s.mirror.Save(tasks); err != nil {
		s.log.Warn("saving mirror failed", zap.Error(err))
	}
}

// Invalidate drops the mirror so the next Tasks call fetches.
func (s *Store) Invalidate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mirror.Clear()
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 404
}
