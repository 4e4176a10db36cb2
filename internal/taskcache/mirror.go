package taskcache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"tasky/internal/model"
)

// Mirror is the local copy of the task list.
type Mirror interface {
	Load() ([]model.Task, error)
	Save(tasks []model.Task) error
	Clear() error
}

// MemoryMirror keeps the list in process memory.
type MemoryMirror struct {
	mu    sync.Mutex
	tasks []model.Task
}

func (m *MemoryMirror) Load() ([]model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneTasks(m.tasks), nil
}

func (m *MemoryMirror) Save(tasks []model.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = cloneTasks(tasks)
	return nil
}

func (m *MemoryMirror) Clear() error {
	return m.Save(nil)
}

// FileMirror stores the list as JSON in a single file.
type FileMirror struct {
	path string
}

// NewFileMirror creates a mirror at path.
func NewFileMirror(path string) *FileMirror {
	return &FileMirror{path: path}
}

// DefaultMirrorPath is tasks.json under the user's cache directory.
func DefaultMirrorPath() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "tasky", "tasks.json"), nil
}

// Load returns the stored list. A missing or unreadable file is an empty mirror.
func (m *FileMirror) Load() ([]model.Task, error) {
	data, err := os.ReadFile(m.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read mirror: %w", err)
	}
	var tasks []model.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		// A corrupt mirror is dropped; the next fetch rebuilds it.
		return nil, nil
	}
	return tasks, nil
}

// Save replaces the file atomically.
func (m *FileMirror) Save(tasks []model.Task) error {
	if err := os.MkdirAll(filepath.Dir(m.path), 0o700); err != nil {
		return fmt.Errorf("create mirror dir: %w", err)
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("encode mirror: %w", err)
	}
	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write mirror: %w", err)
	}
	return os.Rename(tmp, m.path)
}

func (m *FileMirror) Clear() error {
	err := os.Remove(m.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func cloneTasks(tasks []model.Task) []model.Task {
	if tasks == nil {
		return nil
	}
	out := make([]model.Task, len(tasks))
	copy(out, tasks)
	return out
}
