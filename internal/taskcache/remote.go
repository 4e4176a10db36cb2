package taskcache

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"tasky/internal/errors"
	"tasky/internal/model"
)

// NewTask is the payload of a task creation.
type NewTask struct {
	Name      string           `json:"name"`
	Status    model.TaskStatus `json:"status,omitempty"`
	EventDate *time.Time       `json:"event_date,omitempty"`
}

// Remote is the authoritative task source.
type Remote interface {
	ListTasks(ctx context.Context) ([]model.Task, error)
	CreateTask(ctx context.Context, in NewTask) (*model.Task, error)
	DeleteTask(ctx context.Context, id uint) error
}

// APIError is a non-2xx answer from the task API.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("api returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("api returned status %d: %s (%s)", e.StatusCode, e.Message, e.Code)
}

// HTTPRemote talks to the tasky HTTP API with a session token.
type HTTPRemote struct {
	baseURL string
	token   string
	client  *http.Client
}

var _ Remote = (*HTTPRemote)(nil)

// NewHTTPRemote creates a client for the API rooted at baseURL, e.g. http://localhost:8080/api.
func NewHTTPRemote(baseURL, token string, client *http.Client) *HTTPRemote {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &HTTPRemote{baseURL: strings.TrimRight(baseURL, "/"), token: token, client: client}
}

func (r *HTTPRemote) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var e errors.ErrorResponse
		if json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&e) == nil {
			apiErr.Code, apiErr.Message = e.Code, e.Error
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// ListTasks fetches every task of the signed-in user.
func (r *HTTPRemote) ListTasks(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.do(ctx, http.MethodGet, "/tasks", nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// CreateTask creates a task and returns the stored version.
func (r *HTTPRemote) CreateTask(ctx context.Context, in NewTask) (*model.Task, error) {
	var task model.Task
	if err := r.do(ctx, http.MethodPost, "/tasks", in, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// DeleteTask deletes a task by id.
func (r *HTTPRemote) DeleteTask(ctx context.Context, id uint) error {
	return r.do(ctx, http.MethodDelete, fmt.Sprintf("/tasks/%d", id), nil, nil)
}
