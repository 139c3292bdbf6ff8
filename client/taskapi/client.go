// Package taskapi is the HTTP client for the /api/task endpoints.
package taskapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	domain "github.com/bijaykarki4742/summer-class-web/domain/task"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

const (
	taskPath       = "/api/task"
	defaultTimeout = 10 * time.Second
)

// ErrNotFound is returned when the server has no task with the given ID.
var ErrNotFound = errors.New("task not found")

// APIError is any other non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("task api error %d: %s", e.Status, e.Message)
}

// TokenSource returns the bearer token to send, or "" for none.
type TokenSource func(ctx context.Context) (string, error)

// Client talks to a running task server.
type Client struct {
	baseURL string
	token   TokenSource
	timeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithTokenSource attaches a bearer token to every request.
func WithTokenSource(src TokenSource) Option {
	return func(c *Client) {
		c.token = src
	}
}

// WithTimeout bounds every request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// New creates a client for the server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type taskBody struct {
	ID          *int64      `json:"id,omitempty"`
	TaskName    string      `json:"task_name"`
	Description string      `json:"description"`
	DueDate     domain.Date `json:"due_date"`
	Tag         string      `json:"tag,omitempty"`
}

func bodyFor(d domain.Draft) taskBody {
	return taskBody{
		TaskName:    d.Name,
		Description: d.Description,
		DueDate:     d.DueDate,
		Tag:         d.Tag,
	}
}

// List returns every task, newest first.
func (c *Client) List(ctx context.Context) ([]domain.Task, error) {
	tasks := []domain.Task{}
	if err := c.do(ctx, fiber.MethodGet, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// Create adds a task and returns it with its assigned ID.
func (c *Client) Create(ctx context.Context, d domain.Draft) (*domain.Task, error) {
	var t domain.Task
	if err := c.do(ctx, fiber.MethodPost, bodyFor(d), &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Update replaces the fields of task id.
func (c *Client) Update(ctx context.Context, id int64, d domain.Draft) (*domain.Task, error) {
	body := bodyFor(d)
	body.ID = &id

	var t domain.Task
	if err := c.do(ctx, fiber.MethodPut, body, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Delete removes task id and returns its last values.
func (c *Client) Delete(ctx context.Context, id int64) (*domain.Task, error) {
	var resp struct {
		Message string      `json:"message"`
		Task    domain.Task `json:"task"`
	}
	if err := c.do(ctx, fiber.MethodDelete, map[string]int64{"id": id}, &resp); err != nil {
		return nil, err
	}
	return &resp.Task, nil
}

func (c *Client) do(ctx context.Context, method string, body, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var token string
	if c.token != nil {
		t, err := c.token(ctx)
		if err != nil {
			return err
		}
		token = t
	}

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return context.DeadlineExceeded
		}
		if remaining < timeout {
			timeout = remaining
		}
	}

	agent := fiber.AcquireAgent()
	req := agent.Request()
	req.Header.SetMethod(method)
	req.SetRequestURI(c.baseURL + taskPath)
	if err := agent.Parse(); err != nil {
		fiber.ReleaseAgent(agent)
		return fmt.Errorf("invalid server url: %w", err)
	}

	agent.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	if token != "" {
		agent.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	if body != nil {
		agent.JSON(body)
	}
	agent.Timeout(timeout)

	status, respBody, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("%s %s failed: %w", method, taskPath, errors.Join(errs...))
	}
	if status == fiber.StatusNotFound {
		return ErrNotFound
	}
	if status < 200 || status > 299 {
		return parseAPIError(status, respBody)
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, taskPath, err)
	}
	return nil
}

func parseAPIError(status int, body []byte) *APIError {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	apiErr := &APIError{Status: status, Message: utils.StatusMessage(status)}
	if err := json.Unmarshal(body, &payload); err != nil {
		return apiErr
	}
	switch {
	case payload.Error != "":
		apiErr.Message = payload.Error
	case payload.Message != "":
		apiErr.Message = payload.Message
	}
	return apiErr
}
