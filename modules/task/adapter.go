package task

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	domain "github.com/bijaykarki4742/summer-class-web/domain/task"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// TaskPort is what other modules use to reach the task services.
type TaskPort interface {
	ListTasks(ctx context.Context) ([]domain.Task, error)
	CreateTask(ctx context.Context, in Input) (*domain.Task, error)
	UpdateTask(ctx context.Context, id int64, in Input) (*domain.Task, error)
	DeleteTask(ctx context.Context, id int64) (*domain.Task, error)
}

// taskAdapter implements TaskPort over the module's request-reply services.
type taskAdapter struct {
	container mono.ServiceContainer
}

// NewTaskAdapter creates a TaskPort backed by container.
func NewTaskAdapter(container mono.ServiceContainer) TaskPort {
	if container == nil {
		panic("task adapter requires non-nil ServiceContainer")
	}
	return &taskAdapter{container: container}
}

func (a *taskAdapter) ListTasks(ctx context.Context) ([]domain.Task, error) {
	req := ListTasksRequest{}
	var resp ListTasksResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "list-tasks", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return nil, mapServiceError("list-tasks", err)
	}
	if resp.Tasks == nil {
		resp.Tasks = []domain.Task{}
	}
	return resp.Tasks, nil
}

func (a *taskAdapter) CreateTask(ctx context.Context, in Input) (*domain.Task, error) {
	req := CreateTaskRequest{Input: in}
	var resp TaskResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "create-task", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return nil, mapServiceError("create-task", err)
	}
	return &resp.Task, nil
}

func (a *taskAdapter) UpdateTask(ctx context.Context, id int64, in Input) (*domain.Task, error) {
	req := UpdateTaskRequest{ID: id, Input: in}
	var resp TaskResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "update-task", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return nil, mapServiceError("update-task", err)
	}
	return &resp.Task, nil
}

func (a *taskAdapter) DeleteTask(ctx context.Context, id int64) (*domain.Task, error) {
	req := DeleteTaskRequest{ID: id}
	var resp TaskResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "delete-task", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return nil, mapServiceError("delete-task", err)
	}
	return &resp.Task, nil
}

// mapServiceError restores ErrTaskNotFound, which only survives the
// request-reply hop as text.
func mapServiceError(service string, err error) error {
	if strings.Contains(err.Error(), ErrTaskNotFound.Error()) {
		return ErrTaskNotFound
	}
	return fmt.Errorf("%s service call failed: %w", service, err)
}
