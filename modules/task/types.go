package task

import domain "github.com/bijaykarki4742/summer-class-web/domain/task"

// ListTasksRequest is the request for the list-tasks service.
type ListTasksRequest struct{}

// ListTasksResponse is the response for the list-tasks service.
type ListTasksResponse struct {
	Tasks []domain.Task `json:"tasks"`
}

// CreateTaskRequest is the request for the create-task service.
type CreateTaskRequest struct {
	Input
}

// UpdateTaskRequest is the request for the update-task service.
type UpdateTaskRequest struct {
	ID int64 `json:"id"`
	Input
}

// DeleteTaskRequest is the request for the delete-task service.
type DeleteTaskRequest struct {
	ID int64 `json:"id"`
}

// TaskResponse wraps a single task returned by a mutation.
type TaskResponse struct {
	Task domain.Task `json:"task"`
}
