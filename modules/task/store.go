package task

import (
	"context"
	"errors"

	domain "github.com/bijaykarki4742/summer-class-web/domain/task"
)

// ErrTaskNotFound is returned when a mutation targets an id with no row.
var ErrTaskNotFound = errors.New("task not found")

// Input carries the mutable task fields exactly as the caller sent them.
// Nil fields are written as NULL; the store's constraints decide whether
// that is acceptable.
type Input struct {
	Name        *string      `json:"name"`
	Description *string      `json:"description"`
	DueDate     *domain.Date `json:"due_date"`
	Tag         *string      `json:"tag"`
}

// Store is the persistent task table. Every method is a single statement.
type Store interface {
	// List returns all tasks, newest identifier first.
	List(ctx context.Context) ([]domain.Task, error)
	// Create inserts a row and returns it with its store-assigned ID.
	Create(ctx context.Context, in Input) (*domain.Task, error)
	// Update replaces the mutable fields of the row with the given ID.
	Update(ctx context.Context, id int64, in Input) (*domain.Task, error)
	// Delete removes the row with the given ID and returns its prior values.
	Delete(ctx context.Context, id int64) (*domain.Task, error)
	Ping(ctx context.Context) error
	Close() error
}

// dueDateArg turns an empty date into a NULL parameter.
func dueDateArg(d *domain.Date) *domain.Date {
	if d == nil || d.IsZero() {
		return nil
	}
	return d
}
