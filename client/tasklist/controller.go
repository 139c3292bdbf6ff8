// Package tasklist keeps the client's view of the task list in step with the
// server. The list only ever changes after a round trip has succeeded.
package tasklist

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	domain "github.com/bijaykarki4742/summer-class-web/domain/task"
)

// Service is the remote task table.
type Service interface {
	List(ctx context.Context) ([]domain.Task, error)
	Create(ctx context.Context, d domain.Draft) (*domain.Task, error)
	Update(ctx context.Context, id int64, d domain.Draft) (*domain.Task, error)
	Delete(ctx context.Context, id int64) (*domain.Task, error)
}

var (
	// ErrDialogClosed is returned by Submit when no dialog is open.
	ErrDialogClosed = errors.New("no task dialog is open")
	// ErrUnknownTask is returned when an ID is not in the current list.
	ErrUnknownTask = errors.New("task is not in the list")
	// ErrNoPendingDelete is returned by ConfirmDelete without a prior RequestDelete.
	ErrNoPendingDelete = errors.New("no delete is pending")
)

// DialogMode says what the task dialog is doing.
type DialogMode int

const (
	DialogClosed DialogMode = iota
	DialogAdd
	DialogEdit
)

func (m DialogMode) String() string {
	switch m {
	case DialogAdd:
		return "add"
	case DialogEdit:
		return "edit"
	default:
		return "closed"
	}
}

// Dialog is the task dialog state. TaskID is set only in DialogEdit.
type Dialog struct {
	Mode   DialogMode
	TaskID int64
}

// Controller owns the displayed task list, the dialog and the pending delete.
// It is safe for concurrent use; responses are applied in arrival order.
type Controller struct {
	svc    Service
	logger *slog.Logger

	mu            sync.Mutex
	tasks         []domain.Task
	dialog        Dialog
	pendingDelete int64
	hasPending    bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger failures are reported to.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// New creates a controller with an empty list.
func New(svc Service, opts ...Option) *Controller {
	c := &Controller{
		svc:    svc,
		logger: slog.Default(),
		tasks:  []domain.Task{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load replaces the list with the server's.
func (c *Controller) Load(ctx context.Context) error {
	tasks, err := c.svc.List(ctx)
	if err != nil {
		c.logger.Error("failed to load tasks", "error", err)
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.tasks = append([]domain.Task{}, tasks...)
	return nil
}

// Tasks returns a copy of the displayed list.
func (c *Controller) Tasks() []domain.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.Task{}, c.tasks...)
}

// Find returns the displayed task with the given ID.
func (c *Controller) Find(id int64) (domain.Task, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(id)
	if i < 0 {
		return domain.Task{}, false
	}
	return c.tasks[i], true
}

func (c *Controller) indexOf(id int64) int {
	for i := range c.tasks {
		if c.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// Dialog returns the current dialog state.
func (c *Controller) Dialog() Dialog {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dialog
}

// OpenAdd opens an empty dialog.
func (c *Controller) OpenAdd() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dialog = Dialog{Mode: DialogAdd}
}

// OpenEdit opens the dialog on task id and returns its current fields.
func (c *Controller) OpenEdit(id int64) (domain.Draft, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(id)
	if i < 0 {
		return domain.Draft{}, ErrUnknownTask
	}
	c.dialog = Dialog{Mode: DialogEdit, TaskID: id}
	return c.tasks[i].Draft(), nil
}

// CloseDialog closes the dialog. A submit already in flight still completes.
func (c *Controller) CloseDialog() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dialog = Dialog{}
}

// Submit sends the open dialog's draft. On success the dialog closes if it
// has not changed in the meantime; on failure it stays open.
func (c *Controller) Submit(ctx context.Context, d domain.Draft) error {
	dialog := c.Dialog()

	var err error
	switch dialog.Mode {
	case DialogAdd:
		_, err = c.Add(ctx, d)
	case DialogEdit:
		_, err = c.Edit(ctx, dialog.TaskID, d)
	default:
		return ErrDialogClosed
	}
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.dialog == dialog {
		c.dialog = Dialog{}
	}
	c.mu.Unlock()
	return nil
}

// Add creates a task and puts it at the head of the list.
func (c *Controller) Add(ctx context.Context, d domain.Draft) (*domain.Task, error) {
	created, err := c.svc.Create(ctx, d)
	if err != nil {
		c.logger.Error("failed to add task", "name", d.Name, "error", err)
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.tasks = append([]domain.Task{*created}, c.tasks...)
	return created, nil
}

// Edit updates task id and swaps the returned row into the list. A reply for
// a task that has left the list is dropped.
func (c *Controller) Edit(ctx context.Context, id int64, d domain.Draft) (*domain.Task, error) {
	updated, err := c.svc.Update(ctx, id, d)
	if err != nil {
		c.logger.Error("failed to update task", "id", id, "error", err)
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(updated.ID)
	if i < 0 {
		c.logger.Warn("dropping update for task no longer listed", "id", updated.ID)
		return updated, nil
	}
	c.tasks[i] = *updated
	return updated, nil
}

// RequestDelete marks task id for deletion until confirmed or cancelled.
func (c *Controller) RequestDelete(id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.indexOf(id) < 0 {
		return ErrUnknownTask
	}
	c.pendingDelete = id
	c.hasPending = true
	return nil
}

// PendingDelete returns the task awaiting confirmation, if any.
func (c *Controller) PendingDelete() (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pendingDelete, c.hasPending
}

// CancelDelete forgets the pending delete.
func (c *Controller) CancelDelete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pendingDelete = 0
	c.hasPending = false
}

// ConfirmDelete deletes the pending task.
func (c *Controller) ConfirmDelete(ctx context.Context) error {
	id, ok := c.PendingDelete()
	if !ok {
		return ErrNoPendingDelete
	}
	if _, err := c.Delete(ctx, id); err != nil {
		return err
	}

	c.mu.Lock()
	if c.hasPending && c.pendingDelete == id {
		c.pendingDelete = 0
		c.hasPending = false
	}
	c.mu.Unlock()
	return nil
}

// Delete removes task id on the server and then from the list.
func (c *Controller) Delete(ctx context.Context, id int64) (*domain.Task, error) {
	deleted, err := c.svc.Delete(ctx, id)
	if err != nil {
		c.logger.Error("failed to delete task", "id", id, "error", err)
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOf(id); i >= 0 {
		c.tasks = append(c.tasks[:i:i], c.tasks[i+1:]...)
	}
	return deleted, nil
}
