package task

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/bijaykarki4742/summer-class-web/config"
	"github.com/bijaykarki4742/summer-class-web/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// TaskModule owns the tasks table and exposes it as request-reply services.
type TaskModule struct {
	cfg      *config.Config
	store    Store
	cache    *RedisListCache
	service  *Service
	eventBus mono.EventBus
	backend  string
}

var _ mono.Module = (*TaskModule)(nil)
var _ mono.ServiceProviderModule = (*TaskModule)(nil)
var _ mono.EventEmitterModule = (*TaskModule)(nil)
var _ mono.HealthCheckableModule = (*TaskModule)(nil)

// NewModule creates a TaskModule whose store is chosen from cfg at Start.
func NewModule(cfg *config.Config) *TaskModule {
	return &TaskModule{cfg: cfg}
}

// NewModuleWithStore creates a TaskModule around an already opened store.
func NewModuleWithStore(store Store) *TaskModule {
	return &TaskModule{
		cfg:     config.Default(),
		store:   store,
		service: NewService(store, nil),
		backend: "custom",
	}
}

// Name returns the module name.
func (m *TaskModule) Name() string {
	return "task"
}

// SetEventBus receives the application event bus.
func (m *TaskModule) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
	if m.service != nil {
		m.service.SetEventBus(bus)
	}
}

// EmitEvents declares the events this module publishes.
func (m *TaskModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.TaskCreatedV1.ToBase(),
		events.TaskUpdatedV1.ToBase(),
		events.TaskDeletedV1.ToBase(),
	}
}

// RegisterServices registers the task request-reply services.
func (m *TaskModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "list-tasks", json.Unmarshal, json.Marshal, m.listTasks,
	); err != nil {
		return fmt.Errorf("failed to register list-tasks service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "create-task", json.Unmarshal, json.Marshal, m.createTask,
	); err != nil {
		return fmt.Errorf("failed to register create-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "update-task", json.Unmarshal, json.Marshal, m.updateTask,
	); err != nil {
		return fmt.Errorf("failed to register update-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "delete-task", json.Unmarshal, json.Marshal, m.deleteTask,
	); err != nil {
		return fmt.Errorf("failed to register delete-task service: %w", err)
	}

	log.Printf("[task] Registered services: list-tasks, create-task, update-task, delete-task")
	return nil
}

// Start opens the store (PostgreSQL when DATABASE_URL is set, SQLite
// otherwise) and the optional Redis list cache.
func (m *TaskModule) Start(ctx context.Context) error {
	if m.store == nil {
		store, backend, err := openStore(ctx, m.cfg)
		if err != nil {
			return err
		}
		m.store = store
		m.backend = backend
	}

	var listCache ListCache
	if m.cfg.RedisAddr != "" {
		client, err := ConnectRedis(ctx, m.cfg.RedisAddr)
		if err != nil {
			log.Printf("[task] Warning: list cache disabled: %v", err)
		} else {
			m.cache = NewRedisListCache(client, "tasks:", m.cfg.CacheTTL.Duration)
			listCache = m.cache
		}
	}

	m.service = NewService(m.store, listCache)
	if m.eventBus != nil {
		m.service.SetEventBus(m.eventBus)
	} else {
		log.Println("[task] Warning: eventBus not set, events will not be published")
	}

	log.Printf("[task] Module started (store: %s, cache: %t)", m.backend, m.cache != nil)
	return nil
}

func openStore(ctx context.Context, cfg *config.Config) (Store, string, error) {
	if cfg.UsePostgres() {
		store, err := NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, "", err
		}
		return store, "postgres", nil
	}

	db, err := OpenSQLite(cfg.DBPath, cfg.DBDebug)
	if err != nil {
		return nil, "", err
	}
	store, err := NewGormStore(db)
	if err != nil {
		return nil, "", err
	}
	return store, "sqlite:" + cfg.DBPath, nil
}

// Stop closes the store and the cache.
func (m *TaskModule) Stop(_ context.Context) error {
	if m.cache != nil {
		if err := m.cache.Close(); err != nil {
			log.Printf("[task] Warning: failed to close cache: %v", err)
		}
	}
	if m.store != nil {
		if err := m.store.Close(); err != nil {
			log.Printf("[task] Warning: failed to close store: %v", err)
		}
	}
	log.Println("[task] Module stopped")
	return nil
}

// Health reports store reachability and cache statistics.
func (m *TaskModule) Health(ctx context.Context) mono.HealthStatus {
	if m.store == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "store not initialized",
		}
	}
	if err := m.store.Ping(ctx); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database ping failed: %v", err),
		}
	}

	details := map[string]any{
		"store": m.backend,
	}
	if m.cache != nil {
		details["cache"] = m.cache.Stats()
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: details,
	}
}

func (m *TaskModule) listTasks(ctx context.Context, _ ListTasksRequest, _ *mono.Msg) (ListTasksResponse, error) {
	tasks, err := m.service.List(ctx)
	if err != nil {
		return ListTasksResponse{}, err
	}
	return ListTasksResponse{Tasks: tasks}, nil
}

func (m *TaskModule) createTask(ctx context.Context, req CreateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	t, err := m.service.Create(ctx, req.Input)
	if err != nil {
		return TaskResponse{}, err
	}
	return TaskResponse{Task: *t}, nil
}

func (m *TaskModule) updateTask(ctx context.Context, req UpdateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	t, err := m.service.Update(ctx, req.ID, req.Input)
	if err != nil {
		return TaskResponse{}, err
	}
	return TaskResponse{Task: *t}, nil
}

func (m *TaskModule) deleteTask(ctx context.Context, req DeleteTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	t, err := m.service.Delete(ctx, req.ID)
	if err != nil {
		return TaskResponse{}, err
	}
	return TaskResponse{Task: *t}, nil
}
