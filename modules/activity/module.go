package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/bijaykarki4742/summer-class-web/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// Entry types.
const (
	TypeTaskCreated = "task_created"
	TypeTaskUpdated = "task_updated"
	TypeTaskDeleted = "task_deleted"
)

// RecentActivityRequest asks for the newest entries.
type RecentActivityRequest struct {
	Limit int `json:"limit"`
}

// RecentActivityResponse carries feed entries, newest first.
type RecentActivityResponse struct {
	Entries []Entry `json:"entries"`
}

// ActivityModule records task events into a feed.
type ActivityModule struct {
	feed *Feed
}

var _ mono.Module = (*ActivityModule)(nil)
var _ mono.EventConsumerModule = (*ActivityModule)(nil)
var _ mono.ServiceProviderModule = (*ActivityModule)(nil)
var _ mono.HealthCheckableModule = (*ActivityModule)(nil)

func NewModule() *ActivityModule {
	return &ActivityModule{feed: NewFeed(DefaultCapacity)}
}

func (m *ActivityModule) Name() string {
	return "activity"
}

func (m *ActivityModule) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskCreatedV1, m.handleTaskCreated, m); err != nil {
		return fmt.Errorf("failed to register TaskCreated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskUpdatedV1, m.handleTaskUpdated, m); err != nil {
		return fmt.Errorf("failed to register TaskUpdated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskDeletedV1, m.handleTaskDeleted, m); err != nil {
		return fmt.Errorf("failed to register TaskDeleted consumer: %w", err)
	}

	log.Printf("[activity] Registered event consumers: TaskCreated, TaskUpdated, TaskDeleted")
	return nil
}

func (m *ActivityModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "recent-activity", json.Unmarshal, json.Marshal, m.recentActivity,
	); err != nil {
		return fmt.Errorf("failed to register recent-activity service: %w", err)
	}
	log.Printf("[activity] Registered services: recent-activity")
	return nil
}

func (m *ActivityModule) handleTaskCreated(_ context.Context, event events.TaskCreatedEvent, _ *mono.Msg) error {
	msg := fmt.Sprintf("Task '%s' created", event.Name)
	if event.DueDate != "" {
		msg += " (due " + event.DueDate + ")"
	}
	m.feed.Record(TypeTaskCreated, event.TaskID, msg, event.CreatedAt)
	log.Printf("[activity] Task created: %d - %s", event.TaskID, event.Name)
	return nil
}

func (m *ActivityModule) handleTaskUpdated(_ context.Context, event events.TaskUpdatedEvent, _ *mono.Msg) error {
	m.feed.Record(TypeTaskUpdated, event.TaskID, fmt.Sprintf("Task '%s' updated", event.Name), event.UpdatedAt)
	log.Printf("[activity] Task updated: %d - %s", event.TaskID, event.Name)
	return nil
}

func (m *ActivityModule) handleTaskDeleted(_ context.Context, event events.TaskDeletedEvent, _ *mono.Msg) error {
	m.feed.Record(TypeTaskDeleted, event.TaskID, fmt.Sprintf("Task '%s' deleted", event.Name), event.DeletedAt)
	log.Printf("[activity] Task deleted: %d - %s", event.TaskID, event.Name)
	return nil
}

func (m *ActivityModule) recentActivity(_ context.Context, req RecentActivityRequest, _ *mono.Msg) (RecentActivityResponse, error) {
	limit := req.Limit
	if limit <= 0 || limit > DefaultCapacity {
		limit = DefaultCapacity
	}
	return RecentActivityResponse{Entries: m.feed.Recent(limit)}, nil
}

func (m *ActivityModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{"entries": m.feed.Len()},
	}
}

func (m *ActivityModule) Start(_ context.Context) error {
	log.Println("[activity] Module started - listening for task events")
	return nil
}

func (m *ActivityModule) Stop(_ context.Context) error {
	log.Println("[activity] Module stopped")
	return nil
}
