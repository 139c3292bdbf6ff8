package task

import (
	"context"
	"log"
	"strconv"
	"sync/atomic"
	"time"

	domain "github.com/bijaykarki4742/summer-class-web/domain/task"
	"github.com/bijaykarki4742/summer-class-web/events"
	"github.com/go-monolith/mono"
	"golang.org/x/sync/singleflight"
)

// Service implements the task operations on top of a Store, with an
// optional list cache and best-effort event publication.
type Service struct {
	store   Store
	cache   ListCache
	bus     mono.EventBus
	sfGroup singleflight.Group
	now     func() time.Time

	// gen is bumped by every successful mutation. A list read under an
	// older generation is neither shared with later callers nor cached.
	gen atomic.Uint64
}

// NewService creates a task service. cache may be nil.
func NewService(store Store, cache ListCache) *Service {
	return &Service{
		store: store,
		cache: cache,
		now:   time.Now,
	}
}

// SetEventBus enables event publication after successful mutations.
func (s *Service) SetEventBus(bus mono.EventBus) {
	s.bus = bus
}

// List returns every task, newest first.
func (s *Service) List(ctx context.Context) ([]domain.Task, error) {
	if s.cache != nil {
		tasks, found, err := s.cache.GetList(ctx)
		if err != nil {
			log.Printf("[task] Cache error for list: %v", err)
		}
		if found {
			return tasks, nil
		}
	}

	gen := s.gen.Load()
	val, err, _ := s.sfGroup.Do("list:"+strconv.FormatUint(gen, 10), func() (any, error) {
		return s.store.List(ctx)
	})
	if err != nil {
		return nil, err
	}

	tasks, _ := val.([]domain.Task)
	if tasks == nil {
		tasks = []domain.Task{}
	}

	if s.cache != nil && s.gen.Load() == gen {
		if err := s.cache.SetList(ctx, tasks); err != nil {
			log.Printf("[task] Warning: failed to cache list: %v", err)
		}
		// A mutation that slipped in during SetList may have invalidated
		// before the stale write landed.
		if s.gen.Load() != gen {
			s.invalidate(ctx)
		}
	}
	return tasks, nil
}

// Create inserts a task and returns it with its assigned ID.
func (s *Service) Create(ctx context.Context, in Input) (*domain.Task, error) {
	t, err := s.store.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	s.mutated(ctx)

	if s.bus != nil {
		event := events.TaskCreatedEvent{
			TaskID:    t.ID,
			Name:      t.Name,
			DueDate:   dateString(t.DueDate),
			Tag:       t.Tag,
			CreatedAt: s.now(),
		}
		if err := events.TaskCreatedV1.Publish(s.bus, event, nil); err != nil {
			log.Printf("[task] Warning: failed to publish TaskCreated event for task %d: %v", t.ID, err)
		}
	}

	log.Printf("[task] Created task ID=%d", t.ID)
	return t, nil
}

// Update replaces the mutable fields of task id.
func (s *Service) Update(ctx context.Context, id int64, in Input) (*domain.Task, error) {
	t, err := s.store.Update(ctx, id, in)
	if err != nil {
		return nil, err
	}
	s.mutated(ctx)

	if s.bus != nil {
		event := events.TaskUpdatedEvent{
			TaskID:    t.ID,
			Name:      t.Name,
			DueDate:   dateString(t.DueDate),
			Tag:       t.Tag,
			UpdatedAt: s.now(),
		}
		if err := events.TaskUpdatedV1.Publish(s.bus, event, nil); err != nil {
			log.Printf("[task] Warning: failed to publish TaskUpdated event for task %d: %v", t.ID, err)
		}
	}

	log.Printf("[task] Updated task ID=%d", t.ID)
	return t, nil
}

// Delete removes task id and returns the removed row.
func (s *Service) Delete(ctx context.Context, id int64) (*domain.Task, error) {
	t, err := s.store.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	s.mutated(ctx)

	if s.bus != nil {
		event := events.TaskDeletedEvent{
			TaskID:    t.ID,
			Name:      t.Name,
			DeletedAt: s.now(),
		}
		if err := events.TaskDeletedV1.Publish(s.bus, event, nil); err != nil {
			log.Printf("[task] Warning: failed to publish TaskDeleted event for task %d: %v", t.ID, err)
		}
	}

	log.Printf("[task] Deleted task ID=%d", t.ID)
	return t, nil
}

// mutated must run after every successful write, before it returns.
func (s *Service) mutated(ctx context.Context) {
	s.gen.Add(1)
	s.invalidate(ctx)
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		log.Printf("[task] Warning: failed to invalidate cache: %v", err)
	}
}

func dateString(d *domain.Date) string {
	if d == nil {
		return ""
	}
	return d.String()
}
