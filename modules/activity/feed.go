package activity

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultCapacity is how many entries the feed keeps.
const DefaultCapacity = 100

// Entry is one task change as shown in the activity feed.
type Entry struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	TaskID     int64     `json:"task_id"`
	Message    string    `json:"message"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Feed is a bounded, newest-first list of entries.
type Feed struct {
	mu       sync.RWMutex
	entries  []Entry
	capacity int
}

// NewFeed creates a feed that keeps at most capacity entries.
func NewFeed(capacity int) *Feed {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Feed{
		entries:  make([]Entry, 0, capacity),
		capacity: capacity,
	}
}

// Record adds an entry, evicting the oldest when the feed is full.
func (f *Feed) Record(entryType string, taskID int64, message string, at time.Time) Entry {
	e := Entry{
		ID:         uuid.NewString(),
		Type:       entryType,
		TaskID:     taskID,
		Message:    message,
		OccurredAt: at,
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.entries) == f.capacity {
		f.entries = f.entries[1:]
	}
	f.entries = append(f.entries, e)
	return e
}

// Recent returns up to limit entries, newest first. limit <= 0 means all.
func (f *Feed) Recent(limit int) []Entry {
	f.mu.RLock()
	defer f.mu.RUnlock()

	n := len(f.entries)
	if limit <= 0 || limit > n {
		limit = n
	}
	result := make([]Entry, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		result = append(result, f.entries[i])
	}
	return result
}

// Len returns the number of stored entries.
func (f *Feed) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.entries)
}
