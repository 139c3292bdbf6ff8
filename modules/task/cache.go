package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	domain "github.com/bijaykarki4742/summer-class-web/domain/task"
	"github.com/redis/go-redis/v9"
)

// ListCache holds the most recent result of List.
type ListCache interface {
	GetList(ctx context.Context) ([]domain.Task, bool, error)
	SetList(ctx context.Context, tasks []domain.Task) error
	Invalidate(ctx context.Context) error
}

// CacheStats is a snapshot of cache counters.
type CacheStats struct {
	Hits    uint64  `json:"hits"`
	Misses  uint64  `json:"misses"`
	Sets    uint64  `json:"sets"`
	Deletes uint64  `json:"deletes"`
	Errors  uint64  `json:"errors"`
	HitRate float64 `json:"hit_rate"`
}

// RedisListCache stores the task list as a single JSON value in Redis.
type RedisListCache struct {
	client *redis.Client
	key    string
	ttl    time.Duration

	hits, misses, sets, deletes, errs atomic.Uint64
}

var _ ListCache = (*RedisListCache)(nil)

// NewRedisListCache wraps an existing client. Values live under prefix+"list".
func NewRedisListCache(client *redis.Client, prefix string, ttl time.Duration) *RedisListCache {
	return &RedisListCache{
		client: client,
		key:    prefix + "list",
		ttl:    ttl,
	}
}

// ConnectRedis creates a client for addr and verifies it answers PING.
func ConnectRedis(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return client, nil
}

// GetList returns the cached list and whether it was present.
func (c *RedisListCache) GetList(ctx context.Context) ([]domain.Task, bool, error) {
	data, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			c.misses.Add(1)
			return nil, false, nil
		}
		c.errs.Add(1)
		return nil, false, fmt.Errorf("cache get error: %w", err)
	}

	var tasks []domain.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		c.errs.Add(1)
		return nil, false, fmt.Errorf("cache unmarshal error: %w", err)
	}

	c.hits.Add(1)
	return tasks, true, nil
}

// SetList stores tasks with the configured TTL.
func (c *RedisListCache) SetList(ctx context.Context, tasks []domain.Task) error {
	data, err := json.Marshal(tasks)
	if err != nil {
		c.errs.Add(1)
		return fmt.Errorf("cache marshal error: %w", err)
	}
	if err := c.client.Set(ctx, c.key, data, c.ttl).Err(); err != nil {
		c.errs.Add(1)
		return fmt.Errorf("cache set error: %w", err)
	}
	c.sets.Add(1)
	return nil
}

// Invalidate drops the cached list.
func (c *RedisListCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		c.errs.Add(1)
		return fmt.Errorf("cache delete error: %w", err)
	}
	c.deletes.Add(1)
	return nil
}

// Stats returns the current counters.
func (c *RedisListCache) Stats() CacheStats {
	hits, misses := c.hits.Load(), c.misses.Load()
	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}
	return CacheStats{
		Hits:    hits,
		Misses:  misses,
		Sets:    c.sets.Load(),
		Deletes: c.deletes.Load(),
		Errors:  c.errs.Load(),
		HitRate: hitRate,
	}
}

// Ping checks the Redis connection.
func (c *RedisListCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (c *RedisListCache) Close() error {
	return c.client.Close()
}
