package task

import (
	"context"
	"os"
	"testing"
	"time"

	domain "github.com/bijaykarki4742/summer-class-web/domain/task"
	"github.com/redis/go-redis/v9"
)

func getTestRedisAddr() string {
	if addr := os.Getenv("TEST_REDIS_ADDR"); addr != "" {
		return addr
	}
	return "localhost:6379"
}

// setupTestCache creates a RedisListCache under a test prefix or skips.
func setupTestCache(t *testing.T) *RedisListCache {
	t.Helper()

	client := redis.NewClient(&redis.Options{Addr: getTestRedisAddr()})
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("Redis not available at %s: %v", getTestRedisAddr(), err)
	}

	cache := NewRedisListCache(client, "test:tasks:", time.Minute)
	client.Del(ctx, cache.key)
	t.Cleanup(func() {
		client.Del(context.Background(), cache.key)
		client.Close()
	})
	return cache
}

func TestRedisListCache(t *testing.T) {
	cache := setupTestCache(t)
	ctx := context.Background()

	if _, found, err := cache.GetList(ctx); err != nil || found {
		t.Fatalf("GetList() on empty cache = found %v, err %v; want miss", found, err)
	}

	due := domain.NewDate(2025, time.January, 1)
	want := []domain.Task{{ID: 2, Name: "B", DueDate: &due}, {ID: 1, Name: "A"}}
	if err := cache.SetList(ctx, want); err != nil {
		t.Fatalf("SetList() error = %v", err)
	}

	got, found, err := cache.GetList(ctx)
	if err != nil || !found {
		t.Fatalf("GetList() = found %v, err %v; want hit", found, err)
	}
	if len(got) != 2 || got[0].ID != 2 || got[0].DueDate.String() != "2025-01-01" {
		t.Errorf("GetList() = %+v, want %+v", got, want)
	}

	if err := cache.Invalidate(ctx); err != nil {
		t.Fatalf("Invalidate() error = %v", err)
	}
	if _, found, _ := cache.GetList(ctx); found {
		t.Error("GetList() after Invalidate() = hit, want miss")
	}

	stats := cache.Stats()
	if stats.Hits != 1 || stats.Misses != 2 || stats.Sets != 1 || stats.Deletes != 1 {
		t.Errorf("Stats() = %+v, want 1 hit, 2 misses, 1 set, 1 delete", stats)
	}
}
