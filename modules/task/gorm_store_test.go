package task

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/bijaykarki4742/summer-class-web/domain/task"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestStore creates a GormStore on an in-memory SQLite database.
func setupTestStore(t *testing.T) *GormStore {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	// Every connection to ":memory:" is a separate database.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	store, err := NewGormStore(db)
	if err != nil {
		t.Fatalf("NewGormStore() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func strPtr(s string) *string { return &s }

func datePtr(s string) *domain.Date {
	d, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return &d
}

func TestGormStore_Create(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, Input{
		Name:        strPtr("A"),
		Description: strPtr("d"),
		DueDate:     datePtr("2025-01-01"),
		Tag:         strPtr("Work"),
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.ID == 0 {
		t.Fatal("Create() returned zero ID")
	}
	if created.Name != "A" || created.Description != "d" || created.Tag != "Work" {
		t.Errorf("Create() = %+v, want name A, description d, tag Work", created)
	}
	if created.DueDate == nil || created.DueDate.String() != "2025-01-01" {
		t.Errorf("Create() due date = %v, want 2025-01-01", created.DueDate)
	}
}

func TestGormStore_CreateOptionalFields(t *testing.T) {
	store := setupTestStore(t)

	created, err := store.Create(context.Background(), Input{Name: strPtr("only a name")})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.Description != "" || created.DueDate != nil || created.Tag != "" {
		t.Errorf("Create() = %+v, want empty optional fields", created)
	}
}

func TestGormStore_CreateMissingName(t *testing.T) {
	store := setupTestStore(t)

	if _, err := store.Create(context.Background(), Input{Description: strPtr("no name")}); err == nil {
		t.Fatal("Create() without name error = nil, want store error")
	}

	tasks, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("List() returned %d tasks after failed insert, want 0", len(tasks))
	}
}

func TestGormStore_ListOrderAndUniqueIDs(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	seen := make(map[int64]bool)
	var last int64
	for _, name := range []string{"first", "second", "third"} {
		created, err := store.Create(ctx, Input{Name: strPtr(name)})
		if err != nil {
			t.Fatalf("Create(%s) error = %v", name, err)
		}
		if seen[created.ID] {
			t.Fatalf("Create(%s) reused ID %d", name, created.ID)
		}
		seen[created.ID] = true
		last = created.ID
	}

	// A deleted identifier is never handed out again.
	if _, err := store.Delete(ctx, last); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	next, err := store.Create(ctx, Input{Name: strPtr("fourth")})
	if err != nil {
		t.Fatalf("Create(fourth) error = %v", err)
	}
	if next.ID <= last {
		t.Errorf("Create() after delete ID = %d, want > %d", next.ID, last)
	}

	tasks, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(tasks) != 3 {
		t.Fatalf("List() returned %d tasks, want 3", len(tasks))
	}
	if tasks[0].ID != next.ID {
		t.Errorf("List()[0].ID = %d, want newest %d", tasks[0].ID, next.ID)
	}
	for i := 1; i < len(tasks); i++ {
		if tasks[i-1].ID <= tasks[i].ID {
			t.Errorf("List() not in descending ID order: %d before %d", tasks[i-1].ID, tasks[i].ID)
		}
	}
}

func TestGormStore_Update(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, Input{Name: strPtr("A"), Description: strPtr("d"), DueDate: datePtr("2025-01-01")})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	t.Run("replaces all fields", func(t *testing.T) {
		updated, err := store.Update(ctx, created.ID, Input{Name: strPtr("B"), Tag: strPtr("Urgent")})
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if updated.ID != created.ID {
			t.Errorf("Update() ID = %d, want %d", updated.ID, created.ID)
		}
		if updated.Name != "B" {
			t.Errorf("Update() name = %q, want B", updated.Name)
		}
		if updated.Description != "" || updated.DueDate != nil {
			t.Errorf("Update() kept old fields: %+v", updated)
		}
		if updated.Tag != "Urgent" {
			t.Errorf("Update() tag = %q, want Urgent", updated.Tag)
		}
	})

	t.Run("missing id is not found and changes nothing", func(t *testing.T) {
		before, _ := store.List(ctx)

		_, err := store.Update(ctx, created.ID+100, Input{Name: strPtr("ghost")})
		if !errors.Is(err, ErrTaskNotFound) {
			t.Fatalf("Update() error = %v, want ErrTaskNotFound", err)
		}

		after, _ := store.List(ctx)
		if len(after) != len(before) || after[0].Name != before[0].Name {
			t.Errorf("store changed after failed update: before %+v, after %+v", before, after)
		}
	})
}

func TestGormStore_Delete(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	keep, _ := store.Create(ctx, Input{Name: strPtr("keep")})
	target, err := store.Create(ctx, Input{Name: strPtr("B"), Description: strPtr("desc"), DueDate: datePtr("2025-06-30")})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	deleted, err := store.Delete(ctx, target.ID)
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if deleted.ID != target.ID || deleted.Name != "B" || deleted.Description != "desc" {
		t.Errorf("Delete() = %+v, want prior row %+v", deleted, target)
	}
	if deleted.DueDate == nil || deleted.DueDate.String() != "2025-06-30" {
		t.Errorf("Delete() due date = %v, want 2025-06-30", deleted.DueDate)
	}

	tasks, _ := store.List(ctx)
	if len(tasks) != 1 || tasks[0].ID != keep.ID {
		t.Errorf("List() after delete = %+v, want only %d", tasks, keep.ID)
	}

	if _, err := store.Delete(ctx, target.ID); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("second Delete() error = %v, want ErrTaskNotFound", err)
	}
}

func TestGormStore_Ping(t *testing.T) {
	store := setupTestStore(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := store.Ping(ctx); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}
