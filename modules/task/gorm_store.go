package task

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/bijaykarki4742/summer-class-web/domain/task"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const returningColumns = "id, name, description, due_date, tag"

// GormStore keeps tasks in SQLite through GORM.
type GormStore struct {
	db *gorm.DB
}

var _ Store = (*GormStore)(nil)

// OpenSQLite opens the SQLite database at path. debug turns on SQL logging.
func OpenSQLite(path string, debug bool) (*gorm.DB, error) {
	logLevel := logger.Silent
	if debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// NewGormStore wraps db and migrates the tasks table.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&domain.Task{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &GormStore{db: db}, nil
}

// List returns all tasks ordered by id descending.
func (s *GormStore) List(ctx context.Context) ([]domain.Task, error) {
	var tasks []domain.Task
	if err := s.db.WithContext(ctx).Order("id DESC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// Create inserts a task and returns the stored row.
func (s *GormStore) Create(ctx context.Context, in Input) (*domain.Task, error) {
	var t domain.Task
	result := s.db.WithContext(ctx).Raw(
		"INSERT INTO tasks (name, description, due_date, tag) VALUES (?, ?, ?, ?) RETURNING "+returningColumns,
		in.Name, in.Description, dueDateArg(in.DueDate), in.Tag,
	).Scan(&t)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to create task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, errors.New("failed to create task: no row returned")
	}
	return &t, nil
}

// Update replaces name, description, due date and tag of the task.
func (s *GormStore) Update(ctx context.Context, id int64, in Input) (*domain.Task, error) {
	var t domain.Task
	result := s.db.WithContext(ctx).Raw(
		"UPDATE tasks SET name = ?, description = ?, due_date = ?, tag = ? WHERE id = ? RETURNING "+returningColumns,
		in.Name, in.Description, dueDateArg(in.DueDate), in.Tag, id,
	).Scan(&t)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrTaskNotFound
	}
	return &t, nil
}

// Delete removes the task and returns the deleted row.
func (s *GormStore) Delete(ctx context.Context, id int64) (*domain.Task, error) {
	var t domain.Task
	result := s.db.WithContext(ctx).Raw(
		"DELETE FROM tasks WHERE id = ? RETURNING "+returningColumns, id,
	).Scan(&t)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to delete task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrTaskNotFound
	}
	return &t, nil
}

// Ping checks the underlying connection.
func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the underlying connection.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
