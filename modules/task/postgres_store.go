package task

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "github.com/bijaykarki4742/summer-class-web/domain/task"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	schemaSQL = `CREATE TABLE IF NOT EXISTS tasks (
	id          BIGSERIAL PRIMARY KEY,
	name        TEXT NOT NULL,
	description TEXT,
	due_date    DATE,
	tag         VARCHAR(50)
)`
	// Older databases were created without the tag column.
	addTagColumnSQL = `ALTER TABLE tasks ADD COLUMN IF NOT EXISTS tag VARCHAR(50)`

	selectColumns = `id, name, COALESCE(description, ''), due_date, COALESCE(tag, '')`

	listTasksSQL  = `SELECT ` + selectColumns + ` FROM tasks ORDER BY id DESC`
	createTaskSQL = `INSERT INTO tasks (name, description, due_date, tag) VALUES ($1, $2, $3, $4) RETURNING ` + selectColumns
	updateTaskSQL = `UPDATE tasks SET name = $1, description = $2, due_date = $3, tag = $4 WHERE id = $5 RETURNING ` + selectColumns
	deleteTaskSQL = `DELETE FROM tasks WHERE id = $1 RETURNING ` + selectColumns
)

// PostgresStore keeps tasks in PostgreSQL through a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore connects to databaseURL and makes sure the tasks table exists.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &PostgresStore{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create tasks table: %w", err)
	}
	if _, err := s.pool.Exec(ctx, addTagColumnSQL); err != nil {
		return fmt.Errorf("failed to add tag column: %w", err)
	}
	return nil
}

// List returns all tasks ordered by id descending.
func (s *PostgresStore) List(ctx context.Context) ([]domain.Task, error) {
	rows, err := s.pool.Query(ctx, listTasksSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]domain.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// Create inserts a task and returns the stored row.
func (s *PostgresStore) Create(ctx context.Context, in Input) (*domain.Task, error) {
	row := s.pool.QueryRow(ctx, createTaskSQL, in.Name, in.Description, toPgDate(in.DueDate), in.Tag)
	t, err := scanTask(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return t, nil
}

// Update replaces name, description, due date and tag of the task.
func (s *PostgresStore) Update(ctx context.Context, id int64, in Input) (*domain.Task, error) {
	row := s.pool.QueryRow(ctx, updateTaskSQL, in.Name, in.Description, toPgDate(in.DueDate), in.Tag, id)
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return t, nil
}

// Delete removes the task and returns the deleted row.
func (s *PostgresStore) Delete(ctx context.Context, id int64) (*domain.Task, error) {
	t, err := scanTask(s.pool.QueryRow(ctx, deleteTaskSQL, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to delete task: %w", err)
	}
	return t, nil
}

// Ping checks the pool.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases every pooled connection.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var (
		t   domain.Task
		due pgtype.Date
	)
	if err := row.Scan(&t.ID, &t.Name, &t.Description, &due, &t.Tag); err != nil {
		return nil, err
	}
	if due.Valid {
		d := domain.NewDate(due.Time.Year(), due.Time.Month(), due.Time.Day())
		t.DueDate = &d
	}
	return &t, nil
}

func toPgDate(d *domain.Date) pgtype.Date {
	if d == nil || d.IsZero() {
		return pgtype.Date{}
	}
	return pgtype.Date{Time: d.Time, Valid: true}
}
