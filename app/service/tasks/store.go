package tasks

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"taskchat/app/storage"

	"github.com/samber/do"
	"github.com/samber/oops"
)

// ErrNotFound is returned when a task id does not exist.
var ErrNotFound = errors.New("task not found")

// Store persists tasks in the shared sqlite database.
type Store struct {
	db *storage.DB
}

func NewStore(di *do.Injector) (*Store, error) {
	db := do.MustInvoke[*storage.DB](di)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		return nil, oops.Errorf("failed to migrate task table: %w", err)
	}

	return store, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Conn.Exec(`
		CREATE TABLE IF NOT EXISTS tasks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			description TEXT,
			status TEXT NOT NULL DEFAULT 'pending',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)

	return err
}

func (s *Store) Create(ctx context.Context, title, description string) (*Task, error) {
	res, err := s.db.Conn.ExecContext(ctx, `
		INSERT INTO tasks (title, description) VALUES (?, ?)
	`, title, description)
	if err != nil {
		return nil, oops.Errorf("failed to insert task: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, oops.Errorf("failed to get task id: %w", err)
	}

	return s.Get(ctx, id)
}

func (s *Store) Get(ctx context.Context, id int64) (*Task, error) {
	var task Task

	err := s.db.Conn.QueryRowContext(ctx, `
		SELECT id, title, COALESCE(description, ''), status, created_at, updated_at
		FROM tasks WHERE id = ?
	`, id).Scan(&task.ID, &task.Title, &task.Description, &task.Status, &task.CreatedAt, &task.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, oops.Errorf("failed to query task: %w", err)
	}

	return &task, nil
}

func (s *Store) List(ctx context.Context, status string, limit, offset int) ([]Task, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT id, title, COALESCE(description, ''), status, created_at, updated_at
		FROM tasks
	`
	args := []any{}

	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}

	query += " ORDER BY id ASC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := s.db.Conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, oops.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	result := make([]Task, 0)

	for rows.Next() {
		var task Task

		if err = rows.Scan(&task.ID, &task.Title, &task.Description, &task.Status,
			&task.CreatedAt, &task.UpdatedAt); err != nil {
			return nil, oops.Errorf("failed to scan task: %w", err)
		}

		result = append(result, task)
	}

	if err = rows.Err(); err != nil {
		return nil, oops.Errorf("failed to read tasks: %w", err)
	}

	return result, nil
}

func (s *Store) Update(ctx context.Context, id int64, title, description *string) (*Task, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	if title != nil {
		if _, err := s.db.Conn.ExecContext(ctx, `
			UPDATE tasks SET title = ?, updated_at = ? WHERE id = ?
		`, *title, time.Now().UTC(), id); err != nil {
			return nil, oops.Errorf("failed to update title: %w", err)
		}
	}

	if description != nil {
		if _, err := s.db.Conn.ExecContext(ctx, `
			UPDATE tasks SET description = ?, updated_at = ? WHERE id = ?
		`, *description, time.Now().UTC(), id); err != nil {
			return nil, oops.Errorf("failed to update description: %w", err)
		}
	}

	return s.Get(ctx, id)
}

// Complete marks a task completed. Completing an already completed task
// succeeds again with no change.
func (s *Store) Complete(ctx context.Context, id int64) (*Task, error) {
	task, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if task.Status == StatusCompleted {
		return task, nil
	}

	if _, err = s.db.Conn.ExecContext(ctx, `
		UPDATE tasks SET status = ?, updated_at = ? WHERE id = ?
	`, StatusCompleted, time.Now().UTC(), id); err != nil {
		return nil, oops.Errorf("failed to complete task: %w", err)
	}

	return s.Get(ctx, id)
}

// Delete removes a task and returns it so callers can display the title.
func (s *Store) Delete(ctx context.Context, id int64) (*Task, error) {
	task, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, err = s.db.Conn.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id); err != nil {
		return nil, oops.Errorf("failed to delete task: %w", err)
	}

	return task, nil
}
