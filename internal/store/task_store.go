package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"taskpilot/internal/model"
)

// taskColumns is the canonical column order used by every task query.
const taskColumns = `id, title, priority, estimated_time, actual_time,
	distraction_level, completed, completed_at, created_at, owner_id,
	is_later, is_focus, is_mind_map_only, archived`

// ListTasks retrieves tasks scoped to the owner, oldest first. A nil owner
// matches only legacy rows with no owner.
func (s *SQLiteStore) ListTasks(
	ctx context.Context,
	owner *string,
) ([]model.Task, error) {
	query := "SELECT " + taskColumns + " FROM tasks WHERE "
	var args []interface{}
	if owner == nil {
		query += "owner_id IS NULL"
	} else {
		query += "owner_id = ?"
		args = append(args, *owner)
	}
	query += " ORDER BY created_at, id"

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	return tasks, rows.Err()
}

// GetTask retrieves a single task by its id.
func (s *SQLiteStore) GetTask(ctx context.Context, id string) (*model.Task, error) {
	row := s.db.QueryRowxContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE id = ?", id)

	task, err := scanTaskRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting task %s: %w", id, err)
	}

	return &task, nil
}

// CreateTask inserts a new task with a generated UUID, stamped createdAt,
// and store-side defaults applied.
func (s *SQLiteStore) CreateTask(
	ctx context.Context,
	task model.Task,
) (*model.Task, error) {
	if strings.TrimSpace(task.Title) == "" {
		return nil, &model.ValidationError{Field: "title", Message: "must not be empty"}
	}

	task.ID = uuid.New().String()
	applyTaskDefaults(&task, time.Now().UTC())

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (
			id, title, priority, estimated_time, actual_time,
			distraction_level, completed, completed_at, created_at, owner_id,
			is_later, is_focus, is_mind_map_only, archived
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID, task.Title, task.Priority, task.EstimatedTime, task.ActualTime,
		task.DistractionLevel, boolToInt(task.Completed), task.CompletedAt,
		task.CreatedAt, task.OwnerID,
		boolToInt(task.IsLater), boolToInt(task.IsFocus),
		boolToInt(task.IsMindMapOnly), boolToInt(task.Archived),
	)
	if err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}

	return &task, nil
}

// UpdateTask reads the current row, applies the patch in memory, and writes
// the merged record back. Last write wins; no locking.
func (s *SQLiteStore) UpdateTask(
	ctx context.Context,
	id string,
	patch model.TaskPatch,
) (*model.Task, error) {
	task, err := s.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}

	patch.Apply(task, time.Now().UTC())

	_, err = s.db.ExecContext(ctx, `
		UPDATE tasks SET
			title = ?, priority = ?, estimated_time = ?, actual_time = ?,
			distraction_level = ?, completed = ?, completed_at = ?,
			is_later = ?, is_focus = ?, is_mind_map_only = ?, archived = ?
		WHERE id = ?`,
		task.Title, task.Priority, task.EstimatedTime, task.ActualTime,
		task.DistractionLevel, boolToInt(task.Completed), task.CompletedAt,
		boolToInt(task.IsLater), boolToInt(task.IsFocus),
		boolToInt(task.IsMindMapOnly), boolToInt(task.Archived),
		task.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("updating task %s: %w", id, err)
	}

	return task, nil
}

// DeleteTask removes a task by id. Deleting a nonexistent id returns false
// without error.
func (s *SQLiteStore) DeleteTask(ctx context.Context, id string) (bool, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("deleting task %s: %w", id, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting task %s: %w", id, err)
	}
	return rows > 0, nil
}

// scanTask scans a task row from a sqlx.Rows result set.
func scanTask(rows *sqlx.Rows) (model.Task, error) {
	return scanTaskFrom(rows)
}

// scanTaskRow scans a single task row from a sqlx.Row.
func scanTaskRow(row *sqlx.Row) (model.Task, error) {
	return scanTaskFrom(row)
}

// scanTaskFrom scans a task from anything with a Scan method, converting
// SQLite integer booleans back to Go bools.
func scanTaskFrom(row interface{ Scan(dest ...interface{}) error }) (model.Task, error) {
	var (
		task          model.Task
		completed     int
		isLater       int
		isFocus       int
		isMindMapOnly int
		archived      int
	)

	err := row.Scan(
		&task.ID, &task.Title, &task.Priority, &task.EstimatedTime,
		&task.ActualTime, &task.DistractionLevel,
		&completed, &task.CompletedAt, &task.CreatedAt, &task.OwnerID,
		&isLater, &isFocus, &isMindMapOnly, &archived,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Task{}, err
		}
		return model.Task{}, fmt.Errorf("scanning task row: %w", err)
	}

	task.Completed = completed != 0
	task.IsLater = isLater != 0
	task.IsFocus = isFocus != 0
	task.IsMindMapOnly = isMindMapOnly != 0
	task.Archived = archived != 0

	return task, nil
}
