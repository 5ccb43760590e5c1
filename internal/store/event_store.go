package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"taskpilot/internal/model"
)

const eventColumns = `id, title, description, due_date, priority,
	completed, completed_at, created_at, owner_id`

// ListEvents retrieves timeline events scoped to the owner, oldest first.
func (s *SQLiteStore) ListEvents(
	ctx context.Context,
	owner *string,
) ([]model.TimelineEvent, error) {
	query := "SELECT " + eventColumns + " FROM events WHERE "
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
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	var events []model.TimelineEvent
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	return events, rows.Err()
}

// GetEvent retrieves a single timeline event by its id.
func (s *SQLiteStore) GetEvent(ctx context.Context, id string) (*model.TimelineEvent, error) {
	row := s.db.QueryRowxContext(ctx,
		"SELECT "+eventColumns+" FROM events WHERE id = ?", id)

	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting event %s: %w", id, err)
	}

	return &event, nil
}

// CreateEvent inserts a new timeline event with a generated UUID.
func (s *SQLiteStore) CreateEvent(
	ctx context.Context,
	event model.TimelineEvent,
) (*model.TimelineEvent, error) {
	if strings.TrimSpace(event.Title) == "" {
		return nil, &model.ValidationError{Field: "title", Message: "must not be empty"}
	}

	event.ID = uuid.New().String()
	if event.Priority == 0 {
		event.Priority = model.PriorityDefault
	}
	event.Completed = false
	event.CompletedAt = nil
	event.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (
			id, title, description, due_date, priority,
			completed, completed_at, created_at, owner_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID, event.Title, event.Description, event.DueDate, event.Priority,
		boolToInt(event.Completed), event.CompletedAt, event.CreatedAt, event.OwnerID,
	)
	if err != nil {
		return nil, fmt.Errorf("creating event: %w", err)
	}

	return &event, nil
}

// UpdateEvent reads the current row, applies the patch, and writes back.
func (s *SQLiteStore) UpdateEvent(
	ctx context.Context,
	id string,
	patch model.EventPatch,
) (*model.TimelineEvent, error) {
	event, err := s.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}

	patch.Apply(event, time.Now().UTC())

	_, err = s.db.ExecContext(ctx, `
		UPDATE events SET
			title = ?, description = ?, due_date = ?, priority = ?,
			completed = ?, completed_at = ?
		WHERE id = ?`,
		event.Title, event.Description, event.DueDate, event.Priority,
		boolToInt(event.Completed), event.CompletedAt,
		event.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("updating event %s: %w", id, err)
	}

	return event, nil
}

// DeleteEvent removes an event by id. Deleting a nonexistent id returns
// false without error.
func (s *SQLiteStore) DeleteEvent(ctx context.Context, id string) (bool, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM events WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("deleting event %s: %w", id, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting event %s: %w", id, err)
	}
	return rows > 0, nil
}

// scanEvent scans an event row, converting SQLite integer booleans.
func scanEvent(row interface{ Scan(dest ...interface{}) error }) (model.TimelineEvent, error) {
	var (
		event     model.TimelineEvent
		completed int
	)

	err := row.Scan(
		&event.ID, &event.Title, &event.Description, &event.DueDate,
		&event.Priority, &completed, &event.CompletedAt, &event.CreatedAt,
		&event.OwnerID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.TimelineEvent{}, err
		}
		return model.TimelineEvent{}, fmt.Errorf("scanning event row: %w", err)
	}

	event.Completed = completed != 0
	return event, nil
}
