package store

import (
	"context"
	"errors"
	"time"

	"taskpilot/internal/model"
)

// ErrNotFound is returned when a record id does not exist.
var ErrNotFound = errors.New("record not found")

// ErrUsernameTaken is returned when creating a user with a username that
// already exists (case-normalized).
var ErrUsernameTaken = errors.New("username already taken")

// Store defines the persistence interface for tasks, timeline events,
// users, and sessions. Two interchangeable implementations exist: a
// volatile in-process map and a SQLite-backed store. Ids are opaque string
// tokens at this boundary; callers must not depend on their representation.
type Store interface {
	// === Tasks ===

	// ListTasks returns tasks scoped to an owner. A non-nil owner returns
	// exactly that owner's tasks. A nil owner returns only legacy rows with
	// no owner; it never leaks another identity's tasks.
	ListTasks(ctx context.Context, owner *string) ([]model.Task, error)
	GetTask(ctx context.Context, id string) (*model.Task, error)
	// CreateTask assigns a fresh id, stamps createdAt, and defaults
	// priority to 5 and completed to false when unset.
	CreateTask(ctx context.Context, task model.Task) (*model.Task, error)
	// UpdateTask applies a partial merge. Returns ErrNotFound for an
	// unknown id.
	UpdateTask(ctx context.Context, id string, patch model.TaskPatch) (*model.Task, error)
	// DeleteTask is idempotent: deleting a nonexistent id returns false
	// without error.
	DeleteTask(ctx context.Context, id string) (bool, error)

	// === Timeline events ===

	ListEvents(ctx context.Context, owner *string) ([]model.TimelineEvent, error)
	GetEvent(ctx context.Context, id string) (*model.TimelineEvent, error)
	CreateEvent(ctx context.Context, event model.TimelineEvent) (*model.TimelineEvent, error)
	UpdateEvent(ctx context.Context, id string, patch model.EventPatch) (*model.TimelineEvent, error)
	DeleteEvent(ctx context.Context, id string) (bool, error)

	// === Ownership transfer ===

	// TransferOwnership reassigns every task and event owned by fromOwner
	// to toOwner and returns the number of reassigned records. Zero matches
	// is a no-op; a repeated call for the same pair finds nothing left.
	TransferOwnership(ctx context.Context, fromOwner, toOwner string) (int, error)

	// === Users ===

	CreateUser(ctx context.Context, user model.User) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)

	// === Sessions ===

	CreateSession(ctx context.Context, session model.Session) error
	GetSession(ctx context.Context, token string) (*model.Session, error)
	RenewSession(ctx context.Context, token string, expiresAt time.Time) error
	DeleteSession(ctx context.Context, token string) error
	// PruneSessions removes sessions expired at the given time and returns
	// how many were removed. It only touches session bookkeeping rows.
	PruneSessions(ctx context.Context, now time.Time) (int, error)

	Close() error
}

// applyTaskDefaults fills store-side defaults on a new task.
func applyTaskDefaults(t *model.Task, now time.Time) {
	if t.Priority == 0 {
		t.Priority = model.PriorityDefault
	}
	t.Completed = false
	t.CompletedAt = nil
	t.CreatedAt = now
}
