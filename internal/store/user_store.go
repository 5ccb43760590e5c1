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

// CreateUser inserts a new user with a case-normalized username. A
// duplicate username yields ErrUsernameTaken.
func (s *SQLiteStore) CreateUser(
	ctx context.Context,
	user model.User,
) (*model.User, error) {
	user.Username = model.NormalizeUsername(user.Username)
	if user.Username == "" {
		return nil, &model.ValidationError{Field: "username", Message: "must not be empty"}
	}

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	user.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, username, password_hash, created_at)
		VALUES (?, ?, ?, ?)`,
		user.ID, user.Username, user.PasswordHash, user.CreatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	return &user, nil
}

// GetUserByUsername looks up a user by case-normalized username.
func (s *SQLiteStore) GetUserByUsername(
	ctx context.Context,
	username string,
) (*model.User, error) {
	var user model.User
	err := s.db.GetContext(ctx, &user,
		"SELECT id, username, password_hash, created_at FROM users WHERE username = ?",
		model.NormalizeUsername(username),
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting user %s: %w", username, err)
	}
	return &user, nil
}

// GetUserByID looks up a user by id.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := s.db.GetContext(ctx, &user,
		"SELECT id, username, password_hash, created_at FROM users WHERE id = ?", id,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting user %s: %w", id, err)
	}
	return &user, nil
}

// CreateSession inserts a session record.
func (s *SQLiteStore) CreateSession(ctx context.Context, session model.Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (token, user_id, created_at, expires_at)
		VALUES (?, ?, ?, ?)`,
		session.Token, session.UserID, session.CreatedAt, session.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}
	return nil
}

// GetSession retrieves a session by token. Expired sessions are reported
// as not found.
func (s *SQLiteStore) GetSession(ctx context.Context, token string) (*model.Session, error) {
	var session model.Session
	err := s.db.GetContext(ctx, &session,
		"SELECT token, user_id, created_at, expires_at FROM sessions WHERE token = ?",
		token,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting session: %w", err)
	}
	if session.Expired(time.Now().UTC()) {
		return nil, ErrNotFound
	}
	return &session, nil
}

// RenewSession extends a session's expiry (rolling window).
func (s *SQLiteStore) RenewSession(
	ctx context.Context,
	token string,
	expiresAt time.Time,
) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE sessions SET expires_at = ? WHERE token = ?",
		expiresAt, token,
	)
	if err != nil {
		return fmt.Errorf("renewing session: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteSession removes a session by token.
func (s *SQLiteStore) DeleteSession(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE token = ?", token)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// PruneSessions removes all sessions expired at the given time and returns
// how many were removed.
func (s *SQLiteStore) PruneSessions(ctx context.Context, now time.Time) (int, error) {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM sessions WHERE expires_at <= ?", now,
	)
	if err != nil {
		return 0, fmt.Errorf("pruning sessions: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("pruning sessions: %w", err)
	}
	return int(rows), nil
}
