package model

import (
	"strings"
	"time"
)

// MinPasswordLength is the minimum accepted password length for signup.
const MinPasswordLength = 6

// User is a persisted account record for the local-credential path.
// PasswordHash is never serialized to clients.
type User struct {
	ID           string    `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// NormalizeUsername lower-cases and trims a username so uniqueness checks
// are case-insensitive.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// Session is a server-side session record backing the HTTP-only cookie.
// Sessions expire on a 24-hour rolling window and are pruned on a timer;
// pruning only ever removes bookkeeping rows, never task data.
type Session struct {
	Token     string    `json:"-" db:"token"`
	UserID    string    `json:"userId" db:"user_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	ExpiresAt time.Time `json:"expiresAt" db:"expires_at"`
}

// Expired reports whether the session is past its expiry at the given time.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
