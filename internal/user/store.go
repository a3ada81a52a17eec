// Package user provides read-only access to user records. User accounts are
// owned by the authentication service; this subsystem only looks them up.
package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a user id does not exist.
var ErrNotFound = errors.New("user: not found")

// User is a member of the network.
type User struct {
	ID         int64      `json:"id"`
	Username   string     `json:"username"`
	FullName   string     `json:"full_name"`
	AvatarURL  *string    `json:"avatar_url,omitempty"`
	Bio        *string    `json:"bio,omitempty"`
	LastActive *time.Time `json:"last_active,omitempty"`
}

// Store reads user records from PostgreSQL.
type Store struct {
	db *sql.DB
}

// NewStore creates a user store backed by the given database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// GetByID fetches a single user.
func (s *Store) GetByID(ctx context.Context, id int64) (*User, error) {
	var u User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, full_name, avatar_url, bio, last_active
		FROM users
		WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.Username, &u.FullName, &u.AvatarURL, &u.Bio, &u.LastActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user: get: %w", err)
	}
	return &u, nil
}

// TouchLastActive records the user's last activity timestamp. Best-effort:
// the authoritative freshness signal lives in the presence store.
func (s *Store) TouchLastActive(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET last_active = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("user: touch last active: %w", err)
	}
	return nil
}
