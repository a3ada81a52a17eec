// Package notification stores per-user notification records and dispatches
// new-message events. Notifications start unread and only ever transition
// unread -> read.
package notification

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a notification id does not exist.
var ErrNotFound = errors.New("notification: not found")

// DefaultListLimit bounds ListRecent when the caller passes no limit.
const DefaultListLimit = 20

// Notification is a single event record for one recipient.
type Notification struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Content   string    `json:"content"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// Store manages notification rows in PostgreSQL.
type Store struct {
	db *sql.DB
}

// NewStore creates a notification store backed by the given database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Create inserts an unread notification for the recipient.
func (s *Store) Create(ctx context.Context, userID int64, content string) (*Notification, error) {
	n := &Notification{UserID: userID, Content: content}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO notifications (user_id, content)
		VALUES ($1, $2)
		RETURNING id, read, created_at`,
		userID, content,
	).Scan(&n.ID, &n.Read, &n.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("notification: insert: %w", err)
	}
	return n, nil
}

// MarkRead flips a notification to read. Marking an already-read
// notification again is a no-op; an unknown id is ErrNotFound.
func (s *Store) MarkRead(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET read = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("notification: mark read: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("notification: rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListRecent returns the recipient's notifications, newest first, bounded by
// limit.
func (s *Store) ListRecent(ctx context.Context, userID int64, limit int) ([]Notification, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, content, read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("notification: list: %w", err)
	}
	defer rows.Close()

	notifications := []Notification{}
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Content, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("notification: scan: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("notification: rows: %w", err)
	}
	return notifications, nil
}

// UnreadCount re-derives the recipient's unread count from the store. It is
// never cached: multiple stateless API instances share this database.
func (s *Store) UnreadCount(ctx context.Context, userID int64) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read = FALSE`,
		userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("notification: unread count: %w", err)
	}
	return count, nil
}
