// Package directory maps unordered pairs of users to their single direct
// conversation. The pair is normalized (smaller id stored first) and guarded
// by a unique constraint, so concurrent first contacts from either side
// resolve to the same row.
package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

var (
	// ErrInvalidParticipants is returned when a participant is unknown or
	// the two ids are not distinct.
	ErrInvalidParticipants = errors.New("directory: invalid participants")

	// ErrNotFound is returned when a conversation id does not exist.
	ErrNotFound = errors.New("directory: conversation not found")
)

// uniqueViolation is the PostgreSQL error code raised when the normalized
// pair already exists.
const uniqueViolation = "23505"

// Conversation is a two-party channel. UserLowID < UserHighID always holds.
type Conversation struct {
	ID             int64
	UserLowID      int64
	UserHighID     int64
	CreatedAt      time.Time
	LastActivityAt time.Time
}

// Other returns the participant that is not userID, or false if userID is
// not a participant at all.
func (c *Conversation) Other(userID int64) (int64, bool) {
	switch userID {
	case c.UserLowID:
		return c.UserHighID, true
	case c.UserHighID:
		return c.UserLowID, true
	}
	return 0, false
}

// Store manages conversation records in PostgreSQL.
type Store struct {
	db *sql.DB
}

// NewStore creates a directory store backed by the given database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// normalizePair orders two user ids so the smaller one comes first.
func normalizePair(a, b int64) (int64, int64) {
	if a > b {
		return b, a
	}
	return a, b
}

// GetOrCreate returns the conversation for the unordered pair {userA, userB},
// creating it on first contact. Both users must exist and be distinct. The
// second return value reports whether this call created the conversation.
//
// Creation is optimistic: a lost race against another first contact shows up
// as a unique violation, which is recovered by re-reading the winner's row.
func (s *Store) GetOrCreate(ctx context.Context, userA, userB int64) (*Conversation, bool, error) {
	if userA == userB || userA <= 0 || userB <= 0 {
		return nil, false, ErrInvalidParticipants
	}

	low, high := normalizePair(userA, userB)

	conv, err := s.getByPair(ctx, low, high)
	if err == nil {
		return conv, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("directory: lookup pair: %w", err)
	}

	exists, err := s.usersExist(ctx, low, high)
	if err != nil {
		return nil, false, fmt.Errorf("directory: check users: %w", err)
	}
	if !exists {
		return nil, false, ErrInvalidParticipants
	}

	conv = &Conversation{UserLowID: low, UserHighID: high}
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO conversations (user_low_id, user_high_id)
		VALUES ($1, $2)
		RETURNING id, created_at, last_activity_at`,
		low, high,
	).Scan(&conv.ID, &conv.CreatedAt, &conv.LastActivityAt)
	if err == nil {
		return conv, true, nil
	}

	// Someone else created the conversation between our lookup and insert.
	// The unique constraint on (user_low_id, user_high_id) makes this safe
	// to resolve by re-reading.
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		conv, rereadErr := s.getByPair(ctx, low, high)
		if rereadErr != nil {
			return nil, false, fmt.Errorf("directory: reread after conflict: %w", rereadErr)
		}
		return conv, false, nil
	}

	return nil, false, fmt.Errorf("directory: insert: %w", err)
}

// Get retrieves a conversation by id.
func (s *Store) Get(ctx context.Context, id int64) (*Conversation, error) {
	var conv Conversation
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_low_id, user_high_id, created_at, last_activity_at
		FROM conversations
		WHERE id = $1`,
		id,
	).Scan(&conv.ID, &conv.UserLowID, &conv.UserHighID, &conv.CreatedAt, &conv.LastActivityAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("directory: get: %w", err)
	}
	return &conv, nil
}

func (s *Store) getByPair(ctx context.Context, low, high int64) (*Conversation, error) {
	var conv Conversation
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_low_id, user_high_id, created_at, last_activity_at
		FROM conversations
		WHERE user_low_id = $1 AND user_high_id = $2`,
		low, high,
	).Scan(&conv.ID, &conv.UserLowID, &conv.UserHighID, &conv.CreatedAt, &conv.LastActivityAt)
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (s *Store) usersExist(ctx context.Context, ids ...int64) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE id = ANY($1)`,
		pq.Array(ids),
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count == len(ids), nil
}
