// Package message implements the append-only message log. Messages within a
// conversation are totally ordered by their bigserial id; the database
// assigns it at insert time, so two concurrent senders can never interleave
// ambiguously even with identical timestamps.
package message

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrConversationNotFound is returned when the conversation id does not
	// exist.
	ErrConversationNotFound = errors.New("message: conversation not found")

	// ErrNotAParticipant is returned when the sender is not one of the
	// conversation's two participants.
	ErrNotAParticipant = errors.New("message: sender is not a participant")
)

// Message is a single immutable entry in a conversation's log.
type Message struct {
	ID             int64     `json:"id"`
	ConversationID int64     `json:"conversation_id"`
	SenderID       int64     `json:"sender_id"`
	SenderName     string    `json:"sender_name,omitempty"`
	SenderUsername string    `json:"sender_username,omitempty"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

// Store manages the message log in PostgreSQL.
type Store struct {
	db *sql.DB
}

// NewStore creates a message store backed by the given database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Append validates and stores a new message, bumping the conversation's
// last-activity timestamp to the message's creation time. The insert and the
// activity bump share one transaction; the participant check rides along so
// a conversation cannot vanish between check and insert.
func (s *Store) Append(ctx context.Context, conversationID, senderID int64, content string) (*Message, error) {
	trimmed, err := ValidateContent(content)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("message: begin: %w", err)
	}
	defer tx.Rollback()

	var low, high int64
	err = tx.QueryRowContext(ctx,
		`SELECT user_low_id, user_high_id FROM conversations WHERE id = $1`,
		conversationID,
	).Scan(&low, &high)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("message: load conversation: %w", err)
	}
	if senderID != low && senderID != high {
		return nil, ErrNotAParticipant
	}

	msg := &Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        trimmed,
	}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO messages (conversation_id, sender_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		conversationID, senderID, trimmed,
	).Scan(&msg.ID, &msg.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("message: insert: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE conversations SET last_activity_at = $2 WHERE id = $1`,
		conversationID, msg.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("message: bump activity: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("message: commit: %w", err)
	}
	return msg, nil
}

// List returns the full history of a conversation in ascending insertion
// order, with sender display fields joined in. An empty conversation yields
// an empty slice, not an error.
func (s *Store) List(ctx context.Context, conversationID int64) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT m.id, m.conversation_id, m.sender_id, m.content, m.created_at,
		       u.full_name, u.username
		FROM messages m
		JOIN users u ON u.id = m.sender_id
		WHERE m.conversation_id = $1
		ORDER BY m.id ASC`,
		conversationID,
	)
	if err != nil {
		return nil, fmt.Errorf("message: list: %w", err)
	}
	defer rows.Close()

	messages := []Message{}
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Content,
			&m.CreatedAt, &m.SenderName, &m.SenderUsername); err != nil {
			return nil, fmt.Errorf("message: scan: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("message: rows: %w", err)
	}
	return messages, nil
}
