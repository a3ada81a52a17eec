// Package inbox composes the per-user conversation list: directory rows
// joined with the other participant's profile, the latest message, and
// online presence, ordered by recency.
package inbox

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrInvariantViolation is returned when a conversation row surfaces for a
// user that is not one of its participants. The WHERE clause makes this
// unreachable; the check guards against future query edits.
var ErrInvariantViolation = errors.New("inbox: requester is not a participant")

// Entry is one conversation summary in a user's inbox.
type Entry struct {
	ConversationID int64     `json:"conversation_id"`
	OtherUserID    int64     `json:"other_user_id"`
	OtherName      string    `json:"other_user_name"`
	OtherUsername  string    `json:"other_username"`
	OtherAvatarURL *string   `json:"other_avatar_url,omitempty"`
	LastMessage    *string   `json:"last_message,omitempty"`
	LastActivityAt time.Time `json:"last_activity_at"`
	Online         bool      `json:"online"`
}

// PresenceLister resolves online status for a batch of users.
type PresenceLister interface {
	ListOnline(ctx context.Context, candidates []int64) (map[int64]bool, error)
}

// View reads the inbox from PostgreSQL and merges Redis presence.
type View struct {
	db       *sql.DB
	presence PresenceLister
}

// NewView creates an inbox view. presence may be nil; entries then report
// everyone offline.
func NewView(db *sql.DB, presence PresenceLister) *View {
	return &View{db: db, presence: presence}
}

// ListConversations returns the user's conversations, most recently active
// first. The latest message per conversation is resolved with a LATERAL
// join rather than a scan of each log; empty conversations fall back to
// their creation time for ordering.
func (v *View) ListConversations(ctx context.Context, userID int64) ([]Entry, error) {
	rows, err := v.db.QueryContext(ctx, `
		SELECT c.id,
		       CASE WHEN c.user_low_id = $1 THEN c.user_high_id ELSE c.user_low_id END,
		       u.full_name, u.username, u.avatar_url,
		       lm.content,
		       COALESCE(lm.created_at, c.created_at)
		FROM conversations c
		JOIN users u
		  ON u.id = CASE WHEN c.user_low_id = $1 THEN c.user_high_id ELSE c.user_low_id END
		LEFT JOIN LATERAL (
			SELECT content, created_at
			FROM messages
			WHERE conversation_id = c.id
			ORDER BY id DESC
			LIMIT 1
		) lm ON TRUE
		WHERE c.user_low_id = $1 OR c.user_high_id = $1
		ORDER BY COALESCE(lm.created_at, c.created_at) DESC, c.id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("inbox: query: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ConversationID, &e.OtherUserID, &e.OtherName,
			&e.OtherUsername, &e.OtherAvatarURL, &e.LastMessage, &e.LastActivityAt); err != nil {
			return nil, fmt.Errorf("inbox: scan: %w", err)
		}
		if e.OtherUserID == userID {
			return nil, ErrInvariantViolation
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("inbox: rows: %w", err)
	}

	if v.presence != nil && len(entries) > 0 {
		candidates := make([]int64, 0, len(entries))
		for _, e := range entries {
			candidates = append(candidates, e.OtherUserID)
		}
		online, err := v.presence.ListOnline(ctx, candidates)
		if err != nil {
			// Presence is a derived signal; a Redis hiccup should not take
			// the inbox down with it.
			return entries, nil
		}
		for i := range entries {
			entries[i].Online = online[entries[i].OtherUserID]
		}
	}
	return entries, nil
}
