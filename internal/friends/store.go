// Package friends reads friendship-graph membership. Friendships are
// managed elsewhere in the application; the messaging subsystem only needs
// membership checks and friend-id listings. A friendship row in either
// direction with status 'accepted' counts.
package friends

import (
	"context"
	"database/sql"
	"fmt"
)

// Store reads friendship records from PostgreSQL.
type Store struct {
	db *sql.DB
}

// NewStore creates a friends store backed by the given database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// AreFriends reports whether the two users have an accepted friendship.
func (s *Store) AreFriends(ctx context.Context, userA, userB int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM friendships
			WHERE status = 'accepted'
			  AND ((user_id = $1 AND friend_id = $2)
			    OR (user_id = $2 AND friend_id = $1))
		)`,
		userA, userB,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("friends: are friends: %w", err)
	}
	return exists, nil
}

// ListFriendIDs returns the ids of all accepted friends of a user,
// regardless of which side initiated the friendship.
func (s *Store) ListFriendIDs(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT friend_id FROM friendships
		WHERE user_id = $1 AND status = 'accepted'
		UNION
		SELECT user_id FROM friendships
		WHERE friend_id = $1 AND status = 'accepted'`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("friends: list: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("friends: scan: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("friends: rows: %w", err)
	}
	return ids, nil
}
