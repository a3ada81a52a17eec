// Package presence derives per-user online status from an explicit Redis
// marker with a freshness TTL. Presence is never persisted as authoritative
// state: an absent or expired marker simply means offline.
package presence

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// KeyPrefix is the Redis key prefix for presence markers.
	KeyPrefix = "presence:"

	// DefaultWindow is how long a user counts as online after their last
	// authenticated request.
	DefaultWindow = 5 * time.Minute
)

// Store tracks online markers in Redis.
type Store struct {
	client *redis.Client
	window time.Duration
}

// NewStore creates a presence store. A non-positive window falls back to
// DefaultWindow.
func NewStore(client *redis.Client, window time.Duration) *Store {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Store{client: client, window: window}
}

func key(userID int64) string {
	return KeyPrefix + strconv.FormatInt(userID, 10)
}

// Touch refreshes the user's online marker, resetting the freshness window.
func (s *Store) Touch(ctx context.Context, userID int64) error {
	if err := s.client.Set(ctx, key(userID), time.Now().Unix(), s.window).Err(); err != nil {
		return fmt.Errorf("presence: touch: %w", err)
	}
	return nil
}

// IsOnline reports whether the user has an unexpired marker.
func (s *Store) IsOnline(ctx context.Context, userID int64) (bool, error) {
	n, err := s.client.Exists(ctx, key(userID)).Result()
	if err != nil {
		return false, fmt.Errorf("presence: exists: %w", err)
	}
	return n > 0, nil
}

// ListOnline returns the subset of candidates that are currently online.
// The whole batch is resolved in a single pipelined round trip so rendering
// a large friend list does not turn into one Redis call per friend.
func (s *Store) ListOnline(ctx context.Context, candidates []int64) (map[int64]bool, error) {
	online := make(map[int64]bool, len(candidates))
	if len(candidates) == 0 {
		return online, nil
	}

	pipe := s.client.Pipeline()
	cmds := make(map[int64]*redis.IntCmd, len(candidates))
	for _, id := range candidates {
		cmds[id] = pipe.Exists(ctx, key(id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("presence: batch exists: %w", err)
	}

	for id, cmd := range cmds {
		if cmd.Val() > 0 {
			online[id] = true
		}
	}
	return online, nil
}

// Clear removes the user's marker immediately (logout).
func (s *Store) Clear(ctx context.Context, userID int64) error {
	if err := s.client.Del(ctx, key(userID)).Err(); err != nil {
		return fmt.Errorf("presence: clear: %w", err)
	}
	return nil
}
