// Package auth resolves bearer tokens to user identities. Tokens live in
// Redis with a TTL; issuing them is the login flow's job, resolving them is
// ours. No identity is ever cached in process: every request reads the
// token fresh so revocation takes effect immediately.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// TokenPrefix is the Redis key prefix for session tokens.
	TokenPrefix = "token:"

	// DefaultTTL is the token lifetime when none is configured.
	DefaultTTL = 24 * time.Hour
)

// ErrInvalidToken is returned when a token is unknown or expired.
var ErrInvalidToken = errors.New("auth: invalid token")

// Store manages session tokens in Redis.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore creates a token store. A non-positive ttl falls back to
// DefaultTTL.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{client: client, ttl: ttl}
}

// Mint issues a fresh token for the user.
func (s *Store) Mint(ctx context.Context, userID int64) (string, error) {
	token := uuid.NewString()
	key := TokenPrefix + token
	if err := s.client.Set(ctx, key, userID, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("auth: mint: %w", err)
	}
	return token, nil
}

// Resolve returns the user id a token belongs to, refreshing its TTL.
func (s *Store) Resolve(ctx context.Context, token string) (int64, error) {
	if token == "" {
		return 0, ErrInvalidToken
	}
	key := TokenPrefix + token
	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrInvalidToken
	}
	if err != nil {
		return 0, fmt.Errorf("auth: resolve: %w", err)
	}

	userID, err := strconv.ParseInt(val, 10, 64)
	if err != nil || userID <= 0 {
		return 0, ErrInvalidToken
	}

	// Sliding expiry: an active session stays alive.
	s.client.Expire(ctx, key, s.ttl)

	return userID, nil
}

// Revoke deletes a token (logout).
func (s *Store) Revoke(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, TokenPrefix+token).Err(); err != nil {
		return fmt.Errorf("auth: revoke: %w", err)
	}
	return nil
}
