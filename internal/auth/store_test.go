package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not available: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return NewStore(client, 0)
}

func TestMintAndResolve(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	token, err := s.Mint(ctx, 42)
	if err != nil {
		t.Fatalf("Mint() error: %v", err)
	}
	t.Cleanup(func() { s.Revoke(ctx, token) })

	userID, err := s.Resolve(ctx, token)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if userID != 42 {
		t.Errorf("resolved user = %d, want 42", userID)
	}
}

func TestResolve_UnknownToken(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Resolve(context.Background(), "not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestResolve_EmptyToken(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Resolve(context.Background(), ""); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestRevoke(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	token, err := s.Mint(ctx, 42)
	if err != nil {
		t.Fatalf("Mint() error: %v", err)
	}
	if err := s.Revoke(ctx, token); err != nil {
		t.Fatalf("Revoke() error: %v", err)
	}
	if _, err := s.Resolve(ctx, token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("revoked token still resolves: %v", err)
	}
}
