package presence

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// newTestStore connects to a local Redis instance and clears presence keys.
// Tests that call this helper require a running Redis and skip otherwise.
func newTestStore(t *testing.T, window time.Duration) *Store {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not available: %v", err)
	}
	cleanup := func() {
		iter := client.Scan(ctx, 0, KeyPrefix+"*", 100).Iterator()
		for iter.Next(ctx) {
			client.Del(ctx, iter.Val())
		}
	}
	cleanup()
	t.Cleanup(func() {
		cleanup()
		client.Close()
	})
	return NewStore(client, window)
}

func TestIsOnline_DefaultsOffline(t *testing.T) {
	s := newTestStore(t, 0)

	online, err := s.IsOnline(context.Background(), 900001)
	if err != nil {
		t.Fatalf("IsOnline() error: %v", err)
	}
	if online {
		t.Error("user with no marker must be offline")
	}
}

func TestTouchThenOnline(t *testing.T) {
	s := newTestStore(t, 0)
	ctx := context.Background()

	if err := s.Touch(ctx, 900002); err != nil {
		t.Fatalf("Touch() error: %v", err)
	}
	online, err := s.IsOnline(ctx, 900002)
	if err != nil {
		t.Fatalf("IsOnline() error: %v", err)
	}
	if !online {
		t.Error("touched user must be online")
	}
}

func TestMarkerExpires(t *testing.T) {
	s := newTestStore(t, 1*time.Second)
	ctx := context.Background()

	if err := s.Touch(ctx, 900003); err != nil {
		t.Fatalf("Touch() error: %v", err)
	}
	time.Sleep(1500 * time.Millisecond)

	online, err := s.IsOnline(ctx, 900003)
	if err != nil {
		t.Fatalf("IsOnline() error: %v", err)
	}
	if online {
		t.Error("marker should have expired")
	}
}

func TestListOnline_Batch(t *testing.T) {
	s := newTestStore(t, 0)
	ctx := context.Background()

	for _, id := range []int64{900010, 900012} {
		if err := s.Touch(ctx, id); err != nil {
			t.Fatalf("Touch() error: %v", err)
		}
	}

	online, err := s.ListOnline(ctx, []int64{900010, 900011, 900012, 900013})
	if err != nil {
		t.Fatalf("ListOnline() error: %v", err)
	}
	if !online[900010] || !online[900012] {
		t.Errorf("expected 900010 and 900012 online, got %v", online)
	}
	if online[900011] || online[900013] {
		t.Errorf("expected 900011 and 900013 offline, got %v", online)
	}
}

func TestListOnline_EmptyCandidates(t *testing.T) {
	s := newTestStore(t, 0)

	online, err := s.ListOnline(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListOnline() error: %v", err)
	}
	if len(online) != 0 {
		t.Errorf("expected empty result, got %v", online)
	}
}

func TestClear(t *testing.T) {
	s := newTestStore(t, 0)
	ctx := context.Background()

	if err := s.Touch(ctx, 900020); err != nil {
		t.Fatalf("Touch() error: %v", err)
	}
	if err := s.Clear(ctx, 900020); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	online, err := s.IsOnline(ctx, 900020)
	if err != nil {
		t.Fatalf("IsOnline() error: %v", err)
	}
	if online {
		t.Error("cleared user must be offline")
	}
}
