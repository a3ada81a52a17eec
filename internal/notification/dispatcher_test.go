package notification

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

type fakeCreator struct {
	created []Notification
	err     error
}

func (f *fakeCreator) Create(_ context.Context, userID int64, content string) (*Notification, error) {
	if f.err != nil {
		return nil, f.err
	}
	n := Notification{ID: int64(len(f.created) + 1), UserID: userID, Content: content}
	f.created = append(f.created, n)
	return &n, nil
}

type fakePublisher struct {
	published [][]byte
	err       error
}

func (f *fakePublisher) PublishUserNotification(_ int64, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, data)
	return nil
}

func TestDispatcher_NewMessage(t *testing.T) {
	creator := &fakeCreator{}
	publisher := &fakePublisher{}
	d := NewDispatcher(creator, publisher, nil)

	n := d.NewMessage(context.Background(), 7, "João Pedro")
	if n == nil {
		t.Fatal("expected a stored notification")
	}
	if n.UserID != 7 {
		t.Errorf("recipient = %d, want 7", n.UserID)
	}
	if n.Content != "Nova mensagem de João Pedro" {
		t.Errorf("content = %q", n.Content)
	}

	if len(publisher.published) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(publisher.published))
	}
	var event Event
	if err := json.Unmarshal(publisher.published[0], &event); err != nil {
		t.Fatalf("unmarshal event: %v", err)
	}
	if event.UserID != 7 || event.NotificationID != n.ID {
		t.Errorf("event = %+v", event)
	}
}

func TestDispatcher_StoreFailureDegrades(t *testing.T) {
	creator := &fakeCreator{err: errors.New("connection refused")}
	publisher := &fakePublisher{}
	d := NewDispatcher(creator, publisher, nil)

	if n := d.NewMessage(context.Background(), 7, "João"); n != nil {
		t.Errorf("expected degraded delivery (nil), got %+v", n)
	}
	if len(publisher.published) != 0 {
		t.Error("nothing should be published when the store insert fails")
	}
}

func TestDispatcher_PublishFailureStillStores(t *testing.T) {
	creator := &fakeCreator{}
	publisher := &fakePublisher{err: errors.New("nats down")}
	d := NewDispatcher(creator, publisher, nil)

	if n := d.NewMessage(context.Background(), 7, "João"); n == nil {
		t.Fatal("push failure must not lose the stored notification")
	}
	if len(creator.created) != 1 {
		t.Errorf("expected 1 stored notification, got %d", len(creator.created))
	}
}

func TestDispatcher_NilPublisher(t *testing.T) {
	creator := &fakeCreator{}
	d := NewDispatcher(creator, nil, nil)

	if n := d.FriendActivity(context.Background(), 3, "Maria aceitou sua solicitação de amizade"); n == nil {
		t.Fatal("expected a stored notification without a push channel")
	}
}
