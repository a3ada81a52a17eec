package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/WilliamNavarro06/TCC-Nexus/internal/metrics"
)

// Creator is the storage surface the dispatcher needs.
type Creator interface {
	Create(ctx context.Context, userID int64, content string) (*Notification, error)
}

// Publisher pushes a notification event to a per-user subject so a push
// gateway can deliver it without polling. Delivery is best-effort.
type Publisher interface {
	PublishUserNotification(userID int64, data []byte) error
}

// Event is the payload published per dispatched notification.
type Event struct {
	NotificationID int64  `json:"notification_id"`
	UserID         int64  `json:"user_id"`
	Content        string `json:"content"`
	Ts             int64  `json:"ts"`
}

// Dispatcher fans out one notification per qualifying event per recipient.
// Failures here never propagate to the triggering operation: a stored
// message is the durable fact, and a missed badge update is recoverable by
// the next poll.
type Dispatcher struct {
	store     Creator
	publisher Publisher
	logger    *slog.Logger
}

// NewDispatcher creates a dispatcher. publisher may be nil when no push
// channel is configured.
func NewDispatcher(store Creator, publisher Publisher, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{store: store, publisher: publisher, logger: logger}
}

// NewMessage records a notification for the receiving participant of a
// freshly appended message. Returns the created notification, or nil when
// delivery was degraded.
func (d *Dispatcher) NewMessage(ctx context.Context, recipientID int64, senderName string) *Notification {
	content := fmt.Sprintf("Nova mensagem de %s", senderName)
	return d.dispatch(ctx, recipientID, content)
}

// FriendActivity records a friend-related notification (request accepted,
// new post from a friend, and so on).
func (d *Dispatcher) FriendActivity(ctx context.Context, recipientID int64, description string) *Notification {
	return d.dispatch(ctx, recipientID, description)
}

func (d *Dispatcher) dispatch(ctx context.Context, recipientID int64, content string) *Notification {
	n, err := d.store.Create(ctx, recipientID, content)
	if err != nil {
		metrics.NotificationsDispatched.WithLabelValues("degraded").Inc()
		d.logger.Warn("notification delivery degraded",
			"recipient_id", recipientID, "error", err)
		return nil
	}
	metrics.NotificationsDispatched.WithLabelValues("stored").Inc()

	if d.publisher != nil {
		event := Event{
			NotificationID: n.ID,
			UserID:         n.UserID,
			Content:        n.Content,
			Ts:             time.Now().Unix(),
		}
		data, err := json.Marshal(event)
		if err == nil {
			err = d.publisher.PublishUserNotification(n.UserID, data)
		}
		if err != nil {
			// The row is stored; the client catches up on its next poll.
			d.logger.Warn("notification push failed",
				"notification_id", n.ID, "recipient_id", recipientID, "error", err)
		}
	}
	return n
}
