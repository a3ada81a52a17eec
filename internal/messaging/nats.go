// Package messaging provides a NATS client wrapper for pub/sub signaling
// across Nexus services. It handles connection lifecycle, subject-based
// subscriptions, and convenience methods for the per-user notification
// channel.
package messaging

import (
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// NATS subject patterns used across Nexus services.
const (
	// SubjectUserNotify carries notification events, one subject per
	// recipient: notify.user.<user_id>.
	SubjectUserNotify = "notify.user"

	// SubjectPresence carries presence transitions for interested
	// services: presence.<user_id>.
	SubjectPresence = "presence"
)

// NATSClient wraps the NATS connection with helper methods for pub/sub.
type NATSClient struct {
	conn *nats.Conn
	mu   sync.Mutex
	subs map[string]*nats.Subscription
}

// NATSConfig holds NATS connection settings.
type NATSConfig struct {
	URL           string        // nats://localhost:4222
	Name          string        // client name for identification
	ReconnectWait time.Duration // time between reconnect attempts
	MaxReconnects int           // max reconnect attempts (-1 for infinite)
}

// DefaultNATSConfig returns sensible defaults.
func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		URL:           "nats://localhost:4222",
		Name:          "nexus-messaging",
		ReconnectWait: 2 * time.Second,
		MaxReconnects: -1, // infinite reconnects
	}
}

// NewNATSClient connects to NATS with the given config and returns a ready
// client. It returns an error if the initial connection fails.
func NewNATSClient(config NATSConfig) (*NATSClient, error) {
	opts := []nats.Option{
		nats.Name(config.Name),
		nats.ReconnectWait(config.ReconnectWait),
		nats.MaxReconnects(config.MaxReconnects),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Printf("[nats] disconnected: %v", err)
			} else {
				log.Printf("[nats] disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("[nats] reconnected to %s", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			log.Printf("[nats] connection closed")
		}),
	}

	nc, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	log.Printf("[nats] connected to %s", nc.ConnectedUrl())

	return &NATSClient{
		conn: nc,
		subs: make(map[string]*nats.Subscription),
	}, nil
}

// Publish sends data to the given NATS subject.
func (c *NATSClient) Publish(subject string, data []byte) error {
	return c.conn.Publish(subject, data)
}

// Subscribe registers a handler for the given subject and stores the
// subscription internally for later cleanup.
func (c *NATSClient) Subscribe(subject string, handler func(msg *nats.Msg)) error {
	sub, err := c.conn.Subscribe(subject, handler)
	if err != nil {
		return fmt.Errorf("nats subscribe %s: %w", subject, err)
	}

	c.mu.Lock()
	c.subs[subject] = sub
	c.mu.Unlock()

	return nil
}

func userSubject(userID int64) string {
	return SubjectUserNotify + "." + strconv.FormatInt(userID, 10)
}

// PublishUserNotification publishes a notification event to the recipient's
// subject. A push gateway subscribed there delivers it; with no gateway the
// event is simply dropped and the client catches up by polling.
func (c *NATSClient) PublishUserNotification(userID int64, data []byte) error {
	return c.Publish(userSubject(userID), data)
}

// SubscribeUserNotifications subscribes to a user's notification subject and
// passes the raw event data to the handler.
func (c *NATSClient) SubscribeUserNotifications(userID int64, handler func(data []byte)) error {
	return c.Subscribe(userSubject(userID), func(msg *nats.Msg) {
		handler(msg.Data)
	})
}

// UnsubscribeUserNotifications drops the subscription for a user's subject.
func (c *NATSClient) UnsubscribeUserNotifications(userID int64) error {
	return c.unsubscribe(userSubject(userID))
}

// PublishPresence publishes a presence transition for a user.
func (c *NATSClient) PublishPresence(userID int64, data []byte) error {
	return c.Publish(SubjectPresence+"."+strconv.FormatInt(userID, 10), data)
}

// Close drains all active subscriptions and closes the NATS connection.
func (c *NATSClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for subject, sub := range c.subs {
		if err := sub.Drain(); err != nil {
			log.Printf("[nats] drain %s: %v", subject, err)
		}
	}
	c.subs = make(map[string]*nats.Subscription)

	if err := c.conn.Drain(); err != nil {
		log.Printf("[nats] connection drain: %v", err)
	}

	log.Printf("[nats] client closed")
}

// unsubscribe removes and unsubscribes from a specific subject.
func (c *NATSClient) unsubscribe(subject string) error {
	c.mu.Lock()
	sub, ok := c.subs[subject]
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("nats: no subscription for subject %s", subject)
	}
	delete(c.subs, subject)
	c.mu.Unlock()

	if err := sub.Unsubscribe(); err != nil {
		return fmt.Errorf("nats unsubscribe %s: %w", subject, err)
	}
	return nil
}
