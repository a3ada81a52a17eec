// Package api exposes the messaging subsystem over HTTP with gin.
package api

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/WilliamNavarro06/TCC-Nexus/internal/auth"
	"github.com/WilliamNavarro06/TCC-Nexus/internal/directory"
	"github.com/WilliamNavarro06/TCC-Nexus/internal/friends"
	"github.com/WilliamNavarro06/TCC-Nexus/internal/inbox"
	"github.com/WilliamNavarro06/TCC-Nexus/internal/message"
	"github.com/WilliamNavarro06/TCC-Nexus/internal/metrics"
	"github.com/WilliamNavarro06/TCC-Nexus/internal/notification"
	"github.com/WilliamNavarro06/TCC-Nexus/internal/obs"
	"github.com/WilliamNavarro06/TCC-Nexus/internal/presence"
	"github.com/WilliamNavarro06/TCC-Nexus/internal/ratelimit"
	"github.com/WilliamNavarro06/TCC-Nexus/internal/user"
)

// Pinger is anything whose health can be probed (database, Redis).
type Pinger interface {
	Ping() error
}

// PingerFunc adapts a plain function to the Pinger interface.
type PingerFunc func() error

// Ping calls f.
func (f PingerFunc) Ping() error { return f() }

// Server bundles the handler dependencies.
type Server struct {
	Directory     *directory.Store
	Messages      *message.Store
	Notifications *notification.Store
	Dispatcher    *notification.Dispatcher
	Inbox         *inbox.View
	Users         *user.Store
	Friends       *friends.Store
	Presence      *presence.Store
	Auth          *auth.Store
	Limiter       *ratelimit.Limiter
	Logger        *slog.Logger

	// RequireFriendship gates conversation creation on an accepted
	// friendship between the participants.
	RequireFriendship bool

	// Health probes, checked by /healthz.
	Probes []Pinger
}

// Router builds the gin engine with all routes and middleware attached.
func (s *Server) Router(env string) *gin.Engine {
	if env != "dev" && env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())

	mw := obs.Middleware{Logger: s.Logger}
	r.Use(mw.RequestID(), mw.AccessLog(), measure())

	r.GET("/healthz", s.Healthz)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	authed := r.Group("/api", s.Authenticate())
	{
		authed.GET("/conversations", s.ListConversations)
		authed.POST("/conversations", s.CreateConversation)
		authed.GET("/conversations/:id/messages", s.ListMessages)
		authed.POST("/conversations/:id/messages", s.SendMessage)
		authed.GET("/notifications", s.ListNotifications)
		authed.PUT("/notifications/:id/read", s.MarkNotificationRead)
		authed.GET("/friends/online", s.OnlineFriends)
	}

	return r
}

// measure records per-route request latency.
func measure() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RequestDuration.WithLabelValues(c.Request.Method, route).
			Observe(time.Since(start).Seconds())
	}
}

// Healthz reports liveness of the service and its backing stores.
func (s *Server) Healthz(c *gin.Context) {
	for _, p := range s.Probes {
		if err := p.Ping(); err != nil {
			c.JSON(503, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
	}
	c.JSON(200, gin.H{"status": "ok"})
}
