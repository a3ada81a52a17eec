package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/WilliamNavarro06/TCC-Nexus/internal/directory"
	"github.com/WilliamNavarro06/TCC-Nexus/internal/metrics"
	"github.com/WilliamNavarro06/TCC-Nexus/internal/ratelimit"
)

// ListConversations returns the caller's inbox, most recently active first.
func (s *Server) ListConversations(c *gin.Context) {
	userID := currentUser(c)

	entries, err := s.Inbox.ListConversations(c.Request.Context(), userID)
	if err != nil {
		s.Logger.Error("list conversations failed", "user_id", userID, "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "erro ao buscar conversas"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversations": entries})
}

type createConversationRequest struct {
	OtherUserID int64 `json:"other_user_id" binding:"required"`
}

// CreateConversation returns the conversation between the caller and the
// given user, creating it on first contact.
func (s *Server) CreateConversation(c *gin.Context) {
	userID := currentUser(c)

	var req createConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "other_user_id is required"})
		return
	}

	ctx := c.Request.Context()

	if allowed, _ := s.Limiter.Allow(ctx, userID, ratelimit.RuleCreateConversation); !allowed {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many conversation requests"})
		return
	}

	if s.RequireFriendship {
		ok, err := s.Friends.AreFriends(ctx, userID, req.OtherUserID)
		if err != nil {
			s.Logger.Error("friendship check failed", "user_id", userID, "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "erro ao criar conversa"})
			return
		}
		if !ok {
			c.JSON(http.StatusForbidden, gin.H{"error": "users are not friends"})
			return
		}
	}

	conv, created, err := s.Directory.GetOrCreate(ctx, userID, req.OtherUserID)
	if err != nil {
		if errors.Is(err, directory.ErrInvalidParticipants) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid participants"})
			return
		}
		s.Logger.Error("get-or-create conversation failed", "user_id", userID, "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "erro ao criar conversa"})
		return
	}
	if created {
		metrics.ConversationsCreated.Inc()
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"conversation_id": conv.ID, "created": created})
}
