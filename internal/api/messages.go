package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/WilliamNavarro06/TCC-Nexus/internal/directory"
	"github.com/WilliamNavarro06/TCC-Nexus/internal/message"
	"github.com/WilliamNavarro06/TCC-Nexus/internal/metrics"
	"github.com/WilliamNavarro06/TCC-Nexus/internal/ratelimit"
)

func conversationParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return 0, false
	}
	return id, true
}

// ListMessages returns the full ordered history of a conversation. Only its
// two participants may read it.
func (s *Server) ListMessages(c *gin.Context) {
	userID := currentUser(c)
	convID, ok := conversationParam(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	conv, err := s.Directory.Get(ctx, convID)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
			return
		}
		s.Logger.Error("load conversation failed", "conversation_id", convID, "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "erro ao buscar mensagens"})
		return
	}
	if _, ok := conv.Other(userID); !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a participant"})
		return
	}

	messages, err := s.Messages.List(ctx, convID)
	if err != nil {
		s.Logger.Error("list messages failed", "conversation_id", convID, "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "erro ao buscar mensagens"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

type sendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// SendMessage appends a message to the conversation and notifies the other
// participant. The stored message is the durable fact: notification or
// presence failures degrade the response, never fail it.
func (s *Server) SendMessage(c *gin.Context) {
	userID := currentUser(c)
	convID, ok := conversationParam(c)
	if !ok {
		return
	}

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.MessagesRejected.WithLabelValues("validation").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "content is required"})
		return
	}

	ctx := c.Request.Context()

	if allowed, _ := s.Limiter.Allow(ctx, userID, ratelimit.RuleSendMessage); !allowed {
		metrics.MessagesRejected.WithLabelValues("rate_limited").Inc()
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "sending too fast"})
		return
	}

	msg, err := s.Messages.Append(ctx, convID, userID, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, message.ErrEmptyContent):
			metrics.MessagesRejected.WithLabelValues("validation").Inc()
			c.JSON(http.StatusBadRequest, gin.H{"error": "message is empty"})
		case errors.Is(err, message.ErrContentTooLong), errors.Is(err, message.ErrInvalidUTF8):
			metrics.MessagesRejected.WithLabelValues("validation").Inc()
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message content"})
		case errors.Is(err, message.ErrNotAParticipant):
			metrics.MessagesRejected.WithLabelValues("not_participant").Inc()
			c.JSON(http.StatusForbidden, gin.H{"error": "not a participant"})
		case errors.Is(err, message.ErrConversationNotFound):
			metrics.MessagesRejected.WithLabelValues("not_found").Inc()
			c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
		default:
			s.Logger.Error("append message failed", "conversation_id", convID, "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "erro ao enviar mensagem"})
		}
		return
	}
	metrics.MessagesStored.Inc()

	s.notifyRecipient(c, convID, userID)

	c.JSON(http.StatusCreated, gin.H{"message": msg})
}

// notifyRecipient dispatches the new-message notification to the other
// participant. Best-effort by design.
func (s *Server) notifyRecipient(c *gin.Context, convID, senderID int64) {
	ctx := c.Request.Context()

	conv, err := s.Directory.Get(ctx, convID)
	if err != nil {
		s.Logger.Warn("notify: conversation lookup failed", "conversation_id", convID, "error", err)
		return
	}
	recipientID, ok := conv.Other(senderID)
	if !ok {
		return
	}

	senderName := "alguém"
	if sender, err := s.Users.GetByID(ctx, senderID); err == nil {
		senderName = sender.FullName
	}
	s.Dispatcher.NewMessage(ctx, recipientID, senderName)
}
