package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/WilliamNavarro06/TCC-Nexus/internal/notification"
)

// ListNotifications returns the caller's most recent notifications together
// with their unread count. The count is always re-derived from the store.
func (s *Server) ListNotifications(c *gin.Context) {
	userID := currentUser(c)
	ctx := c.Request.Context()

	limit := notification.DefaultListLimit
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	notifications, err := s.Notifications.ListRecent(ctx, userID, limit)
	if err != nil {
		s.Logger.Error("list notifications failed", "user_id", userID, "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "erro ao buscar notificações"})
		return
	}

	unread, err := s.Notifications.UnreadCount(ctx, userID)
	if err != nil {
		s.Logger.Error("unread count failed", "user_id", userID, "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "erro ao buscar notificações"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"unread_count":  unread,
	})
}

// MarkNotificationRead flips one notification to read. Repeating the call is
// a no-op, not an error.
func (s *Server) MarkNotificationRead(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification id"})
		return
	}

	if err := s.Notifications.MarkRead(c.Request.Context(), id); err != nil {
		if errors.Is(err, notification.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
			return
		}
		s.Logger.Error("mark read failed", "notification_id", id, "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "erro ao atualizar notificação"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
