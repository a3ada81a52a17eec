package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// OnlineFriends returns the subset of the caller's friends that are
// currently online. Presence for the whole friend list is resolved in one
// batched lookup.
func (s *Server) OnlineFriends(c *gin.Context) {
	userID := currentUser(c)
	ctx := c.Request.Context()

	friendIDs, err := s.Friends.ListFriendIDs(ctx, userID)
	if err != nil {
		s.Logger.Error("list friends failed", "user_id", userID, "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "erro ao buscar amigos"})
		return
	}

	online, err := s.Presence.ListOnline(ctx, friendIDs)
	if err != nil {
		// Presence is derived state; degrade to "nobody online" rather than
		// failing the friend list.
		s.Logger.Warn("presence batch failed", "user_id", userID, "error", err)
		c.JSON(http.StatusOK, gin.H{"online_user_ids": []int64{}})
		return
	}

	onlineIDs := make([]int64, 0, len(online))
	for _, id := range friendIDs {
		if online[id] {
			onlineIDs = append(onlineIDs, id)
		}
	}
	c.JSON(http.StatusOK, gin.H{"online_user_ids": onlineIDs})
}
