package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/WilliamNavarro06/TCC-Nexus/internal/auth"
)

const userIDKey = "user_id"

// Authenticate resolves the bearer token to a user id and refreshes the
// caller's presence marker. Every authenticated request is the "I am online"
// signal; no session state is held in process.
func (s *Server) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		userID, err := s.Auth.Resolve(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidToken) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
				return
			}
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "auth store unavailable"})
			return
		}

		c.Set(userIDKey, userID)

		// Presence and last-active are derived signals; failing to record
		// them must not fail the request.
		ctx := c.Request.Context()
		if err := s.Presence.Touch(ctx, userID); err != nil {
			s.Logger.Warn("presence touch failed", "user_id", userID, "error", err)
		}
		if err := s.Users.TouchLastActive(ctx, userID); err != nil {
			s.Logger.Warn("last-active update failed", "user_id", userID, "error", err)
		}

		c.Next()
	}
}

// currentUser returns the authenticated user id set by Authenticate.
func currentUser(c *gin.Context) int64 {
	return c.GetInt64(userIDKey)
}
