package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// UserIDContextKey is a gin context key for the calling user identifier.
	UserIDContextKey = "userID"
	// UserIDHeader carries the caller identity set by the upstream gateway.
	UserIDHeader = "X-User-ID"
)

// CallerRequired rejects requests without a valid caller identity.
func CallerRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(UserIDHeader))
		if raw == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		userID, err := uuid.Parse(raw)
		if err != nil || userID == uuid.Nil {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		c.Set(UserIDContextKey, userID)
		c.Next()
	}
}
