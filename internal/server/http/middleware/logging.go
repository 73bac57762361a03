package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestLogger writes one access record per request. Server errors are
// logged at error level; the caller is included once CallerRequired has run.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()
		code := c.Writer.Status()

		level := slog.LevelInfo
		if code >= 500 {
			level = slog.LevelError
		}
		attrs := []slog.Attr{
			slog.String("method", c.Request.Method),
			slog.String("route", c.FullPath()),
			slog.Int("status", code),
			slog.Duration("took", time.Since(started)),
			slog.String("request_id", c.GetString(RequestIDContextKey)),
		}
		if caller, ok := c.Get(UserIDContextKey); ok {
			if id, ok := caller.(uuid.UUID); ok {
				attrs = append(attrs, slog.String("caller", id.String()))
			}
		}
		logger.LogAttrs(c.Request.Context(), level, "order api request", attrs...)
	}
}
