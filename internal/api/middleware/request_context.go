package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"txledger/internal/pkg/logging"
)

// requestIDKey is the gin context key RequestContext stores the
// generated request id under, retrievable via RequestID.
const requestIDKey = "request_id"

// RequestContext assigns a request id to every inbound request and
// logs its start and completion.
func RequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.New().String()
		c.Set(requestIDKey, requestID)

		start := time.Now()
		logging.Info("request started", map[string]interface{}{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"client_ip":  c.ClientIP(),
		})

		c.Next()

		logging.Info("request completed", map[string]interface{}{
			"request_id":  requestID,
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
		})
	}
}

// RequestID retrieves the request id RequestContext stored on c, for
// handlers that want to attach it to an error log line.
func RequestID(c *gin.Context) string {
	if id, ok := c.Get(requestIDKey); ok {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return ""
}
