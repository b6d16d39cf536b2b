// Package requestid propagates a per-request correlation ID through the
// gin context and the X-Request-ID response header.
package requestid

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// Header is the HTTP header carrying the request ID in and out.
	Header = "X-Request-ID"

	contextKey = "request_id"
)

// Middleware reuses an inbound X-Request-ID when the client supplies one
// and mints a UUID otherwise.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(Header)
		if reqID == "" {
			reqID = uuid.NewString()
		}

		c.Set(contextKey, reqID)
		c.Writer.Header().Set(Header, reqID)

		c.Next()
	}
}

// Value returns the request ID for the current request, or "" when the
// middleware has not run.
func Value(c *gin.Context) string {
	if v, exists := c.Get(contextKey); exists {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
