package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Poojitha-916/DRC-capstone/internal/service"
)

// Metrics records one HTTP observation per request. A nil service turns
// the middleware into a pass-through so metrics can stay optional.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		// Prefer the route template so per-ID paths collapse into one series.
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
