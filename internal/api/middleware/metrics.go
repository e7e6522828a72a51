package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"txledger/internal/pkg/metrics"
)

// Metrics records HTTP request counts, durations, and in-flight count
// against the process's Prometheus collectors.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		metrics.HTTPRequestsInFlight.Inc()
		defer metrics.HTTPRequestsInFlight.Dec()

		start := time.Now()
		c.Next()
		duration := time.Since(start)

		method := c.Request.Method
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unknown"
		}
		statusCode := strconv.Itoa(c.Writer.Status())

		metrics.HTTPDuration.WithLabelValues(method, endpoint, statusCode).Observe(duration.Seconds())
		metrics.HTTPRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
		metrics.Record(method+" "+endpoint, c.Writer.Status(), duration)
	}
}
