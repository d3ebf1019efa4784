package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"sgci.io/catalog/internal/metrics"
)

// unmatchedRoute labels requests that hit no registered route, so scanners
// cannot inflate label cardinality with arbitrary paths.
const unmatchedRoute = "unmatched"

// MetricsMiddleware records Prometheus metrics for every HTTP request:
// count by method, route and status, duration, response size, and the
// in-flight gauge. Add it early in the chain so rejected requests count too.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		metrics.HTTPRequestsInFlight.Inc()
		defer metrics.HTTPRequestsInFlight.Dec()

		start := time.Now()

		c.Next()

		method := c.Request.Method
		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		status := strconv.Itoa(c.Writer.Status())

		metrics.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())

		// Size is -1 when nothing was written.
		if size := c.Writer.Size(); size >= 0 {
			metrics.HTTPResponseSize.WithLabelValues(method, route).Observe(float64(size))
		}
	}
}
