package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/skilltracker/skilltracker-api/internal/service"
)

// Metrics records latency and status for every handled request. Requests
// that miss the router have no route template, so the raw URL path is
// used instead to keep label cardinality bounded on real routes.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	if metricsSvc == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
