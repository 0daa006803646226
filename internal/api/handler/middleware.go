package handler

import (
	"time"

	"github.com/gin-gonic/gin"
)

// metricsMiddleware records every request under its route pattern, so
// /api/complaints/:id is one series no matter the id.
func (h *Handler) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		h.Metrics.RecordHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
