package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"truesignal/internal/logging"
)

// requestLogger logs each request at Info with method, path, status and
// latency, matching the access-log shape the rest of the service uses.
func requestLogger(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("%s %s -> %d (%s)",
			c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
