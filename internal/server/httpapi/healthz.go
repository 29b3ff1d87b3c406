package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// liveness runs every health check with a short deadline.
func (s *HTTPServer) liveness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	for _, check := range s.checks {
		if err := check(ctx); err != nil {
			s.logger.Warn(ctx, "liveness check failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"liveness": "ERR"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"liveness": "OK"})
}
