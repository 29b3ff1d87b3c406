package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/divvault/internal/common"
	"github.com/dmitrijs2005/divvault/internal/server/access"
	"github.com/dmitrijs2005/divvault/internal/server/auth"
	"github.com/dmitrijs2005/divvault/internal/server/models"
	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// authenticate verifies the bearer token and stores the caller's identity
// in the request context. Missing, malformed and expired tokens all end the
// request with 401.
func (s *HTTPServer) authenticate(c *gin.Context) {
	header := c.GetHeader(common.AuthorizationHeaderName)
	token, ok := strings.CutPrefix(header, common.BearerPrefix)
	if !ok || token == "" {
		s.logger.Debug(c.Request.Context(), "missing bearer token", "path", c.FullPath())
		abortSessionExpired(c)
		return
	}

	id, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil {
		s.logger.Debug(c.Request.Context(), "token rejected", "path", c.FullPath(), "reason", err)
		abortSessionExpired(c)
		return
	}

	c.Set(identityKey, id)
	c.Next()
}

func abortSessionExpired(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Err: common.SessionExpiredReason})
}

// adminOnly rejects the request unless the access policy allows op for the
// caller. It runs before body binding so that a forbidden caller never sees
// validation errors.
func adminOnly(op access.Operation) gin.HandlerFunc {
	return func(c *gin.Context) {
		d := access.Check(identity(c), op, "")
		if !d.Allowed() {
			status := http.StatusForbidden
			if d.Outcome == access.Unauthenticated {
				status = http.StatusUnauthorized
			}
			c.AbortWithStatusJSON(status, errorResponse{Err: d.Reason})
			return
		}
		c.Next()
	}
}

func identity(c *gin.Context) models.Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return models.Identity{}
	}
	id, _ := v.(models.Identity)
	return id
}

// requestLogger is the access log used when the logger is not zap-backed.
func (s *HTTPServer) requestLogger(c *gin.Context) {
	start := time.Now()
	c.Next()
	s.logger.Info(c.Request.Context(), "request",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", c.Writer.Status(),
		"latency", time.Since(start).String(),
	)
}
