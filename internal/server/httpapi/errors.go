package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/divvault/internal/common"
	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Err string `json:"err"`
}

const reasonServerError = "server error"

// statusOf maps service errors to HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, common.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// writeError sends err as {"err": reason}. Internal errors are logged and
// replaced with a generic message.
func (s *HTTPServer) writeError(c *gin.Context, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		s.logger.Error(c.Request.Context(), "request failed",
			"method", c.Request.Method, "path", c.Request.URL.Path, "error", err)
		c.AbortWithStatusJSON(status, errorResponse{Err: reasonServerError})
		return
	}
	c.AbortWithStatusJSON(status, errorResponse{Err: common.Reason(err, http.StatusText(status))})
}
