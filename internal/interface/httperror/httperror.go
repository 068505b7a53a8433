// Package httperror maps classified errors onto HTTP responses.
package httperror

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-api/internal/domain/apperror"
	"github.com/oksasatya/go-social-api/pkg/response"
)

// Status returns the HTTP status for an error kind.
func Status(kind apperror.Kind) int {
	switch {
	case kind == apperror.InvalidContent:
		return http.StatusBadRequest
	case kind == apperror.NotFound:
		return http.StatusNotFound
	case kind == apperror.Forbidden:
		return http.StatusForbidden
	case kind == apperror.Conflict:
		return http.StatusConflict
	case kind.IsCredential():
		return http.StatusUnauthorized
	case kind == apperror.Unavailable, kind == apperror.Timeout:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// Write responds with {"error": ...} for err. Client errors carry the
// classified message; server errors are logged and answered with fallback.
func Write(c *gin.Context, logger logrus.FieldLogger, err error, fallback string) {
	kind := apperror.KindOf(err)
	status := Status(kind)
	if status >= http.StatusInternalServerError {
		if logger != nil {
			logger.WithFields(logrus.Fields{
				"request_id": c.GetString("request_id"),
				"method":     c.Request.Method,
				"path":       c.FullPath(),
				"kind":       kind.String(),
			}).WithError(err).Error("request failed")
		}
		msg := fallback
		if status == http.StatusServiceUnavailable {
			msg = apperror.MessageOf(err, "Service temporarily unavailable")
			if kind == apperror.Timeout {
				msg = "Request timed out"
			}
		}
		response.Error(c, status, msg)
		return
	}
	response.Error(c, status, apperror.MessageOf(err, fallback))
}
