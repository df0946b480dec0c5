package api

import (
	"errors"
	"net/http" // HTTP status codes
	"strconv"  // String conversion

	"kyc_arena/internal/service" // Error kinds

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging
)

// statusFor maps a service error kind to an HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// respondError writes a classified service error. Unclassified errors are
// logged and answered with a generic "Failed to <action>" message.
func respondError(c *gin.Context, err error, action string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logrus.WithFields(logrus.Fields{
			"action": action,
			"path":   c.FullPath(),
			"error":  err.Error(),
		}).Error("Request failed")
		c.JSON(status, gin.H{"error": "Failed to " + action})
		return
	}
	var svcErr *service.Error
	if errors.As(err, &svcErr) {
		c.JSON(status, gin.H{"error": svcErr.Msg})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// idParam parses the :id path parameter, answering 400 when it is invalid
func idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return 0, false
	}
	return uint(id), true
}
