package api

import (
	"net/http" // HTTP status codes

	"kyc_arena/internal/middleware" // Context helpers
	"kyc_arena/internal/service"    // Portal state

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging
)

// Request struct for opening or closing the portal
type PortalStatusRequest struct {
	IsOpen *bool `json:"isOpen"`
}

// GetPortalStatusHandler reports whether the portal accepts submissions
func GetPortalStatusHandler(portal *service.PortalState) gin.HandlerFunc {
	return func(c *gin.Context) {
		open, err := portal.IsOpen(c.Request.Context())
		if err != nil {
			respondError(c, err, "fetch portal status")
			return
		}
		c.JSON(http.StatusOK, gin.H{"isOpen": open})
	}
}

// SetPortalStatusHandler opens or closes the portal
func SetPortalStatusHandler(portal *service.PortalState) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PortalStatusRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil || req.IsOpen == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "isOpen must be a boolean"})
			return
		}
		if err := portal.SetOpen(c.Request.Context(), *req.IsOpen); err != nil {
			respondError(c, err, "update portal status")
			return
		}
		logrus.WithFields(logrus.Fields{
			"open":     *req.IsOpen,
			"admin_id": middleware.CurrentUser(c).ID,
		}).Info("Portal status changed")
		c.JSON(http.StatusOK, gin.H{"isOpen": *req.IsOpen})
	}
}
