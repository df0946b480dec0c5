package api

import (
	"net/http"

	"kyc_arena/internal/middleware"
	"kyc_arena/internal/service"

	"github.com/gin-gonic/gin"
)

// ListNotificationsHandler returns the caller's notifications, newest first
func ListNotificationsHandler(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		notes, err := svc.ListNotifications(c.Request.Context(), middleware.CurrentUser(c).ID)
		if err != nil {
			respondError(c, err, "fetch notifications")
			return
		}
		c.JSON(http.StatusOK, notes)
	}
}

// MarkNotificationsReadHandler marks all of the caller's notifications read
func MarkNotificationsReadHandler(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.MarkNotificationsRead(c.Request.Context(), middleware.CurrentUser(c).ID); err != nil {
			respondError(c, err, "update notifications")
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}
