package api

import (
	"net/http" // HTTP status codes

	"kyc_arena/internal/middleware" // Context helpers
	"kyc_arena/internal/service"    // Account operations

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging
)

// Request struct for an admin password reset
type ResetPasswordRequest struct {
	NewPassword string `json:"newPassword" binding:"required"` // Replacement password
}

// ListUsersHandler returns every account, newest first
func ListUsersHandler(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := svc.ListUsers(c.Request.Context())
		if err != nil {
			respondError(c, err, "fetch users")
			return
		}
		out := make([]userResponse, 0, len(users))
		for i := range users {
			out = append(out, toUserResponse(&users[i]))
		}
		c.JSON(http.StatusOK, out)
	}
}

// ApproveUserHandler lets an account submit
func ApproveUserHandler(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		admin := middleware.CurrentUser(c)
		user, err := svc.ApproveUser(c.Request.Context(), admin, id)
		if err != nil {
			respondError(c, err, "approve user")
			return
		}
		logrus.WithFields(logrus.Fields{"user_id": user.ID, "admin_id": admin.ID}).Info("User approved")
		c.JSON(http.StatusOK, toUserResponse(user))
	}
}

// ToggleUserEnabledHandler bans or unbans an account
func ToggleUserEnabledHandler(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		admin := middleware.CurrentUser(c)
		user, err := svc.ToggleUserEnabled(c.Request.Context(), admin, id)
		if err != nil {
			respondError(c, err, "toggle user")
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id":  user.ID,
			"enabled":  user.IsEnabled,
			"admin_id": admin.ID,
		}).Info("User enabled state changed")
		c.JSON(http.StatusOK, toUserResponse(user))
	}
}

// ResetUserPasswordHandler sets a new password for an account
func ResetUserPasswordHandler(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var req ResetPasswordRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "New password is required"})
			return
		}
		admin := middleware.CurrentUser(c)
		if err := svc.ResetUserPassword(c.Request.Context(), admin, id, req.NewPassword); err != nil {
			respondError(c, err, "reset password")
			return
		}
		logrus.WithFields(logrus.Fields{"user_id": id, "admin_id": admin.ID}).Info("User password reset")
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// DeleteUserHandler removes an account and everything it owns
func DeleteUserHandler(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		admin := middleware.CurrentUser(c)
		if err := svc.DeleteUser(c.Request.Context(), admin, id); err != nil {
			respondError(c, err, "delete user")
			return
		}
		logrus.WithFields(logrus.Fields{"user_id": id, "admin_id": admin.ID}).Info("User deleted")
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}
