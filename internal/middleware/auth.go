package middleware

import (
	"errors"
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"kyc_arena/internal/domain"  // Domain models
	"kyc_arena/internal/service" // Account lookups
	"kyc_arena/internal/session" // Session registry
	"kyc_arena/internal/utils"   // Token helpers

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging
)

// Context keys and cookie name shared with the handlers
const (
	SessionCookie     = "session"   // Cookie carrying the session token
	ContextUserKey    = "user"      // *domain.User of the caller
	ContextUserIDKey  = "userID"    // uint id of the caller
	ContextSessionKey = "sessionID" // Session id of the caller
)

// TokenFromRequest returns the session token from the cookie or, failing
// that, from a Bearer Authorization header
func TokenFromRequest(c *gin.Context) string {
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" {
		return cookie
	}
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

// SessionAuthMiddleware resolves the caller's session and reloads the
// account on every request, so disabled or deleted accounts lose access at once
func SessionAuthMiddleware(svc *service.Service, sessions session.Store, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := TokenFromRequest(c)
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}
		claims, err := utils.ParseJWT(tokenStr, secret) // Parse the session token
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired session"})
			return
		}
		ownerID, err := sessions.Lookup(c.Request.Context(), claims.ID) // Session must still be live
		if err != nil || ownerID != claims.UserID {
			if err != nil && !errors.Is(err, session.ErrNotFound) {
				logrus.WithFields(logrus.Fields{"error": err.Error()}).Error("Session lookup failed")
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired session"})
			return
		}
		user, err := svc.GetUser(c.Request.Context(), claims.UserID) // Reload the account
		if err != nil {
			if !errors.Is(err, service.ErrNotFound) {
				logrus.WithFields(logrus.Fields{"user_id": claims.UserID, "error": err.Error()}).Error("User lookup failed")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
				return
			}
			_ = sessions.Revoke(c.Request.Context(), claims.ID)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}
		if !user.IsEnabled {
			_ = sessions.Revoke(c.Request.Context(), claims.ID)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": service.MsgBanned})
			return
		}
		c.Set(ContextUserKey, user)         // Store the account in context
		c.Set(ContextUserIDKey, user.ID)    // Store userID in context
		c.Set(ContextSessionKey, claims.ID) // Store session id in context
		c.Next()                            // Proceed to the next handler
	}
}

// CurrentUser returns the authenticated caller, or nil
func CurrentUser(c *gin.Context) *domain.User {
	v, exists := c.Get(ContextUserKey)
	if !exists {
		return nil
	}
	user, _ := v.(*domain.User)
	return user
}
