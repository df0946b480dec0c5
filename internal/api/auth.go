package api

import (
	"net/http" // HTTP status codes
	"time"     // Session lifetime

	"kyc_arena/internal/middleware" // Cookie and context helpers
	"kyc_arena/internal/service"    // Account operations
	"kyc_arena/internal/session"    // Session registry
	"kyc_arena/internal/utils"      // Token helpers

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging
)

// Sessions bundles what the auth handlers need to issue and revoke sessions
type Sessions struct {
	Store  session.Store // Session registry
	Secret string        // HMAC secret for session tokens
	TTL    time.Duration // Cookie and token lifetime
	Secure bool          // Send the cookie over HTTPS only
}

// Request struct for register and login
type CredentialsRequest struct {
	Username string `json:"username" binding:"required"` // Username must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// issue opens a session for the user and sets the session cookie
func (s Sessions) issue(c *gin.Context, userID uint) (string, error) {
	sessionID, err := s.Store.Create(c.Request.Context(), userID) // Register the session
	if err != nil {
		return "", err
	}
	token, err := utils.GenerateJWT(userID, sessionID, s.Secret, s.TTL) // Sign the token
	if err != nil {
		_ = s.Store.Revoke(c.Request.Context(), sessionID)
		return "", err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, token, int(s.TTL.Seconds()), "/", "", s.Secure, true)
	return token, nil
}

// RegisterHandler creates an account and signs it in
func RegisterHandler(svc *service.Service, sessions Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CredentialsRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password are required"})
			return
		}
		user, err := svc.Register(c.Request.Context(), req.Username, req.Password)
		if err != nil {
			respondError(c, err, "register")
			return
		}
		token, err := sessions.issue(c, user.ID)
		if err != nil {
			respondError(c, err, "create session")
			return
		}
		logrus.WithFields(logrus.Fields{"user_id": user.ID, "username": user.Username}).Info("User registered")
		c.JSON(http.StatusCreated, gin.H{"user": toUserResponse(user), "token": token})
	}
}

// LoginHandler authenticates a user and returns a session token
func LoginHandler(svc *service.Service, sessions Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CredentialsRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password are required"})
			return
		}
		user, err := svc.Authenticate(c.Request.Context(), req.Username, req.Password)
		if err != nil {
			respondError(c, err, "log in")
			return
		}
		token, err := sessions.issue(c, user.ID)
		if err != nil {
			respondError(c, err, "create session")
			return
		}
		logrus.WithFields(logrus.Fields{"user_id": user.ID}).Info("User logged in")
		c.JSON(http.StatusOK, gin.H{"user": toUserResponse(user), "token": token})
	}
}

// LogoutHandler revokes whatever session the request carries and clears the cookie
func LogoutHandler(sessions Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenStr := middleware.TokenFromRequest(c); tokenStr != "" {
			if claims, err := utils.ParseJWT(tokenStr, sessions.Secret); err == nil {
				if err := sessions.Store.Revoke(c.Request.Context(), claims.ID); err != nil {
					logrus.WithFields(logrus.Fields{"error": err.Error()}).Warn("Failed to revoke session")
				}
			}
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(middleware.SessionCookie, "", -1, "/", "", sessions.Secure, true)
		c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
	}
}

// MeHandler returns the signed-in account
func MeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": toUserResponse(middleware.CurrentUser(c))})
	}
}

// StatsHandler returns the caller's ledger
func StatsHandler(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := svc.GetStats(c.Request.Context(), middleware.CurrentUser(c).ID)
		if err != nil {
			respondError(c, err, "fetch stats")
			return
		}
		c.JSON(http.StatusOK, toStatsResponse(stats))
	}
}
