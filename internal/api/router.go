package api

import (
	"context"
	"net/http"
	"time"

	"kyc_arena/internal/metrics"
	mw "kyc_arena/internal/middleware"
	"kyc_arena/internal/service"

	"github.com/gin-gonic/gin"
)

// NewRouter wires every route. Each authenticated route declares the
// capability it needs.
func NewRouter(svc *service.Service, sessions Sessions) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), mw.RequestLogger(), metrics.Middleware())

	r.GET("/healthz", HealthHandler(svc))
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api")
	api.POST("/auth/register", RegisterHandler(svc, sessions))
	api.POST("/auth/login", LoginHandler(svc, sessions))
	api.POST("/auth/logout", LogoutHandler(sessions))

	auth := api.Group("")
	auth.Use(mw.SessionAuthMiddleware(svc, sessions.Store, sessions.Secret))
	signedIn := mw.Require(mw.CapAuthenticated)
	{
		auth.GET("/auth/me", signedIn, MeHandler())
		auth.GET("/auth/stats", signedIn, StatsHandler(svc))

		auth.GET("/submissions", signedIn, ListSubmissionsHandler(svc))
		auth.POST("/submissions", mw.Require(mw.CapSubmit), CreateSubmissionHandler(svc))
		auth.POST("/submissions/delete-non-pending", signedIn, DeleteNonPendingHandler(svc))
		auth.GET("/submissions/export", mw.Require(mw.CapReview), ExportSubmissionsHandler(svc))
		auth.PATCH("/submissions/:id", signedIn, UpdateSubmissionHandler(svc))
		auth.DELETE("/submissions/:id", signedIn, DeleteSubmissionHandler(svc))
		auth.PATCH("/submissions/:id/status", mw.Require(mw.CapReview), UpdateSubmissionStatusHandler(svc))

		auth.GET("/exchanges", signedIn, ListExchangesHandler(svc))
		manageExchanges := mw.Require(mw.CapManageExchanges)
		auth.POST("/exchanges", manageExchanges, CreateExchangeHandler(svc))
		auth.PATCH("/exchanges/:id/toggle", manageExchanges, ToggleExchangeHandler(svc))
		auth.PATCH("/exchanges/:id/price", manageExchanges, UpdateExchangePriceHandler(svc))

		manageUsers := mw.Require(mw.CapManageUsers)
		auth.GET("/users", manageUsers, ListUsersHandler(svc))
		auth.PATCH("/users/:id/approve", manageUsers, ApproveUserHandler(svc))
		auth.PATCH("/users/:id/toggle-enabled", manageUsers, ToggleUserEnabledHandler(svc))
		auth.PATCH("/users/:id/reset-password", manageUsers, ResetUserPasswordHandler(svc))
		auth.DELETE("/users/:id", manageUsers, DeleteUserHandler(svc))

		auth.GET("/notifications", signedIn, ListNotificationsHandler(svc))
		auth.POST("/notifications/mark-read", signedIn, MarkNotificationsReadHandler(svc))

		auth.GET("/settings/portal-status", signedIn, GetPortalStatusHandler(svc.Portal))
		auth.PATCH("/settings/portal-status", mw.Require(mw.CapManagePortal), SetPortalStatusHandler(svc.Portal))
	}
	return r
}

// HealthHandler pings the database
func HealthHandler(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		sqlDB, err := svc.DB().DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
