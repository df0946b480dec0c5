package main

import (
	"context"   // Shutdown deadline
	"errors"    // Server closed check
	"net/http"  // HTTP server
	"os"        // Signals
	"os/signal" // Signal handling
	"syscall"   // SIGTERM
	"time"      // Timeouts

	"kyc_arena/internal/api"    // HTTP handlers and routes
	"kyc_arena/internal/app"    // Shared wiring
	"kyc_arena/internal/config" // Configuration
	"kyc_arena/internal/jobs"   // Housekeeping scheduler

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration
	app.SetupLogger(cfg)       // Setup logger

	if cfg.JWTSecret == "" {
		logrus.Fatal("JWT_SECRET must be set")
	}

	a, err := app.New(cfg) // Connect to the database and Redis
	if err != nil {
		logrus.Fatalf("failed to start: %v", err)
	}
	defer a.Close()

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	router := api.NewRouter(a.Service, api.Sessions{
		Store:  a.Sessions,
		Secret: cfg.JWTSecret,
		TTL:    cfg.SessionTTL,
		Secure: cfg.IsProd,
	})
	// Set trusted proxies for Gin
	if err := router.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	scheduler, err := jobs.New(a.Service, a.Sessions, cfg.RetentionDays)
	if err != nil {
		logrus.Fatalf("failed to schedule jobs: %v", err)
	}
	scheduler.Start()

	srv := &http.Server{
		Addr:         ":" + cfg.AppPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logrus.WithFields(logrus.Fields{"addr": srv.Addr, "driver": cfg.DBDriver}).Info("Server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	logrus.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithFields(logrus.Fields{"error": err.Error()}).Error("Graceful shutdown failed")
	}
	scheduler.Stop(ctx)
	logrus.Info("Server stopped")
}
