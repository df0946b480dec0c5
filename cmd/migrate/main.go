package main

import (
	"kyc_arena/internal/config" // Configuration
	"kyc_arena/internal/db"     // Database setup

	"github.com/sirupsen/logrus" // Logging
)

// Main entry point for migration
func main() {
	cfg := config.LoadConfig() // Load configuration

	gdb, err := db.Open(cfg) // Connect using DB_DRIVER and friends
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		logrus.Fatalf("migration failed: %v", err)
	}
	logrus.WithFields(logrus.Fields{"driver": cfg.DBDriver, "tables": len(db.Models)}).Info("Migration completed")
}
