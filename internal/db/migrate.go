package db

import (
	"kyc_arena/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus"
	"gorm.io/gorm" // GORM ORM library
)

// Models lists every table owned by the application, in dependency order
var Models = []any{
	&domain.User{},
	&domain.UserStats{},
	&domain.Exchange{},
	&domain.Submission{},
	&domain.Notification{},
	&domain.Setting{},
}

// Migrate performs automatic migration for the database schema
func Migrate(db *gorm.DB) error {
	// AutoMigrate will create tables, missing foreign keys, constraints, columns and indexes
	if err := db.AutoMigrate(Models...); err != nil {
		return err
	}
	logrus.Info("Migration completed.") // Log successful migration
	return nil
}
