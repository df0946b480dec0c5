package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// UserStats Model
//
// Total* counters describe the submissions a user currently has credit for.
// Lifetime* counters only ever grow.
type UserStats struct {
	ID                    uint            `gorm:"primaryKey"`
	UserID                uint            `gorm:"uniqueIndex;not null"`
	TotalSubmissions      int             `gorm:"not null;default:0"`
	TotalGood             int             `gorm:"not null;default:0"`
	TotalBad              int             `gorm:"not null;default:0"`
	TotalWrongPassword    int             `gorm:"not null;default:0"`
	TotalEarnings         decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	LifetimeSubmissions   int             `gorm:"not null;default:0"`
	LifetimeGood          int             `gorm:"not null;default:0"`
	LifetimeBad           int             `gorm:"not null;default:0"`
	LifetimeWrongPassword int             `gorm:"not null;default:0"`
	LifetimeEarnings      decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	UpdatedAt             time.Time       `gorm:"autoUpdateTime"`
}
