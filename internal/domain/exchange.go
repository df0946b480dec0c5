package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Exchange Model
type Exchange struct {
	ID        uint            `gorm:"primaryKey"`                            // Primary key
	Name      string          `gorm:"size:128;uniqueIndex;not null"`         // Unique platform name
	PriceUsdt decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"` // Paid per good submission
	IsActive  bool            `gorm:"not null"`                              // Inactive exchanges refuse new submissions
	CreatedAt time.Time       `gorm:"autoCreateTime;index"`                  // Creation time
}
