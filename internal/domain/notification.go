package domain

import "time"

// Notification Model
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`                              // Primary key
	UserID    uint      `gorm:"index;not null" json:"userId"`                      // Recipient
	Message   string    `gorm:"not null" json:"message"`                           // Human readable text
	Read      bool      `gorm:"column:is_read;not null;default:false" json:"read"` // Read flag
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"createdAt"`             // Creation time
}
