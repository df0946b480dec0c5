package domain

import "time"

// SettingPortalOpen is the key of the global intake switch
const SettingPortalOpen = "portalOpen"

// Setting Model
type Setting struct {
	ID        uint      `gorm:"primaryKey"`                   // Primary key
	Key       string    `gorm:"size:64;uniqueIndex;not null"` // Setting name
	Value     string    `gorm:"not null"`                     // Raw value
	UpdatedAt time.Time `gorm:"autoUpdateTime"`               // Last write
}
