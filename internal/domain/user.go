package domain

import "time"

// Roles a user can hold
const (
	RoleUser  = "user"  // Regular submitter
	RoleAdmin = "admin" // Reviewer with full access
)

// User Model
type User struct {
	ID         uint      `gorm:"primaryKey" json:"id"`                         // Primary key
	Username   string    `gorm:"size:64;uniqueIndex;not null" json:"username"` // Unique, lower-cased username
	Password   string    `gorm:"not null" json:"-"`                            // Bcrypt hash, never serialized
	Role       string    `gorm:"size:16;not null;default:user" json:"role"`    // Role: user or admin
	IsApproved bool      `gorm:"not null;default:false" json:"isApproved"`     // Approved users may submit
	IsEnabled  bool      `gorm:"not null" json:"isEnabled"`                    // Disabled users are banned
	CreatedAt  time.Time `gorm:"autoCreateTime;index" json:"createdAt"`        // Registration time
	Stats      UserStats `gorm:"constraint:OnDelete:CASCADE;" json:"-"`        // One-to-one ledger row
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
