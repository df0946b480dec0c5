package domain

import "time"

// Status is the review verdict of a submission
type Status string

// Submission statuses
const (
	StatusPending       Status = "pending"
	StatusGood          Status = "good"
	StatusBad           Status = "bad"
	StatusWrongPassword Status = "wrong_password"
)

// ParseStatus validates a raw status string
func ParseStatus(s string) (Status, bool) {
	switch st := Status(s); st {
	case StatusPending, StatusGood, StatusBad, StatusWrongPassword:
		return st, true
	}
	return "", false
}

// IsTerminal reports whether the status is a verdict rather than pending
func (s Status) IsTerminal() bool {
	return s == StatusGood || s == StatusBad || s == StatusWrongPassword
}

// TerminalStatuses lists every verdict status
var TerminalStatuses = []Status{StatusGood, StatusBad, StatusWrongPassword}

// Submission Model
type Submission struct {
	ID           uint      `gorm:"primaryKey"`                             // Primary key
	UserID       uint      `gorm:"index;not null"`                         // Owner
	Email        string    `gorm:"size:255;not null"`                      // Account login
	PasswordHash string    `gorm:"not null"`                               // Bcrypt hash of the submitted secret
	Exchange     string    `gorm:"size:128;index;not null"`                // Exchange name, not a foreign key
	Status       Status    `gorm:"size:32;index;not null;default:pending"` // Review verdict
	Notes        *string   // Optional reviewer notes
	CreatedAt    time.Time `gorm:"autoCreateTime;index"` // Submission time
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`       // Last edit or verdict
}

// SubmissionWithUser is a submission joined with its owner's username
type SubmissionWithUser struct {
	Submission
	Username string
}
