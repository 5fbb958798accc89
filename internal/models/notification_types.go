package models

import (
	"time"
)

// Notification types.
const (
	NotificationInfo    = "info"
	NotificationWarning = "warning"
	NotificationError   = "error"
)

// Notification is the model for the 'notifications' table.
// Rows are created by a trusted writer, mutated only by the dismiss
// operation, and never deleted by clients; a background sweep removes
// rows past ExpiresAt.
type Notification struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"userId" db:"user_id"`
	Type      string    `json:"type" db:"type"`
	Body      string    `json:"body" db:"body"`
	Link      *string   `json:"link,omitempty" db:"link"`
	Dismissed bool      `json:"dismissed" db:"dismissed"`
	ExpiresAt time.Time `json:"expiresAt" db:"expires_at"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
