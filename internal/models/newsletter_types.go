package models

import (
	"time"
)

// Recipient is the model for the 'newsletter_recipients' table.
type Recipient struct {
	ID         int64     `json:"id" db:"id"`
	Email      string    `json:"email" db:"email"`
	Name       *string   `json:"name,omitempty" db:"name"`
	Subscribed bool      `json:"subscribed" db:"subscribed"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}

// Campaign statuses.
const (
	CampaignDraft = "draft"
	CampaignSent  = "sent"
)

// Campaign is the model for the 'campaigns' table. Actual delivery is
// handled outside this service; SentAt records when a send was triggered.
type Campaign struct {
	ID        int64      `json:"id" db:"id"`
	Subject   string     `json:"subject" db:"subject"`
	Body      string     `json:"body" db:"body"`
	Status    string     `json:"status" db:"status"`
	SentAt    *time.Time `json:"sentAt,omitempty" db:"sent_at"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
}
