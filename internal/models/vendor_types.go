package models

import (
	"time"
)

// Vendor is the model for the 'vendors' table, backing the public vendor
// directory pages.
type Vendor struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Slug        string    `json:"slug" db:"slug"`
	Description string    `json:"description" db:"description"`
	LogoURL     *string   `json:"logoUrl,omitempty" db:"logo_url"`
	Website     *string   `json:"website,omitempty" db:"website"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}
