package models

import (
	"time"
)

// Published status values for bundles.
const (
	BundlePublished = "published"
	BundleArchived  = "archived"
)

// Bundle is the model for the 'bundles' table.
type Bundle struct {
	ID              int64     `json:"id" db:"id"`
	Name            string    `json:"name" db:"name"`
	Price           float64   `json:"price" db:"price"`
	Description     string    `json:"description" db:"description"`
	ThumbnailURL    *string   `json:"thumbnailUrl" db:"thumbnail_url"`
	StockStatus     string    `json:"stockStatus" db:"stock_status"`
	PublishedStatus string    `json:"publishedStatus" db:"published_status"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`

	// Populated from the bundle_products junction when requested
	Products []Product `json:"products,omitempty" db:"-"`
}
