package models

import (
	"time"
)

// Category is the model for the 'categories' table.
// There is no category_id on products pointing here as a single column;
// membership is carried by the product_categories junction instead, so a
// product can live in several categories at once.
type Category struct {
	ID          int64  `json:"id" db:"id"`
	Title       string `json:"title" db:"title"`
	Description string `json:"description" db:"description"`

	// Tags and Keynotes are JSON columns. Tags is an unordered label set,
	// Keynotes keeps its submission order for display.
	Tags     []string `json:"tags" db:"-"`
	Keynotes []string `json:"keynotes" db:"-"`

	ThumbnailURL *string `json:"thumbnailUrl" db:"thumbnail_url"`
	ThumbnailKey *string `json:"-" db:"thumbnail_key"`
	BannerURL    *string `json:"bannerUrl" db:"banner_url"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
