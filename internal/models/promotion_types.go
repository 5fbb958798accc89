package models

import (
	"time"
)

// Promotion is the model for the 'promotions' table.
// One entity, two faces: IsFeaturedOnHomepage=true renders as a promo card
// on the homepage (pricing, countdown, linked products); false renders as a
// tag banner on the landing page routed by Tag.
type Promotion struct {
	ID              int64  `json:"id" db:"id"`
	Title           string `json:"title" db:"title"`
	Tag             string `json:"tag" db:"tag"` // unique URL-safe routing key
	DiscountText    string `json:"discountText" db:"discount_text"`
	BackgroundColor string `json:"backgroundColor" db:"background_color"`
	ImageURL        string `json:"imageUrl" db:"image_url"`
	IsActive        bool   `json:"isActive" db:"is_active"`

	// Strike-through display pair; both absent when the card shows no price
	OldPrice *float64 `json:"oldPrice" db:"old_price"`
	NewPrice *float64 `json:"newPrice" db:"new_price"`

	ExtraDiscountText    *string    `json:"extraDiscountText,omitempty" db:"extra_discount_text"`
	CountdownEndTime     *time.Time `json:"countdownEndTime" db:"countdown_end_time"`
	IsFeaturedOnHomepage bool       `json:"isFeaturedOnHomepage" db:"is_featured_on_homepage"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	// Populated from the promotion_products junction when requested
	Products []Product `json:"products,omitempty" db:"-"`
}
