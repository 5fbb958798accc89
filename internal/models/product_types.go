package models

import (
	"time"
)

// Stock status values shared by products, options and bundles.
const (
	StockStatusIn  = "in_stock"
	StockStatusOut = "out_of_stock"
)

// Product is the model for the 'products' table.
// Price and StockStatus are pointers: both are NULL whenever the product
// sells through options, in which case the option-level values win.
type Product struct {
	ID          int64  `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Slug        string `json:"slug" db:"slug"`
	Description string `json:"description" db:"description"`

	// --- Pricing & Stock ---
	Price       *float64 `json:"price" db:"price"`
	ListPrice   *float64 `json:"listPrice,omitempty" db:"list_price"`
	StockStatus *string  `json:"stockStatus" db:"stock_status"`

	IsPublished bool `json:"isPublished" db:"is_published"`

	// --- Media ---
	Images []string `json:"images" db:"-"` // stored as a JSON column

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	// Joins (not columns, populated manually)
	CategoryIDs []int64         `json:"category_ids" db:"-"`
	Options     []ProductOption `json:"options,omitempty" db:"-"`
}

// HasOptions reports whether the product sells through variant options.
func (p *Product) HasOptions() bool {
	return len(p.Options) > 0
}

// ProductOption is the model for the 'product_options' table.
// Options keep the order they were submitted in via the position column.
type ProductOption struct {
	ID          int64    `json:"id" db:"id"`
	ProductID   int64    `json:"productId" db:"product_id"`
	Name        string   `json:"name" db:"name"`
	Price       float64  `json:"price" db:"price"`
	ListPrice   *float64 `json:"listPrice,omitempty" db:"list_price"`
	StockStatus string   `json:"stockStatus" db:"stock_status"`
	Image       *string  `json:"image,omitempty" db:"image"`
	Position    int      `json:"-" db:"position"`
}
