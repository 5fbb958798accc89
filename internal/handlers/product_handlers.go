package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"

	"github.com/feedme/feedme-golang/internal/catalog"
	"github.com/feedme/feedme-golang/internal/models"
)

// --- Inputs ---

type ProductOptionInput struct {
	Name        string   `json:"name" binding:"required"`
	Price       float64  `json:"price" binding:"gt=0"`
	ListPrice   *float64 `json:"listPrice" binding:"omitempty,gt=0"`
	StockStatus string   `json:"stockStatus" binding:"required,oneof=in_stock out_of_stock"`
	Image       *string  `json:"image"`
}

type CreateProductInput struct {
	Name        string               `json:"name" binding:"required"`
	Description string               `json:"description"`
	Price       *float64             `json:"price" binding:"omitempty,gt=0"`
	ListPrice   *float64             `json:"listPrice" binding:"omitempty,gt=0"`
	StockStatus *string              `json:"stockStatus" binding:"omitempty,oneof=in_stock out_of_stock"`
	IsPublished bool                 `json:"isPublished"`
	CategoryIDs []int64              `json:"category_ids"`
	Images      []string             `json:"images"`
	Options     []ProductOptionInput `json:"options"`
}

// ListProducts is the handler for GET /v1/products.
func (h *Handlers) ListProducts(c *gin.Context) {
	q := parseListQuery(c, "stock_status", "is_published", "slug")

	products, count, err := h.Catalog.ListProducts(c.Request.Context(), q)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": products, "count": count})
}

// GetProduct is the handler for GET /v1/products/:id. It returns the full
// record including category membership and variant options.
func (h *Handlers) GetProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	rows, err := h.DB.QueryContext(c.Request.Context(),
		"SELECT "+catalog.ProductColumns+" FROM products WHERE id = ?", id)
	if err != nil {
		h.fail(c, err)
		return
	}
	products, err := catalog.ScanProducts(rows)
	rows.Close()
	if err != nil {
		h.fail(c, err)
		return
	}
	if len(products) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	product := products[0]

	if err := h.attachProductRelations(c, &product); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}

func (h *Handlers) attachProductRelations(c *gin.Context, p *models.Product) error {
	p.CategoryIDs = []int64{}
	catRows, err := h.DB.QueryContext(c.Request.Context(),
		"SELECT category_id FROM product_categories WHERE product_id = ?", p.ID)
	if err != nil {
		return err
	}
	defer catRows.Close()
	for catRows.Next() {
		var cid int64
		if err := catRows.Scan(&cid); err != nil {
			return err
		}
		p.CategoryIDs = append(p.CategoryIDs, cid)
	}
	if err := catRows.Err(); err != nil {
		return err
	}

	p.Options = []models.ProductOption{}
	optRows, err := h.DB.QueryContext(c.Request.Context(), `
		SELECT id, product_id, name, price, list_price, stock_status, image, position
		FROM product_options
		WHERE product_id = ?
		ORDER BY position ASC`, p.ID)
	if err != nil {
		return err
	}
	defer optRows.Close()
	for optRows.Next() {
		var o models.ProductOption
		if err := optRows.Scan(&o.ID, &o.ProductID, &o.Name, &o.Price,
			&o.ListPrice, &o.StockStatus, &o.Image, &o.Position); err != nil {
			return err
		}
		p.Options = append(p.Options, o)
	}
	return optRows.Err()
}

// CreateProduct is the handler for POST /v1/admin/products.
func (h *Handlers) CreateProduct(c *gin.Context) {
	var input CreateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Variant invariant: options present means product-level price and
	// stock are carried on the options, so both columns go NULL. Without
	// options both are mandatory.
	if len(input.Options) > 0 {
		input.Price = nil
		input.StockStatus = nil
	} else {
		if input.Price == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Price is required for products without options"})
			return
		}
		if input.StockStatus == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Stock status is required for products without options"})
			return
		}
	}

	if input.Images == nil {
		input.Images = []string{}
	}
	imagesJSON, _ := json.Marshal(input.Images)

	tx, err := h.DB.BeginTxx(c.Request.Context(), nil)
	if err != nil {
		h.fail(c, err)
		return
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	res, err := tx.Exec(`
		INSERT INTO products
		(name, slug, description, price, list_price, stock_status, is_published, images, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		input.Name, slug.Make(input.Name), input.Description,
		input.Price, input.ListPrice, input.StockStatus,
		input.IsPublished, string(imagesJSON), now, now,
	)
	if err != nil {
		h.fail(c, err)
		return
	}
	productID, err := res.LastInsertId()
	if err != nil {
		h.fail(c, err)
		return
	}

	for _, cid := range input.CategoryIDs {
		if _, err := tx.Exec(`INSERT INTO product_categories (product_id, category_id) VALUES (?, ?)`,
			productID, cid); err != nil {
			h.fail(c, err)
			return
		}
	}

	for i, opt := range input.Options {
		if _, err := tx.Exec(`
			INSERT INTO product_options (product_id, name, price, list_price, stock_status, image, position)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			productID, opt.Name, opt.Price, opt.ListPrice, opt.StockStatus, opt.Image, i); err != nil {
			h.fail(c, err)
			return
		}
	}

	if err := tx.Commit(); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Product saved", "productId": productID})
}

// --- Product Update ---

type UpdateProductInput struct {
	Name        *string               `json:"name"`
	Description *string               `json:"description"`
	Price       *float64              `json:"price" binding:"omitempty,gt=0"`
	ListPrice   *float64              `json:"listPrice" binding:"omitempty,gt=0"`
	StockStatus *string               `json:"stockStatus" binding:"omitempty,oneof=in_stock out_of_stock"`
	IsPublished *bool                 `json:"isPublished"`
	CategoryIDs *[]int64              `json:"category_ids"`
	Images      *[]string             `json:"images"`
	Options     *[]ProductOptionInput `json:"options"`
}

// UpdateProduct is the handler for PUT /v1/admin/products/:id. Only the
// fields present in the body change; sending options replaces the whole
// option set and nulls the product-level price/stock columns.
func (h *Handlers) UpdateProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var exists int
	if err := h.DB.QueryRow("SELECT 1 FROM products WHERE id = ?", id).Scan(&exists); err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		h.fail(c, err)
		return
	}

	var input UpdateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tx, err := h.DB.BeginTxx(c.Request.Context(), nil)
	if err != nil {
		h.fail(c, err)
		return
	}
	defer tx.Rollback()

	querySet := "updated_at = ?"
	queryArgs := []interface{}{time.Now().UTC()}

	if input.Name != nil {
		querySet += ", name = ?, slug = ?"
		queryArgs = append(queryArgs, *input.Name, slug.Make(*input.Name))
	}
	if input.Description != nil {
		querySet += ", description = ?"
		queryArgs = append(queryArgs, *input.Description)
	}
	if input.IsPublished != nil {
		querySet += ", is_published = ?"
		queryArgs = append(queryArgs, *input.IsPublished)
	}
	if input.ListPrice != nil {
		querySet += ", list_price = ?"
		queryArgs = append(queryArgs, *input.ListPrice)
	}

	if input.Options != nil && len(*input.Options) > 0 {
		querySet += ", price = NULL, stock_status = NULL"
	} else {
		if input.Price != nil {
			querySet += ", price = ?"
			queryArgs = append(queryArgs, *input.Price)
		}
		if input.StockStatus != nil {
			querySet += ", stock_status = ?"
			queryArgs = append(queryArgs, *input.StockStatus)
		}
	}

	if input.Images != nil {
		imagesJSON, _ := json.Marshal(*input.Images)
		querySet += ", images = ?"
		queryArgs = append(queryArgs, string(imagesJSON))
	}

	queryArgs = append(queryArgs, id)
	if _, err := tx.Exec("UPDATE products SET "+querySet+" WHERE id = ?", queryArgs...); err != nil {
		h.fail(c, err)
		return
	}

	if input.CategoryIDs != nil {
		if _, err := tx.Exec("DELETE FROM product_categories WHERE product_id = ?", id); err != nil {
			h.fail(c, err)
			return
		}
		for _, cid := range *input.CategoryIDs {
			if _, err := tx.Exec(`INSERT INTO product_categories (product_id, category_id) VALUES (?, ?)`,
				id, cid); err != nil {
				h.fail(c, err)
				return
			}
		}
	}

	if input.Options != nil {
		if _, err := tx.Exec("DELETE FROM product_options WHERE product_id = ?", id); err != nil {
			h.fail(c, err)
			return
		}
		for i, opt := range *input.Options {
			if _, err := tx.Exec(`
				INSERT INTO product_options (product_id, name, price, list_price, stock_status, image, position)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
				id, opt.Name, opt.Price, opt.ListPrice, opt.StockStatus, opt.Image, i); err != nil {
				h.fail(c, err)
				return
			}
		}
	}

	if err := tx.Commit(); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product updated successfully"})
}

// DeleteProduct is the handler for DELETE /v1/admin/products/:id.
func (h *Handlers) DeleteProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	tx, err := h.DB.BeginTxx(c.Request.Context(), nil)
	if err != nil {
		h.fail(c, err)
		return
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM product_categories WHERE product_id = ?", id); err != nil {
		h.fail(c, err)
		return
	}
	if _, err := tx.Exec("DELETE FROM product_options WHERE product_id = ?", id); err != nil {
		h.fail(c, err)
		return
	}

	res, err := tx.Exec("DELETE FROM products WHERE id = ?", id)
	if err != nil {
		h.fail(c, err)
		return
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		h.fail(c, err)
		return
	}
	if rowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	if err := tx.Commit(); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}
