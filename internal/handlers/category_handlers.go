package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/feedme/feedme-golang/internal/catalog"
)

type CategoryInput struct {
	Title        string   `json:"title" binding:"required"`
	Description  string   `json:"description"`
	Tags         []string `json:"tags"`
	Keynotes     []string `json:"keynotes"`
	ThumbnailURL *string  `json:"thumbnailUrl"`
	ThumbnailKey *string  `json:"thumbnailKey"`
	BannerURL    *string  `json:"bannerUrl"`
}

func (in *CategoryInput) marshalJSONFields() (tagsJSON, keynotesJSON string) {
	if in.Tags == nil {
		in.Tags = []string{}
	}
	if in.Keynotes == nil {
		in.Keynotes = []string{}
	}
	t, _ := json.Marshal(in.Tags)
	k, _ := json.Marshal(in.Keynotes)
	return string(t), string(k)
}

// ListCategories is the handler for GET /v1/categories.
func (h *Handlers) ListCategories(c *gin.Context) {
	q := parseListQuery(c)

	categories, count, err := h.Catalog.ListCategories(c.Request.Context(), q)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": categories, "count": count})
}

// GetCategory is the handler for GET /v1/categories/:id.
func (h *Handlers) GetCategory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	rows, err := h.DB.QueryContext(c.Request.Context(),
		"SELECT "+catalog.CategoryColumns+" FROM categories WHERE id = ?", id)
	if err != nil {
		h.fail(c, err)
		return
	}
	categories, err := catalog.ScanCategories(rows)
	rows.Close()
	if err != nil {
		h.fail(c, err)
		return
	}
	if len(categories) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"category": categories[0]})
}

// CreateCategory is the handler for POST /v1/admin/categories.
func (h *Handlers) CreateCategory(c *gin.Context) {
	var input CategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tagsJSON, keynotesJSON := input.marshalJSONFields()
	now := time.Now().UTC()

	res, err := h.DB.ExecContext(c.Request.Context(), `
		INSERT INTO categories
		(title, description, tags, keynotes, thumbnail_url, thumbnail_key, banner_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		input.Title, input.Description, tagsJSON, keynotesJSON,
		input.ThumbnailURL, input.ThumbnailKey, input.BannerURL, now, now,
	)
	if err != nil {
		h.fail(c, err)
		return
	}
	id, _ := res.LastInsertId()

	c.JSON(http.StatusCreated, gin.H{"message": "Category created", "categoryId": id})
}

// UpdateCategory is the handler for PUT /v1/admin/categories/:id.
func (h *Handlers) UpdateCategory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var input CategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tagsJSON, keynotesJSON := input.marshalJSONFields()

	res, err := h.DB.ExecContext(c.Request.Context(), `
		UPDATE categories
		SET title = ?, description = ?, tags = ?, keynotes = ?,
		    thumbnail_url = ?, thumbnail_key = ?, banner_url = ?, updated_at = ?
		WHERE id = ?`,
		input.Title, input.Description, tagsJSON, keynotesJSON,
		input.ThumbnailURL, input.ThumbnailKey, input.BannerURL, time.Now().UTC(), id,
	)
	if err != nil {
		h.fail(c, err)
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists int
		if err := h.DB.QueryRow("SELECT 1 FROM categories WHERE id = ?", id).Scan(&exists); err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Category updated"})
}

// DeleteCategory is the handler for DELETE /v1/admin/categories/:id. The
// stored thumbnail is removed by its storage key, best-effort.
func (h *Handlers) DeleteCategory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var thumbnailKey *string
	if err := h.DB.Get(&thumbnailKey, "SELECT thumbnail_key FROM categories WHERE id = ?", id); err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
			return
		}
		h.fail(c, err)
		return
	}

	tx, err := h.DB.BeginTxx(c.Request.Context(), nil)
	if err != nil {
		h.fail(c, err)
		return
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM product_categories WHERE category_id = ?", id); err != nil {
		h.fail(c, err)
		return
	}
	if _, err := tx.Exec("DELETE FROM categories WHERE id = ?", id); err != nil {
		h.fail(c, err)
		return
	}
	if err := tx.Commit(); err != nil {
		h.fail(c, err)
		return
	}

	if thumbnailKey != nil {
		_ = h.Images.Remove(*thumbnailKey)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
}
