package handlers

import (
	"database/sql"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/feedme/feedme-golang/internal/composer"
	"github.com/feedme/feedme-golang/internal/models"
)

// ListBundles is the handler for GET /v1/bundles.
func (h *Handlers) ListBundles(c *gin.Context) {
	q := parseListQuery(c, "stock_status", "published_status")

	bundles, count, err := h.Catalog.ListBundles(c.Request.Context(), q)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": bundles, "count": count})
}

// GetBundle is the handler for GET /v1/bundles/:id, including the linked
// products resolved through the junction table in one joined query.
func (h *Handlers) GetBundle(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var bundle models.Bundle
	err := h.DB.GetContext(c.Request.Context(), &bundle, `
		SELECT id, name, price, description, thumbnail_url, stock_status, published_status, created_at, updated_at
		FROM bundles WHERE id = ?`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Bundle not found"})
			return
		}
		h.fail(c, err)
		return
	}

	bundle.Products, err = h.Bundles.Links.ListLinked(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"bundle": bundle})
}

// parseBundleForm reads the multipart bundle form shared by create and
// update. productIds arrives either as a JSON array or comma-separated.
func parseBundleForm(c *gin.Context) (composer.BundleInput, *multipart.FileHeader, error) {
	var in composer.BundleInput

	in.Name = c.PostForm("name")
	in.Description = c.PostForm("description")

	if raw := c.PostForm("price"); raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return in, nil, err
		}
		in.Price = price
	}

	ids, err := parseIDList(c.PostForm("productIds"))
	if err != nil {
		return in, nil, err
	}
	in.ProductIDs = ids

	file, err := c.FormFile("image")
	if err != nil && err != http.ErrMissingFile {
		return in, nil, err
	}
	return in, file, nil
}

func parseIDList(raw string) ([]int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []int64{}, nil
	}

	if strings.HasPrefix(raw, "[") {
		var ids []int64
		if err := json.Unmarshal([]byte(raw), &ids); err != nil {
			return nil, err
		}
		return ids, nil
	}

	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// attachUpload opens the optional multipart file as a composer image.
// Callers must close the returned file when non-nil.
func attachUpload(file *multipart.FileHeader) (*composer.ImageUpload, multipart.File, error) {
	if file == nil {
		return nil, nil, nil
	}
	f, err := file.Open()
	if err != nil {
		return nil, nil, err
	}
	return &composer.ImageUpload{Reader: f, Filename: file.Filename}, f, nil
}

// CreateBundle is the handler for POST /v1/admin/bundles.
func (h *Handlers) CreateBundle(c *gin.Context) {
	in, file, err := parseBundleForm(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	image, f, err := attachUpload(file)
	if err != nil {
		h.fail(c, err)
		return
	}
	if f != nil {
		defer f.Close()
	}
	in.Image = image

	bundle, err := h.Bundles.Create(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"bundle": bundle})
}

// UpdateBundle is the handler for PUT /v1/admin/bundles/:id.
func (h *Handlers) UpdateBundle(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	in, file, err := parseBundleForm(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	image, f, err := attachUpload(file)
	if err != nil {
		h.fail(c, err)
		return
	}
	if f != nil {
		defer f.Close()
	}
	in.Image = image

	bundle, err := h.Bundles.Update(c.Request.Context(), id, in)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"bundle": bundle})
}

// DeleteBundle is the handler for DELETE /v1/admin/bundles/:id.
func (h *Handlers) DeleteBundle(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.Bundles.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Bundle deleted"})
}

// --- Bundle product links ---

type linkProductInput struct {
	ProductID int64 `json:"productId" binding:"required"`
}

// AddBundleProduct is the handler for POST /v1/admin/bundles/:id/products.
// A duplicate pair is reported as a soft failure, not an error status.
func (h *Handlers) AddBundleProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var input linkProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.Bundles.Links.AddLink(c.Request.Context(), id, input.ProductID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// RemoveBundleProduct is the handler for
// DELETE /v1/admin/bundles/:id/products/:productId. Removing a link that
// does not exist still succeeds.
func (h *Handlers) RemoveBundleProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	productID, ok := pathID(c, "productId")
	if !ok {
		return
	}

	if err := h.Bundles.Links.RemoveLink(c.Request.Context(), id, productID); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Link removed"})
}

// GetBundleProducts is the handler for GET /v1/admin/bundles/:id/products.
func (h *Handlers) GetBundleProducts(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	products, err := h.Bundles.Links.ListLinked(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}
