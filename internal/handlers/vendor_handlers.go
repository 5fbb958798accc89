package handlers

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"

	"github.com/feedme/feedme-golang/internal/models"
)

const vendorColumns = `id, name, slug, description, logo_url, website, created_at, updated_at`

// ListVendors is the handler for GET /v1/vendors. It returns the public
// vendor directory in alphabetical order.
func (h *Handlers) ListVendors(c *gin.Context) {
	vendors := []models.Vendor{}
	err := h.DB.SelectContext(c.Request.Context(), &vendors,
		"SELECT "+vendorColumns+" FROM vendors ORDER BY name ASC")
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vendors": vendors})
}

// GetVendor is the handler for GET /v1/vendors/:slug.
func (h *Handlers) GetVendor(c *gin.Context) {
	var vendor models.Vendor
	err := h.DB.GetContext(c.Request.Context(), &vendor,
		"SELECT "+vendorColumns+" FROM vendors WHERE slug = ?", c.Param("slug"))
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Vendor not found"})
			return
		}
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vendor": vendor})
}

type VendorInput struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	LogoURL     *string `json:"logoUrl"`
	Website     *string `json:"website"`
}

// CreateVendor is the handler for POST /v1/admin/vendors.
func (h *Handlers) CreateVendor(c *gin.Context) {
	var input VendorInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := time.Now().UTC()
	res, err := h.DB.ExecContext(c.Request.Context(), `
		INSERT INTO vendors (name, slug, description, logo_url, website, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		input.Name, slug.Make(input.Name), input.Description,
		input.LogoURL, input.Website, now, now,
	)
	if err != nil {
		h.fail(c, err)
		return
	}
	id, _ := res.LastInsertId()

	c.JSON(http.StatusCreated, gin.H{"message": "Vendor created", "vendorId": id})
}

// DeleteVendor is the handler for DELETE /v1/admin/vendors/:id.
func (h *Handlers) DeleteVendor(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	res, err := h.DB.ExecContext(c.Request.Context(), "DELETE FROM vendors WHERE id = ?", id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vendor not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Vendor deleted"})
}
