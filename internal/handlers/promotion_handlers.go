package handlers

import (
	"database/sql"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/feedme/feedme-golang/internal/composer"
	"github.com/feedme/feedme-golang/internal/models"
)

// ListPromotions is the handler for GET /v1/promotions. The storefront
// filters on is_active and is_featured_on_homepage to pick cards vs
// banners.
func (h *Handlers) ListPromotions(c *gin.Context) {
	q := parseListQuery(c, "is_active", "is_featured_on_homepage", "tag")

	promotions, count, err := h.Catalog.ListPromotions(c.Request.Context(), q)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": promotions, "count": count})
}

// GetPromotionByTag is the handler for GET /v1/promotions/tag/:tag. The
// tag is the routing key for landing pages. Promo cards also carry their
// linked products.
func (h *Handlers) GetPromotionByTag(c *gin.Context) {
	tag := c.Param("tag")

	var promo models.Promotion
	err := h.DB.GetContext(c.Request.Context(), &promo, `
		SELECT id, title, tag, discount_text, background_color, image_url, is_active,
		       old_price, new_price, extra_discount_text, countdown_end_time,
		       is_featured_on_homepage, created_at, updated_at
		FROM promotions WHERE tag = ?`, tag)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Promotion not found"})
			return
		}
		h.fail(c, err)
		return
	}

	if promo.IsFeaturedOnHomepage {
		promo.Products, err = h.Promotions.Links.ListLinked(c.Request.Context(), promo.ID)
		if err != nil {
			h.fail(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"promotion": promo})
}

// parsePromotionForm reads the multipart promotion form. Empty price
// strings normalize to absent, never to zero.
func (h *Handlers) parsePromotionForm(c *gin.Context) (composer.PromotionInput, *multipart.FileHeader, error) {
	var in composer.PromotionInput

	in.Title = c.PostForm("title")
	in.Tag = c.PostForm("tag")
	in.DiscountText = c.PostForm("discountText")
	in.BackgroundColor = c.PostForm("backgroundColor")
	in.IsActive = c.DefaultPostForm("isActive", "true") == "true"

	var err error
	if in.OldPrice, err = parseOptionalPrice(c.PostForm("oldPrice")); err != nil {
		return in, nil, err
	}
	if in.NewPrice, err = parseOptionalPrice(c.PostForm("newPrice")); err != nil {
		return in, nil, err
	}

	if extra := strings.TrimSpace(c.PostForm("extraDiscountText")); extra != "" {
		in.ExtraDiscountText = &extra
	}

	if raw := strings.TrimSpace(c.PostForm("countdownEndTime")); raw != "" {
		end, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return in, nil, err
		}
		in.CountdownEndTime = &end
	}

	file, err := c.FormFile("image")
	if err != nil && err != http.ErrMissingFile {
		return in, nil, err
	}
	return in, file, nil
}

func parseOptionalPrice(raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// promotionVariant reads the variant form field: "card" saves a homepage
// promo card, anything else a tag banner.
func promotionVariant(c *gin.Context) bool {
	return c.DefaultPostForm("variant", "banner") == "card"
}

// CreatePromotion is the handler for POST /v1/admin/promotions.
func (h *Handlers) CreatePromotion(c *gin.Context) {
	in, file, err := h.parsePromotionForm(c)
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

	promo, err := h.Promotions.Save(c.Request.Context(), in, nil, promotionVariant(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"promotion": promo})
}

// UpdatePromotion is the handler for PUT /v1/admin/promotions/:id.
func (h *Handlers) UpdatePromotion(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	in, file, err := h.parsePromotionForm(c)
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

	promo, err := h.Promotions.Save(c.Request.Context(), in, &id, promotionVariant(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"promotion": promo})
}

// DeletePromotion is the handler for DELETE /v1/admin/promotions/:id.
func (h *Handlers) DeletePromotion(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.Promotions.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Promotion deleted"})
}

// SearchPromotionProducts is the handler for
// GET /v1/admin/products/search, the promo-card product picker.
func (h *Handlers) SearchPromotionProducts(c *gin.Context) {
	products, err := h.Promotions.SearchProducts(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// AddPromotionProduct is the handler for POST /v1/admin/promotions/:id/products.
func (h *Handlers) AddPromotionProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var input linkProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.Promotions.Links.AddLink(c.Request.Context(), id, input.ProductID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// RemovePromotionProduct is the handler for
// DELETE /v1/admin/promotions/:id/products/:productId.
func (h *Handlers) RemovePromotionProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	productID, ok := pathID(c, "productId")
	if !ok {
		return
	}

	if err := h.Promotions.Links.RemoveLink(c.Request.Context(), id, productID); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Link removed"})
}

// GetPromotionProducts is the handler for
// GET /v1/admin/promotions/:id/products.
func (h *Handlers) GetPromotionProducts(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	products, err := h.Promotions.Links.ListLinked(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}
