package handlers

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/feedme/feedme-golang/internal/email"
	"github.com/feedme/feedme-golang/internal/models"
)

//
// --- Newsletter Recipients ---
//

// ListRecipients is the handler for GET /v1/admin/newsletter/recipients.
func (h *Handlers) ListRecipients(c *gin.Context) {
	var recipients []models.Recipient
	err := h.DB.SelectContext(c.Request.Context(), &recipients, `
		SELECT id, email, name, subscribed, created_at
		FROM newsletter_recipients ORDER BY created_at DESC, id DESC`)
	if err != nil {
		h.fail(c, err)
		return
	}
	if recipients == nil {
		recipients = []models.Recipient{}
	}
	c.JSON(http.StatusOK, recipients)
}

type RecipientInput struct {
	Email      string  `json:"email" binding:"required,email"`
	Name       *string `json:"name"`
	Subscribed *bool   `json:"subscribed"`
}

// CreateRecipient is the handler for POST /v1/admin/newsletter/recipients.
func (h *Handlers) CreateRecipient(c *gin.Context) {
	var input RecipientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	subscribed := true
	if input.Subscribed != nil {
		subscribed = *input.Subscribed
	}

	res, err := h.DB.ExecContext(c.Request.Context(), `
		INSERT INTO newsletter_recipients (email, name, subscribed, created_at)
		VALUES (?, ?, ?, ?)`,
		input.Email, input.Name, subscribed, time.Now())
	if err != nil {
		h.fail(c, err)
		return
	}
	id, _ := res.LastInsertId()

	c.JSON(http.StatusCreated, gin.H{"id": id, "message": "Recipient added"})
}

// UpdateRecipient is the handler for PUT /v1/admin/newsletter/recipients/:id.
// Only the subscribed flag and name are editable.
func (h *Handlers) UpdateRecipient(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var input struct {
		Name       *string `json:"name"`
		Subscribed *bool   `json:"subscribed"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	query := "UPDATE newsletter_recipients SET id = id"
	args := []interface{}{}
	if input.Name != nil {
		query += ", name = ?"
		args = append(args, *input.Name)
	}
	if input.Subscribed != nil {
		query += ", subscribed = ?"
		args = append(args, *input.Subscribed)
	}
	query += " WHERE id = ?"
	args = append(args, id)

	res, err := h.DB.ExecContext(c.Request.Context(), query, args...)
	if err != nil {
		h.fail(c, err)
		return
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		var exists int
		if err := h.DB.QueryRowContext(c.Request.Context(),
			"SELECT 1 FROM newsletter_recipients WHERE id = ?", id).Scan(&exists); err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Recipient not found"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Recipient updated"})
}

// DeleteRecipient is the handler for DELETE /v1/admin/newsletter/recipients/:id.
func (h *Handlers) DeleteRecipient(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	res, err := h.DB.ExecContext(c.Request.Context(),
		"DELETE FROM newsletter_recipients WHERE id = ?", id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipient not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Recipient deleted"})
}

//
// --- Campaigns ---
//

// ListCampaigns is the handler for GET /v1/admin/newsletter/campaigns.
func (h *Handlers) ListCampaigns(c *gin.Context) {
	var campaigns []models.Campaign
	err := h.DB.SelectContext(c.Request.Context(), &campaigns, `
		SELECT id, subject, body, status, sent_at, created_at
		FROM campaigns ORDER BY created_at DESC, id DESC`)
	if err != nil {
		h.fail(c, err)
		return
	}
	if campaigns == nil {
		campaigns = []models.Campaign{}
	}
	c.JSON(http.StatusOK, campaigns)
}

type CampaignInput struct {
	Subject string `json:"subject" binding:"required"`
	Body    string `json:"body" binding:"required"`
}

// CreateCampaign is the handler for POST /v1/admin/newsletter/campaigns.
// Campaigns always start as drafts.
func (h *Handlers) CreateCampaign(c *gin.Context) {
	var input CampaignInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.DB.ExecContext(c.Request.Context(), `
		INSERT INTO campaigns (subject, body, status, created_at)
		VALUES (?, ?, ?, ?)`,
		input.Subject, input.Body, models.CampaignDraft, time.Now())
	if err != nil {
		h.fail(c, err)
		return
	}
	id, _ := res.LastInsertId()

	c.JSON(http.StatusCreated, gin.H{"id": id, "message": "Campaign created"})
}

// SendCampaign is the handler for POST /v1/admin/newsletter/campaigns/:id/send.
// Delivers the campaign to every subscribed recipient and marks it sent.
// A campaign can only be sent once.
func (h *Handlers) SendCampaign(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var campaign models.Campaign
	err := h.DB.GetContext(c.Request.Context(), &campaign, `
		SELECT id, subject, body, status, sent_at, created_at
		FROM campaigns WHERE id = ?`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Campaign not found"})
			return
		}
		h.fail(c, err)
		return
	}
	if campaign.Status == models.CampaignSent {
		c.JSON(http.StatusConflict, gin.H{"error": "Campaign has already been sent"})
		return
	}

	var recipients []models.Recipient
	err = h.DB.SelectContext(c.Request.Context(), &recipients, `
		SELECT id, email, name, subscribed, created_at
		FROM newsletter_recipients WHERE subscribed = ?`, true)
	if err != nil {
		h.fail(c, err)
		return
	}

	sent := 0
	for _, r := range recipients {
		if err := email.Send(r.Email, campaign.Subject, campaign.Body); err != nil {
			// Delivery failures are logged by the email layer; keep going so
			// one bad address does not block the rest of the list.
			continue
		}
		sent++
	}

	now := time.Now()
	_, err = h.DB.ExecContext(c.Request.Context(), `
		UPDATE campaigns SET status = ?, sent_at = ? WHERE id = ?`,
		models.CampaignSent, now, id)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Campaign sent", "recipients": sent})
}

type TestSendInput struct {
	Email string `json:"email" binding:"required,email"`
}

// SendTestCampaign is the handler for POST /v1/admin/newsletter/campaigns/:id/test.
// Sends a single preview without changing the campaign status.
func (h *Handlers) SendTestCampaign(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var input TestSendInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var campaign models.Campaign
	err := h.DB.GetContext(c.Request.Context(), &campaign, `
		SELECT id, subject, body, status, sent_at, created_at
		FROM campaigns WHERE id = ?`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Campaign not found"})
			return
		}
		h.fail(c, err)
		return
	}

	if err := email.SendTestNewsletter(input.Email, campaign.Subject, campaign.Body); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Test email sent"})
}

//
// --- Public Contact Form ---
//

type ContactInput struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Message string `json:"message" binding:"required"`
}

// Contact is the handler for POST /v1/email/contact. Forwards a storefront
// contact form submission to the shop inbox.
func (h *Handlers) Contact(c *gin.Context) {
	var input ContactInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	body := "From: " + input.Name + " <" + input.Email + ">\n\n" + input.Message
	if err := email.Send("hello@feedme.local", "Contact form: "+input.Name, body); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Message sent"})
}

//
// --- Admin Dashboard Stats ---
//

type AdminStats struct {
	Products        int `json:"products"`
	PublishedCount  int `json:"publishedCount"`
	Bundles         int `json:"bundles"`
	Categories      int `json:"categories"`
	ActivePromos    int `json:"activePromos"`
	Subscribers     int `json:"subscribers"`
	PendingCampaign int `json:"pendingCampaigns"`
}

// GetAdminStats returns KPI data for the admin dashboard.
// GET /v1/admin/stats
func (h *Handlers) GetAdminStats(c *gin.Context) {
	stats := AdminStats{}

	err := h.DB.QueryRowContext(c.Request.Context(),
		"SELECT COUNT(*) FROM products").Scan(&stats.Products)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count products"})
		return
	}

	err = h.DB.QueryRowContext(c.Request.Context(),
		"SELECT COUNT(*) FROM products WHERE is_published = ?", true).Scan(&stats.PublishedCount)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count published products"})
		return
	}

	err = h.DB.QueryRowContext(c.Request.Context(),
		"SELECT COUNT(*) FROM bundles").Scan(&stats.Bundles)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count bundles"})
		return
	}

	err = h.DB.QueryRowContext(c.Request.Context(),
		"SELECT COUNT(*) FROM categories").Scan(&stats.Categories)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count categories"})
		return
	}

	err = h.DB.QueryRowContext(c.Request.Context(),
		"SELECT COUNT(*) FROM promotions WHERE is_active = ?", true).Scan(&stats.ActivePromos)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count promotions"})
		return
	}

	err = h.DB.QueryRowContext(c.Request.Context(),
		"SELECT COUNT(*) FROM newsletter_recipients WHERE subscribed = ?", true).Scan(&stats.Subscribers)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count subscribers"})
		return
	}

	err = h.DB.QueryRowContext(c.Request.Context(),
		"SELECT COUNT(*) FROM campaigns WHERE status = ?", models.CampaignDraft).Scan(&stats.PendingCampaign)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count campaigns"})
		return
	}

	c.JSON(http.StatusOK, stats)
}
