package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/feedme/feedme-golang/internal/drafts"
)

// draftKey scopes the client-supplied key to the authenticated user, so
// two users editing "categoryDraft" never collide.
func draftKey(userID int64, key string) string {
	return fmt.Sprintf("%d:%s", userID, key)
}

// GetDraft is the handler for GET /v1/drafts/:key.
func (h *Handlers) GetDraft(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found"})
		return
	}

	payload, found := h.Drafts.Load(draftKey(userID, c.Param("key")))
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "No draft"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"draft": payload})
}

// SaveDraft is the handler for PUT /v1/drafts/:key. The body is the raw
// serialized form state (fields plus base64 images); it is stored as-is.
func (h *Handlers) SaveDraft(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found"})
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, drafts.MaxDraftSize+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read draft body"})
		return
	}
	if !json.Valid(body) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Draft must be valid JSON"})
		return
	}

	if err := h.Drafts.Save(draftKey(userID, c.Param("key")), body); err != nil {
		if err == drafts.ErrTooLarge {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Draft payload too large"})
			return
		}
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Draft saved"})
}

// ClearDraft is the handler for DELETE /v1/drafts/:key, called after a
// successful submit.
func (h *Handlers) ClearDraft(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found"})
		return
	}

	if err := h.Drafts.Clear(draftKey(userID, c.Param("key"))); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Draft cleared"})
}
