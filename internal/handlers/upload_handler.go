package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// UploadFile is the handler for POST /v1/upload. It stores the file under
// a collision-resistant key and returns the public URL plus the key the
// caller needs for later cleanup.
func (h *Handlers) UploadFile(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read file"})
		return
	}
	defer f.Close()

	url, key, err := h.Images.Upload(f, file.Filename)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url, "key": key})
}
