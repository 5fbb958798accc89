package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/feedme/feedme-golang/internal/models"
	"github.com/feedme/feedme-golang/internal/notify"
)

// GetMyNotifications is the handler for GET /v1/notifications: the
// current user's live rows, newest first.
func (h *Handlers) GetMyNotifications(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found"})
		return
	}

	notifications, err := h.Notifications.Active(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

// DismissNotification is the handler for PATCH /v1/notifications/:id/dismiss.
// The write is user-scoped, and subscribers get the UPDATE on the stream
// so open sessions drop the row too.
func (h *Handlers) DismissNotification(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found"})
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.Notifications.Dismiss(c.Request.Context(), id, userID); err != nil {
		h.fail(c, err)
		return
	}

	h.Hub.Publish(notify.Event{
		Type:         notify.EventUpdate,
		Notification: models.Notification{ID: id, UserID: userID, Dismissed: true},
	})

	c.JSON(http.StatusOK, gin.H{"message": "Notification dismissed"})
}

type CreateNotificationInput struct {
	UserID    int64     `json:"userId" binding:"required"`
	Type      string    `json:"type" binding:"required,oneof=info warning error"`
	Body      string    `json:"body" binding:"required"`
	Link      *string   `json:"link"`
	ExpiresAt time.Time `json:"expiresAt" binding:"required"`
}

// CreateNotification is the handler for POST /v1/admin/notifications,
// the trusted-writer entry point. The insert is published on the change
// stream for the target user.
func (h *Handlers) CreateNotification(c *gin.Context) {
	var input CreateNotificationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	n := models.Notification{
		UserID:    input.UserID,
		Type:      input.Type,
		Body:      input.Body,
		Link:      input.Link,
		ExpiresAt: input.ExpiresAt.UTC(),
	}
	if err := h.Notifications.Create(c.Request.Context(), &n); err != nil {
		h.fail(c, err)
		return
	}

	h.Hub.Publish(notify.Event{Type: notify.EventInsert, Notification: n})

	c.JSON(http.StatusCreated, gin.H{"notification": n})
}

// StreamNotifications is the handler for GET /v1/notifications/stream.
// It sends the current feed as an "init" event, then forwards change
// events over SSE until the client disconnects.
func (h *Handlers) StreamNotifications(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found"})
		return
	}

	// Subscribe before loading so nothing published during the load is
	// lost; whatever buffered while loading is folded in before the
	// initial snapshot goes out.
	events, cancel := h.Hub.Subscribe(userID)
	defer cancel()

	feed := notify.NewFeed(h.Notifications, userID)
	if err := feed.Load(c.Request.Context()); err != nil {
		h.fail(c, err)
		return
	}
drain:
	for {
		select {
		case ev := <-events:
			feed.Apply(ev)
		default:
			break drain
		}
	}

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.SSEvent("init", feed.Items())
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case ev, open := <-events:
			if !open {
				return false
			}
			feed.Apply(ev)
			c.SSEvent("change", ev)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
