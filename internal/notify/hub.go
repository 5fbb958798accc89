package notify

import (
	"sync"

	"github.com/feedme/feedme-golang/internal/models"
)

// Event types on the notification change stream.
const (
	EventInsert = "INSERT"
	EventUpdate = "UPDATE"
)

// Event is one change-stream entry for a single notification row.
type Event struct {
	Type         string              `json:"type"`
	Notification models.Notification `json:"notification"`
}

// Hub fans change events out to per-user subscribers. Sends never block:
// a subscriber that cannot keep up loses events and is expected to
// reconcile from the store on its next load.
type Hub struct {
	mu   sync.Mutex
	subs map[int64]map[chan Event]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int64]map[chan Event]struct{})}
}

// Subscribe registers a listener for one user's events. The returned
// cancel func must be called when the listener goes away.
func (h *Hub) Subscribe(userID int64) (<-chan Event, func()) {
	ch := make(chan Event, 16)

	h.mu.Lock()
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[chan Event]struct{})
	}
	h.subs[userID][ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if set, ok := h.subs[userID]; ok {
			delete(set, ch)
			if len(set) == 0 {
				delete(h.subs, userID)
			}
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Publish routes one event to every subscriber of the affected user.
func (h *Hub) Publish(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subs[ev.Notification.UserID] {
		select {
		case ch <- ev:
		default:
			// slow consumer, drop
		}
	}
}
