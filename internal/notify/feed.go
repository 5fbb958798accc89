package notify

import (
	"context"
	"sync"

	"github.com/feedme/feedme-golang/internal/models"
)

// Feed is the in-memory view of one user's notifications, kept current by
// applying change events on top of an initial load. Dismiss is optimistic:
// the row disappears locally first, and a failed backing write is
// reconciled by reloading the whole list rather than a finer-grained
// rollback.
type Feed struct {
	mu     sync.Mutex
	store  Storer
	userID int64
	items  []models.Notification
}

func NewFeed(store Storer, userID int64) *Feed {
	return &Feed{store: store, userID: userID}
}

// Load replaces the feed contents with the store's active rows.
func (f *Feed) Load(ctx context.Context) error {
	items, err := f.store.Active(ctx, f.userID)
	if err != nil {
		return err
	}

	f.mu.Lock()
	f.items = items
	f.mu.Unlock()
	return nil
}

// Items returns a snapshot copy of the current feed.
func (f *Feed) Items() []models.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]models.Notification, len(f.items))
	copy(out, f.items)
	return out
}

// Apply folds one change event into the feed:
//   - INSERT of a live row prepends it; a row already present (the load
//     raced the event) is replaced in place instead
//   - UPDATE that dismissed the row removes it
//   - UPDATE that kept it live replaces the row's fields in place
func (f *Feed) Apply(ev Event) {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := ev.Notification
	switch ev.Type {
	case EventInsert:
		if n.Dismissed {
			return
		}
		for i, existing := range f.items {
			if existing.ID == n.ID {
				f.items[i] = n
				return
			}
		}
		f.items = append([]models.Notification{n}, f.items...)

	case EventUpdate:
		for i, existing := range f.items {
			if existing.ID != n.ID {
				continue
			}
			if n.Dismissed {
				f.items = append(f.items[:i], f.items[i+1:]...)
			} else {
				f.items[i] = n
			}
			return
		}
	}
}

// Dismiss removes the notification locally, then issues the backing write.
// If the write fails the full list is reloaded from the store so the feed
// converges back to the truth, and the write error is returned.
func (f *Feed) Dismiss(ctx context.Context, id int64) error {
	f.mu.Lock()
	for i, n := range f.items {
		if n.ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			break
		}
	}
	f.mu.Unlock()

	if err := f.store.Dismiss(ctx, id, f.userID); err != nil {
		if reloadErr := f.Load(ctx); reloadErr != nil {
			return reloadErr
		}
		return err
	}
	return nil
}
