package notify_test

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"github.com/feedme/feedme-golang/internal/models"
	"github.com/feedme/feedme-golang/internal/notify"
)

func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	schema := `
	CREATE TABLE notifications(
	  id INTEGER PRIMARY KEY AUTOINCREMENT,
	  user_id INTEGER NOT NULL,
	  type TEXT NOT NULL,
	  body TEXT NOT NULL,
	  link TEXT,
	  dismissed INTEGER NOT NULL DEFAULT 0,
	  expires_at TIMESTAMP NOT NULL,
	  created_at TIMESTAMP NOT NULL
	);
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatal(err)
	}
	return db
}

func mustCreate(t *testing.T, store *notify.Store, userID int64, body string, expiresAt time.Time) models.Notification {
	t.Helper()
	n := models.Notification{
		UserID:    userID,
		Type:      models.NotificationInfo,
		Body:      body,
		ExpiresAt: expiresAt,
	}
	if err := store.Create(context.Background(), &n); err != nil {
		t.Fatal(err)
	}
	return n
}

func TestStoreActive_FiltersDismissedAndExpired(t *testing.T) {
	db := memdb(t)
	store := notify.NewStore(db)
	ctx := context.Background()

	live := mustCreate(t, store, 1, "live", time.Now().UTC().Add(time.Hour))
	dismissed := mustCreate(t, store, 1, "dismissed", time.Now().UTC().Add(time.Hour))
	mustCreate(t, store, 1, "expired", time.Now().UTC().Add(-time.Minute))
	mustCreate(t, store, 2, "other user", time.Now().UTC().Add(time.Hour))

	if err := store.Dismiss(ctx, dismissed.ID, 1); err != nil {
		t.Fatal(err)
	}

	active, err := store.Active(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != 1 || active[0].ID != live.ID {
		t.Fatalf("want only the live row, got %+v", active)
	}
}

func TestStoreDismiss_ScopedToOwner(t *testing.T) {
	db := memdb(t)
	store := notify.NewStore(db)
	ctx := context.Background()

	n := mustCreate(t, store, 1, "mine", time.Now().UTC().Add(time.Hour))

	// another user cannot dismiss it
	if err := store.Dismiss(ctx, n.ID, 2); err != notify.ErrNotFound {
		t.Fatalf("want ErrNotFound for foreign dismiss, got %v", err)
	}
	active, err := store.Active(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != 1 {
		t.Fatal("foreign dismiss must not touch the row")
	}

	if err := store.Dismiss(ctx, n.ID, 1); err != nil {
		t.Fatal(err)
	}
	if err := store.Dismiss(ctx, 999, 1); err != notify.ErrNotFound {
		t.Fatalf("want ErrNotFound for missing row, got %v", err)
	}
}

func TestStoreSweepExpired(t *testing.T) {
	db := memdb(t)
	store := notify.NewStore(db)
	ctx := context.Background()

	mustCreate(t, store, 1, "old", time.Now().UTC().Add(-time.Hour))
	mustCreate(t, store, 1, "older", time.Now().UTC().Add(-2*time.Hour))
	keep := mustCreate(t, store, 1, "fresh", time.Now().UTC().Add(time.Hour))

	n, err := store.SweepExpired(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("want 2 swept rows, got %d", n)
	}

	var remaining int
	if err := db.Get(&remaining, `SELECT COUNT(*) FROM notifications`); err != nil {
		t.Fatal(err)
	}
	if remaining != 1 {
		t.Fatalf("want 1 surviving row (%d), got %d", keep.ID, remaining)
	}
}
