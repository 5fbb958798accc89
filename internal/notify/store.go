// Package notify implements the per-user notification feed: the backing
// table queries, a change-event hub and the in-memory feed with optimistic
// dismiss semantics.
package notify

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/feedme/feedme-golang/internal/models"
)

// ErrNotFound is returned when a dismiss targets a row that does not exist
// or belongs to another user.
var ErrNotFound = errors.New("notification not found")

// activeLimit caps the initial feed load.
const activeLimit = 20

// Storer is the slice of the store the Feed depends on.
type Storer interface {
	Active(ctx context.Context, userID int64) ([]models.Notification, error)
	Dismiss(ctx context.Context, id, userID int64) error
}

// Store reads and mutates notification rows. Rows are only ever inserted
// by the trusted writer and flipped to dismissed here; cleanup of expired
// rows is the sweep's job.
type Store struct {
	DB *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{DB: db}
}

// Active returns the user's live notifications: not dismissed, not yet
// expired, newest first, capped at 20.
func (s *Store) Active(ctx context.Context, userID int64) ([]models.Notification, error) {
	notifications := []models.Notification{}
	err := s.DB.SelectContext(ctx, &notifications, `
		SELECT id, user_id, type, body, link, dismissed, expires_at, created_at
		FROM notifications
		WHERE user_id = ? AND dismissed = 0 AND expires_at > ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`,
		userID, time.Now().UTC(), activeLimit)
	return notifications, err
}

// Create inserts a notification row on behalf of the trusted writer and
// fills in the generated id and created_at.
func (s *Store) Create(ctx context.Context, n *models.Notification) error {
	now := time.Now().UTC()
	res, err := s.DB.ExecContext(ctx, `
		INSERT INTO notifications (user_id, type, body, link, dismissed, expires_at, created_at)
		VALUES (?, ?, ?, ?, 0, ?, ?)`,
		n.UserID, n.Type, n.Body, n.Link, n.ExpiresAt, now)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	n.ID = id
	n.CreatedAt = now
	n.Dismissed = false
	return nil
}

// Dismiss flips the row to dismissed. The user scope in the WHERE clause
// keeps one user from dismissing another's notifications.
func (s *Store) Dismiss(ctx context.Context, id, userID int64) error {
	res, err := s.DB.ExecContext(ctx, `
		UPDATE notifications SET dismissed = 1
		WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// SweepExpired deletes rows past their expiry. Run periodically from the
// background worker.
func (s *Store) SweepExpired(ctx context.Context) (int64, error) {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM notifications WHERE expires_at <= ?`, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
