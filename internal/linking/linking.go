// Package linking maintains the many-to-many associations between parent
// catalog entities (bundles, promotions) and products through junction
// tables of (parent_id, product_id) pairs.
package linking

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/feedme/feedme-golang/internal/catalog"
	"github.com/feedme/feedme-golang/internal/models"
)

// Linker operates on one junction table. The table and parent column are
// fixed at construction, never caller-supplied, so interpolating them into
// SQL is safe.
type Linker struct {
	DB        *sqlx.DB
	Table     string
	ParentCol string
}

// NewBundleLinker links bundles to products via bundle_products.
func NewBundleLinker(db *sqlx.DB) *Linker {
	return &Linker{DB: db, Table: "bundle_products", ParentCol: "bundle_id"}
}

// NewPromotionLinker links promotions to products via promotion_products.
func NewPromotionLinker(db *sqlx.DB) *Linker {
	return &Linker{DB: db, Table: "promotion_products", ParentCol: "promotion_id"}
}

// LinkResult reports the outcome of AddLink. A duplicate pair is a soft
// conflict: Success=false, Reason="duplicate", no error.
type LinkResult struct {
	Success bool   `json:"success"`
	Reason  string `json:"reason,omitempty"`
}

// AddLink inserts one junction record. The existence check and insert run
// in one transaction; the junction table's primary key is the backstop for
// anything that slips between them.
func (l *Linker) AddLink(ctx context.Context, parentID, productID int64) (LinkResult, error) {
	tx, err := l.DB.BeginTxx(ctx, nil)
	if err != nil {
		return LinkResult{}, err
	}
	defer tx.Rollback()

	var exists int
	checkQ := fmt.Sprintf("SELECT 1 FROM %s WHERE %s = ? AND product_id = ?", l.Table, l.ParentCol)
	err = tx.QueryRowContext(ctx, checkQ, parentID, productID).Scan(&exists)
	if err == nil {
		return LinkResult{Success: false, Reason: "duplicate"}, nil
	}
	if err != sql.ErrNoRows {
		return LinkResult{}, err
	}

	insertQ := fmt.Sprintf("INSERT INTO %s (%s, product_id) VALUES (?, ?)", l.Table, l.ParentCol)
	if _, err := tx.ExecContext(ctx, insertQ, parentID, productID); err != nil {
		return LinkResult{}, err
	}

	if err := tx.Commit(); err != nil {
		return LinkResult{}, err
	}
	return LinkResult{Success: true}, nil
}

// RemoveLink deletes the junction record matching both ids. Removing a link
// that does not exist is a no-op, not an error.
func (l *Linker) RemoveLink(ctx context.Context, parentID, productID int64) error {
	q := fmt.Sprintf("DELETE FROM %s WHERE %s = ? AND product_id = ?", l.Table, l.ParentCol)
	_, err := l.DB.ExecContext(ctx, q, parentID, productID)
	return err
}

// ReplaceLinks swaps the parent's entire linked-product set for productIDs.
// Delete and re-insert happen inside one transaction so a concurrent reader
// never observes the parent with zero linked children mid-replacement.
func (l *Linker) ReplaceLinks(ctx context.Context, parentID int64, productIDs []int64) error {
	tx, err := l.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := l.replaceLinksTx(ctx, tx, parentID, productIDs); err != nil {
		return err
	}
	return tx.Commit()
}

// ReplaceLinksTx is ReplaceLinks running inside a caller-owned transaction,
// for composers that also upsert the parent row in the same unit of work.
func (l *Linker) ReplaceLinksTx(ctx context.Context, tx *sqlx.Tx, parentID int64, productIDs []int64) error {
	return l.replaceLinksTx(ctx, tx, parentID, productIDs)
}

func (l *Linker) replaceLinksTx(ctx context.Context, tx *sqlx.Tx, parentID int64, productIDs []int64) error {
	deleteQ := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", l.Table, l.ParentCol)
	if _, err := tx.ExecContext(ctx, deleteQ, parentID); err != nil {
		return err
	}

	insertQ := fmt.Sprintf("INSERT INTO %s (%s, product_id) VALUES (?, ?)", l.Table, l.ParentCol)
	seen := make(map[int64]bool, len(productIDs))
	for _, pid := range productIDs {
		if seen[pid] {
			continue
		}
		seen[pid] = true
		if _, err := tx.ExecContext(ctx, insertQ, parentID, pid); err != nil {
			return err
		}
	}
	return nil
}

// ListLinked returns the joined product rows for a parent in one round
// trip. Order follows the store's natural order; callers treat the result
// as a set.
func (l *Linker) ListLinked(ctx context.Context, parentID int64) ([]models.Product, error) {
	q := fmt.Sprintf(`
		SELECT %s
		FROM products p
		JOIN %s j ON j.product_id = p.id
		WHERE j.%s = ?`, prefixColumns("p"), l.Table, l.ParentCol)

	rows, err := l.DB.QueryContext(ctx, q, parentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return catalog.ScanProducts(rows)
}

// prefixColumns qualifies the shared product column list with a table
// alias for use in joins.
func prefixColumns(alias string) string {
	cols := strings.Split(catalog.ProductColumns, ",")
	for i, c := range cols {
		cols[i] = alias + "." + strings.TrimSpace(c)
	}
	return strings.Join(cols, ", ")
}
