package linking_test

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"github.com/feedme/feedme-golang/internal/linking"
)

func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	schema := `
	CREATE TABLE products(
	  id INTEGER PRIMARY KEY AUTOINCREMENT,
	  name TEXT NOT NULL,
	  slug TEXT NOT NULL,
	  description TEXT NOT NULL DEFAULT '',
	  price REAL,
	  list_price REAL,
	  stock_status TEXT,
	  is_published INTEGER NOT NULL DEFAULT 0,
	  images TEXT NOT NULL DEFAULT '[]',
	  created_at TIMESTAMP NOT NULL,
	  updated_at TIMESTAMP NOT NULL
	);
	CREATE TABLE bundle_products(
	  bundle_id INTEGER NOT NULL,
	  product_id INTEGER NOT NULL,
	  PRIMARY KEY (bundle_id, product_id)
	);
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatal(err)
	}
	return db
}

func seedProduct(t *testing.T, db *sqlx.DB, name string) int64 {
	t.Helper()
	now := time.Now().UTC()
	res, err := db.Exec(`
		INSERT INTO products (name, slug, price, stock_status, is_published, created_at, updated_at)
		VALUES (?, ?, 100, 'in_stock', 1, ?, ?)`, name, name, now, now)
	if err != nil {
		t.Fatal(err)
	}
	id, _ := res.LastInsertId()
	return id
}

func junctionCount(t *testing.T, db *sqlx.DB, bundleID int64) int {
	t.Helper()
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM bundle_products WHERE bundle_id = ?`, bundleID); err != nil {
		t.Fatal(err)
	}
	return n
}

func TestAddLink_DuplicateIsSoftConflict(t *testing.T) {
	db := memdb(t)
	linker := linking.NewBundleLinker(db)
	ctx := context.Background()
	pid := seedProduct(t, db, "Apples")

	res, err := linker.AddLink(ctx, 1, pid)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Success {
		t.Fatalf("first add failed: %+v", res)
	}

	// same pair again: no error, no second row
	res, err = linker.AddLink(ctx, 1, pid)
	if err != nil {
		t.Fatalf("duplicate add must not error: %v", err)
	}
	if res.Success || res.Reason != "duplicate" {
		t.Fatalf("want soft duplicate result, got %+v", res)
	}
	if n := junctionCount(t, db, 1); n != 1 {
		t.Fatalf("want exactly 1 junction row, got %d", n)
	}
}

func TestRemoveLink_AbsentIsNoop(t *testing.T) {
	db := memdb(t)
	linker := linking.NewBundleLinker(db)
	ctx := context.Background()

	if err := linker.RemoveLink(ctx, 1, 999); err != nil {
		t.Fatalf("removing a nonexistent link must not error: %v", err)
	}

	pid := seedProduct(t, db, "Apples")
	if _, err := linker.AddLink(ctx, 1, pid); err != nil {
		t.Fatal(err)
	}
	if err := linker.RemoveLink(ctx, 1, pid); err != nil {
		t.Fatal(err)
	}
	if n := junctionCount(t, db, 1); n != 0 {
		t.Fatalf("want 0 rows after remove, got %d", n)
	}
}

func TestReplaceLinks_ExactSet(t *testing.T) {
	db := memdb(t)
	linker := linking.NewBundleLinker(db)
	ctx := context.Background()

	p1 := seedProduct(t, db, "Apples")
	p2 := seedProduct(t, db, "Spinach")
	p3 := seedProduct(t, db, "Crackers")

	if err := linker.ReplaceLinks(ctx, 1, []int64{p1, p2}); err != nil {
		t.Fatal(err)
	}
	// replacement swaps the whole set, duplicates collapse
	if err := linker.ReplaceLinks(ctx, 1, []int64{p2, p3, p3}); err != nil {
		t.Fatal(err)
	}

	products, err := linker.ListLinked(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	got := make([]int64, 0, len(products))
	for _, p := range products {
		got = append(got, p.ID)
	}
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	want := []int64{p2, p3}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("want linked set %v, got %v", want, got)
	}
}

func TestReplaceLinks_EmptySetClears(t *testing.T) {
	db := memdb(t)
	linker := linking.NewBundleLinker(db)
	ctx := context.Background()

	p1 := seedProduct(t, db, "Apples")
	if err := linker.ReplaceLinks(ctx, 1, []int64{p1}); err != nil {
		t.Fatal(err)
	}
	if err := linker.ReplaceLinks(ctx, 1, nil); err != nil {
		t.Fatal(err)
	}

	products, err := linker.ListLinked(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(products) != 0 {
		t.Fatalf("want empty linked set, got %d products", len(products))
	}
}

func TestListLinked_ScopedToParent(t *testing.T) {
	db := memdb(t)
	linker := linking.NewBundleLinker(db)
	ctx := context.Background()

	p1 := seedProduct(t, db, "Apples")
	p2 := seedProduct(t, db, "Spinach")

	if _, err := linker.AddLink(ctx, 1, p1); err != nil {
		t.Fatal(err)
	}
	if _, err := linker.AddLink(ctx, 2, p2); err != nil {
		t.Fatal(err)
	}

	products, err := linker.ListLinked(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(products) != 1 || products[0].ID != p1 {
		t.Fatalf("bundle 1 should only see its own product, got %+v", products)
	}
	if products[0].Name != "Apples" {
		t.Fatalf("joined product fields missing: %+v", products[0])
	}
}
