package catalog_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"github.com/feedme/feedme-golang/internal/catalog"
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
	CREATE TABLE bundles(
	  id INTEGER PRIMARY KEY AUTOINCREMENT,
	  name TEXT NOT NULL,
	  price REAL NOT NULL,
	  description TEXT NOT NULL DEFAULT '',
	  thumbnail_url TEXT,
	  stock_status TEXT NOT NULL,
	  published_status TEXT NOT NULL,
	  created_at TIMESTAMP NOT NULL,
	  updated_at TIMESTAMP NOT NULL
	);
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatal(err)
	}
	return db
}

func seedProduct(t *testing.T, db *sqlx.DB, name string, price float64, stockStatus string, published bool) {
	t.Helper()
	now := time.Now().UTC()
	_, err := db.Exec(`
		INSERT INTO products (name, slug, description, price, stock_status, is_published, images, created_at, updated_at)
		VALUES (?, ?, '', ?, ?, ?, '[]', ?, ?)`,
		name, name, price, stockStatus, published, now, now)
	if err != nil {
		t.Fatal(err)
	}
}

func seedBundle(t *testing.T, db *sqlx.DB, name string) {
	t.Helper()
	now := time.Now().UTC()
	_, err := db.Exec(`
		INSERT INTO bundles (name, price, description, stock_status, published_status, created_at, updated_at)
		VALUES (?, 100, '', 'in_stock', 'published', ?, ?)`,
		name, now, now)
	if err != nil {
		t.Fatal(err)
	}
}

func TestListBundles_CountCoversAllMatches(t *testing.T) {
	db := memdb(t)
	store := catalog.NewStore(db)

	// 12 bundles match the search, 3 do not
	for i := 0; i < 12; i++ {
		seedBundle(t, db, fmt.Sprintf("Family Pack %02d", i))
	}
	seedBundle(t, db, "Breakfast Box")
	seedBundle(t, db, "Lunch Box")
	seedBundle(t, db, "Dinner Box")

	bundles, total, err := store.ListBundles(context.Background(), catalog.ListQuery{
		Search:       "pack",
		Page:         1,
		ItemsPerPage: 5,
	})
	if err != nil {
		t.Fatal(err)
	}
	if total != 12 {
		t.Fatalf("want total 12 across all pages, got %d", total)
	}
	if len(bundles) != 5 {
		t.Fatalf("want 5 rows on page 1, got %d", len(bundles))
	}

	// same query, later page: total must not change
	bundles, total, err = store.ListBundles(context.Background(), catalog.ListQuery{
		Search:       "pack",
		Page:         3,
		ItemsPerPage: 5,
	})
	if err != nil {
		t.Fatal(err)
	}
	if total != 12 {
		t.Fatalf("total changed with page: got %d", total)
	}
	if len(bundles) != 2 {
		t.Fatalf("want 2 rows on page 3, got %d", len(bundles))
	}
}

func TestListProducts_Filters(t *testing.T) {
	db := memdb(t)
	store := catalog.NewStore(db)

	seedProduct(t, db, "Apples", 450, "in_stock", true)
	seedProduct(t, db, "Spinach", 320, "out_of_stock", true)
	seedProduct(t, db, "Crackers", 280, "in_stock", false)

	products, total, err := store.ListProducts(context.Background(), catalog.ListQuery{
		Filters: map[string][]string{"stock_status": {"in_stock"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 || len(products) != 2 {
		t.Fatalf("want 2 in-stock products, got total=%d len=%d", total, len(products))
	}
	for _, p := range products {
		if p.StockStatus == nil || *p.StockStatus != "in_stock" {
			t.Fatalf("filter leaked product %q", p.Name)
		}
	}

	// several values for one field widen the match
	_, total, err = store.ListProducts(context.Background(), catalog.ListQuery{
		Filters: map[string][]string{"stock_status": {"in_stock", "out_of_stock"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if total != 3 {
		t.Fatalf("want 3 products for both statuses, got %d", total)
	}
}

func TestListProducts_BooleanFilter(t *testing.T) {
	db := memdb(t)
	store := catalog.NewStore(db)

	seedProduct(t, db, "Apples", 450, "in_stock", true)
	seedProduct(t, db, "Spinach", 320, "in_stock", true)
	seedProduct(t, db, "Drafted", 280, "in_stock", false)

	// "true" is what clients send back from the JSON they read; it must
	// match the numeric column, not compare as text
	for _, value := range []string{"true", "1"} {
		products, total, err := store.ListProducts(context.Background(), catalog.ListQuery{
			Filters: map[string][]string{"is_published": {value}},
		})
		if err != nil {
			t.Fatal(err)
		}
		if total != 2 || len(products) != 2 {
			t.Fatalf("is_published=%q: want 2 published rows, got total=%d len=%d",
				value, total, len(products))
		}
		for _, p := range products {
			if !p.IsPublished {
				t.Fatalf("is_published=%q matched unpublished product %q", value, p.Name)
			}
		}
	}

	products, total, err := store.ListProducts(context.Background(), catalog.ListQuery{
		Filters: map[string][]string{"is_published": {"false"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 || len(products) != 1 || products[0].Name != "Drafted" {
		t.Fatalf("is_published=false: want only the unpublished row, got total=%d %+v",
			total, products)
	}
}

func TestListProducts_EmptyFilterMeansNoRestriction(t *testing.T) {
	db := memdb(t)
	store := catalog.NewStore(db)

	seedProduct(t, db, "Apples", 450, "in_stock", true)
	seedProduct(t, db, "Spinach", 320, "out_of_stock", true)

	// an empty value set must behave like the filter was never sent
	products, total, err := store.ListProducts(context.Background(), catalog.ListQuery{
		Filters: map[string][]string{"stock_status": {}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 || len(products) != 2 {
		t.Fatalf("empty filter set excluded rows: total=%d len=%d", total, len(products))
	}
}

func TestListProducts_UnknownFieldsIgnored(t *testing.T) {
	db := memdb(t)
	store := catalog.NewStore(db)

	seedProduct(t, db, "Apples", 450, "in_stock", true)

	// unknown filter fields and sort columns never reach the SQL
	products, total, err := store.ListProducts(context.Background(), catalog.ListQuery{
		SortBy:  "; DROP TABLE products",
		Filters: map[string][]string{"evil_col": {"x"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 || len(products) != 1 {
		t.Fatalf("want 1 product, got total=%d len=%d", total, len(products))
	}
}

func TestListProducts_SortByPrice(t *testing.T) {
	db := memdb(t)
	store := catalog.NewStore(db)

	seedProduct(t, db, "Mid", 300, "in_stock", true)
	seedProduct(t, db, "Cheap", 100, "in_stock", true)
	seedProduct(t, db, "Dear", 900, "in_stock", true)

	products, _, err := store.ListProducts(context.Background(), catalog.ListQuery{
		SortBy:    "price",
		SortOrder: "asc",
	})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Cheap", "Mid", "Dear"}
	for i, name := range want {
		if products[i].Name != name {
			t.Fatalf("position %d: want %s, got %s", i, name, products[i].Name)
		}
	}
}

func TestListProducts_ErrorsAreTyped(t *testing.T) {
	db, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	store := catalog.NewStore(db)

	// no schema at all: the failure must surface, not collapse to an
	// empty page
	_, _, err = store.ListProducts(context.Background(), catalog.ListQuery{})
	if err == nil {
		t.Fatal("want error on missing table, got nil")
	}
	qerr, ok := err.(*catalog.QueryError)
	if !ok {
		t.Fatalf("want *catalog.QueryError, got %T", err)
	}
	if qerr.Table != "products" || qerr.Message == "" {
		t.Fatalf("query error missing context: %+v", qerr)
	}
}
