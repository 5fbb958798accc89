package composer_test

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"github.com/feedme/feedme-golang/internal/composer"
	"github.com/feedme/feedme-golang/internal/models"
	"github.com/feedme/feedme-golang/internal/storage"
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
	CREATE TABLE bundle_products(
	  bundle_id INTEGER NOT NULL,
	  product_id INTEGER NOT NULL,
	  PRIMARY KEY (bundle_id, product_id)
	);
	CREATE TABLE promotions(
	  id INTEGER PRIMARY KEY AUTOINCREMENT,
	  title TEXT NOT NULL,
	  tag TEXT NOT NULL UNIQUE,
	  discount_text TEXT NOT NULL DEFAULT '',
	  background_color TEXT NOT NULL DEFAULT '',
	  image_url TEXT NOT NULL DEFAULT '',
	  is_active INTEGER NOT NULL DEFAULT 1,
	  old_price REAL,
	  new_price REAL,
	  extra_discount_text TEXT,
	  countdown_end_time TIMESTAMP,
	  is_featured_on_homepage INTEGER NOT NULL DEFAULT 0,
	  created_at TIMESTAMP NOT NULL,
	  updated_at TIMESTAMP NOT NULL
	);
	CREATE TABLE promotion_products(
	  promotion_id INTEGER NOT NULL,
	  product_id INTEGER NOT NULL,
	  PRIMARY KEY (promotion_id, product_id)
	);
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatal(err)
	}
	return db
}

func memstore(t *testing.T) *storage.Store {
	t.Helper()
	return &storage.Store{
		Dir:     t.TempDir(),
		BaseURL: "http://localhost:8080",
		Bucket:  "images",
	}
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

func TestBundleCreate_Defaults(t *testing.T) {
	db := memdb(t)
	c := composer.NewBundleComposer(db, memstore(t))
	ctx := context.Background()

	p1 := seedProduct(t, db, "Sea Salt Crackers")
	p2 := seedProduct(t, db, "Trail Mix")

	bundle, err := c.Create(ctx, composer.BundleInput{
		Name:       "Snack Pack",
		Price:      500,
		ProductIDs: []int64{p1, p2},
	})
	if err != nil {
		t.Fatal(err)
	}

	if bundle.ThumbnailURL != nil {
		t.Fatalf("no image uploaded, want nil thumbnail, got %v", *bundle.ThumbnailURL)
	}
	if bundle.StockStatus != models.StockStatusIn {
		t.Fatalf("new bundle must default to in_stock, got %s", bundle.StockStatus)
	}
	if bundle.PublishedStatus != models.BundleArchived {
		t.Fatalf("new bundle must start archived, got %s", bundle.PublishedStatus)
	}

	linked, err := c.Links.ListLinked(ctx, bundle.ID)
	if err != nil {
		t.Fatal(err)
	}
	got := []int64{}
	for _, p := range linked {
		got = append(got, p.ID)
	}
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	if len(got) != 2 || got[0] != p1 || got[1] != p2 {
		t.Fatalf("want linked products [%d %d], got %v", p1, p2, got)
	}
}

func TestBundleCreate_Validation(t *testing.T) {
	db := memdb(t)
	c := composer.NewBundleComposer(db, memstore(t))

	_, err := c.Create(context.Background(), composer.BundleInput{Price: -5})
	if err == nil {
		t.Fatal("want validation error")
	}
	verrs, ok := err.(composer.ValidationErrors)
	if !ok {
		t.Fatalf("want ValidationErrors, got %T", err)
	}
	if verrs["name"] != "is required" {
		t.Fatalf("want name required, got %v", verrs)
	}
	if verrs["price"] != "must be a positive number" {
		t.Fatalf("want positive price message, got %v", verrs)
	}

	// nothing may have been written
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM bundles`); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("validation failure wrote %d rows", n)
	}
}

func TestBundleCreate_WithImage(t *testing.T) {
	db := memdb(t)
	store := memstore(t)
	c := composer.NewBundleComposer(db, store)

	bundle, err := c.Create(context.Background(), composer.BundleInput{
		Name:  "Breakfast Box",
		Price: 900,
		Image: &composer.ImageUpload{
			Reader:   strings.NewReader("fake-png-bytes"),
			Filename: "box.png",
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if bundle.ThumbnailURL == nil {
		t.Fatal("want thumbnail URL after upload")
	}
	if !strings.HasPrefix(*bundle.ThumbnailURL, "http://localhost:8080/images/") {
		t.Fatalf("unexpected thumbnail URL %s", *bundle.ThumbnailURL)
	}
	key := store.KeyFromURL(*bundle.ThumbnailURL)
	if key == "" {
		t.Fatalf("thumbnail URL %s does not resolve to a key", *bundle.ThumbnailURL)
	}
	if _, err := os.Stat(filepath.Join(store.Dir, key)); err != nil {
		t.Fatalf("uploaded file missing: %v", err)
	}
}

func TestBundleUpdate_KeepsThumbnailWithoutNewImage(t *testing.T) {
	db := memdb(t)
	store := memstore(t)
	c := composer.NewBundleComposer(db, store)
	ctx := context.Background()

	created, err := c.Create(ctx, composer.BundleInput{
		Name:  "Breakfast Box",
		Price: 900,
		Image: &composer.ImageUpload{
			Reader:   strings.NewReader("fake-png-bytes"),
			Filename: "box.png",
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	before := *created.ThumbnailURL

	updated, err := c.Update(ctx, created.ID, composer.BundleInput{
		Name:  "Breakfast Box XL",
		Price: 1100,
	})
	if err != nil {
		t.Fatal(err)
	}
	if updated.ThumbnailURL == nil || *updated.ThumbnailURL != before {
		t.Fatalf("thumbnail must survive an update without a new image: want %s, got %v",
			before, updated.ThumbnailURL)
	}
	if updated.Name != "Breakfast Box XL" || updated.Price != 1100 {
		t.Fatalf("fields not updated: %+v", updated)
	}
}

func TestBundleUpdate_MissingRow(t *testing.T) {
	db := memdb(t)
	c := composer.NewBundleComposer(db, memstore(t))

	_, err := c.Update(context.Background(), 404, composer.BundleInput{Name: "X", Price: 1})
	if err != composer.ErrNotFound {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestBundleDelete_RemovesJunctions(t *testing.T) {
	db := memdb(t)
	c := composer.NewBundleComposer(db, memstore(t))
	ctx := context.Background()

	p1 := seedProduct(t, db, "Apples")
	bundle, err := c.Create(ctx, composer.BundleInput{
		Name: "Fruit Pack", Price: 300, ProductIDs: []int64{p1},
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := c.Delete(ctx, bundle.ID); err != nil {
		t.Fatal(err)
	}

	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM bundle_products WHERE bundle_id = ?`, bundle.ID); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("junction rows survived delete: %d", n)
	}
	if err := c.Delete(ctx, bundle.ID); err != composer.ErrNotFound {
		t.Fatalf("second delete: want ErrNotFound, got %v", err)
	}
}
