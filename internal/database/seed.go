package database

import (
	"log"
	"os"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/feedme/feedme-golang/internal/models"
)

// SeedAdminIfMissing creates the initial admin account when no admin
// exists yet. The password comes from ADMIN_PASSWORD; without it the seed
// is skipped so a misconfigured deploy never gets a known credential.
func SeedAdminIfMissing(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM users WHERE role = ?`, models.RoleAdmin); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		log.Println("[seed] ADMIN_PASSWORD not set, skipping admin account seed")
		return nil
	}

	var pw models.Password
	if err := pw.Set(password); err != nil {
		return err
	}

	now := time.Now().UTC()
	_, err := db.Exec(`INSERT INTO users (role, email, password_hash, full_name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		models.RoleAdmin, "admin@feedme.local", pw.Hash, "FeedMe Admin", now, now)
	if err != nil {
		return err
	}

	log.Println("[seed] created admin account admin@feedme.local")
	return nil
}

// SeedIfEmpty inserts the static storefront data (starter categories,
// products and vendor directory entries) when the catalog is empty.
// Safe to run on every startup.
func SeedIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM products`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting starter categories/products/vendors")

	now := time.Now().UTC()

	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	catQ := `INSERT INTO categories
		(title, description, tags, keynotes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	res, err := tx.Exec(catQ, "Fresh Produce", "Fruit and vegetables delivered daily",
		`["fresh","vegan"]`, `["Locally sourced","Restocked every morning"]`, now, now)
	if err != nil {
		return err
	}
	produceID, _ := res.LastInsertId()

	res, err = tx.Exec(catQ, "Snacks", "Chips, crackers and sweet treats",
		`["snacks"]`, `["Family pack sizes available"]`, now, now)
	if err != nil {
		return err
	}
	snacksID, _ := res.LastInsertId()

	prodQ := `INSERT INTO products
		(name, slug, description, price, list_price, stock_status, is_published, images, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	seedProducts := []struct {
		name, slug, desc string
		price            float64
		categoryID       int64
	}{
		{"Red Apples 1kg", "red-apples-1kg", "Crisp red apples, sold by the kilo", 450, produceID},
		{"Baby Spinach 250g", "baby-spinach-250g", "Washed and ready to eat", 320, produceID},
		{"Sea Salt Crackers", "sea-salt-crackers", "Baked crackers with sea salt", 280, snacksID},
	}

	for _, p := range seedProducts {
		res, err := tx.Exec(prodQ, p.name, p.slug, p.desc, p.price, nil, "in_stock", true, `[]`, now, now)
		if err != nil {
			return err
		}
		pid, _ := res.LastInsertId()
		if _, err := tx.Exec(`INSERT INTO product_categories (product_id, category_id) VALUES (?, ?)`,
			pid, p.categoryID); err != nil {
			return err
		}
	}

	vendQ := `INSERT INTO vendors (name, slug, description, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`
	if _, err := tx.Exec(vendQ, "Greenfield Farms", "greenfield-farms",
		"Family farm supplying our fresh produce range", now, now); err != nil {
		return err
	}
	if _, err := tx.Exec(vendQ, "Baker & Sons", "baker-and-sons",
		"Local bakery behind the snacks aisle", now, now); err != nil {
		return err
	}

	return tx.Commit()
}
