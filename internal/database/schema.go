package database

import (
	"github.com/jmoiron/sqlx"
)

// EnsureSchema creates the catalog tables if they are missing. Statements
// are executed one by one because the MySQL driver rejects multi-statement
// Exec by default.
func EnsureSchema(db *sqlx.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			role VARCHAR(32) NOT NULL DEFAULT 'customer',
			email VARCHAR(255) NOT NULL UNIQUE,
			password_hash VARCHAR(255) NOT NULL,
			full_name VARCHAR(255) NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS products (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			slug VARCHAR(255) NOT NULL,
			description TEXT,
			price DECIMAL(12,2) NULL,
			list_price DECIMAL(12,2) NULL,
			stock_status VARCHAR(16) NULL,
			is_published TINYINT(1) NOT NULL DEFAULT 0,
			images JSON,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			INDEX idx_products_name (name),
			INDEX idx_products_created_at (created_at)
		)`,
		`CREATE TABLE IF NOT EXISTS product_options (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			product_id BIGINT NOT NULL,
			name VARCHAR(255) NOT NULL,
			price DECIMAL(12,2) NOT NULL,
			list_price DECIMAL(12,2) NULL,
			stock_status VARCHAR(16) NOT NULL,
			image VARCHAR(512) NULL,
			position INT NOT NULL DEFAULT 0,
			INDEX idx_product_options_product (product_id),
			CONSTRAINT fk_option_product FOREIGN KEY (product_id)
				REFERENCES products(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS categories (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			title VARCHAR(255) NOT NULL,
			description TEXT,
			tags JSON,
			keynotes JSON,
			thumbnail_url VARCHAR(512) NULL,
			thumbnail_key VARCHAR(255) NULL,
			banner_url VARCHAR(512) NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS product_categories (
			product_id BIGINT NOT NULL,
			category_id BIGINT NOT NULL,
			PRIMARY KEY (product_id, category_id)
		)`,
		`CREATE TABLE IF NOT EXISTS bundles (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			price DECIMAL(12,2) NOT NULL,
			description TEXT,
			thumbnail_url VARCHAR(512) NULL,
			stock_status VARCHAR(16) NOT NULL DEFAULT 'in_stock',
			published_status VARCHAR(16) NOT NULL DEFAULT 'archived',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			INDEX idx_bundles_name (name)
		)`,
		`CREATE TABLE IF NOT EXISTS bundle_products (
			bundle_id BIGINT NOT NULL,
			product_id BIGINT NOT NULL,
			PRIMARY KEY (bundle_id, product_id)
		)`,
		`CREATE TABLE IF NOT EXISTS promotions (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			title VARCHAR(255) NOT NULL,
			tag VARCHAR(255) NOT NULL UNIQUE,
			discount_text VARCHAR(255) NOT NULL DEFAULT '',
			background_color VARCHAR(32) NOT NULL DEFAULT '',
			image_url VARCHAR(512) NOT NULL DEFAULT '',
			is_active TINYINT(1) NOT NULL DEFAULT 1,
			old_price DECIMAL(12,2) NULL,
			new_price DECIMAL(12,2) NULL,
			extra_discount_text VARCHAR(255) NULL,
			countdown_end_time DATETIME NULL,
			is_featured_on_homepage TINYINT(1) NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS promotion_products (
			promotion_id BIGINT NOT NULL,
			product_id BIGINT NOT NULL,
			PRIMARY KEY (promotion_id, product_id)
		)`,
		`CREATE TABLE IF NOT EXISTS notifications (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			user_id BIGINT NOT NULL,
			type VARCHAR(16) NOT NULL,
			body TEXT NOT NULL,
			link VARCHAR(512) NULL,
			dismissed TINYINT(1) NOT NULL DEFAULT 0,
			expires_at DATETIME NOT NULL,
			created_at DATETIME NOT NULL,
			INDEX idx_notifications_user (user_id, dismissed, expires_at)
		)`,
		`CREATE TABLE IF NOT EXISTS vendors (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			slug VARCHAR(255) NOT NULL UNIQUE,
			description TEXT,
			logo_url VARCHAR(512) NULL,
			website VARCHAR(512) NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS newsletter_recipients (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			email VARCHAR(255) NOT NULL UNIQUE,
			name VARCHAR(255) NULL,
			subscribed TINYINT(1) NOT NULL DEFAULT 1,
			created_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS campaigns (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			subject VARCHAR(255) NOT NULL,
			body TEXT NOT NULL,
			status VARCHAR(16) NOT NULL DEFAULT 'draft',
			sent_at DATETIME NULL,
			created_at DATETIME NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
