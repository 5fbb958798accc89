package composer

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/feedme/feedme-golang/internal/linking"
	"github.com/feedme/feedme-golang/internal/models"
	"github.com/feedme/feedme-golang/internal/storage"
)

// BundleComposer builds and edits bundles together with their linked
// products.
type BundleComposer struct {
	DB     *sqlx.DB
	Links  *linking.Linker
	Images *storage.Store
}

func NewBundleComposer(db *sqlx.DB, images *storage.Store) *BundleComposer {
	return &BundleComposer{
		DB:     db,
		Links:  linking.NewBundleLinker(db),
		Images: images,
	}
}

// BundleInput carries everything a bundle save needs. Image is optional;
// on update a nil Image keeps the existing thumbnail untouched.
type BundleInput struct {
	Name        string  `validate:"required"`
	Price       float64 `validate:"required,gt=0"`
	Description string
	Image       *ImageUpload
	ProductIDs  []int64
}

// Create uploads the optional image, inserts the bundle row and links its
// products, in that order. An upload failure aborts before anything is
// written. If the row insert or linking fails after a successful upload,
// the uploaded image is removed again so no orphan is left behind.
func (c *BundleComposer) Create(ctx context.Context, in BundleInput) (*models.Bundle, error) {
	if errs := checkStruct(in); errs != nil {
		return nil, errs
	}

	// 1. --- Resolve Image ---
	var thumbnailURL *string
	var imageKey string
	if in.Image != nil {
		url, key, err := c.Images.Upload(in.Image.Reader, in.Image.Filename)
		if err != nil {
			return nil, fmt.Errorf("upload bundle image: %w", err)
		}
		thumbnailURL = &url
		imageKey = key
	}

	// 2. --- Insert Row + 3. Replace Links (one transaction) ---
	bundle, err := c.insertWithLinks(ctx, in, thumbnailURL)
	if err != nil {
		if imageKey != "" {
			_ = c.Images.Remove(imageKey) // compensating cleanup
		}
		return nil, err
	}
	return bundle, nil
}

func (c *BundleComposer) insertWithLinks(ctx context.Context, in BundleInput, thumbnailURL *string) (*models.Bundle, error) {
	tx, err := c.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx, `
		INSERT INTO bundles
		(name, price, description, thumbnail_url, stock_status, published_status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		in.Name, in.Price, in.Description, thumbnailURL,
		models.StockStatusIn, models.BundleArchived, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert bundle: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	if err := c.Links.ReplaceLinksTx(ctx, tx, id, in.ProductIDs); err != nil {
		return nil, fmt.Errorf("link bundle products: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &models.Bundle{
		ID:              id,
		Name:            in.Name,
		Price:           in.Price,
		Description:     in.Description,
		ThumbnailURL:    thumbnailURL,
		StockStatus:     models.StockStatusIn,
		PublishedStatus: models.BundleArchived,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// Update edits the bundle's mutable fields and swaps its linked-product
// set. Without a new image the prior thumbnail_url is carried over
// unchanged, never nulled out.
func (c *BundleComposer) Update(ctx context.Context, id int64, in BundleInput) (*models.Bundle, error) {
	if errs := checkStruct(in); errs != nil {
		return nil, errs
	}

	var current models.Bundle
	err := c.DB.GetContext(ctx, &current, `
		SELECT id, name, price, description, thumbnail_url, stock_status, published_status, created_at, updated_at
		FROM bundles WHERE id = ?`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}

	thumbnailURL := current.ThumbnailURL
	var newImageKey string
	if in.Image != nil {
		url, key, err := c.Images.Upload(in.Image.Reader, in.Image.Filename)
		if err != nil {
			return nil, fmt.Errorf("upload bundle image: %w", err)
		}
		thumbnailURL = &url
		newImageKey = key
	}

	tx, err := c.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx, `
		UPDATE bundles
		SET name = ?, price = ?, description = ?, thumbnail_url = ?, updated_at = ?
		WHERE id = ?`,
		in.Name, in.Price, in.Description, thumbnailURL, now, id,
	)
	if err == nil {
		err = c.Links.ReplaceLinksTx(ctx, tx, id, in.ProductIDs)
	}
	if err == nil {
		err = tx.Commit()
	}
	if err != nil {
		if newImageKey != "" {
			_ = c.Images.Remove(newImageKey)
		}
		return nil, fmt.Errorf("update bundle: %w", err)
	}

	current.Name = in.Name
	current.Price = in.Price
	current.Description = in.Description
	current.ThumbnailURL = thumbnailURL
	current.UpdatedAt = now
	return &current, nil
}

// Delete removes the bundle row, its junction records and, best-effort,
// its thumbnail from storage.
func (c *BundleComposer) Delete(ctx context.Context, id int64) error {
	var thumbnailURL *string
	err := c.DB.GetContext(ctx, &thumbnailURL, `SELECT thumbnail_url FROM bundles WHERE id = ?`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		return err
	}

	tx, err := c.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM bundle_products WHERE bundle_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM bundles WHERE id = ?`, id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	if thumbnailURL != nil {
		_ = c.Images.Remove(c.Images.KeyFromURL(*thumbnailURL))
	}
	return nil
}
