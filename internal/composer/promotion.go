package composer

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/feedme/feedme-golang/internal/catalog"
	"github.com/feedme/feedme-golang/internal/linking"
	"github.com/feedme/feedme-golang/internal/models"
	"github.com/feedme/feedme-golang/internal/storage"
)

// PromotionComposer builds and edits promotions. The same entity renders
// as a homepage promo card or a tag banner; which one is decided by the
// caller's variant flag, never by the submitted form.
type PromotionComposer struct {
	DB     *sqlx.DB
	Links  *linking.Linker
	Images *storage.Store
}

func NewPromotionComposer(db *sqlx.DB, images *storage.Store) *PromotionComposer {
	return &PromotionComposer{
		DB:     db,
		Links:  linking.NewPromotionLinker(db),
		Images: images,
	}
}

// PromotionInput carries validated promotion form data. Price pointers are
// nil when the form field was empty; an empty string never becomes zero.
type PromotionInput struct {
	Title             string `validate:"required"`
	Tag               string `validate:"required,promotag"`
	DiscountText      string
	BackgroundColor   string
	IsActive          bool
	OldPrice          *float64 `validate:"omitempty,gt=0"`
	NewPrice          *float64 `validate:"omitempty,gt=0"`
	ExtraDiscountText *string
	CountdownEndTime  *time.Time
	Image             *ImageUpload
}

// Save validates, resolves the image and upserts the promotion row.
// existingID nil means insert; featured selects the variant and is written
// to the row regardless of anything the form claimed. A new promo card
// must carry an image; a new tag banner is allowed without one (the
// asymmetry is deliberate, matching how the two forms behave).
func (p *PromotionComposer) Save(ctx context.Context, in PromotionInput, existingID *int64, featured bool) (*models.Promotion, error) {
	// 1. --- Validate (no store call happens on failure) ---
	errs := checkStruct(in)
	if existingID == nil && featured && in.Image == nil {
		if errs == nil {
			errs = ValidationErrors{}
		}
		errs["image"] = "an image is required for new promotions"
	}
	if errs != nil {
		return nil, errs
	}

	// 2. --- Resolve Image ---
	imageURL := ""
	var newImageKey string
	if in.Image != nil {
		url, key, err := p.Images.Upload(in.Image.Reader, in.Image.Filename)
		if err != nil {
			return nil, fmt.Errorf("upload promotion image: %w", err)
		}
		imageURL = url
		newImageKey = key
	} else if existingID != nil {
		// keep the prior image untouched
		err := p.DB.GetContext(ctx, &imageURL, `SELECT image_url FROM promotions WHERE id = ?`, *existingID)
		if err != nil {
			if err == sql.ErrNoRows {
				return nil, ErrNotFound
			}
			return nil, err
		}
	}

	// 3. --- Upsert ---
	promo, err := p.upsert(ctx, in, existingID, featured, imageURL)
	if err != nil {
		if newImageKey != "" {
			_ = p.Images.Remove(newImageKey)
		}
		return nil, err
	}
	return promo, nil
}

func (p *PromotionComposer) upsert(ctx context.Context, in PromotionInput, existingID *int64, featured bool, imageURL string) (*models.Promotion, error) {
	now := time.Now().UTC()
	promo := &models.Promotion{
		Title:                in.Title,
		Tag:                  in.Tag,
		DiscountText:         in.DiscountText,
		BackgroundColor:      in.BackgroundColor,
		ImageURL:             imageURL,
		IsActive:             in.IsActive,
		OldPrice:             in.OldPrice,
		NewPrice:             in.NewPrice,
		ExtraDiscountText:    in.ExtraDiscountText,
		CountdownEndTime:     in.CountdownEndTime,
		IsFeaturedOnHomepage: featured,
		UpdatedAt:            now,
	}

	if existingID == nil {
		res, err := p.DB.ExecContext(ctx, `
			INSERT INTO promotions
			(title, tag, discount_text, background_color, image_url, is_active,
			 old_price, new_price, extra_discount_text, countdown_end_time,
			 is_featured_on_homepage, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			promo.Title, promo.Tag, promo.DiscountText, promo.BackgroundColor,
			promo.ImageURL, promo.IsActive, promo.OldPrice, promo.NewPrice,
			promo.ExtraDiscountText, promo.CountdownEndTime, featured, now, now,
		)
		if err != nil {
			return nil, fmt.Errorf("insert promotion: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		promo.ID = id
		promo.CreatedAt = now
		return promo, nil
	}

	res, err := p.DB.ExecContext(ctx, `
		UPDATE promotions
		SET title = ?, tag = ?, discount_text = ?, background_color = ?,
		    image_url = ?, is_active = ?, old_price = ?, new_price = ?,
		    extra_discount_text = ?, countdown_end_time = ?,
		    is_featured_on_homepage = ?, updated_at = ?
		WHERE id = ?`,
		promo.Title, promo.Tag, promo.DiscountText, promo.BackgroundColor,
		promo.ImageURL, promo.IsActive, promo.OldPrice, promo.NewPrice,
		promo.ExtraDiscountText, promo.CountdownEndTime, featured, now, *existingID,
	)
	if err != nil {
		return nil, fmt.Errorf("update promotion: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// the row may exist with identical values; confirm before 404ing
		var exists int
		if err := p.DB.GetContext(ctx, &exists, `SELECT 1 FROM promotions WHERE id = ?`, *existingID); err != nil {
			return nil, ErrNotFound
		}
	}
	promo.ID = *existingID
	return promo, nil
}

// Delete removes the promotion row and its junction records, then makes a
// best-effort attempt to remove its image from storage. An image URL that
// does not match the bucket convention is skipped with a log line.
func (p *PromotionComposer) Delete(ctx context.Context, id int64) error {
	var imageURL string
	err := p.DB.GetContext(ctx, &imageURL, `SELECT image_url FROM promotions WHERE id = ?`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		return err
	}

	tx, err := p.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM promotion_products WHERE promotion_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM promotions WHERE id = ?`, id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	if imageURL != "" {
		if key := p.Images.KeyFromURL(imageURL); key != "" {
			if err := p.Images.Remove(key); err != nil {
				log.Printf("promotion %d: image cleanup failed: %v", id, err)
			}
		}
	}
	return nil
}

// SearchProducts is the promo-card product picker: a case-insensitive
// substring match on the product name.
func (p *PromotionComposer) SearchProducts(ctx context.Context, q string) ([]models.Product, error) {
	rows, err := p.DB.QueryContext(ctx, `
		SELECT `+catalog.ProductColumns+`
		FROM products
		WHERE LOWER(name) LIKE ?
		ORDER BY name ASC, id ASC
		LIMIT 20`,
		"%"+strings.ToLower(q)+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return catalog.ScanProducts(rows)
}
