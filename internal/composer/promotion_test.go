package composer_test

import (
	"context"
	"strings"
	"testing"

	"github.com/feedme/feedme-golang/internal/composer"
)

func TestPromotionSave_TagValidation(t *testing.T) {
	db := memdb(t)
	c := composer.NewPromotionComposer(db, memstore(t))
	ctx := context.Background()

	_, err := c.Save(ctx, composer.PromotionInput{
		Title: "Summer Sale",
		Tag:   "My Tag!",
	}, nil, false)
	verrs, ok := err.(composer.ValidationErrors)
	if !ok {
		t.Fatalf("want ValidationErrors, got %v", err)
	}
	if verrs["tag"] != "must contain only lowercase letters, numbers and hyphens" {
		t.Fatalf("want tag shape message, got %v", verrs)
	}

	promo, err := c.Save(ctx, composer.PromotionInput{
		Title: "Summer Sale",
		Tag:   "summer-sale-24",
	}, nil, false)
	if err != nil {
		t.Fatal(err)
	}
	if promo.Tag != "summer-sale-24" {
		t.Fatalf("tag not stored: %+v", promo)
	}
}

func TestPromotionSave_ImageRequiredOnlyForNewCard(t *testing.T) {
	db := memdb(t)
	c := composer.NewPromotionComposer(db, memstore(t))
	ctx := context.Background()

	// new promo card without an image is rejected
	_, err := c.Save(ctx, composer.PromotionInput{
		Title: "Homepage Deal",
		Tag:   "homepage-deal",
	}, nil, true)
	verrs, ok := err.(composer.ValidationErrors)
	if !ok {
		t.Fatalf("want ValidationErrors, got %v", err)
	}
	if verrs["image"] == "" {
		t.Fatalf("want image-required message, got %v", verrs)
	}

	// a new tag banner without an image is fine
	banner, err := c.Save(ctx, composer.PromotionInput{
		Title: "Clearance",
		Tag:   "clearance",
	}, nil, false)
	if err != nil {
		t.Fatal(err)
	}
	if banner.IsFeaturedOnHomepage {
		t.Fatal("banner variant must not be featured")
	}

	// an existing promo card updated without a new image is fine too
	card, err := c.Save(ctx, composer.PromotionInput{
		Title: "Homepage Deal",
		Tag:   "homepage-deal",
		Image: &composer.ImageUpload{
			Reader:   strings.NewReader("fake-png-bytes"),
			Filename: "deal.png",
		},
	}, nil, true)
	if err != nil {
		t.Fatal(err)
	}
	updated, err := c.Save(ctx, composer.PromotionInput{
		Title: "Homepage Deal v2",
		Tag:   "homepage-deal",
	}, &card.ID, true)
	if err != nil {
		t.Fatal(err)
	}
	if updated.ImageURL != card.ImageURL {
		t.Fatalf("update without new image must keep %s, got %s", card.ImageURL, updated.ImageURL)
	}
}

func TestPromotionSave_VariantOverridesFeaturedFlag(t *testing.T) {
	db := memdb(t)
	c := composer.NewPromotionComposer(db, memstore(t))
	ctx := context.Background()

	banner, err := c.Save(ctx, composer.PromotionInput{
		Title: "Weekend Only",
		Tag:   "weekend-only",
	}, nil, false)
	if err != nil {
		t.Fatal(err)
	}

	var featured bool
	if err := db.Get(&featured,
		`SELECT is_featured_on_homepage FROM promotions WHERE id = ?`, banner.ID); err != nil {
		t.Fatal(err)
	}
	if featured {
		t.Fatal("banner save must write is_featured_on_homepage = false")
	}
}

func TestPromotionSave_AbsentPricesStayNull(t *testing.T) {
	db := memdb(t)
	c := composer.NewPromotionComposer(db, memstore(t))
	ctx := context.Background()

	promo, err := c.Save(ctx, composer.PromotionInput{
		Title: "No Prices",
		Tag:   "no-prices",
	}, nil, false)
	if err != nil {
		t.Fatal(err)
	}

	var oldPrice, newPrice *float64
	err = db.QueryRow(`SELECT old_price, new_price FROM promotions WHERE id = ?`, promo.ID).
		Scan(&oldPrice, &newPrice)
	if err != nil {
		t.Fatal(err)
	}
	// an empty form field is an absent price, never zero
	if oldPrice != nil || newPrice != nil {
		t.Fatalf("want NULL prices, got old=%v new=%v", oldPrice, newPrice)
	}
}

func TestPromotionSave_MissingRowOnUpdate(t *testing.T) {
	db := memdb(t)
	c := composer.NewPromotionComposer(db, memstore(t))

	missing := int64(404)
	_, err := c.Save(context.Background(), composer.PromotionInput{
		Title: "Ghost",
		Tag:   "ghost",
	}, &missing, false)
	if err != composer.ErrNotFound {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestPromotionDelete_CleansJunctions(t *testing.T) {
	db := memdb(t)
	c := composer.NewPromotionComposer(db, memstore(t))
	ctx := context.Background()

	pid := seedProduct(t, db, "Apples")
	promo, err := c.Save(ctx, composer.PromotionInput{
		Title: "Fruit Week",
		Tag:   "fruit-week",
	}, nil, false)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Links.AddLink(ctx, promo.ID, pid); err != nil {
		t.Fatal(err)
	}

	if err := c.Delete(ctx, promo.ID); err != nil {
		t.Fatal(err)
	}

	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM promotion_products WHERE promotion_id = ?`, promo.ID); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("junction rows survived delete: %d", n)
	}
}

func TestPromotionSearchProducts(t *testing.T) {
	db := memdb(t)
	c := composer.NewPromotionComposer(db, memstore(t))
	ctx := context.Background()

	seedProduct(t, db, "Red Apples 1kg")
	seedProduct(t, db, "Green Apples 1kg")
	seedProduct(t, db, "Baby Spinach")

	products, err := c.SearchProducts(ctx, "APPLE")
	if err != nil {
		t.Fatal(err)
	}
	if len(products) != 2 {
		t.Fatalf("want 2 apple products, got %d", len(products))
	}
}
