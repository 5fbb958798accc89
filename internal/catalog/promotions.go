package catalog

import (
	"context"

	"github.com/feedme/feedme-golang/internal/models"
)

const promotionColumns = `id, title, tag, discount_text, background_color, image_url, is_active, old_price, new_price, extra_discount_text, countdown_end_time, is_featured_on_homepage, created_at, updated_at`

var promotionSpec = tableSpec{
	table:     "promotions",
	searchCol: "title",
	filterCols: map[string]string{
		"is_active":               "is_active",
		"is_featured_on_homepage": "is_featured_on_homepage",
		"tag":                     "tag",
	},
	boolCols: map[string]bool{
		"is_active":               true,
		"is_featured_on_homepage": true,
	},
	sortCols: map[string]string{
		"title":      "title",
		"created_at": "created_at",
	},
	defaultBy: "created_at",
}

// ListPromotions returns one page of promotions plus the total match count.
func (s *Store) ListPromotions(ctx context.Context, q ListQuery) ([]models.Promotion, int, error) {
	where, args, tail, tailArgs := promotionSpec.clauses(q)

	total, err := s.count(ctx, promotionSpec, where, args)
	if err != nil {
		return nil, 0, queryErr(promotionSpec.table, err)
	}

	promotions := []models.Promotion{}
	err = s.DB.SelectContext(ctx, &promotions,
		"SELECT "+promotionColumns+" FROM promotions"+where+tail,
		append(args, tailArgs...)...)
	if err != nil {
		return nil, 0, queryErr(promotionSpec.table, err)
	}
	return promotions, total, nil
}
