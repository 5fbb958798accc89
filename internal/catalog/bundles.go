package catalog

import (
	"context"

	"github.com/feedme/feedme-golang/internal/models"
)

const bundleColumns = `id, name, price, description, thumbnail_url, stock_status, published_status, created_at, updated_at`

var bundleSpec = tableSpec{
	table:     "bundles",
	searchCol: "name",
	filterCols: map[string]string{
		"stock_status":     "stock_status",
		"published_status": "published_status",
	},
	sortCols: map[string]string{
		"name":       "name",
		"price":      "price",
		"created_at": "created_at",
	},
	defaultBy: "created_at",
}

// ListBundles returns one page of bundles plus the total match count.
func (s *Store) ListBundles(ctx context.Context, q ListQuery) ([]models.Bundle, int, error) {
	where, args, tail, tailArgs := bundleSpec.clauses(q)

	total, err := s.count(ctx, bundleSpec, where, args)
	if err != nil {
		return nil, 0, queryErr(bundleSpec.table, err)
	}

	bundles := []models.Bundle{}
	err = s.DB.SelectContext(ctx, &bundles,
		"SELECT "+bundleColumns+" FROM bundles"+where+tail,
		append(args, tailArgs...)...)
	if err != nil {
		return nil, 0, queryErr(bundleSpec.table, err)
	}
	return bundles, total, nil
}
