package catalog

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/feedme/feedme-golang/internal/models"
)

// ProductColumns is the canonical column list for scanning product rows.
// Shared with the linking layer, which joins products through junction
// tables.
const ProductColumns = `id, name, slug, description, price, list_price, stock_status, is_published, images, created_at, updated_at`

var productSpec = tableSpec{
	table:     "products",
	searchCol: "name",
	filterCols: map[string]string{
		"stock_status": "stock_status",
		"is_published": "is_published",
		"slug":         "slug",
	},
	boolCols: map[string]bool{
		"is_published": true,
	},
	sortCols: map[string]string{
		"name":       "name",
		"price":      "price",
		"created_at": "created_at",
	},
	defaultBy: "created_at",
}

// ListProducts returns one page of products plus the total match count.
func (s *Store) ListProducts(ctx context.Context, q ListQuery) ([]models.Product, int, error) {
	where, args, tail, tailArgs := productSpec.clauses(q)

	total, err := s.count(ctx, productSpec, where, args)
	if err != nil {
		return nil, 0, queryErr(productSpec.table, err)
	}

	rows, err := s.DB.QueryContext(ctx,
		"SELECT "+ProductColumns+" FROM products"+where+tail,
		append(args, tailArgs...)...)
	if err != nil {
		return nil, 0, queryErr(productSpec.table, err)
	}
	defer rows.Close()

	products, err := ScanProducts(rows)
	if err != nil {
		return nil, 0, queryErr(productSpec.table, err)
	}
	return products, total, nil
}

// ScanProducts collects product rows selected with ProductColumns. The
// images column holds a JSON array of URLs; an empty or NULL column scans
// to an empty slice so the field never serializes as JSON null.
func ScanProducts(rows *sql.Rows) ([]models.Product, error) {
	products := []models.Product{}
	for rows.Next() {
		var p models.Product
		var dbImages []byte

		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Slug,
			&p.Description,
			&p.Price,
			&p.ListPrice,
			&p.StockStatus,
			&p.IsPublished,
			&dbImages,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, err
		}

		p.Images = []string{}
		if len(dbImages) > 0 {
			_ = json.Unmarshal(dbImages, &p.Images)
		}

		products = append(products, p)
	}
	return products, rows.Err()
}
