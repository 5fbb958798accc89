package catalog

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/feedme/feedme-golang/internal/models"
)

// CategoryColumns is the canonical column list for scanning category rows.
const CategoryColumns = `id, title, description, tags, keynotes, thumbnail_url, thumbnail_key, banner_url, created_at, updated_at`

var categorySpec = tableSpec{
	table:      "categories",
	searchCol:  "title",
	filterCols: map[string]string{},
	sortCols: map[string]string{
		"title":      "title",
		"created_at": "created_at",
	},
	defaultBy: "created_at",
}

// ListCategories returns one page of categories plus the total match count.
func (s *Store) ListCategories(ctx context.Context, q ListQuery) ([]models.Category, int, error) {
	where, args, tail, tailArgs := categorySpec.clauses(q)

	total, err := s.count(ctx, categorySpec, where, args)
	if err != nil {
		return nil, 0, queryErr(categorySpec.table, err)
	}

	rows, err := s.DB.QueryContext(ctx,
		"SELECT "+CategoryColumns+" FROM categories"+where+tail,
		append(args, tailArgs...)...)
	if err != nil {
		return nil, 0, queryErr(categorySpec.table, err)
	}
	defer rows.Close()

	categories, err := ScanCategories(rows)
	if err != nil {
		return nil, 0, queryErr(categorySpec.table, err)
	}
	return categories, total, nil
}

// ScanCategories collects category rows selected with CategoryColumns.
// Tags and keynotes are JSON array columns.
func ScanCategories(rows *sql.Rows) ([]models.Category, error) {
	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		var dbTags, dbKeynotes []byte

		if err := rows.Scan(
			&c.ID,
			&c.Title,
			&c.Description,
			&dbTags,
			&dbKeynotes,
			&c.ThumbnailURL,
			&c.ThumbnailKey,
			&c.BannerURL,
			&c.CreatedAt,
			&c.UpdatedAt,
		); err != nil {
			return nil, err
		}

		c.Tags = []string{}
		if len(dbTags) > 0 {
			_ = json.Unmarshal(dbTags, &c.Tags)
		}
		c.Keynotes = []string{}
		if len(dbKeynotes) > 0 {
			_ = json.Unmarshal(dbKeynotes, &c.Keynotes)
		}

		categories = append(categories, c)
	}
	return categories, rows.Err()
}
