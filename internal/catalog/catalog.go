// Package catalog builds filtered, sorted, paginated views over the
// storefront tables. Every list call returns the page of rows plus the
// total number of matching rows before pagination, so callers can render
// page controls without a second query of their own.
package catalog

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
)

// ListQuery carries the caller-facing query parameters. Page is 1-based.
// An empty value set for a filter field means "no restriction on that
// field", never "match nothing".
type ListQuery struct {
	Search       string
	Page         int
	ItemsPerPage int
	SortBy       string
	SortOrder    string // "asc" or "desc"
	Filters      map[string][]string
}

const defaultItemsPerPage = 20

// QueryError is the typed failure for any store error in this layer.
// Handlers decide how to surface it; nothing here swallows errors into an
// empty list.
type QueryError struct {
	Table   string
	Message string
	Err     error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("catalog query on %s: %s", e.Table, e.Message)
}

func (e *QueryError) Unwrap() error { return e.Err }

func queryErr(table string, err error) *QueryError {
	return &QueryError{Table: table, Message: err.Error(), Err: err}
}

// Store runs catalog queries against the database.
type Store struct {
	DB *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{DB: db}
}

// tableSpec whitelists the searchable, filterable and sortable columns of
// one table. Anything not listed is ignored rather than interpolated into
// SQL. Filter fields named in boolCols hold numeric 0/1 columns; their
// values are coerced from the caller's "true"/"false" strings before
// binding, since binding the string would compare text against a number.
type tableSpec struct {
	table      string
	searchCol  string
	filterCols map[string]string
	boolCols   map[string]bool
	sortCols   map[string]string
	defaultBy  string
}

// boolArg maps a boolean filter value to the numeric form the column
// stores. Accepts the usual spellings ("true", "1", "false", "0");
// anything unparseable filters as false.
func boolArg(v string) int {
	b, _ := strconv.ParseBool(strings.TrimSpace(v))
	if b {
		return 1
	}
	return 0
}

// clauses renders WHERE/ORDER BY/LIMIT fragments plus bind args for q.
// The id column is always appended as a secondary sort key so pages stay
// stable across requests.
func (t tableSpec) clauses(q ListQuery) (where string, args []interface{}, tail string, tailArgs []interface{}) {
	var conds []string

	if q.Search != "" {
		conds = append(conds, fmt.Sprintf("LOWER(%s) LIKE ?", t.searchCol))
		args = append(args, "%"+strings.ToLower(q.Search)+"%")
	}

	for field, values := range q.Filters {
		col, ok := t.filterCols[field]
		if !ok || len(values) == 0 {
			continue
		}
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(values)), ",")
		conds = append(conds, fmt.Sprintf("%s IN (%s)", col, placeholders))
		for _, v := range values {
			if t.boolCols[field] {
				args = append(args, boolArg(v))
			} else {
				args = append(args, v)
			}
		}
	}

	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	sortCol := t.defaultBy
	if col, ok := t.sortCols[q.SortBy]; ok {
		sortCol = col
	}
	direction := "ASC"
	if strings.EqualFold(q.SortOrder, "desc") {
		direction = "DESC"
	} else if q.SortBy == "" && q.SortOrder == "" {
		// newest first when the caller asked for nothing specific
		direction = "DESC"
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	perPage := q.ItemsPerPage
	if perPage < 1 {
		perPage = defaultItemsPerPage
	}

	tail = fmt.Sprintf(" ORDER BY %s %s, id ASC LIMIT ? OFFSET ?", sortCol, direction)
	tailArgs = []interface{}{perPage, (page - 1) * perPage}
	return where, args, tail, tailArgs
}

// count runs the COUNT(*) companion query over the same WHERE clause, so
// the returned total is invariant under changing the page alone.
func (s *Store) count(ctx context.Context, t tableSpec, where string, args []interface{}) (int, error) {
	var n int
	err := s.DB.GetContext(ctx, &n, "SELECT COUNT(*) FROM "+t.table+where, args...)
	return n, err
}
