package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/feedme/feedme-golang/internal/catalog"
	"github.com/feedme/feedme-golang/internal/composer"
	"github.com/feedme/feedme-golang/internal/drafts"
	"github.com/feedme/feedme-golang/internal/notify"
	"github.com/feedme/feedme-golang/internal/storage"
)

// Handlers holds every dependency the HTTP layer needs.
type Handlers struct {
	DB            *sqlx.DB
	Catalog       *catalog.Store
	Bundles       *composer.BundleComposer
	Promotions    *composer.PromotionComposer
	Images        *storage.Store
	Drafts        *drafts.Store
	Notifications *notify.Store
	Hub           *notify.Hub
}

// New wires the handler dependencies from the shared DB pool, image store
// and draft store.
func New(db *sqlx.DB, images *storage.Store, draftStore *drafts.Store) *Handlers {
	return &Handlers{
		DB:            db,
		Catalog:       catalog.NewStore(db),
		Bundles:       composer.NewBundleComposer(db, images),
		Promotions:    composer.NewPromotionComposer(db, images),
		Images:        images,
		Drafts:        draftStore,
		Notifications: notify.NewStore(db),
		Hub:           notify.NewHub(),
	}
}

// fail maps the error taxonomy onto HTTP responses, uniformly:
// validation errors become 422 field maps, missing rows 404, typed
// catalog query errors 500 with the backend message, everything else a
// plain 500.
func (h *Handlers) fail(c *gin.Context, err error) {
	var verrs composer.ValidationErrors
	if errors.As(err, &verrs) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": verrs})
		return
	}

	if errors.Is(err, composer.ErrNotFound) || errors.Is(err, notify.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}

	var qerr *catalog.QueryError
	if errors.As(err, &qerr) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": qerr.Message})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

// parseListQuery reads the shared list parameters plus the endpoint's
// allowed filter fields (comma-separated values per field).
func parseListQuery(c *gin.Context, filterFields ...string) catalog.ListQuery {
	q := catalog.ListQuery{
		Search:    c.Query("search"),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
		Filters:   map[string][]string{},
	}
	q.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	q.ItemsPerPage, _ = strconv.Atoi(c.DefaultQuery("itemsPerPage", "20"))

	for _, field := range filterFields {
		if raw := c.Query(field); raw != "" {
			q.Filters[field] = strings.Split(raw, ",")
		}
	}
	return q
}

// currentUserID pulls the authenticated user's id set by the auth
// middleware.
func currentUserID(c *gin.Context) (int64, bool) {
	raw, exists := c.Get("userID")
	if !exists {
		return 0, false
	}
	id, ok := raw.(int64)
	return id, ok
}

// pathID parses a numeric :id style path parameter.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return id, true
}
