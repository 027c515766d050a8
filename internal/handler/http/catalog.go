package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/apparelstore/internal/domain"
	"github.com/utafrali/apparelstore/internal/service"
	"github.com/utafrali/apparelstore/pkg/httputil"
)

// CatalogHandler serves the storefront product catalog.
type CatalogHandler struct {
	service *service.CatalogService
	logger  *slog.Logger
}

// NewCatalogHandler creates a new catalog HTTP handler.
func NewCatalogHandler(svc *service.CatalogService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{service: svc, logger: logger}
}

// List handles GET /api/v1/products.
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit, ok := queryInt(w, q.Get("limit"), "limit")
	if !ok {
		return
	}

	products, err := h.service.List(r.Context(), domain.CatalogFilter{
		Category: q.Get("category"),
		Search:   q.Get("search"),
		Sort:     q.Get("sort"),
		Limit:    limit,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, "", products)
}

// Search handles GET /api/v1/products/search?q=&category=&limit= for the
// search dropdown.
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit, ok := queryInt(w, q.Get("limit"), "limit")
	if !ok {
		return
	}

	products, err := h.service.Search(r.Context(), q.Get("q"), q.Get("category"), limit)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, "", products)
}

// Get handles GET /api/v1/products/{id}.
func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, "", product)
}

// queryInt parses an optional non-negative integer parameter. It writes a
// 400 and reports false when the value is malformed.
func queryInt(w http.ResponseWriter, raw, name string) (int, bool) {
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		httputil.WriteFailure(w, http.StatusBadRequest, "INVALID_PARAMETER", name+" must be a non-negative integer")
		return 0, false
	}
	return v, true
}
