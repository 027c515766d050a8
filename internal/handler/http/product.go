package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/apparelstore/internal/domain"
	"github.com/utafrali/apparelstore/internal/service"
	"github.com/utafrali/apparelstore/pkg/httputil"
)

// ProductHandler handles back-office product management.
type ProductHandler struct {
	service *service.ProductService
	logger  *slog.Logger
}

// NewProductHandler creates a new product HTTP handler.
func NewProductHandler(svc *service.ProductService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{service: svc, logger: logger}
}

// List handles GET /api/v1/admin/products?search=&filter=.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.List(r.Context(), domain.ProductFilter{
		Search: r.URL.Query().Get("search"),
		Filter: r.URL.Query().Get("filter"),
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if products == nil {
		products = []domain.Product{}
	}
	httputil.WriteData(w, http.StatusOK, "", products)
}

// Create handles POST /api/v1/admin/products.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.ProductInput
	if !decodeJSON(w, r, &req) {
		return
	}

	product, err := h.service.Create(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusCreated, "Product created", product)
}

// Get handles GET /api/v1/admin/products/{id}.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, "", product)
}

// Update handles PUT /api/v1/admin/products/{id}.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req service.ProductInput
	if !decodeJSON(w, r, &req) {
		return
	}

	product, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, "Product updated", product)
}

// Delete handles DELETE /api/v1/admin/products/{id}.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, "Product deleted", nil)
}
