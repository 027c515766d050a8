package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/apparelstore/internal/service"
	"github.com/utafrali/apparelstore/pkg/httputil"
	"github.com/utafrali/apparelstore/pkg/middleware"
)

// CartHandler handles HTTP requests for the session cart.
type CartHandler struct {
	service *service.CartService
	logger  *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(svc *service.CartService, logger *slog.Logger) *CartHandler {
	return &CartHandler{service: svc, logger: logger}
}

// Get handles GET /api/v1/cart.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	cart, err := h.service.Get(r.Context(), middleware.SessionIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, "", cart.Summarize())
}

// AddItem handles POST /api/v1/cart/items.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req service.AddItemInput
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	cart, err := h.service.AddItem(r.Context(), middleware.SessionIDFromContext(r.Context()), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, "Added to cart", cart.Summarize())
}

// UpdateQuantity handles PUT /api/v1/cart/items/{productId}?size=.
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateQuantityInput
	if !decodeJSON(w, r, &req) {
		return
	}

	cart, err := h.service.UpdateQuantity(r.Context(),
		middleware.SessionIDFromContext(r.Context()),
		chi.URLParam(r, "productId"),
		r.URL.Query().Get("size"),
		req.Quantity,
	)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, "", cart.Summarize())
}

// RemoveItem handles DELETE /api/v1/cart/items/{productId}?size=.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	cart, err := h.service.RemoveItem(r.Context(),
		middleware.SessionIDFromContext(r.Context()),
		chi.URLParam(r, "productId"),
		r.URL.Query().Get("size"),
	)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, "", cart.Summarize())
}

// Clear handles DELETE /api/v1/cart.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Clear(r.Context(), middleware.SessionIDFromContext(r.Context())); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, "Cart cleared", nil)
}
