package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/apparelstore/internal/domain"
	"github.com/utafrali/apparelstore/internal/service"
	"github.com/utafrali/apparelstore/pkg/httputil"
	"github.com/utafrali/apparelstore/pkg/middleware"
)

// WishlistHandler handles HTTP requests for the session wishlist.
type WishlistHandler struct {
	service *service.WishlistService
	logger  *slog.Logger
}

// NewWishlistHandler creates a new wishlist HTTP handler.
func NewWishlistHandler(svc *service.WishlistService, logger *slog.Logger) *WishlistHandler {
	return &WishlistHandler{service: svc, logger: logger}
}

type wishlistResponse struct {
	Items domain.Wishlist `json:"items"`
	Count int             `json:"count"`
	Added *bool           `json:"added,omitempty"`
}

func newWishlistResponse(w domain.Wishlist) wishlistResponse {
	if w == nil {
		w = domain.Wishlist{}
	}
	return wishlistResponse{Items: w, Count: len(w)}
}

// List handles GET /api/v1/wishlist.
func (h *WishlistHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context(), middleware.SessionIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, "", newWishlistResponse(list))
}

// Toggle handles POST /api/v1/wishlist/toggle.
func (h *WishlistHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	var req service.WishlistItemInput
	if !decodeJSON(w, r, &req) {
		return
	}

	list, added, err := h.service.Toggle(r.Context(), middleware.SessionIDFromContext(r.Context()), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	resp := newWishlistResponse(list)
	resp.Added = &added
	message := "Removed from wishlist"
	if added {
		message = "Added to wishlist"
	}
	httputil.WriteData(w, http.StatusOK, message, resp)
}

// Add handles POST /api/v1/wishlist/items.
func (h *WishlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req service.WishlistItemInput
	if !decodeJSON(w, r, &req) {
		return
	}

	list, err := h.service.Add(r.Context(), middleware.SessionIDFromContext(r.Context()), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, "", newWishlistResponse(list))
}

// Contains handles GET /api/v1/wishlist/items/{productId}.
func (h *WishlistHandler) Contains(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")
	ok, err := h.service.Contains(r.Context(), middleware.SessionIDFromContext(r.Context()), productID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, "", map[string]any{"id": productID, "in_wishlist": ok})
}

// Remove handles DELETE /api/v1/wishlist/items/{productId}.
func (h *WishlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.Remove(r.Context(), middleware.SessionIDFromContext(r.Context()), chi.URLParam(r, "productId"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, "", newWishlistResponse(list))
}

// Clear handles DELETE /api/v1/wishlist.
func (h *WishlistHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Clear(r.Context(), middleware.SessionIDFromContext(r.Context())); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, "Wishlist cleared", nil)
}
