package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/apparelstore/internal/service"
	"github.com/utafrali/apparelstore/pkg/httputil"
	"github.com/utafrali/apparelstore/pkg/pagination"
	"github.com/utafrali/apparelstore/pkg/validator"
)

// AdminHandler serves the back-office login, dashboard and order views.
type AdminHandler struct {
	orders *service.OrderService
	stats  *service.StatsService
	auth   *service.AuthService
	logger *slog.Logger
}

// NewAdminHandler creates a new admin HTTP handler.
func NewAdminHandler(orders *service.OrderService, stats *service.StatsService, auth *service.AuthService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{orders: orders, stats: stats, auth: auth, logger: logger}
}

// Login handles POST /api/v1/admin/login.
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginInput
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validator.Validate(&req); err != nil {
		httputil.WriteValidationError(w, err, "Please enter your email and password")
		return
	}

	res, err := h.auth.Login(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, "", res)
}

// Stats handles GET /api/v1/admin/stats.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.Dashboard(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, "", stats)
}

// ListOrders handles GET /api/v1/admin/orders?page=&per_page=.
func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	p := pagination.FromRequest(r)

	orders, total, err := h.orders.List(r.Context(), p.Page, p.PerPage)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(orders, total, p.Page, p.PerPage))
}

// GetOrder handles GET /api/v1/admin/orders/{id}.
func (h *AdminHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, "", order)
}
