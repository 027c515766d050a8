package http

import (
	"log/slog"
	"net/http"

	"github.com/utafrali/apparelstore/internal/service"
	"github.com/utafrali/apparelstore/pkg/httputil"
	"github.com/utafrali/apparelstore/pkg/middleware"
)

// CheckoutHandler handles order submission.
type CheckoutHandler struct {
	service *service.CheckoutService
	logger  *slog.Logger
}

// NewCheckoutHandler creates a new checkout HTTP handler.
func NewCheckoutHandler(svc *service.CheckoutService, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{service: svc, logger: logger}
}

// Submit handles POST /api/v1/checkout.
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req service.CheckoutInput
	if !decodeJSON(w, r, &req) {
		return
	}

	order, err := h.service.Submit(r.Context(), middleware.SessionIDFromContext(r.Context()), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusCreated, "Order placed successfully", order)
}
