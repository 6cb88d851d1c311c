package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/xlaiver/cl4projectsurebet-vip/internal/admin"
	"github.com/xlaiver/cl4projectsurebet-vip/internal/auth"
	"github.com/xlaiver/cl4projectsurebet-vip/internal/catalog"
	"github.com/xlaiver/cl4projectsurebet-vip/internal/checkout"
	"github.com/xlaiver/cl4projectsurebet-vip/internal/pix"
	"github.com/xlaiver/cl4projectsurebet-vip/internal/service"
)

// handleServiceError is the single place where domain errors become HTTP responses.
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCustomerInfo):
		respondError(w, http.StatusBadRequest, "invalid_customer_info", err.Error())
	case errors.Is(err, catalog.ErrPlanNotFound):
		respondError(w, http.StatusNotFound, "plan_not_found", "plan not found")
	case errors.Is(err, pix.ErrNoReference):
		respondError(w, http.StatusNotFound, "no_payment_reference", "plan has no payment reference")
	case errors.Is(err, service.ErrNoOrder):
		respondError(w, http.StatusNotFound, "no_order", "no completed order in this session")
	case errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusConflict, "empty_cart", "cart is empty")
	case errors.Is(err, checkout.ErrSaveFailed):
		respondRetryable(w, http.StatusBadGateway, "save_failed", "could not save your order, please try again")
	case errors.Is(err, auth.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password")
	case errors.Is(err, service.ErrUnauthorized):
		respondError(w, http.StatusUnauthorized, "unauthorized", "admin sign-in required")
	case errors.Is(err, admin.ErrCustomersUnavailable):
		respondRetryable(w, http.StatusServiceUnavailable, "customers_unavailable", "could not load customer records")
	case errors.Is(err, service.ErrSessionUnavailable):
		respondRetryable(w, http.StatusServiceUnavailable, "session_unavailable", "session temporarily unavailable")
	case errors.Is(err, context.DeadlineExceeded):
		respondRetryable(w, http.StatusGatewayTimeout, "timeout", "request timed out")
	default:
		slog.ErrorContext(r.Context(), "unhandled error", "path", r.URL.Path, "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
