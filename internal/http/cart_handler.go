package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/xlaiver/cl4projectsurebet-vip/internal/domain"
	"github.com/xlaiver/cl4projectsurebet-vip/internal/session"
)

type CartHandler struct {
	store   Storefront
	timeout time.Duration
}

func NewCartHandler(store Storefront, timeout time.Duration) *CartHandler {
	return &CartHandler{store: store, timeout: timeout}
}

type AddItemRequestDTO struct {
	PlanID int64 `json:"plan_id"`
}

type UpdateQuantityRequestDTO struct {
	Quantity *int `json:"quantity"`
}

type NavigateRequestDTO struct {
	View session.View `json:"view"`
}

type CartResponse struct {
	Items     []domain.LineItem `json:"items"`
	Total     domain.Money      `json:"total"`
	ItemCount int               `json:"itemCount"`
	View      session.View      `json:"view"`
}

func newCartResponse(st *session.State) CartResponse {
	return CartResponse{
		Items:     st.Cart.Items(),
		Total:     st.Cart.Total(),
		ItemCount: st.Cart.ItemCount(),
		View:      st.View,
	}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	st, err := h.store.State(ctx, sessionIDFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newCartResponse(st))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	// Parse request body
	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	// Validate request
	if req.PlanID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_plan_id", "plan_id must be positive")
		return
	}

	// Add to cart and switch to the cart view
	st, err := h.store.AddItem(ctx, sessionIDFromContext(r.Context()), req.PlanID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, newCartResponse(st))
}

// UpdateQuantity accepts any integer; zero or below removes the line.
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	planID, ok := planIDParam(w, r, "plan_id")
	if !ok {
		return
	}

	// Parse request body
	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	// Validate request
	if req.Quantity == nil {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity is required")
		return
	}

	st, err := h.store.UpdateQuantity(ctx, sessionIDFromContext(r.Context()), planID, *req.Quantity)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newCartResponse(st))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	planID, ok := planIDParam(w, r, "plan_id")
	if !ok {
		return
	}

	st, err := h.store.RemoveItem(ctx, sessionIDFromContext(r.Context()), planID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newCartResponse(st))
}

func (h *CartHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req NavigateRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	// Validate request
	if !req.View.Valid() {
		respondError(w, http.StatusBadRequest, "invalid_view", "unknown view")
		return
	}

	st, err := h.store.Navigate(ctx, sessionIDFromContext(r.Context()), req.View)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newCartResponse(st))
}
