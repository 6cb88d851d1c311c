package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/xlaiver/cl4projectsurebet-vip/internal/pix"
)

type CatalogHandler struct {
	store Storefront
}

func NewCatalogHandler(store Storefront) *CatalogHandler {
	return &CatalogHandler{store: store}
}

func (h *CatalogHandler) ListPlans(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.store.Plans())
}

func (h *CatalogHandler) GetPlan(w http.ResponseWriter, r *http.Request) {
	id, ok := planIDParam(w, r, "id")
	if !ok {
		return
	}
	plan, err := h.store.Plan(id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, plan)
}

// PlanPix returns the plan's PIX copy-and-paste code as plain text.
func (h *CatalogHandler) PlanPix(w http.ResponseWriter, r *http.Request) {
	id, ok := planIDParam(w, r, "id")
	if !ok {
		return
	}
	plan, err := h.store.Plan(id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if plan.PaymentReference == "" {
		handleServiceError(w, r, pix.ErrNoReference)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(plan.PaymentReference))
}

func (h *CatalogHandler) PlanPixQR(w http.ResponseWriter, r *http.Request) {
	id, ok := planIDParam(w, r, "id")
	if !ok {
		return
	}

	// Optional size, clamped by pix.QRCode
	size := 0
	if s := r.URL.Query().Get("size"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_size", "size must be an integer")
			return
		}
		size = n
	}

	plan, err := h.store.Plan(id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	png, err := pix.QRCode(plan.PaymentReference, size)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

func planIDParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_plan_id", "plan id must be a positive integer")
		return 0, false
	}
	return id, true
}
