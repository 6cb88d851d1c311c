package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/xlaiver/cl4projectsurebet-vip/internal/admin"
	"github.com/xlaiver/cl4projectsurebet-vip/internal/domain"
)

type CSVExporter interface {
	ExportCSV(w io.Writer, customers []*domain.Customer) error
}

type AdminHandler struct {
	store    Storefront
	exporter CSVExporter
	timeout  time.Duration
	now      func() time.Time
}

func NewAdminHandler(store Storefront, exporter CSVExporter, timeout time.Duration) *AdminHandler {
	return &AdminHandler{store: store, exporter: exporter, timeout: timeout, now: time.Now}
}

type CustomersResponse struct {
	Customers []*domain.Customer `json:"customers"`
	Count     int                `json:"count"`
}

func (h *AdminHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	customers, err := h.store.Customers(ctx, sessionIDFromContext(r.Context()), r.URL.Query().Get("q"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if customers == nil {
		customers = []*domain.Customer{}
	}
	respondJSON(w, http.StatusOK, CustomersResponse{Customers: customers, Count: len(customers)})
}

// ExportCustomers downloads the filtered list as CSV.
func (h *AdminHandler) ExportCustomers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	customers, err := h.store.Customers(ctx, sessionIDFromContext(r.Context()), r.URL.Query().Get("q"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	// Render fully before writing headers
	var buf bytes.Buffer
	if err := h.exporter.ExportCSV(&buf, customers); err != nil {
		handleServiceError(w, r, err)
		return
	}

	// Send file
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, admin.Filename(h.now())))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
