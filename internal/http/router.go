package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/xlaiver/cl4projectsurebet-vip/internal/auth"
	"github.com/xlaiver/cl4projectsurebet-vip/internal/session"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type RouterConfig struct {
	RequestTimeout time.Duration
	Tokens         *session.Tokens
	LoginLimiter   *auth.LoginLimiter
	SecureCookies  bool
	Logger         *slog.Logger
	// Ready reports whether the backing stores answer; nil means always ready.
	Ready func(ctx context.Context) error
}

func NewRouter(store Storefront, exporter CSVExporter, cfg RouterConfig) http.Handler {
	catalogHandler := NewCatalogHandler(store)
	cartHandler := NewCartHandler(store, cfg.RequestTimeout)
	checkoutHandler := NewCheckoutHandler(store, cfg.RequestTimeout)
	authHandler := NewAuthHandler(store, cfg.RequestTimeout)
	adminHandler := NewAdminHandler(store, exporter, cfg.RequestTimeout)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if cfg.Ready != nil {
			if err := cfg.Ready(r.Context()); err != nil {
				respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/plans", func(r chi.Router) {
			r.Get("/", catalogHandler.ListPlans)
			r.Get("/{id}", catalogHandler.GetPlan)
			r.Get("/{id}/pix", catalogHandler.PlanPix)
			r.Get("/{id}/pix.png", catalogHandler.PlanPixQR)
		})

		r.Group(func(r chi.Router) {
			r.Use(SessionMiddleware(cfg.Tokens, cfg.SecureCookies))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartHandler.GetCart)
				r.Post("/items", cartHandler.AddItem)
				r.Put("/items/{plan_id}", cartHandler.UpdateQuantity)
				r.Delete("/items/{plan_id}", cartHandler.RemoveItem)
			})
			r.Put("/session/view", cartHandler.Navigate)

			r.Get("/checkout", checkoutHandler.GetCheckout)
			r.Post("/checkout", checkoutHandler.SubmitCheckout)
			r.Get("/orders/last", checkoutHandler.LastOrder)

			r.Route("/auth", func(r chi.Router) {
				r.With(RateLimit(cfg.LoginLimiter)).Post("/login", authHandler.Login)
				r.Post("/logout", authHandler.Logout)
				r.Get("/session", authHandler.Session)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Get("/customers", adminHandler.ListCustomers)
				r.Get("/customers.csv", adminHandler.ExportCustomers)
			})
		})
	})

	return otelhttp.NewHandler(r, "storefront")
}
