package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// NewRouter mounts the storefront API under /api/v1.
func NewRouter(shop Shop, requestTimeout time.Duration, logger *zap.Logger) http.Handler {
	catalogHandler := NewCatalogHandler(shop, requestTimeout, logger)
	cartHandler := NewCartHandler(shop, requestTimeout, logger)
	rs := responder{logger: logger}

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Compress(5))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		rs.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/catalog", func(r chi.Router) {
			r.Get("/", catalogHandler.GetCatalog)
			r.Post("/refresh", catalogHandler.Refresh)
			r.Post("/next", catalogHandler.NextPage)
			r.Post("/prev", catalogHandler.PrevPage)
			r.Post("/{id}/select", catalogHandler.Select)
			r.Post("/{id}/increase", catalogHandler.Increase)
			r.Post("/{id}/decrease", catalogHandler.Decrease)
			r.Post("/{id}/confirm", catalogHandler.Confirm)
		})
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)
			r.Post("/checkout", cartHandler.Checkout)
			r.Post("/toggle", cartHandler.Toggle)
			r.Post("/{id}/increase", cartHandler.IncreaseItem)
			r.Post("/{id}/decrease", cartHandler.DecreaseItem)
		})
	})

	return otelhttp.NewHandler(r, "storefront")
}
