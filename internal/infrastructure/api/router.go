// Package api exposes the HTTP surface: sync, OAuth, connection, metrics
// and webhook endpoints.
package api

import (
	"net/http"

	"retentionos/internal/infrastructure/middleware"
	"retentionos/internal/infrastructure/pubsub"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Deps carries everything the router hands to its handlers
type Deps struct {
	Sync            SyncRunner
	Connections     ConnectionManager
	Metrics         MetricsReader
	WebhookVerifier WebhookVerifier
	Webhooks        WebhookDispatcher
	Events          *pubsub.SyncEventBus

	// Session authenticates dashboard and integration requests
	Session func(http.Handler) http.Handler
	Cookies *CookieSigner

	MetricsHandler http.Handler
	SiteURL        string
	AllowedOrigins []string
	SwaggerFile    string

	Logger zerolog.Logger
}

// NewRouter builds the chi router for the API server
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Integration-Key"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if d.MetricsHandler != nil {
		r.Handle("/metrics", d.MetricsHandler)
	}
	if d.SwaggerFile != "" {
		r.Get("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			http.ServeFile(w, r, d.SwaggerFile)
		})
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	r.Post("/webhooks/shopify", webhookHandler(d.WebhookVerifier, d.Webhooks, d.Logger))
	// Shopify redirects here without the dashboard session; the signed cookies carry the owner
	r.Get("/api/shopify/callback", shopifyCallbackHandler(d.Connections, d.Cookies, d.SiteURL, d.Logger))

	r.Group(func(r chi.Router) {
		r.Use(d.Session)

		r.Get("/api/shopify/auth", shopifyAuthHandler(d.Connections, d.Cookies, d.Logger))
		r.Post("/api/shopify/disconnect", disconnectHandler(d.Connections, d.Logger))
		r.Get("/api/shopify/status", statusHandler(d.Connections, d.Logger))
		r.Get("/api/shopify/products", productsHandler(d.Connections, d.Logger))

		r.Post("/api/sync/shopify", syncHandler(d.Sync, d.Logger))
		r.Get("/api/sync/runs", syncRunsHandler(d.Sync, d.Logger))
		if d.Events != nil {
			r.Get("/api/sync/events", syncEventsHandler(d.Events, d.Logger))
		}

		r.Route("/api/metrics", func(r chi.Router) {
			mountMetrics(r, d.Metrics, d.Logger)
		})
	})

	return r
}
