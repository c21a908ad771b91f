// Package router assembles the HTTP surface: the public submission
// endpoint, health and metrics, and the JWT-protected admin group.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	httpmiddleware "github.com/brightsites/leadflow/internal/http/middleware"
	"github.com/brightsites/leadflow/internal/secrets"
	"github.com/brightsites/leadflow/internal/submission"
	"github.com/brightsites/leadflow/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger             *logging.Logger
	SubmissionHandler  *submission.Handler
	SecretsHandler     *secrets.Handler
	AdminAuthSecret    string
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// Transport-level flood guard for the public submission endpoint.
	GuardRate  float64
	GuardBurst int
}

// New creates a new Chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}
	r.Use(httpmiddleware.Tenant)

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ok"))
		})
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		if cfg.SubmissionHandler != nil {
			public.Route("/v1/leads", func(r chi.Router) {
				if cfg.GuardRate > 0 && cfg.GuardBurst > 0 {
					r.Use(httpmiddleware.RateLimit(cfg.GuardRate, cfg.GuardBurst))
				}
				r.Post("/", cfg.SubmissionHandler.Submit)
			})
		}
	})

	// Admin routes, protected by JWT. An empty secret keeps the group
	// registered but every request is rejected by the middleware.
	r.Route("/admin", func(admin chi.Router) {
		admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
		if cfg.SubmissionHandler != nil {
			admin.Post("/leads/{leadID}/resync", cfg.SubmissionHandler.Resync)
		}
		if cfg.SecretsHandler != nil {
			admin.Put("/tenants/{tenantID}/secrets/{key}", cfg.SecretsHandler.PutSecret)
		}
	})

	return r
}
