package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/LeomirDias/gpmd-sys/internal/config"
	"github.com/LeomirDias/gpmd-sys/internal/infra/http/handlers"
	"github.com/LeomirDias/gpmd-sys/internal/infra/http/middleware"
)

type routes struct {
	lead    *handlers.LeadHandler
	webhook *handlers.WebhookHandler
	health  *handlers.HealthHandler
}

func newRouter(cfg *config.Config, logg *zap.Logger, h routes) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	if cfg.TrustProxyHeaders {
		r.Use(chimw.RealIP)
	}
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	limiter := middleware.NewIPRateLimiter(cfg.LeadRateLimit, cfg.LeadRateLimitWindow, logg)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.BearerAuth(cfg.LeadAPIToken))
			r.Use(limiter.Middleware)
			r.Post("/leads", h.lead.CaptureLead)
			r.Patch("/leads", h.lead.UpdateLead)
		})
		// autenticado pelo secret no corpo
		r.Post("/webhooks/send-product", h.webhook.Handle)
	})

	r.Get("/health", h.health.Handle)
	r.Handle("/metrics", promhttp.Handler())
	return r
}
