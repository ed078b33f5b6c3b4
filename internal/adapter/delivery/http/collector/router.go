// Package collector provides the HTTP API of the log collector service.
package collector

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/vadimbarashkov/shorturls/internal/metrics"
	"github.com/vadimbarashkov/shorturls/pkg/middleware/recoverer"
)

func NewRouter(logger *httplog.Logger, logUseCase logUseCase, m *metrics.Metrics) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"POST", "GET", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Accept"},
		MaxAge:         84600,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(m.Middleware)
	r.Use(httplog.RequestLogger(logger))
	r.Use(recoverer.New(logger.Logger))

	r.NotFound(notFound)
	r.MethodNotAllowed(methodNotAllowed)

	h := newLogHandler(logUseCase, m, logger.Logger)

	r.Get("/health", h.health)
	r.Handle("/metrics", m.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/logs", func(r chi.Router) {
			r.Post("/", h.collect)
			r.Get("/", h.query)
			r.Delete("/", h.clear)
		})
		r.Get("/stats", h.stats)
	})

	return r
}
