package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jmoiron/sqlx"

	"vatwatch/internal/api"
	"vatwatch/internal/common"
	"vatwatch/internal/metrics"
	"vatwatch/internal/middleware"
	"vatwatch/internal/pipeline"
)

// RegisterRoutes wires the read API. The /metrics endpoint is mounted by the
// caller on the raw mux so it bypasses the rate limiter.
func RegisterRoutes(
	handlers *api.Handlers,
	metricsReg *metrics.MetricsRegistry,
	db *sqlx.DB,
	cache common.CacheInterface,
	poller *pipeline.Poller,
	writer *pipeline.BatchWriter,
	upSince time.Time,
) http.Handler {
	r := chi.NewRouter()

	// global middleware
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.MetricsMiddleware(metricsReg))
	r.Use(middleware.RateLimitMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://localhost:*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthCheck", api.HealthCheckHandler(db, cache, poller, writer, upSince))

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", handlers.Status)

		r.Route("/flights", func(r chi.Router) {
			r.Get("/", handlers.ListFlights)
			r.Get("/summaries", handlers.ListFlightSummaries)
			r.Post("/summaries/process", handlers.ProcessSummaries)
			r.Get("/{callsign}", handlers.GetFlight)
		})

		r.Route("/controllers", func(r chi.Router) {
			r.Get("/", handlers.ListControllers)
			r.Get("/summaries", handlers.ListControllerSummaries)
		})

		r.Route("/sectors", func(r chi.Router) {
			r.Get("/", handlers.ListSectors)
			r.Get("/occupancy", handlers.ListSectorOccupancy)
		})
	})

	return r
}
