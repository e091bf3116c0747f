package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"infinite-experiment/airtrack/internal/api"
	"infinite-experiment/airtrack/internal/logging"
	"infinite-experiment/airtrack/internal/middleware"
)

// Inbound limits per client IP
const (
	clientRPS   = 5
	clientBurst = 20
)

func RegisterRoutes(deps *api.Dependencies, upSince time.Time) http.Handler {

	// initialize Chi router
	r := chi.NewRouter()

	// global middleware
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.MetricsMiddleware(deps.Metrics))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	logging.Info("Router initialized with metrics and logging middleware")

	// health check
	r.Get("/healthCheck", api.HealthCheckHandler(deps.Services.Store, deps.Config.Upstream.APIKey != "", upSince))

	handlers := api.NewHandlers(deps)
	limiter := middleware.NewRateLimiter(clientRPS, clientBurst, "127.0.0.1")

	RegisterAPIRoutes(r, deps, handlers, limiter)

	return r
}
