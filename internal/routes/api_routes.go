package routes

import (
	"github.com/go-chi/chi/v5"

	"infinite-experiment/airtrack/internal/api"
	"infinite-experiment/airtrack/internal/middleware"
)

// RegisterAPIRoutes registers all API v1 routes and handlers
func RegisterAPIRoutes(r chi.Router, deps *api.Dependencies, handlers *api.Handlers, limiter *middleware.RateLimiter) {
	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Use(limiter.Middleware)

		// Stateless resolver endpoints
		v1.Group(func(flights chi.Router) {
			flights.Use(middleware.InFlightMiddleware(deps.Metrics, "flights"))
			flights.Get("/flights/search", handlers.SearchFlights())
			flights.Get("/flights/detail", handlers.FlightDetail())
			flights.Get("/flights/map", handlers.FlightMap())
		})

		v1.Post("/sessions", handlers.CreateSession())

		// Session-scoped routes
		v1.Group(func(session chi.Router) {
			session.Use(middleware.SessionAuthMiddleware(deps.Services.Sessions))
			session.Get("/session/state", handlers.SessionState())
			session.Post("/session/search", handlers.SessionSearch())
			session.Post("/session/select", handlers.SessionSelect())
			session.Delete("/session/select", handlers.SessionClearSelection())
			session.Delete("/session", handlers.EndSession())
			session.Get("/session/stream", handlers.SessionStream())
		})
	})
}
