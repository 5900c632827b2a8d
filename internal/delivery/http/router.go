package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"devevent/internal/delivery/http/controllers"
	"devevent/internal/delivery/http/middleware"
	"devevent/internal/metrics"
)

// RouterConfig groups the controllers and cross-cutting settings the router wires together.
type RouterConfig struct {
	Logger             *slog.Logger
	Events             *controllers.EventController
	Bookings           *controllers.BookingController
	Health             *controllers.HealthController
	BookingRateLimiter *middleware.RateLimiter
	AllowedOrigins     []string
}

// NewRouter initializes the HTTP router with all application routes and wraps it
// in the request id, logging, metrics and CORS middleware.
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	// Events
	mux.HandleFunc("GET /events", cfg.Events.ListEvents)
	mux.HandleFunc("POST /events", cfg.Events.CreateEvent)
	mux.HandleFunc("GET /events/{slug}", cfg.Events.GetEventBySlug)

	// Bookings
	createBooking := cfg.Bookings.CreateBooking
	if cfg.BookingRateLimiter != nil {
		createBooking = cfg.BookingRateLimiter.Wrap(createBooking)
	}
	mux.HandleFunc("POST /events/{eventID}/bookings", createBooking)
	mux.HandleFunc("GET /events/{slug}/bookings/count", cfg.Bookings.CountBookings)

	// Operations
	mux.HandleFunc("GET /healthz", cfg.Health.Health)
	mux.Handle("GET /metrics", metrics.Handler())

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	var handler http.Handler = mux
	handler = middleware.CORS(cfg.AllowedOrigins, handler)
	handler = middleware.Metrics(handler)
	handler = middleware.LoggingMiddleware(cfg.Logger, handler)
	handler = middleware.RequestID(handler)
	return handler
}
