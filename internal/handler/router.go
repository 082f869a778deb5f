package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/event-booking/internal/logger"
	"github.com/Shivanand-hulikatti/event-booking/internal/telemetry"
)

// RouterConfig carries everything NewRouter wires together. Idempotency is
// optional; a nil store disables it.
type RouterConfig struct {
	Handler        *Handler
	DB             Pinger
	JWTSecret      string
	AllowedOrigin  string
	Idempotency    IdempotencyStore
	IdempotencyTTL time.Duration
	Log            *zap.Logger
}

// NewRouter builds the chi router with the global middleware stack and all
// API routes.
func NewRouter(cfg RouterConfig) http.Handler {
	log := logger.OrNop(cfg.Log)
	h := cfg.Handler
	auth := Authenticate(cfg.JWTSecret)

	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(telemetry.Middleware)
	r.Use(Logger(log))
	r.Use(CORS(cfg.AllowedOrigin))

	r.Get("/health", HealthCheck(cfg.DB))

	r.Route("/events", func(r chi.Router) {
		r.Get("/", h.ListEvents)
		r.Get("/{id}", h.GetEvent)

		r.Group(func(r chi.Router) {
			r.Use(auth)
			r.Post("/", h.CreateEvent)
			r.Delete("/{id}", h.DeleteEvent)
			r.Get("/{id}/bookings", h.ListEventBookings)
		})
	})

	r.Route("/bookings", func(r chi.Router) {
		r.Use(auth)
		r.Get("/", h.ListUserBookings)
		r.With(Idempotency(cfg.Idempotency, cfg.IdempotencyTTL, log)).Post("/", h.CreateBooking)
		r.Delete("/{id}", h.CancelBooking)
	})

	return r
}
