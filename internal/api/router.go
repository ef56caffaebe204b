package api

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/warelabs/warelay/internal/api/middleware"
	"github.com/warelabs/warelay/internal/handlers"
)

// Options configures optional webhook protections.
type Options struct {
	// TwilioAuth rejects unsigned webhook calls when non-nil.
	TwilioAuth *middleware.TwilioAuth
	// RateLimiter throttles webhook senders when non-nil.
	RateLimiter *middleware.SenderLimiter
	// MaxBodyBytes caps inbound request bodies when > 0.
	MaxBodyBytes int64
}

// NewRouter creates and configures the HTTP router.
func NewRouter(logger zerolog.Logger, h *handlers.Handler, opts Options) *chi.Mux {
	r := chi.NewRouter()

	// Metrics middleware (first to capture all requests)
	r.Use(middleware.Metrics)

	// Security middleware
	r.Use(middleware.SecurityHeaders)
	if opts.MaxBodyBytes > 0 {
		r.Use(middleware.MaxBodySize(opts.MaxBodyBytes))
	}

	// Standard middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)

	// Metrics endpoint (for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	// Public routes
	r.Get("/", h.Root)
	r.Get("/health", h.Health)

	// Provider webhook (rate limiting and signature checks when configured)
	r.Group(func(r chi.Router) {
		if opts.RateLimiter != nil {
			r.Use(opts.RateLimiter.Middleware)
		}
		if opts.TwilioAuth != nil {
			r.Use(opts.TwilioAuth.RequireSignature)
		}
		r.Post("/whatsapp", h.Webhook)
	})

	return r
}
