package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	httpmiddleware "github.com/wolfman30/telehealth-ussd/internal/http/middleware"
	"github.com/wolfman30/telehealth-ussd/internal/ussd"
	"github.com/wolfman30/telehealth-ussd/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger          *logging.Logger
	USSDHandler     *ussd.Handler
	AdminAuthSecret string
	MetricsHandler  http.Handler

	// RateLimitRPS and RateLimitBurst bound callbacks per phone number.
	// Zero RPS disables the limiter.
	RateLimitRPS   float64
	RateLimitBurst int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	if cfg == nil || cfg.USSDHandler == nil {
		panic("router: ussd handler cannot be nil")
	}
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(httpmiddleware.RequestLogger(cfg.Logger))

	// Public endpoints (gateway callback, health checks)
	r.Group(func(public chi.Router) {
		public.Get("/health", cfg.USSDHandler.HealthCheck)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}

		if cfg.RateLimitRPS > 0 {
			limit := httpmiddleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst, httpmiddleware.ByFormField("phoneNumber"))
			public.With(limit).Post("/ussd", cfg.USSDHandler.Callback)
		} else {
			public.Post("/ussd", cfg.USSDHandler.Callback)
		}
	})

	// Session inspection for support staff (protected by JWT)
	if cfg.AdminAuthSecret != "" {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			admin.Get("/sessions/{id}", cfg.USSDHandler.GetSession)
			admin.Delete("/sessions/{id}", cfg.USSDHandler.DeleteSession)
		})
	}

	return r
}
