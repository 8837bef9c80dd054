package api

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/eldtechnologies/lostfound/internal/api/middleware"
	"github.com/eldtechnologies/lostfound/internal/handlers"
	"github.com/eldtechnologies/lostfound/internal/store"
)

// RouterConfig carries the settings the router needs beyond its stores.
type RouterConfig struct {
	JWTSecret       string
	TimestampFormat string
	AllowedOrigins  []string
	// Limiter is created from RateLimit when nil.
	Limiter   *middleware.RateLimiter
	RateLimit middleware.RateLimiterConfig
}

// NewRouter creates and configures the HTTP router.
func NewRouter(logger zerolog.Logger, claims store.DataStore, chat store.ChatStore, cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Metrics middleware (first to capture all requests)
	r.Use(middleware.Metrics)

	// Security middleware (order matters!)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.MaxBodySize(16 * 1024))
	r.Use(middleware.ValidateRequest)

	// Standard middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	limiter := cfg.Limiter
	if limiter == nil {
		limiter = middleware.NewRateLimiter(logger, cfg.RateLimit)
	}

	h := handlers.NewHandler(claims, chat, logger, cfg.TimestampFormat)
	auth := middleware.NewAuthMiddleware(cfg.JWTSecret, logger)

	// Metrics endpoint (for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	// Public routes
	r.Get("/health", h.Health)
	r.Get("/api", h.Root)

	// Authenticated routes (require bearer token)
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireUser)
		r.Use(limiter.Middleware)

		r.Post("/api/claims", h.CreateClaim)
		r.Get("/api/claims/my", h.MyClaims)
		r.Get("/api/claims/{id}/chat", h.GetClaimChat)
		r.Post("/api/claims/{id}/chat", h.PostClaimChat)
		r.Get("/api/users/profile", h.Profile)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAdmin)

			r.Get("/api/admin/claims/pending", h.PendingClaims)
			r.Get("/api/admin/analytics", h.Analytics)
		})
	})

	return r
}
