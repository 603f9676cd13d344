package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"proformacli/internal/config"
	apierrors "proformacli/internal/errors"
	custommw "proformacli/internal/middleware"
)

// RouterDeps bundles everything the router mounts.
type RouterDeps struct {
	Uploads      *UploadHandler
	Analyses     *AnalysisHandler
	Health       *HealthHandler
	ErrorHandler *apierrors.ErrorHandler
	OTel         *custommw.OTelMiddleware
	Metrics      http.Handler
	Logger       *slog.Logger
}

// NewRouter builds the chi mux with the full middleware chain and all API
// routes mounted under /api/v1.
func NewRouter(cfg config.ServerConfig, deps RouterDeps) chi.Router {
	r := chi.NewRouter()

	r.Use(custommw.RequestID)
	r.Use(custommw.RealIP)
	if deps.OTel != nil {
		r.Use(deps.OTel.Handler)
	}
	r.Use(custommw.StructuredLogger(deps.Logger))
	r.Use(custommw.Recoverer(deps.Logger))
	r.Use(custommw.SecurityHeaders)
	r.Use(custommw.Compress(5))
	r.Use(custommw.StripSlashes)
	r.Use(custommw.CORS(custommw.CORSConfig{
		AllowedOrigins: cfg.AllowedOrigins,
		Logger:         deps.Logger,
	}))
	r.Use(custommw.Timeout(cfg.WriteTimeout, deps.Logger))

	if cfg.RateLimitRPS > 0 {
		limiter := custommw.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, deps.Logger)
		r.Use(limiter.Handler)
	}

	r.NotFound(deps.ErrorHandler.NotFound)
	r.MethodNotAllowed(deps.ErrorHandler.MethodNotAllowed)

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/uploads", deps.Uploads.Routes())
		r.Mount("/analyses", deps.Analyses.Routes())
		r.Mount("/health", deps.Health.Routes())
	})

	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	return r
}
