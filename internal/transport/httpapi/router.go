package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/kislikjeka/chainerr/internal/metrics"
	"github.com/kislikjeka/chainerr/internal/transport/httpapi/handler"
	"github.com/kislikjeka/chainerr/internal/transport/httpapi/middleware"
	"github.com/kislikjeka/chainerr/pkg/logger"
)

// Config holds router configuration
type Config struct {
	Logger             *logger.Logger
	Metrics            *metrics.Metrics
	AllowedOrigins     []string
	RateLimitRPS       float64
	RateLimitBurst     int
	TranslateHandler   *handler.TranslateHandler
	ChainHandler       *handler.ChainHandler
	CustomChainHandler *handler.CustomChainHandler
	LocaleHandler      *handler.LocaleHandler
	HealthHandler      *handler.HealthHandler
	// AdminMiddleware guards registry mutations. Without it the admin
	// routes are not mounted.
	AdminMiddleware func(http.Handler) http.Handler
}

// NewRouter creates a new HTTP router
func NewRouter(cfg Config) *chi.Mux {
	if cfg.Logger == nil {
		cfg.Logger = logger.Discard()
	}
	if cfg.HealthHandler == nil {
		cfg.HealthHandler = handler.NewHealthHandler(nil)
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logger(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(chimiddleware.Compress(5))
	if cfg.RateLimitRPS > 0 && cfg.RateLimitBurst > 0 {
		r.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
	}

	// Health check endpoints (no authentication required)
	r.Get("/health", cfg.HealthHandler.GetHealth)
	r.Get("/health/live", handler.GetLiveness)

	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.TranslateHandler != nil {
			r.Post("/translate", cfg.TranslateHandler.Translate)
		}

		if cfg.ChainHandler != nil {
			r.Get("/chains", cfg.ChainHandler.ListChains)
			r.Get("/chains/{id}", cfg.ChainHandler.GetChain)
			r.Get("/ecosystems", cfg.ChainHandler.ListEcosystems)
		}

		if cfg.CustomChainHandler != nil {
			r.Get("/custom-chains", cfg.CustomChainHandler.ListCustomChains)
			r.Get("/custom-chains/{id}", cfg.CustomChainHandler.GetCustomChain)
		}

		if cfg.LocaleHandler != nil {
			r.Get("/languages", cfg.LocaleHandler.ListLanguages)
			r.Get("/i18n/translate", cfg.LocaleHandler.TranslateKey)
		}

		// Admin routes (require an admin JWT)
		if cfg.AdminMiddleware != nil {
			r.Group(func(r chi.Router) {
				r.Use(cfg.AdminMiddleware)

				if cfg.CustomChainHandler != nil {
					r.Post("/custom-chains", cfg.CustomChainHandler.CreateCustomChain)
					r.Delete("/custom-chains", cfg.CustomChainHandler.ClearCustomChains)
					r.Delete("/custom-chains/{id}", cfg.CustomChainHandler.DeleteCustomChain)
				}

				if cfg.LocaleHandler != nil {
					r.Put("/locales/{lang}", cfg.LocaleHandler.PutLocale)
					r.Patch("/locales/{lang}/overrides", cfg.LocaleHandler.PatchOverrides)
					r.Delete("/locales/{lang}/overrides", cfg.LocaleHandler.DeleteOverrides)
				}
			})
		}
	})

	return r
}
