package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kislikjeka/chainerr/internal/infra/memory"
	infraRedis "github.com/kislikjeka/chainerr/internal/infra/redis"
	"github.com/kislikjeka/chainerr/internal/metrics"
	"github.com/kislikjeka/chainerr/internal/transport/httpapi"
	"github.com/kislikjeka/chainerr/internal/transport/httpapi/handler"
	"github.com/kislikjeka/chainerr/internal/transport/httpapi/middleware"
	"github.com/kislikjeka/chainerr/pkg/config"
	"github.com/kislikjeka/chainerr/pkg/logger"
	"github.com/kislikjeka/chainerr/pkg/translator"
)

func main() {
	// Create context that listens for termination signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewWithFormat(cfg.Env, cfg.LogFormat, os.Stdout)
	log.Info("Starting chainerr API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"cache", cfg.CacheBackend,
	)

	m := metrics.New()

	opts := []translator.Option{
		translator.WithLogger(log),
		translator.WithMetrics(m),
		translator.WithDefaultChain(cfg.DefaultChain),
	}

	// Initialize the result cache
	var cachePinger handler.Pinger
	switch cfg.CacheBackend {
	case config.CacheMemory:
		memCache, err := memory.NewCache(cfg.CacheTTL, cfg.CacheMaxSizeMB, log)
		if err != nil {
			log.Error("Failed to create in-memory cache", "error", err)
			os.Exit(1)
		}
		defer memCache.Close()
		opts = append(opts, translator.WithCache(memCache))
		log.Info("In-memory result cache enabled", "ttl", cfg.CacheTTL, "max_size_mb", cfg.CacheMaxSizeMB)

	case config.CacheRedis:
		redisClient, err := infraRedis.NewClient(cfg.RedisURL, cfg.RedisPassword)
		if err != nil {
			log.Error("Invalid Redis configuration", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()

		redisCache := infraRedis.NewCacheWithTTL(redisClient, cfg.CacheTTL, log)
		if err := redisCache.Ping(ctx); err != nil {
			log.Error("Failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		cachePinger = redisCache
		opts = append(opts, translator.WithCache(redisCache))
		log.Info("Redis connection established")

	default:
		log.Info("Result cache disabled")
	}

	tr := translator.New(opts...)

	// Load language bundles
	for _, lang := range append(cfg.PreloadLanguages, cfg.DefaultLanguage) {
		if err := tr.I18n().LoadLanguage(lang); err != nil {
			log.Warn("Failed to load language bundle", "language", lang, "error", err)
		}
	}
	tr.I18n().SetCurrentLanguage(cfg.DefaultLanguage)

	// Register custom chains from file
	if cfg.CustomChainsPath != "" {
		chains, err := config.LoadCustomChainsFile(cfg.CustomChainsPath)
		if err != nil {
			log.Error("Failed to load custom chains", "path", cfg.CustomChainsPath, "error", err)
			os.Exit(1)
		}
		if err := chains.RegisterAll(tr.RegisterCustomChain); err != nil {
			log.Error("Failed to register custom chains", "error", err)
			os.Exit(1)
		}
		log.Info("Custom chains registered", "chains", chains.GetChainIDs())
	}

	// Admin routes are mounted only when a secret is configured
	var adminMiddleware func(http.Handler) http.Handler
	if cfg.AdminEnabled() {
		jwtSvc := middleware.NewJWTService(cfg.AdminJWTSecret)
		adminMiddleware = middleware.JWTMiddleware(jwtSvc, middleware.RoleAdmin)
	} else {
		log.Warn("ADMIN_JWT_SECRET not configured, admin endpoints disabled")
	}

	// Create HTTP router
	routerCfg := httpapi.Config{
		Logger:             log,
		Metrics:            m,
		AllowedOrigins:     cfg.AllowedOrigins,
		RateLimitRPS:       cfg.RateLimitRPS,
		RateLimitBurst:     cfg.RateLimitBurst,
		TranslateHandler:   handler.NewTranslateHandler(tr, log),
		ChainHandler:       handler.NewChainHandler(tr.Chains(), tr.Adapters()),
		CustomChainHandler: handler.NewCustomChainHandler(tr, log),
		LocaleHandler:      handler.NewLocaleHandler(tr.I18n(), log),
		HealthHandler:      handler.NewHealthHandler(cachePinger),
		AdminMiddleware:    adminMiddleware,
	}
	r := httpapi.NewRouter(routerCfg)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for termination signal
	<-ctx.Done()
	log.Info("Shutdown signal received")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("Server stopped gracefully")
}
