package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Cache backends
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port      string
	Env       string
	LogFormat string

	// Translation defaults
	DefaultChain     string
	DefaultLanguage  string
	PreloadLanguages []string
	CustomChainsPath string

	// Result cache configuration
	CacheBackend   string
	CacheTTL       time.Duration
	CacheMaxSizeMB int

	// Redis configuration
	RedisURL      string
	RedisPassword string

	// Admin JWT configuration
	AdminJWTSecret string

	// HTTP configuration
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		Env:              getEnv("ENV", "development"),
		LogFormat:        getEnv("LOG_FORMAT", ""),
		DefaultChain:     getEnv("DEFAULT_CHAIN", "ethereum"),
		DefaultLanguage:  getEnv("DEFAULT_LANGUAGE", "en"),
		PreloadLanguages: getEnvAsSlice("PRELOAD_LANGUAGES", nil),
		CustomChainsPath: getEnv("CUSTOM_CHAINS_PATH", ""),
		CacheBackend:     strings.ToLower(getEnv("CACHE_BACKEND", CacheMemory)),
		CacheTTL:         getEnvAsDuration("CACHE_TTL", 10*time.Minute),
		CacheMaxSizeMB:   getEnvAsInt("CACHE_MAX_SIZE_MB", 64),
		RedisURL:         getEnv("REDIS_URL", "redis://localhost:6379/0"),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		AdminJWTSecret:   getEnv("ADMIN_JWT_SECRET", ""),
		AllowedOrigins:   getEnvAsSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
		RateLimitRPS:     getEnvAsFloat("RATE_LIMIT_RPS", 20),
		RateLimitBurst:   getEnvAsInt("RATE_LIMIT_BURST", 40),
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures the configuration is usable
func (c *Config) Validate() error {
	switch c.CacheBackend {
	case CacheNone, CacheMemory:
	case CacheRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when CACHE_BACKEND=redis")
		}
	default:
		return fmt.Errorf("CACHE_BACKEND must be one of none, memory, redis (got %q)", c.CacheBackend)
	}

	if c.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive")
	}

	if c.CacheMaxSizeMB <= 0 {
		return fmt.Errorf("CACHE_MAX_SIZE_MB must be positive")
	}

	// Admin endpoints are disabled without a secret; a short one is rejected
	if c.AdminJWTSecret != "" && len(c.AdminJWTSecret) < 32 {
		return fmt.Errorf("ADMIN_JWT_SECRET must be at least 32 characters long")
	}

	if c.AdminJWTSecret == "" && c.IsProduction() {
		return fmt.Errorf("ADMIN_JWT_SECRET is required in production")
	}

	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}

	return nil
}

// AdminEnabled reports whether the admin endpoints are served
func (c *Config) AdminEnabled() bool {
	return c.AdminJWTSecret != ""
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer with a default value
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsFloat gets an environment variable as a float with a default value
func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvAsDuration gets an environment variable as a duration with a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvAsSlice splits a comma-separated environment variable
func getEnvAsSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
