package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Issuer   string   // Required: expected token issuer
	Audience []string // Optional: accepted audiences (comma separated in env)
	JWKSURL  string   // Optional: provider JWKS endpoint (default: <issuer>/.well-known/jwks.json)

	JWKSRefreshCooldown time.Duration // Optional: min interval between miss-triggered JWKS fetches (default: 30s)

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)

	RateLimitRequests int           // Per-client requests per window (default: 100)
	RateLimitWindow   time.Duration // Rate limit window (default: 1m)
	RateLimitBurst    int           // Per-client burst (default: 100)
}

func LoadConfig() Config {
	cfg := Config{
		Issuer:              os.Getenv("AUTH_ISSUER"),
		Audience:            splitList(os.Getenv("AUTH_AUDIENCE")),
		JWKSURL:             os.Getenv("AUTH_JWKS_URL"),
		JWKSRefreshCooldown: getEnvDurationOrDefault("AUTH_JWKS_REFRESH_COOLDOWN", 30*time.Second),
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		RateLimitRequests:   getEnvIntOrDefault("RATELIMIT_REQUESTS", 100),
		RateLimitWindow:     getEnvDurationOrDefault("RATELIMIT_WINDOW", time.Minute),
		RateLimitBurst:      getEnvIntOrDefault("RATELIMIT_BURST", 100),
	}

	// The well-known path convention covers every provider we target.
	if cfg.JWKSURL == "" && cfg.Issuer != "" {
		cfg.JWKSURL = strings.TrimSuffix(cfg.Issuer, "/") + "/.well-known/jwks.json"
	}

	return cfg
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}
	return defaultValue
}
