package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Provider environments map to fixed endpoint pairs; the selector is the only
// thing configured, never raw URLs.
const (
	ProviderEnvLocal      = "local"
	ProviderEnvStaging    = "staging"
	ProviderEnvProduction = "production"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv          string
	Port            string
	ProviderEnv     string
	ProviderRESTURL string
	ProviderSockURL string
	ProviderAPIKey  string
	AllowedOrigins  []string
	CompletionDelay time.Duration
	CleanupDelay    time.Duration
	HTTPReadTimeout time.Duration
	HTTPIdleTimeout time.Duration
	RateLimitPerMin int
}

// LoadConfig loads configuration from environment variables and applies
// defaults where needed. The provider API key is deliberately optional:
// without it the process boots in degraded mode and generation requests are
// rejected until a key is supplied.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:          getEnv("APP_ENV", "development"),
		Port:            getEnv("PORT", "8080"),
		ProviderEnv:     getEnv("ARTBOX_ENV", ProviderEnvLocal),
		ProviderAPIKey:  strings.TrimSpace(os.Getenv("ARTBOX_API_KEY")),
		AllowedOrigins:  getEnvList("ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		CompletionDelay: time.Millisecond * time.Duration(getEnvInt("COMPLETION_DELAY_MS", 2000)),
		CleanupDelay:    time.Millisecond * time.Duration(getEnvInt("CLEANUP_DELAY_MS", 600000)),
		HTTPReadTimeout: time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPIdleTimeout: time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin: getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
	}

	switch cfg.ProviderEnv {
	case ProviderEnvLocal:
		cfg.ProviderRESTURL = "http://localhost:9400"
		cfg.ProviderSockURL = "ws://localhost:9400/v1/events"
	case ProviderEnvStaging:
		cfg.ProviderRESTURL = "https://api-staging.artbox.dev"
		cfg.ProviderSockURL = "wss://api-staging.artbox.dev/v1/events"
	case ProviderEnvProduction:
		cfg.ProviderRESTURL = "https://api.artbox.dev"
		cfg.ProviderSockURL = "wss://api.artbox.dev/v1/events"
	default:
		return nil, fmt.Errorf("ARTBOX_ENV must be one of local, staging, production; got %q", cfg.ProviderEnv)
	}

	if cfg.CompletionDelay < 0 {
		return nil, fmt.Errorf("COMPLETION_DELAY_MS must not be negative")
	}
	if cfg.CleanupDelay < 0 {
		return nil, fmt.Errorf("CLEANUP_DELAY_MS must not be negative")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
