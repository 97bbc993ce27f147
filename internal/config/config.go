package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config contains all runtime settings for the call proxy service.
type Config struct {
	BindAddr         string
	ShutdownTimeout  time.Duration
	MetricsNamespace string

	// RetellAPIKey and RetellFromNumber are server-held and never sent to clients.
	// Both may be empty at boot; requests that need them fail with a 500 envelope.
	RetellAPIKey      string
	RetellFromNumber  string
	RetellBaseURL     string
	RetellHTTPTimeout time.Duration

	CallLogEnabled     bool
	DatabaseURL        string
	CallLogRecentLimit int

	TraceExporter string
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:         envOrDefault("APP_BIND_ADDR", ":8080"),
		MetricsNamespace: envOrDefault("APP_METRICS_NAMESPACE", "shakti"),
		RetellAPIKey:     stringsTrimSpace("RETELL_API_KEY"),
		RetellFromNumber: stringsTrimSpace("RETELL_FROM_NUMBER"),
		RetellBaseURL:    envOrDefault("RETELL_API_BASE_URL", "https://api.retellai.com"),
		DatabaseURL:      stringsTrimSpace("DATABASE_URL"),
		TraceExporter:    strings.ToLower(envOrDefault("TRACE_EXPORTER", "none")),
		ShutdownTimeout:  15 * time.Second,
		// 0 leaves upstream calls to the transport's own timeouts.
		RetellHTTPTimeout:  0,
		CallLogEnabled:     true,
		CallLogRecentLimit: 50,
	}
	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.RetellHTTPTimeout, err = durationFromEnv("RETELL_HTTP_TIMEOUT", cfg.RetellHTTPTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.CallLogEnabled, err = boolFromEnv("CALL_LOG_ENABLED", cfg.CallLogEnabled)
	if err != nil {
		return Config{}, err
	}
	cfg.CallLogRecentLimit, err = intFromEnv("CALL_LOG_RECENT_LIMIT", cfg.CallLogRecentLimit)
	if err != nil {
		return Config{}, err
	}

	if cfg.RetellHTTPTimeout < 0 {
		return Config{}, fmt.Errorf("RETELL_HTTP_TIMEOUT must be >= 0")
	}
	if cfg.CallLogRecentLimit <= 0 {
		return Config{}, fmt.Errorf("CALL_LOG_RECENT_LIMIT must be positive")
	}
	switch cfg.TraceExporter {
	case "none", "stdout":
	default:
		return Config{}, fmt.Errorf("invalid TRACE_EXPORTER: %q (expected none|stdout)", cfg.TraceExporter)
	}
	cfg.RetellBaseURL = strings.TrimRight(strings.TrimSpace(cfg.RetellBaseURL), "/")
	if cfg.RetellBaseURL == "" {
		return Config{}, fmt.Errorf("RETELL_API_BASE_URL must not be empty")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func stringsTrimSpace(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(stringsTrimSpace(key))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s parse error: expected bool", key)
	}
}
