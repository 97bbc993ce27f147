package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	setCoreEnvEmpty(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BindAddr != ":8080" {
		t.Fatalf("BindAddr = %q, want %q", cfg.BindAddr, ":8080")
	}
	if cfg.RetellBaseURL != "https://api.retellai.com" {
		t.Fatalf("RetellBaseURL = %q, want default", cfg.RetellBaseURL)
	}
	if cfg.RetellAPIKey != "" || cfg.RetellFromNumber != "" {
		t.Fatalf("secrets should default to empty, got key=%q from=%q", cfg.RetellAPIKey, cfg.RetellFromNumber)
	}
	if cfg.RetellHTTPTimeout != 0 {
		t.Fatalf("RetellHTTPTimeout = %v, want 0", cfg.RetellHTTPTimeout)
	}
	if !cfg.CallLogEnabled {
		t.Fatalf("CallLogEnabled = false, want true")
	}
	if cfg.TraceExporter != "none" {
		t.Fatalf("TraceExporter = %q, want none", cfg.TraceExporter)
	}
}

func TestLoadReadsRetellSettings(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("RETELL_API_KEY", "  key_123 \n")
	t.Setenv("RETELL_FROM_NUMBER", "+14154154155")
	t.Setenv("RETELL_API_BASE_URL", "http://localhost:7777/")
	t.Setenv("RETELL_HTTP_TIMEOUT", "5s")
	t.Setenv("CALL_LOG_ENABLED", "off")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.RetellAPIKey != "key_123" {
		t.Fatalf("RetellAPIKey = %q, want trimmed value", cfg.RetellAPIKey)
	}
	if cfg.RetellFromNumber != "+14154154155" {
		t.Fatalf("RetellFromNumber = %q", cfg.RetellFromNumber)
	}
	if cfg.RetellBaseURL != "http://localhost:7777" {
		t.Fatalf("RetellBaseURL = %q, want trailing slash trimmed", cfg.RetellBaseURL)
	}
	if cfg.RetellHTTPTimeout != 5*time.Second {
		t.Fatalf("RetellHTTPTimeout = %v, want 5s", cfg.RetellHTTPTimeout)
	}
	if cfg.CallLogEnabled {
		t.Fatalf("CallLogEnabled = true, want false")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"APP_SHUTDOWN_TIMEOUT":  "soon",
		"RETELL_HTTP_TIMEOUT":   "-1s",
		"CALL_LOG_RECENT_LIMIT": "0",
		"CALL_LOG_ENABLED":      "maybe",
		"TRACE_EXPORTER":        "jaeger",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			setCoreEnvEmpty(t)
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Fatalf("Load() with %s=%q expected error", key, value)
			}
		})
	}
}

func setCoreEnvEmpty(t *testing.T) {
	t.Helper()
	keys := []string{
		"APP_BIND_ADDR",
		"APP_SHUTDOWN_TIMEOUT",
		"APP_METRICS_NAMESPACE",
		"RETELL_API_KEY",
		"RETELL_FROM_NUMBER",
		"RETELL_API_BASE_URL",
		"RETELL_HTTP_TIMEOUT",
		"CALL_LOG_ENABLED",
		"CALL_LOG_RECENT_LIMIT",
		"DATABASE_URL",
		"TRACE_EXPORTER",
	}
	for _, key := range keys {
		t.Setenv(key, "")
	}
}
