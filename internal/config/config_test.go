package config

import (
	"os"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpFile, err := os.CreateTemp("", "driveplane-test-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	t.Cleanup(func() { os.Remove(tmpFile.Name()) })

	if _, err := tmpFile.WriteString(content); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	tmpFile.Close()
	return tmpFile.Name()
}

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := Load("")
	if err == nil {
		t.Fatal("expected error when DATABASE_URL is missing")
	}
	if err.Error() != "database_url is required (env: DATABASE_URL)" {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/test")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.HTTPPort != 6161 {
		t.Errorf("expected HTTPPort 6161, got %d", cfg.HTTPPort)
	}
	if cfg.TierCacheTTL != time.Minute {
		t.Errorf("expected TierCacheTTL 1m, got %v", cfg.TierCacheTTL)
	}
	if cfg.NotifyTimeout != 5*time.Second {
		t.Errorf("expected NotifyTimeout 5s, got %v", cfg.NotifyTimeout)
	}
	if cfg.NotifyQueueSize != 256 {
		t.Errorf("expected NotifyQueueSize 256, got %d", cfg.NotifyQueueSize)
	}
	if cfg.PurchaseFlow != "standard" {
		t.Errorf("expected PurchaseFlow standard, got %s", cfg.PurchaseFlow)
	}
	if cfg.LuxuryComboMultiplier != 1.5 {
		t.Errorf("expected LuxuryComboMultiplier 1.5, got %v", cfg.LuxuryComboMultiplier)
	}
	if cfg.RateLimit != 5 || cfg.RateLimitBurst != 10 {
		t.Errorf("expected rate limit 5/10, got %v/%d", cfg.RateLimit, cfg.RateLimitBurst)
	}
	if cfg.OTELEndpoint != "" {
		t.Errorf("expected tracing disabled by default, got %s", cfg.OTELEndpoint)
	}
	if cfg.NotifyWebhookURL != "" {
		t.Errorf("expected no webhook by default, got %s", cfg.NotifyWebhookURL)
	}
}

func TestLoad_EnvVarOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://custom/db")
	t.Setenv("PORT", "9999")
	t.Setenv("SYSTEM_SECRET", "s3cret")
	t.Setenv("NOTIFY_WEBHOOK_URL", "http://ui:3000/hooks/drive")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "otel-collector:4317")
	t.Setenv("TIER_CACHE_TTL", "30s")
	t.Setenv("PURCHASE_FLOW", "luxury")
	t.Setenv("LUXURY_COMBO_MULTIPLIER", "2")
	t.Setenv("RATE_LIMIT", "20")
	t.Setenv("RATE_LIMIT_BURST", "40")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.DatabaseURL != "postgres://custom/db" {
		t.Errorf("expected DatabaseURL from env, got %s", cfg.DatabaseURL)
	}
	if cfg.HTTPPort != 9999 {
		t.Errorf("expected HTTPPort 9999, got %d", cfg.HTTPPort)
	}
	if cfg.SystemSecret != "s3cret" {
		t.Errorf("expected SystemSecret from env, got %s", cfg.SystemSecret)
	}
	if cfg.NotifyWebhookURL != "http://ui:3000/hooks/drive" {
		t.Errorf("expected NotifyWebhookURL from env, got %s", cfg.NotifyWebhookURL)
	}
	if cfg.OTELEndpoint != "otel-collector:4317" {
		t.Errorf("expected OTELEndpoint otel-collector:4317, got %s", cfg.OTELEndpoint)
	}
	if cfg.TierCacheTTL != 30*time.Second {
		t.Errorf("expected TierCacheTTL 30s, got %v", cfg.TierCacheTTL)
	}
	if cfg.PurchaseFlow != "luxury" || cfg.LuxuryComboMultiplier != 2 {
		t.Errorf("expected luxury flow x2, got %s x%v", cfg.PurchaseFlow, cfg.LuxuryComboMultiplier)
	}
	if cfg.RateLimit != 20 || cfg.RateLimitBurst != 40 {
		t.Errorf("expected rate limit 20/40, got %v/%d", cfg.RateLimit, cfg.RateLimitBurst)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"unknown purchase flow", "PURCHASE_FLOW", "discount"},
		{"zero rate limit", "RATE_LIMIT", "0"},
		{"port out of range", "PORT", "70000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DATABASE_URL", "postgres://localhost/test")
			t.Setenv(tt.key, tt.val)

			if _, err := Load(""); err == nil {
				t.Errorf("expected error for %s=%s", tt.key, tt.val)
			}
		})
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	path := writeConfig(t, `
database_url: "postgres://config-file/db"
http_port: 7777
purchase_flow: luxury
luxury_combo_multiplier: 3
tier_cache_ttl: 2m
`)

	// Clear env vars that would override
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PORT", "")
	t.Setenv("PURCHASE_FLOW", "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.DatabaseURL != "postgres://config-file/db" {
		t.Errorf("expected DatabaseURL from config file, got %s", cfg.DatabaseURL)
	}
	if cfg.HTTPPort != 7777 {
		t.Errorf("expected HTTPPort 7777, got %d", cfg.HTTPPort)
	}
	if cfg.PurchaseFlow != "luxury" || cfg.LuxuryComboMultiplier != 3 {
		t.Errorf("expected luxury x3 from file, got %s x%v", cfg.PurchaseFlow, cfg.LuxuryComboMultiplier)
	}
	if cfg.TierCacheTTL != 2*time.Minute {
		t.Errorf("expected TierCacheTTL 2m, got %v", cfg.TierCacheTTL)
	}
}

func TestLoad_EnvOverridesConfigFile(t *testing.T) {
	path := writeConfig(t, `
database_url: "postgres://from-file/db"
http_port: 7777
`)

	t.Setenv("DATABASE_URL", "postgres://from-env/db")
	t.Setenv("PORT", "8888")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.DatabaseURL != "postgres://from-env/db" {
		t.Errorf("expected DatabaseURL from env, got %s", cfg.DatabaseURL)
	}
	if cfg.HTTPPort != 8888 {
		t.Errorf("expected HTTPPort 8888 from env, got %d", cfg.HTTPPort)
	}
}

func TestLoad_InvalidConfigFile(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/test")

	_, err := Load("/nonexistent/path/to/config.yaml")
	if err == nil {
		t.Error("expected error for nonexistent config file")
	}
}
