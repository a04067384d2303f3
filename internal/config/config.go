// Package config loads service configuration from a YAML file and the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values for the application.
type Config struct {
	// Database connection string
	DatabaseURL string `mapstructure:"database_url"`

	// HTTP server port for the controller
	HTTPPort int `mapstructure:"http_port"`

	// SystemSecret guards account creation.
	SystemSecret string `mapstructure:"system_secret"`

	// NotifyWebhookURL receives post-mutation updates. Empty disables delivery.
	NotifyWebhookURL string        `mapstructure:"notify_webhook_url"`
	NotifyTimeout    time.Duration `mapstructure:"notify_timeout"`
	// NotifySecret signs webhook bodies. Empty sends them unsigned.
	NotifySecret string `mapstructure:"notify_secret"`
	// NotifyQueueSize bounds updates waiting for delivery. Overflow is dropped.
	NotifyQueueSize int `mapstructure:"notify_queue_size"`

	// OTLP gRPC collector. Empty disables trace export.
	OTELEndpoint string `mapstructure:"otel_endpoint"`

	TierCacheTTL time.Duration `mapstructure:"tier_cache_ttl"`

	// PurchaseFlow is "standard" or "luxury".
	PurchaseFlow          string  `mapstructure:"purchase_flow"`
	LuxuryComboMultiplier float64 `mapstructure:"luxury_combo_multiplier"`

	// Per-account request rate on mutating routes.
	RateLimit      float64 `mapstructure:"rate_limit"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`

	LogLevel string `mapstructure:"log_level"`
}

// env names that do not follow the upper-cased key convention.
var envAliases = map[string]string{
	"http_port":     "PORT",
	"otel_endpoint": "OTEL_EXPORTER_OTLP_ENDPOINT",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http_port", 6161)
	v.SetDefault("notify_timeout", 5*time.Second)
	v.SetDefault("notify_queue_size", 256)
	v.SetDefault("otel_endpoint", "")
	v.SetDefault("tier_cache_ttl", time.Minute)
	v.SetDefault("purchase_flow", "standard")
	v.SetDefault("luxury_combo_multiplier", 1.5)
	v.SetDefault("rate_limit", 5.0)
	v.SetDefault("rate_limit_burst", 10)
	v.SetDefault("log_level", "info")
	// keys without a default must still be known to Unmarshal
	v.SetDefault("database_url", "")
	v.SetDefault("system_secret", "")
	v.SetDefault("notify_webhook_url", "")
	v.SetDefault("notify_secret", "")
}

// Load reads configuration from path (optional) and the environment.
// Environment variables override the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envAliases {
		if err := v.BindEnv(key, env); err != nil {
			return nil, err
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("database_url is required (env: DATABASE_URL)")
	}
	if cfg.HTTPPort <= 0 || cfg.HTTPPort > 65535 {
		return nil, fmt.Errorf("invalid http_port %d", cfg.HTTPPort)
	}
	switch strings.ToLower(cfg.PurchaseFlow) {
	case "standard", "luxury":
	default:
		return nil, fmt.Errorf("invalid purchase_flow %q (want standard or luxury)", cfg.PurchaseFlow)
	}
	if cfg.RateLimit <= 0 || cfg.RateLimitBurst <= 0 {
		return nil, fmt.Errorf("rate_limit and rate_limit_burst must be positive")
	}

	return &cfg, nil
}
