// Package config provides configuration loading for projectd.
//
// Configuration is layered: hardcoded defaults, then an optional YAML or TOML
// file, then environment variables. See LoadWithFile for the precedence rules.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// Storage providers.
const (
	StorageMemory = "memory"
	StorageBadger = "badger"
)

// Delete policies applied when the current project is deleted.
const (
	DeletePolicyNext  = "next"
	DeletePolicyClear = "clear"
)

// Config holds the complete projectd configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Storage   StorageConfig   `koanf:"storage"`
	Analytics AnalyticsConfig `koanf:"analytics"`
	Lifecycle LifecycleConfig `koanf:"lifecycle"`
	Logging   LoggingConfig   `koanf:"logging"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string   `koanf:"host"`
	Port            int      `koanf:"http_port"`
	ShutdownTimeout Duration `koanf:"shutdown_timeout"`
	RateLimit       float64  `koanf:"rate_limit"` // requests per second per client IP, 0 disables
	RateBurst       int      `koanf:"rate_burst"`
}

// StorageConfig selects where the project registry lives.
type StorageConfig struct {
	Provider string `koanf:"provider"`
	Path     string `koanf:"path"`
}

// AnalyticsConfig controls the analytics event sink.
type AnalyticsConfig struct {
	Enabled       bool   `koanf:"enabled"`
	NATSURL       string `koanf:"nats_url"`
	SubjectPrefix string `koanf:"subject_prefix"`
}

// LifecycleConfig holds project lifecycle policy.
type LifecycleConfig struct {
	DeletePolicy string `koanf:"delete_policy"`
}

// LoggingConfig is the subset of logging settings exposed through config files.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// TelemetryConfig holds OpenTelemetry export settings.
type TelemetryConfig struct {
	Enabled     bool    `koanf:"enabled"`
	Endpoint    string  `koanf:"endpoint"`
	Protocol    string  `koanf:"protocol"`
	Insecure    bool    `koanf:"insecure"`
	ServiceName string  `koanf:"service_name"`
	SampleRate  float64 `koanf:"sample_rate"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be 1-65535)", c.Server.Port)
	}
	if c.Server.ShutdownTimeout.Duration() <= 0 {
		return errors.New("shutdown timeout must be positive")
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("rate limit cannot be negative: %v", c.Server.RateLimit)
	}

	switch c.Storage.Provider {
	case StorageMemory:
	case StorageBadger:
		if c.Storage.Path == "" {
			return errors.New("storage path required for badger provider")
		}
	default:
		return fmt.Errorf("unknown storage provider %q (must be memory or badger)", c.Storage.Provider)
	}

	if c.Analytics.Enabled && c.Analytics.NATSURL != "" {
		if _, err := url.Parse(c.Analytics.NATSURL); err != nil {
			return fmt.Errorf("invalid analytics nats url: %w", err)
		}
	}

	switch c.Lifecycle.DeletePolicy {
	case DeletePolicyNext, DeletePolicyClear:
	default:
		return fmt.Errorf("unknown delete policy %q (must be next or clear)", c.Lifecycle.DeletePolicy)
	}

	if c.Telemetry.Enabled && c.Telemetry.ServiceName == "" {
		return errors.New("service name required when telemetry is enabled")
	}

	return nil
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 9191
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = Duration(10 * time.Second)
	}
	if cfg.Server.RateBurst == 0 {
		cfg.Server.RateBurst = 20
	}

	if cfg.Storage.Provider == "" {
		cfg.Storage.Provider = StorageMemory
	}

	if cfg.Analytics.SubjectPrefix == "" {
		cfg.Analytics.SubjectPrefix = "analytics.projects"
	}

	if cfg.Lifecycle.DeletePolicy == "" {
		cfg.Lifecycle.DeletePolicy = DeletePolicyNext
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "projectd"
	}
	if cfg.Telemetry.Endpoint == "" {
		cfg.Telemetry.Endpoint = "localhost:4317"
	}
	if cfg.Telemetry.SampleRate == 0 {
		cfg.Telemetry.SampleRate = 1.0
	}
}
