package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the TTS gateway service
type Config struct {
	// Server configuration
	Port string `envconfig:"PORT" default:"5000"`

	// Azure Cognitive Services Speech configuration.
	// SpeechKey is optional: without it the gateway serves every request
	// through the free Google Translate fallback.
	SpeechKey string `envconfig:"AZURE_SPEECH_KEY" default:""`
	Region    string `envconfig:"AZURE_REGION" default:"eastus"`

	// UseFreeTTS forces the free fallback provider even when Azure
	// credentials are configured.
	UseFreeTTS bool `envconfig:"USE_FREE_TTS" default:"false"`

	// Upstream call configuration
	UpstreamTimeout int `envconfig:"UPSTREAM_TIMEOUT_SECONDS" default:"30"` // per-call timeout for token/synthesis/listing requests

	// HTTP server timeouts
	ReadTimeout     int `envconfig:"READ_TIMEOUT_SECONDS" default:"15"`
	WriteTimeout    int `envconfig:"WRITE_TIMEOUT_SECONDS" default:"60"` // synthesis responses can be slow on long text
	IdleTimeout     int `envconfig:"IDLE_TIMEOUT_SECONDS" default:"60"`
	ShutdownTimeout int `envconfig:"SHUTDOWN_TIMEOUT_SECONDS" default:"30"`

	// CORS configuration
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"*"`

	// Observability configuration
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`       // Log level: debug, info, warn, error
	LogPretty      bool   `envconfig:"LOG_PRETTY" default:"false"`     // Pretty print logs (for development)
	MetricsEnabled bool   `envconfig:"METRICS_ENABLED" default:"true"` // Enable Prometheus metrics
}

// Load reads configuration from environment variables.
// It first attempts to load from .env file if it exists, then from environment.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	return LoadFromEnv()
}

// LoadFromEnv loads configuration directly from environment variables
// without attempting to load .env file (useful for containerized deployments)
func LoadFromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.Region == "" {
		return nil, fmt.Errorf("AZURE_REGION cannot be empty")
	}
	if cfg.UpstreamTimeout <= 0 {
		return nil, fmt.Errorf("UPSTREAM_TIMEOUT_SECONDS must be positive")
	}

	return &cfg, nil
}

// HasCredentials reports whether an Azure subscription key is configured.
// Provider selection and the health endpoint both key off this.
func (c *Config) HasCredentials() bool {
	return c.SpeechKey != ""
}

// UsingFreeTTS reports whether requests are currently served by the free
// fallback provider, either by override or for lack of credentials.
func (c *Config) UsingFreeTTS() bool {
	return c.UseFreeTTS || !c.HasCredentials()
}

// GetEnv returns the value of an environment variable or a default value
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
