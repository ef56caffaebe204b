package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Port     string `env:"PORT" envDefault:"8080"`
	Env      string `env:"ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Twilio credentials and sender identity
	TwilioAccountSID     string        `env:"TWILIO_ACCOUNT_SID,notEmpty"`
	TwilioAuthToken      string        `env:"TWILIO_AUTH_TOKEN,notEmpty"`
	TwilioWhatsAppNumber string        `env:"TWILIO_WHATSAPP_NUMBER,notEmpty"` // whatsapp:+E164 format
	TwilioTimeout        time.Duration `env:"TWILIO_TIMEOUT" envDefault:"10s"`

	// Internal chat API
	ChatAPIURL     string        `env:"CHAT_API_URL,notEmpty"`
	InternalAPIKey string        `env:"INTERNAL_API_KEY"` // x-api-key header omitted when empty
	ChatAPITimeout time.Duration `env:"CHAT_API_TIMEOUT" envDefault:"20s"`

	// Webhook hardening. Signature validation runs only when PublicBaseURL
	// is set to the scheme+host the provider calls, e.g. https://relay.example.com.
	PublicBaseURL      string `env:"PUBLIC_BASE_URL"`
	RateLimitPerMinute int    `env:"RATE_LIMIT_PER_MINUTE" envDefault:"0"` // 0 disables
	RateLimitBurst     int    `env:"RATE_LIMIT_BURST" envDefault:"5"`
	MaxBodyBytes       int64  `env:"MAX_BODY_BYTES" envDefault:"65536"`
}

// Load reads configuration from environment variables.
// In development, it loads from .env file if present.
func Load() (*Config, error) {
	// Load .env file if it exists (for development)
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	cfg.PublicBaseURL = strings.TrimRight(cfg.PublicBaseURL, "/")

	if cfg.RateLimitPerMinute < 0 {
		return nil, fmt.Errorf("RATE_LIMIT_PER_MINUTE must be >= 0, got %d", cfg.RateLimitPerMinute)
	}
	if cfg.MaxBodyBytes <= 0 {
		return nil, fmt.Errorf("MAX_BODY_BYTES must be > 0, got %d", cfg.MaxBodyBytes)
	}

	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
