package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dgallion1/docsections/internal/extract"
)

type Config struct {
	Port string

	// LLM endpoint (OpenAI-compatible)
	GroqAPIKey  string
	GroqBaseURL string

	// Auth for the JSON API; empty disables it.
	APIKey string

	// Upload limits
	MaxUploadBytes int64

	// How long parsed results stay downloadable.
	ResultTTL time.Duration
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8501"),

		GroqAPIKey:  os.Getenv("GROQ_API_KEY"),
		GroqBaseURL: envOr("GROQ_BASE_URL", extract.DefaultBaseURL),

		APIKey: os.Getenv("DOCSECTIONS_API_KEY"),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		ResultTTL: envDuration("RESULT_TTL", 1*time.Hour),
	}

	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.GroqAPIKey == "" {
		return fmt.Errorf("GROQ_API_KEY is required")
	}
	return nil
}

// Client returns the chat client settings derived from the environment.
func (c Config) Client() extract.ClientConfig {
	return extract.ClientConfig{
		APIKey:  c.GroqAPIKey,
		BaseURL: c.GroqBaseURL,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
