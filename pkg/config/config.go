package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds all runtime settings, loaded from the environment.
type Config struct {
	// Gemini
	GeminiAPIKey   string `env:"GEMINI_API_KEY"`
	GeminiModel    string `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash"`
	EmbeddingModel string `env:"EMBEDDING_MODEL" envDefault:"text-embedding-004"`

	// Knowledge base
	DataDir    string `env:"THAPARGPT_DATA_DIR" envDefault:"./data"`
	Collection string `env:"THAPARGPT_COLLECTION" envDefault:"structured_data"`

	// User accounts and chat history
	HistoryDB string `env:"THAPARGPT_HISTORY_DB" envDefault:"thapargpt.db"`

	// HTTP server
	Port           int    `env:"PORT" envDefault:"8080"`
	AllowedOrigins string `env:"ALLOWED_ORIGINS" envDefault:"*"`

	// Admin credentials for the web panel
	AdminUsername string `env:"ADMIN_USERNAME" envDefault:"admin"`
	AdminPassword string `env:"ADMIN_PASSWORD" envDefault:"123"`

	Timezone string `env:"THAPARGPT_TIMEZONE" envDefault:"Asia/Kolkata"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load parses the environment into a Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// ErrMissingAPIKey is returned by Validate when no Gemini credential is set.
var ErrMissingAPIKey = errors.New("GEMINI_API_KEY missing")

// Validate checks settings that must be present before the assistant can
// start. Only the generative-model credential is mandatory.
func (c *Config) Validate() error {
	if c.GeminiAPIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}
