// Package config assembles the immutable configuration value the rest of the
// service is constructed from: environment-backed settings for the server,
// OpenRouter transport and storage, plus the council roster read from a YAML
// file. Nothing in here is mutated after Load returns.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"llm-quorum/internal/council"
)

// Config is the full service configuration.
type Config struct {
	Server     ServerConfig
	OpenRouter OpenRouterConfig
	Storage    StorageConfig
	Council    CouncilConfig
}

// ServerConfig defines the HTTP listener.
type ServerConfig struct {
	Port           string   `envconfig:"QUORUM_PORT" default:"8001"`
	Host           string   `envconfig:"QUORUM_HOST" default:"0.0.0.0"`
	AllowedOrigins []string `envconfig:"QUORUM_CORS_ALLOWED_ORIGINS"`
	MaxRequestBody int64    `envconfig:"QUORUM_MAX_REQUEST_BODY" default:"1048576"`
}

// OpenRouterConfig defines the transport to the model provider.
type OpenRouterConfig struct {
	APIKey       string        `envconfig:"OPENROUTER_API_KEY" required:"true"`
	BaseURL      string        `envconfig:"OPENROUTER_API_URL" default:"https://openrouter.ai/api/v1/chat/completions"`
	QueryTimeout time.Duration `envconfig:"OPENROUTER_QUERY_TIMEOUT" default:"120s"`
	TitleTimeout time.Duration `envconfig:"OPENROUTER_TITLE_TIMEOUT" default:"30s"`
}

// StorageConfig defines the conversation store.
type StorageConfig struct {
	DataDir      string        `envconfig:"QUORUM_DATA_DIR" default:"data/conversations"`
	ListCacheTTL time.Duration `envconfig:"QUORUM_LIST_CACHE_TTL" default:"30s"`
}

// CouncilConfig is the roster: the models queried in stage 1 and invited to
// rank in stage 2, the chairman producing the stage-3 synthesis, and the
// lightweight model used for conversation titles. The chairman need not be a
// roster member.
type CouncilConfig struct {
	Models     []string `yaml:"models"`
	Chairman   string   `yaml:"chairman"`
	TitleModel string   `yaml:"title_model"`
}

// DefaultCouncil is used when no roster file is configured.
func DefaultCouncil() CouncilConfig {
	return CouncilConfig{
		Models: []string{
			"openai/gpt-5.1",
			"google/gemini-3-pro-preview",
			"anthropic/claude-sonnet-4.5",
			"x-ai/grok-4",
		},
		Chairman:   "google/gemini-3-pro-preview",
		TitleModel: "google/gemini-2.5-flash",
	}
}

// Validate checks roster invariants. Pipeline construction re-checks most of
// these; validating here keeps bad config loud at startup.
func (c CouncilConfig) Validate() error {
	if len(c.Models) == 0 {
		return fmt.Errorf("council config: models list is empty")
	}
	if len(c.Models) > council.MaxCouncilSize {
		return fmt.Errorf("council config: %d models, maximum is %d", len(c.Models), council.MaxCouncilSize)
	}
	seen := make(map[string]bool, len(c.Models))
	for _, model := range c.Models {
		if model == "" {
			return fmt.Errorf("council config: empty model identifier")
		}
		if seen[model] {
			return fmt.Errorf("council config: duplicate model %q", model)
		}
		seen[model] = true
	}
	if c.Chairman == "" {
		return fmt.Errorf("council config: chairman is required")
	}
	if c.TitleModel == "" {
		return fmt.Errorf("council config: title_model is required")
	}
	return nil
}

// Load reads configuration from the environment (after best-effort loading a
// local .env) and, when QUORUM_COUNCIL_CONFIG points at a YAML file, the
// council roster from it. Without a roster file the built-in default council
// is used.
func Load() (*Config, error) {
	// .env is a development convenience; absence is not an error.
	if err := godotenv.Load(); err == nil {
		slog.Debug("loaded .env file")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg.Server); err != nil {
		return nil, fmt.Errorf("load server config: %w", err)
	}
	if err := envconfig.Process("", &cfg.OpenRouter); err != nil {
		return nil, fmt.Errorf("load openrouter config: %w", err)
	}
	if err := envconfig.Process("", &cfg.Storage); err != nil {
		return nil, fmt.Errorf("load storage config: %w", err)
	}

	councilCfg := DefaultCouncil()
	if path := os.Getenv("QUORUM_COUNCIL_CONFIG"); path != "" {
		loaded, err := LoadCouncilFile(path)
		if err != nil {
			return nil, err
		}
		councilCfg = loaded
	}
	if err := councilCfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Council = councilCfg

	return &cfg, nil
}

// LoadCouncilFile parses a council roster from YAML. Fields omitted in the
// file keep their built-in defaults.
func LoadCouncilFile(path string) (CouncilConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return CouncilConfig{}, fmt.Errorf("read council config %q: %w", path, err)
	}

	cfg := DefaultCouncil()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return CouncilConfig{}, fmt.Errorf("parse council config %q: %w", path, err)
	}
	return cfg, nil
}
