// Package config loads service settings from the environment, after
// reading an optional .env file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/teemow/agentdesk/internal/instrumentation"
	"github.com/teemow/agentdesk/internal/upstream"
)

// Embedder names accepted in KNOWLEDGE_EMBEDDER.
const (
	EmbedderHuggingFace = "huggingface"
	EmbedderGemini      = "gemini"
)

// DefaultPort is the HTTP port when PORT is unset.
const DefaultPort = 3001

// Config is the full service configuration.
type Config struct {
	Port int

	Cal        CalConfig
	Teleperson TelepersonConfig
	Reader     ReaderConfig
	Knowledge  KnowledgeConfig
	Upstream   UpstreamConfig
	Log        LogConfig
}

// CalConfig configures the Cal.com client.
type CalConfig struct {
	APIKey  string
	BaseURL string
}

// TelepersonConfig configures the CRM client. Username is the account
// single-vendor lookups log in as.
type TelepersonConfig struct {
	APIKey   string
	BaseURL  string
	Username string
}

// ReaderConfig configures the website reader.
type ReaderConfig struct {
	APIKey  string
	BaseURL string
}

// KnowledgeConfig selects and configures the knowledge-base backends.
// DatabaseURL, when set, is used instead of the Supabase REST endpoint.
type KnowledgeConfig struct {
	SupabaseURL       string
	SupabaseKey       string
	DatabaseURL       string
	Embedder          string
	HuggingFaceAPIKey string
	GoogleAIAPIKey    string
}

// UpstreamConfig holds transport settings shared by every client.
type UpstreamConfig struct {
	Timeout   time.Duration
	RateLimit float64
	Burst     int
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads .env (if present) and then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)
	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", DefaultPort)
	v.SetDefault("KNOWLEDGE_EMBEDDER", EmbedderHuggingFace)
	v.SetDefault("UPSTREAM_TIMEOUT", upstream.DefaultTimeout.String())
	v.SetDefault("UPSTREAM_RATE_LIMIT", 0)
	v.SetDefault("UPSTREAM_RATE_BURST", 1)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
}

func fromViper(v *viper.Viper) (*Config, error) {
	timeout, err := time.ParseDuration(v.GetString("UPSTREAM_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("UPSTREAM_TIMEOUT: %w", err)
	}

	cfg := &Config{
		Port: v.GetInt("PORT"),
		Cal: CalConfig{
			APIKey:  v.GetString("CAL_API_KEY"),
			BaseURL: v.GetString("CAL_BASE_URL"),
		},
		Teleperson: TelepersonConfig{
			APIKey:   v.GetString("TELEPERSON_API_KEY"),
			BaseURL:  v.GetString("TELEPERSON_BASE_URL"),
			Username: v.GetString("TELEPERSON_USERNAME"),
		},
		Reader: ReaderConfig{
			APIKey:  v.GetString("JINA_API_KEY"),
			BaseURL: v.GetString("JINA_BASE_URL"),
		},
		Knowledge: KnowledgeConfig{
			SupabaseURL:       v.GetString("SUPABASE_URL"),
			SupabaseKey:       v.GetString("SUPABASE_SERVICE_ROLE_KEY"),
			DatabaseURL:       v.GetString("KNOWLEDGE_DATABASE_URL"),
			Embedder:          strings.ToLower(v.GetString("KNOWLEDGE_EMBEDDER")),
			HuggingFaceAPIKey: v.GetString("HUGGINGFACE_API_KEY"),
			GoogleAIAPIKey:    v.GetString("GOOGLE_AI_API_KEY"),
		},
		Upstream: UpstreamConfig{
			Timeout:   timeout,
			RateLimit: v.GetFloat64("UPSTREAM_RATE_LIMIT"),
			Burst:     v.GetInt("UPSTREAM_RATE_BURST"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}
	if cfg.Upstream.Timeout <= 0 {
		return nil, errors.New("UPSTREAM_TIMEOUT must be positive")
	}
	if cfg.Upstream.RateLimit < 0 {
		return nil, errors.New("UPSTREAM_RATE_LIMIT must not be negative")
	}
	return cfg, nil
}

// UpstreamBase returns the transport settings every client starts from.
func (c *Config) UpstreamBase(metrics *instrumentation.Metrics, logger *slog.Logger) upstream.Config {
	return upstream.Config{
		Timeout:   c.Upstream.Timeout,
		RateLimit: c.Upstream.RateLimit,
		Burst:     c.Upstream.Burst,
		Metrics:   metrics,
		Logger:    logger,
	}
}

// Validate reports a missing Cal.com API key.
func (c CalConfig) Validate() error {
	if c.APIKey == "" {
		return errors.New("CAL_API_KEY is required for the booking toolset")
	}
	return nil
}

// Validate reports missing CRM credentials.
func (c TelepersonConfig) Validate() error {
	if c.APIKey == "" {
		return errors.New("TELEPERSON_API_KEY is required for the vendor toolset")
	}
	return nil
}

// Validate accepts any reader configuration: the key is optional.
func (c ReaderConfig) Validate() error {
	return nil
}

// Validate checks that a searcher and the selected embedder are usable.
func (c KnowledgeConfig) Validate() error {
	var missing []string
	if c.DatabaseURL == "" && (c.SupabaseURL == "" || c.SupabaseKey == "") {
		missing = append(missing, "KNOWLEDGE_DATABASE_URL or SUPABASE_URL and SUPABASE_SERVICE_ROLE_KEY")
	}
	switch c.Embedder {
	case EmbedderHuggingFace:
	case EmbedderGemini:
		if c.GoogleAIAPIKey == "" {
			missing = append(missing, "GOOGLE_AI_API_KEY")
		}
	default:
		return fmt.Errorf("KNOWLEDGE_EMBEDDER must be %q or %q, got %q", EmbedderHuggingFace, EmbedderGemini, c.Embedder)
	}
	if len(missing) > 0 {
		return fmt.Errorf("knowledge toolset requires %s", strings.Join(missing, ", "))
	}
	return nil
}
