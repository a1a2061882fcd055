// Package config provides service configuration read from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/abhisek/pysis/internal/llm"
)

// Config holds the configuration shared by every pysis service.
type Config struct {
	DBPath    string
	CourseDir string
	Timezone  *time.Location

	CoreAddr    string
	GatewayAddr string
	StatsAddr   string

	CoreServiceURL string
	CoreTimeout    time.Duration

	TelegramBotToken   string
	TelegramWebhookURL string

	// Embedder selects the embedding backend: "gemini", "openai" or
	// "hash". Empty follows the LLM provider.
	Embedder string
	// EmbeddingModel overrides the embedder's default model.
	EmbeddingModel string

	IngestWorkers int

	LLM llm.Config
}

// Load reads a .env file when present and then the environment.
// Variables already set in the environment win over .env entries.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (*Config, error) {
	tzName := getEnv("PYSIS_TIMEZONE", "Local")
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("PYSIS_TIMEZONE %q: %w", tzName, err)
	}

	cfg := &Config{
		DBPath:             getEnv("PYSIS_DB", ""),
		CourseDir:          getEnv("PYSIS_COURSE_DIR", "course_content"),
		Timezone:           loc,
		CoreAddr:           getEnv("CORE_ADDR", ":8002"),
		GatewayAddr:        getEnv("GATEWAY_ADDR", ":8001"),
		StatsAddr:          getEnv("STATS_ADDR", ":8003"),
		CoreServiceURL:     strings.TrimRight(getEnv("CORE_SERVICE_URL", "http://localhost:8002"), "/"),
		CoreTimeout:        getEnvDuration("CORE_TIMEOUT", 45*time.Second),
		TelegramBotToken:   getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramWebhookURL: getEnv("TELEGRAM_WEBHOOK_URL", ""),
		Embedder:           getEnv("PYSIS_EMBEDDER", ""),
		EmbeddingModel:     getEnv("PYSIS_EMBEDDING_MODEL", ""),
		IngestWorkers:      getEnvInt("PYSIS_INGEST_WORKERS", 4),
		LLM:                llm.ConfigFromEnv(),
	}
	if !cfg.LLM.HasKey() {
		if discovered, ok := llm.DiscoverConfig(); ok {
			discovered.Timeout = cfg.LLM.Timeout
			cfg.LLM = discovered
		}
	}
	if cfg.IngestWorkers <= 0 {
		cfg.IngestWorkers = 4
	}
	return cfg, nil
}

// ValidateCore checks the settings the conversation service needs.
func (c *Config) ValidateCore() error {
	if c.CoreAddr == "" {
		return fmt.Errorf("CORE_ADDR cannot be empty")
	}
	if err := c.LLM.Validate(); err != nil {
		return fmt.Errorf("llm: %w", err)
	}
	return c.validateEmbedder()
}

// ValidateGateway checks the settings the Telegram gateway needs.
func (c *Config) ValidateGateway() error {
	if c.GatewayAddr == "" {
		return fmt.Errorf("GATEWAY_ADDR cannot be empty")
	}
	if c.TelegramBotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}
	if c.CoreServiceURL == "" {
		return fmt.Errorf("CORE_SERVICE_URL cannot be empty")
	}
	if c.CoreTimeout <= 0 {
		return fmt.Errorf("CORE_TIMEOUT must be > 0")
	}
	return nil
}

// ValidateStats checks the settings the statistics service needs.
func (c *Config) ValidateStats() error {
	if c.StatsAddr == "" {
		return fmt.Errorf("STATS_ADDR cannot be empty")
	}
	return nil
}

// ValidateIndex checks the settings offline ingestion needs.
func (c *Config) ValidateIndex() error {
	if c.CourseDir == "" {
		return fmt.Errorf("PYSIS_COURSE_DIR cannot be empty")
	}
	return c.validateEmbedder()
}

// EmbedderName resolves the embedding backend to use.
func (c *Config) EmbedderName() string {
	if c.Embedder != "" {
		return c.Embedder
	}
	switch c.LLM.Provider {
	case "openai":
		return "openai"
	case "mock":
		return "hash"
	default:
		return "gemini"
	}
}

func (c *Config) validateEmbedder() error {
	switch name := c.EmbedderName(); name {
	case "gemini":
		if c.LLM.Gemini.APIKey == "" {
			return fmt.Errorf("gemini embedder requires GOOGLE_API_KEY")
		}
	case "openai":
		if c.LLM.OpenAI.APIKey == "" {
			return fmt.Errorf("openai embedder requires PYSIS_OPENAI_API_KEY")
		}
	case "hash":
	default:
		return fmt.Errorf("unknown embedder %q", name)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}
