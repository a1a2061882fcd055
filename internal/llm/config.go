package llm

import (
	"fmt"
	"os"
	"time"
)

// Config selects and configures the LLM backend.
type Config struct {
	// Provider is one of "gemini", "openai", "openrouter", "anthropic" or
	// "mock".
	Provider string

	Gemini     GeminiConfig
	OpenAI     OpenAIConfig
	OpenRouter OpenRouterConfig
	Anthropic  AnthropicConfig
	Retry      RetryConfig

	// Timeout bounds one Generate call including its retries.
	Timeout time.Duration
}

type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type OpenRouterConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type AnthropicConfig struct {
	APIKey string
	Model  string
}

type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns Gemini with the flash model, three attempts and a
// 30s timeout.
func DefaultConfig() Config {
	return Config{
		Provider:   "gemini",
		Gemini:     GeminiConfig{Model: "gemini-flash"},
		OpenAI:     OpenAIConfig{Model: "gpt-mini"},
		OpenRouter: OpenRouterConfig{Model: "google/gemini-2.5-flash"},
		Anthropic:  AnthropicConfig{Model: "claude-haiku"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2,
		},
		Timeout: 30 * time.Second,
	}
}

// ConfigFromEnv overlays PYSIS_* environment variables on DefaultConfig.
// GOOGLE_API_KEY is accepted when PYSIS_GEMINI_API_KEY is unset.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	setenv(&cfg.Provider, "PYSIS_LLM_PROVIDER")
	if d, err := time.ParseDuration(os.Getenv("PYSIS_LLM_TIMEOUT")); err == nil && d > 0 {
		cfg.Timeout = d
	}

	setenv(&cfg.Gemini.APIKey, "PYSIS_GEMINI_API_KEY", "GOOGLE_API_KEY")
	setenv(&cfg.Gemini.Model, "PYSIS_GEMINI_MODEL")
	setenv(&cfg.Gemini.BaseURL, "PYSIS_GEMINI_BASE_URL")

	setenv(&cfg.OpenAI.APIKey, "PYSIS_OPENAI_API_KEY")
	setenv(&cfg.OpenAI.Model, "PYSIS_OPENAI_MODEL")
	setenv(&cfg.OpenAI.BaseURL, "PYSIS_OPENAI_BASE_URL")

	setenv(&cfg.OpenRouter.APIKey, "PYSIS_OPENROUTER_API_KEY")
	setenv(&cfg.OpenRouter.Model, "PYSIS_OPENROUTER_MODEL")

	setenv(&cfg.Anthropic.APIKey, "PYSIS_ANTHROPIC_API_KEY")
	setenv(&cfg.Anthropic.Model, "PYSIS_ANTHROPIC_MODEL")

	return cfg
}

// setenv stores the first non-empty variable among names in dst.
func setenv(dst *string, names ...string) {
	for _, n := range names {
		if v := os.Getenv(n); v != "" {
			*dst = v
			return
		}
	}
}

// DiscoverConfig looks for the vendors' own API key variables, in the order
// Gemini, OpenAI, Anthropic, OpenRouter, and returns a default Config for
// the first one set.
func DiscoverConfig() (Config, bool) {
	cfg := DefaultConfig()
	probes := []struct {
		provider string
		key      *string
		envs     []string
	}{
		{"gemini", &cfg.Gemini.APIKey, []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"}},
		{"openai", &cfg.OpenAI.APIKey, []string{"OPENAI_API_KEY"}},
		{"anthropic", &cfg.Anthropic.APIKey, []string{"ANTHROPIC_API_KEY"}},
		{"openrouter", &cfg.OpenRouter.APIKey, []string{"OPENROUTER_API_KEY"}},
	}
	for _, p := range probes {
		setenv(p.key, p.envs...)
		if *p.key != "" {
			cfg.Provider = p.provider
			return cfg, true
		}
	}
	return Config{}, false
}

// HasKey reports whether the selected provider has credentials.
func (c Config) HasKey() bool {
	return c.Validate() == nil
}

// Validate checks that the selected provider has its API key.
func (c Config) Validate() error {
	var key, env string
	switch c.Provider {
	case "gemini":
		key, env = c.Gemini.APIKey, "GOOGLE_API_KEY (or PYSIS_GEMINI_API_KEY)"
	case "openai":
		key, env = c.OpenAI.APIKey, "PYSIS_OPENAI_API_KEY"
	case "openrouter":
		key, env = c.OpenRouter.APIKey, "PYSIS_OPENROUTER_API_KEY"
	case "anthropic":
		key, env = c.Anthropic.APIKey, "PYSIS_ANTHROPIC_API_KEY"
	case "mock":
		return nil
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if key == "" {
		return fmt.Errorf("%s is required for the %s provider", env, c.Provider)
	}
	return nil
}
