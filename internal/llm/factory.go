package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/abhisek/pysis/internal/store"
)

var backends = map[string]func(context.Context, Config) (Provider, error){
	"gemini": func(ctx context.Context, c Config) (Provider, error) {
		return NewGeminiProvider(ctx, c.Gemini)
	},
	"openai": func(_ context.Context, c Config) (Provider, error) {
		return NewOpenAIProvider(c.OpenAI)
	},
	"openrouter": func(_ context.Context, c Config) (Provider, error) {
		return NewOpenRouterProvider(c.OpenRouter)
	},
	"anthropic": func(_ context.Context, c Config) (Provider, error) {
		return NewAnthropicProvider(c.Anthropic)
	},
}

// NewProvider builds the configured backend and wraps it, outermost first,
// with WithTimeout, WithRetry and WithLogging. A nil eventRepo disables
// event recording. The "mock" provider is returned bare and fails every
// call.
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo, logger *zap.Logger) (Provider, error) {
	if cfg.Provider == "mock" {
		return NewMockProvider(), nil
	}
	build, ok := backends[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	p, err := build(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	if eventRepo != nil {
		p = WithLogging(p, cfg.Provider, eventRepo, logger)
	}
	p = WithRetry(p, cfg.Retry)
	return WithTimeout(p, cfg.Timeout), nil
}
