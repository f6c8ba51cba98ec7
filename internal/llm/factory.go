package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/abhisek/critree/internal/store"
)

type constructor func(ctx context.Context, cfg Config) (Provider, error)

var constructors = map[string]constructor{
	ProviderAnthropic: func(_ context.Context, cfg Config) (Provider, error) {
		return NewAnthropicProvider(cfg.Anthropic)
	},
	ProviderOpenAI: func(_ context.Context, cfg Config) (Provider, error) {
		return NewOpenAIProvider(cfg.OpenAI)
	},
	ProviderGemini: func(ctx context.Context, cfg Config) (Provider, error) {
		return NewGeminiProvider(ctx, cfg.Gemini)
	},
	ProviderOpenRouter: func(_ context.Context, cfg Config) (Provider, error) {
		return NewOpenRouterProvider(cfg.OpenRouter)
	},
	ProviderMock: func(context.Context, Config) (Provider, error) {
		return NewEchoMockProvider(), nil
	},
}

// NewProvider builds the configured provider and wraps it so calls pass
// through timeout, then retry, then logging. events may be nil.
func NewProvider(ctx context.Context, cfg Config, events store.LLMEventAppender, logger *zap.Logger) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	newBase, ok := constructors[cfg.Provider]
	if !ok {
		return nil, &ErrConfiguration{Provider: cfg.Provider, Reason: "unknown provider"}
	}
	base, err := newBase(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}
	return WithTimeout(WithRetry(WithLogging(base, cfg.Provider, events, logger), cfg.Retry), cfg.Timeout), nil
}
