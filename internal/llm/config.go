package llm

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Provider names accepted by Config.Provider.
const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
)

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects which LLM provider to use.
	// Values: "anthropic", "openai", "gemini", "openrouter", "mock"
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig

	// Timeout bounds a single request including retries. Zero leaves the
	// client default in place.
	Timeout time.Duration
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey string
	Model  string // Default: "claude-haiku"
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string
	Model   string // Default: "gpt-4o-mini"
	BaseURL string // Optional. Override for compatible APIs.
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey string
	Model  string // Default: "gemini-flash"
}

// OpenRouterConfig holds OpenRouter-specific configuration.
type OpenRouterConfig struct {
	APIKey  string
	Model   string // Default: "google/gemini-2.0-flash-exp"
	BaseURL string // Default: "https://openrouter.ai/api/v1"
}

// RetryConfig configures retry behavior for transient failures.
// MaxAttempts of 1 disables retries.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns a Config with the defaults used by critree: a single
// attempt per node and no explicit timeout.
func DefaultConfig() Config {
	return Config{
		Provider: ProviderAnthropic,
		Anthropic: AnthropicConfig{
			Model: "claude-haiku",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Gemini: GeminiConfig{
			Model: "gemini-flash",
		},
		OpenRouter: OpenRouterConfig{
			Model: "google/gemini-2.0-flash-exp",
		},
		Retry: RetryConfig{
			MaxAttempts: 1,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
	}
}

// ConfigFromEnv builds a Config from environment variables over defaults.
func ConfigFromEnv() Config {
	return ApplyEnv(DefaultConfig())
}

// slot points at one provider's key and model fields inside a Config.
type slot struct {
	key, model, baseURL *string
}

func (c *Config) slot(provider string) (slot, bool) {
	switch provider {
	case ProviderAnthropic:
		return slot{key: &c.Anthropic.APIKey, model: &c.Anthropic.Model}, true
	case ProviderOpenAI:
		return slot{key: &c.OpenAI.APIKey, model: &c.OpenAI.Model, baseURL: &c.OpenAI.BaseURL}, true
	case ProviderGemini:
		return slot{key: &c.Gemini.APIKey, model: &c.Gemini.Model}, true
	case ProviderOpenRouter:
		return slot{key: &c.OpenRouter.APIKey, model: &c.OpenRouter.Model, baseURL: &c.OpenRouter.BaseURL}, true
	}
	return slot{}, false
}

// keyedProviders is also the order Discover probes the standard variables.
var keyedProviders = []string{ProviderGemini, ProviderOpenAI, ProviderAnthropic, ProviderOpenRouter}

// ApplyEnv overlays CRITREE_LLM_PROVIDER and the per-provider
// CRITREE_<P>_API_KEY, CRITREE_<P>_MODEL and CRITREE_<P>_BASE_URL
// variables on cfg.
func ApplyEnv(cfg Config) Config {
	if p := os.Getenv("CRITREE_LLM_PROVIDER"); p != "" {
		cfg.Provider = strings.ToLower(p)
	}
	for _, p := range keyedProviders {
		s, _ := cfg.slot(p)
		prefix := "CRITREE_" + strings.ToUpper(p) + "_"
		setFromEnv(s.key, prefix+"API_KEY")
		setFromEnv(s.model, prefix+"MODEL")
		setFromEnv(s.baseURL, prefix+"BASE_URL")
	}
	return cfg
}

func setFromEnv(dst *string, name string) {
	if dst == nil {
		return
	}
	if v := os.Getenv(name); v != "" {
		*dst = v
	}
}

// StandardKeyEnvVar is the variable the provider's own tooling reads, e.g.
// OPENAI_API_KEY.
func StandardKeyEnvVar(provider string) string {
	return strings.ToUpper(provider) + "_API_KEY"
}

// Discover fills a missing credential from the provider-standard
// variables. With no key for the selected provider it probes Gemini,
// OpenAI, Anthropic, then OpenRouter and switches to the first provider
// found. Reports whether a key is now available.
func Discover(cfg Config) (Config, bool) {
	if !cfg.NeedsAPIKey() || cfg.APIKey() != "" {
		return cfg, true
	}
	for _, p := range keyedProviders {
		if k := os.Getenv(StandardKeyEnvVar(p)); k != "" {
			cfg.Provider = p
			return cfg.WithAPIKey(k), true
		}
	}
	return cfg, false
}

// APIKey returns the selected provider's credential.
func (c Config) APIKey() string {
	if s, ok := c.slot(c.Provider); ok {
		return *s.key
	}
	return ""
}

// WithAPIKey returns a copy of c holding key for the selected provider.
func (c Config) WithAPIKey(key string) Config {
	if s, ok := c.slot(c.Provider); ok {
		*s.key = key
	}
	return c
}

// NeedsAPIKey reports whether the selected provider requires a credential.
func (c Config) NeedsAPIKey() bool {
	return c.Provider != ProviderMock
}

// KeyEnvVar returns the CRITREE_* variable holding the provider's key.
func KeyEnvVar(provider string) string {
	return "CRITREE_" + strings.ToUpper(provider) + "_API_KEY"
}

// Validate checks that the selected provider is known and has a
// credential. A missing credential names every place it can come from.
func (c Config) Validate() error {
	if c.Provider == ProviderMock {
		return nil
	}
	if _, ok := c.slot(c.Provider); !ok {
		return &ErrConfiguration{Provider: c.Provider, Reason: "unknown provider"}
	}
	if c.APIKey() == "" {
		return &ErrConfiguration{
			Provider: c.Provider,
			Reason: fmt.Sprintf(
				"no API key found; set %s or add it under [keys] in the config file "+
					"(critree auth set-key), or type it into the password field of the interactive app",
				KeyEnvVar(c.Provider)),
		}
	}
	return nil
}
