// Package config loads and saves the critree configuration file. The file
// doubles as the pre-provisioned secret store for provider API keys.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/pelletier/go-toml/v2"

	"github.com/abhisek/critree/internal/diagnosis"
	"github.com/abhisek/critree/internal/llm"
	"github.com/abhisek/critree/internal/tree"
)

// Config mirrors config.toml.
type Config struct {
	LLM     LLMSection     `toml:"llm"`
	Keys    KeysSection    `toml:"keys"`
	Builder BuilderSection `toml:"builder"`
}

// LLMSection selects and tunes the text-generation provider.
type LLMSection struct {
	Provider    string  `toml:"provider"`
	Model       string  `toml:"model,omitempty"`
	BaseURL     string  `toml:"base_url,omitempty"`
	Format      string  `toml:"format"`
	Timeout     string  `toml:"timeout,omitempty"` // Go duration; empty means client default
	MaxAttempts int     `toml:"max_attempts"`
	MaxTokens   int     `toml:"max_tokens"`
	Temperature float64 `toml:"temperature"`
}

// KeysSection holds API keys per provider.
type KeysSection struct {
	Anthropic  string `toml:"anthropic,omitempty"`
	OpenAI     string `toml:"openai,omitempty"`
	Gemini     string `toml:"gemini,omitempty"`
	OpenRouter string `toml:"openrouter,omitempty"`
}

// BuilderSection configures the interactive tree builder.
type BuilderSection struct {
	Capacity     int  `toml:"capacity"` // 0 means unbounded
	InitialSlots int  `toml:"initial_slots"`
	Unbounded    bool `toml:"unbounded"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		LLM: LLMSection{
			Provider:    llm.ProviderAnthropic,
			Format:      "tags",
			MaxAttempts: 1,
			MaxTokens:   1024,
			Temperature: 0.3,
		},
		Builder: BuilderSection{
			Capacity:     tree.DefaultCapacity,
			InitialSlots: tree.DefaultInitialSlots,
		},
	}
}

// DefaultPath resolves the config file path in priority order:
// 1. CRITREE_CONFIG environment variable
// 2. $XDG_CONFIG_HOME/critree/config.toml
// 3. ~/.config/critree/config.toml
func DefaultPath() (string, error) {
	if p := os.Getenv("CRITREE_CONFIG"); p != "" {
		return p, nil
	}
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "critree", "config.toml"), nil
}

// Load reads the config file at path. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return nil, fmt.Errorf("parse config %s:%d:%d: %w", path, row, col, err)
		}
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to path with owner-only permissions. Concurrent
// writers are serialized with a lock file next to the config.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock config: %w", err)
	}
	defer lock.Unlock()

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".config-*.toml")
	if err != nil {
		return fmt.Errorf("create temp config: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod config: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace config: %w", err)
	}
	return nil
}

// Key returns the stored API key for provider.
func (c *Config) Key(provider string) string {
	switch provider {
	case llm.ProviderAnthropic:
		return c.Keys.Anthropic
	case llm.ProviderOpenAI:
		return c.Keys.OpenAI
	case llm.ProviderGemini:
		return c.Keys.Gemini
	case llm.ProviderOpenRouter:
		return c.Keys.OpenRouter
	}
	return ""
}

// SetKey stores an API key for provider.
func (c *Config) SetKey(provider, key string) error {
	key = strings.TrimSpace(key)
	switch strings.ToLower(provider) {
	case llm.ProviderAnthropic:
		c.Keys.Anthropic = key
	case llm.ProviderOpenAI:
		c.Keys.OpenAI = key
	case llm.ProviderGemini:
		c.Keys.Gemini = key
	case llm.ProviderOpenRouter:
		c.Keys.OpenRouter = key
	default:
		return fmt.Errorf("unknown provider %q", provider)
	}
	return nil
}

// LLMConfig resolves the provider configuration: defaults, then this file,
// then CRITREE_* environment variables, then provider-standard key
// variables when no key was found.
func (c *Config) LLMConfig() (llm.Config, error) {
	cfg := llm.DefaultConfig()

	if c.LLM.Provider != "" {
		cfg.Provider = strings.ToLower(c.LLM.Provider)
	}
	cfg.Anthropic.APIKey = c.Keys.Anthropic
	cfg.OpenAI.APIKey = c.Keys.OpenAI
	cfg.Gemini.APIKey = c.Keys.Gemini
	cfg.OpenRouter.APIKey = c.Keys.OpenRouter

	if c.LLM.Model != "" {
		switch cfg.Provider {
		case llm.ProviderAnthropic:
			cfg.Anthropic.Model = c.LLM.Model
		case llm.ProviderOpenAI:
			cfg.OpenAI.Model = c.LLM.Model
		case llm.ProviderGemini:
			cfg.Gemini.Model = c.LLM.Model
		case llm.ProviderOpenRouter:
			cfg.OpenRouter.Model = c.LLM.Model
		}
	}
	if c.LLM.BaseURL != "" {
		switch cfg.Provider {
		case llm.ProviderOpenAI:
			cfg.OpenAI.BaseURL = c.LLM.BaseURL
		case llm.ProviderOpenRouter:
			cfg.OpenRouter.BaseURL = c.LLM.BaseURL
		}
	}
	if c.LLM.MaxAttempts > 0 {
		cfg.Retry.MaxAttempts = c.LLM.MaxAttempts
	}
	if c.LLM.Timeout != "" {
		d, err := time.ParseDuration(c.LLM.Timeout)
		if err != nil {
			return cfg, fmt.Errorf("llm.timeout: %w", err)
		}
		cfg.Timeout = d
	}

	cfg = llm.ApplyEnv(cfg)
	cfg, _ = llm.Discover(cfg)
	return cfg, nil
}

// BuilderOptions converts the [builder] section to tree builder options.
func (c *Config) BuilderOptions() []tree.Option {
	var opts []tree.Option
	if c.Builder.Unbounded {
		opts = append(opts, tree.Unbounded())
	} else {
		opts = append(opts, tree.WithCapacity(c.Builder.Capacity))
	}
	if c.Builder.InitialSlots > 0 {
		opts = append(opts, tree.WithInitialSlots(c.Builder.InitialSlots))
	}
	return opts
}

// DiagnoserConfig returns the diagnosis settings from the [llm] section.
func (c *Config) DiagnoserConfig() (diagnosis.DiagnoserConfig, error) {
	cfg := diagnosis.DefaultDiagnoserConfig()
	format, err := diagnosis.ParseFormat(c.LLM.Format)
	if err != nil {
		return cfg, fmt.Errorf("llm.format: %w", err)
	}
	cfg.Format = format
	if c.LLM.MaxTokens > 0 {
		cfg.MaxTokens = c.LLM.MaxTokens
	}
	if c.LLM.Temperature > 0 {
		cfg.Temperature = c.LLM.Temperature
	}
	return cfg, nil
}
