// Package session holds what one interactive critree run needs: the
// resolved provider configuration, the diagnosis service built from it and
// the optional event store.
package session

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/abhisek/critree/internal/diagnosis"
	"github.com/abhisek/critree/internal/llm"
	"github.com/abhisek/critree/internal/store"
	"github.com/abhisek/critree/internal/tree"
)

// ProviderFactory builds a provider. llm.NewProvider is the default.
type ProviderFactory func(ctx context.Context, cfg llm.Config, events store.LLMEventAppender, logger *zap.Logger) (llm.Provider, error)

// Options configures a Session.
type Options struct {
	LLM       llm.Config
	Diagnoser diagnosis.DiagnoserConfig
	Builder   []tree.Option

	// Events may be nil; the app then runs without history.
	Events store.EventRepo
	Logger *zap.Logger

	NewProvider ProviderFactory
}

// Session lazily builds the diagnosis service once a credential is known.
type Session struct {
	opts Options

	mu  sync.Mutex
	svc *diagnosis.Service
}

// New creates a session.
func New(opts Options) *Session {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.NewProvider == nil {
		opts.NewProvider = llm.NewProvider
	}
	if opts.Diagnoser == (diagnosis.DiagnoserConfig{}) {
		opts.Diagnoser = diagnosis.DefaultDiagnoserConfig()
	}
	if opts.Diagnoser.Format == "" {
		opts.Diagnoser.Format = diagnosis.FormatTags
	}
	return &Session{opts: opts}
}

// Provider returns the selected provider name.
func (s *Session) Provider() string {
	return s.opts.LLM.Provider
}

// Status is a short provider/model label for the header.
func (s *Session) Status() string {
	model := ""
	switch s.opts.LLM.Provider {
	case llm.ProviderAnthropic:
		model = s.opts.LLM.Anthropic.Model
	case llm.ProviderOpenAI:
		model = s.opts.LLM.OpenAI.Model
	case llm.ProviderGemini:
		model = s.opts.LLM.Gemini.Model
	case llm.ProviderOpenRouter:
		model = s.opts.LLM.OpenRouter.Model
	}
	if model == "" {
		return s.opts.LLM.Provider
	}
	return s.opts.LLM.Provider + " · " + model
}

// Format returns the reply format diagnoses request.
func (s *Session) Format() diagnosis.Format {
	return s.opts.Diagnoser.Format
}

// Events returns the event store, or nil.
func (s *Session) Events() store.EventRepo {
	return s.opts.Events
}

// Logger returns the session logger.
func (s *Session) Logger() *zap.Logger {
	return s.opts.Logger
}

// NewBuilder returns a tree builder with the configured slot limits.
func (s *Session) NewBuilder() *tree.Builder {
	return tree.NewBuilder(s.opts.Builder...)
}

// NeedsCredential reports whether the secret store had no key for the
// selected provider, so one must be typed in.
func (s *Session) NeedsCredential() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opts.LLM.NeedsAPIKey() && s.opts.LLM.APIKey() == ""
}

// SetCredential uses a key typed into the password field. It only applies
// to this process and is never written back to the secret store.
func (s *Session) SetCredential(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return &llm.ErrConfiguration{Provider: s.opts.LLM.Provider, Reason: "empty API key"}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opts.LLM = s.opts.LLM.WithAPIKey(key)
	s.svc = nil
	return nil
}

// Service returns the diagnosis service, building the provider on first
// use. A missing credential is reported as *llm.ErrConfiguration.
func (s *Session) Service(ctx context.Context) (*diagnosis.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.svc != nil {
		return s.svc, nil
	}

	var events store.LLMEventAppender
	if s.opts.Events != nil {
		events = s.opts.Events
	}
	provider, err := s.opts.NewProvider(ctx, s.opts.LLM, events, s.opts.Logger)
	if err != nil {
		return nil, err
	}

	opts := []diagnosis.Option{
		diagnosis.WithDiagnoserConfig(s.opts.Diagnoser),
		diagnosis.WithLogger(s.opts.Logger),
	}
	if s.opts.Events != nil {
		opts = append(opts, diagnosis.WithEventRepo(s.opts.Events))
	}
	s.svc = diagnosis.NewService(provider, opts...)
	return s.svc, nil
}
