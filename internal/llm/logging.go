package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/critree/internal/store"
)

// LoggingProvider records every call as an llm_request_events row and a
// log line. Recording failures are logged and never fail the call.
type LoggingProvider struct {
	inner    Provider
	provider string
	events   store.LLMEventAppender
	logger   *zap.Logger
}

// WithLogging wraps p. events and logger may be nil.
func WithLogging(p Provider, providerName string, events store.LLMEventAppender, logger *zap.Logger) Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingProvider{inner: p, provider: providerName, events: events, logger: logger.Named("llm")}
}

func (l *LoggingProvider) ModelID() string { return l.inner.ModelID() }

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)
	ev := l.event(PurposeFrom(ctx), req, resp, err, time.Since(start))

	log := l.logger.With(
		zap.String("provider", ev.Provider),
		zap.String("model", ev.Model),
		zap.String("purpose", ev.Purpose),
		zap.Int64("latency_ms", ev.LatencyMs),
		zap.Int("input_tokens", ev.InputTokens),
		zap.Int("output_tokens", ev.OutputTokens),
	)
	if err != nil {
		log.Warn("llm request failed", zap.Error(err))
	} else {
		log.Debug("llm request")
	}

	if l.events != nil {
		if werr := l.events.AppendLLMRequest(ctx, ev); werr != nil {
			l.logger.Warn("record llm request event", zap.Error(werr))
		}
	}
	return resp, err
}

func (l *LoggingProvider) event(purpose string, req Request, resp *Response, err error, took time.Duration) store.LLMRequestEventData {
	ev := store.LLMRequestEventData{
		Provider:    l.provider,
		Model:       l.inner.ModelID(),
		Purpose:     purpose,
		LatencyMs:   took.Milliseconds(),
		Success:     err == nil,
		RequestBody: transcript(req),
	}
	if err != nil {
		ev.ErrorMessage = err.Error()
	}
	if resp != nil {
		ev.InputTokens, ev.OutputTokens = resp.Usage.InputTokens, resp.Usage.OutputTokens
		ev.ResponseBody = resp.Text
		if resp.Model != "" {
			ev.Model = resp.Model
		}
	}
	return ev
}

// transcript renders a request as labelled sections for the audit log.
func transcript(req Request) string {
	var sb strings.Builder
	section := func(label, body string) {
		fmt.Fprintf(&sb, "[%s]\n%s\n\n", label, body)
	}
	if req.System != "" {
		section("system", req.System)
	}
	for _, m := range req.Messages {
		section(string(m.Role), m.Content)
	}
	if req.Schema != nil {
		if def, err := json.Marshal(req.Schema.Definition); err == nil {
			section("schema: "+req.Schema.Name, string(def))
		}
	}
	return strings.TrimSuffix(sb.String(), "\n")
}
