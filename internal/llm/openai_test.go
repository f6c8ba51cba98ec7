package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

func newTestOpenAIProvider(t *testing.T, handler http.HandlerFunc) *OpenAIProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	config := openai.DefaultConfig("test-key")
	config.BaseURL = server.URL + "/v1"

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(config),
		model:  "gpt-4o-mini",
	}
}

func openAICompletion(content, finish string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1234567890,
		"model":   "gpt-4o-mini",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": finish,
		}},
		"usage": map[string]any{
			"prompt_tokens":     40,
			"completion_tokens": 25,
			"total_tokens":      65,
		},
	}
}

func TestOpenAIProvider_HappyPath(t *testing.T) {
	var gotReq openai.ChatCompletionRequest
	handler := func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotReq)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(openAICompletion("danger|too many|merge|none|detail", "stop"))
	}

	p := newTestOpenAIProvider(t, handler)
	resp, err := p.Generate(context.Background(), UserPrompt("You are a decision analyst.", "Diagnose."))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != "danger|too many|merge|none|detail" {
		t.Fatalf("unexpected text %q", resp.Text)
	}
	if resp.Usage.InputTokens != 40 || resp.Usage.OutputTokens != 25 {
		t.Fatalf("unexpected usage %+v", resp.Usage)
	}
	if len(gotReq.Messages) != 2 || gotReq.Messages[0].Role != openai.ChatMessageRoleSystem {
		t.Fatalf("unexpected messages sent: %+v", gotReq.Messages)
	}
	if gotReq.ResponseFormat != nil {
		t.Fatal("free-text requests must not set a response format")
	}
}

func TestOpenAIProvider_StructuredOutput(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		json.NewDecoder(r.Body).Decode(&req)
		if _, ok := req["response_format"]; !ok {
			t.Errorf("expected response_format in request")
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(openAICompletion(`{"grade":"good","summary":"fine"}`, "stop"))
	}

	p := newTestOpenAIProvider(t, handler)
	req := UserPrompt("", "Diagnose.")
	req.Schema = gradeSchema()
	resp, err := p.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != `{"grade":"good","summary":"fine"}` {
		t.Fatalf("unexpected text %q", resp.Text)
	}
}

func TestOpenAIProvider_StructuredOutputTruncated(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(openAICompletion(`{"grade":"go`, "length"))
	}

	p := newTestOpenAIProvider(t, handler)
	req := UserPrompt("", "Diagnose.")
	req.Schema = gradeSchema()
	_, err := p.Generate(context.Background(), req)
	var maxTok *ErrMaxTokensExceeded
	if !errors.As(err, &maxTok) {
		t.Fatalf("expected ErrMaxTokensExceeded, got %T (%v)", err, err)
	}
}

func TestOpenAIProvider_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(error) bool
	}{
		{"rate limit", http.StatusTooManyRequests, func(err error) bool {
			var e *ErrRateLimit
			return errors.As(err, &e)
		}},
		{"server error", http.StatusInternalServerError, func(err error) bool {
			var e *ErrProviderUnavailable
			return errors.As(err, &e)
		}},
		{"bad key", http.StatusUnauthorized, func(err error) bool {
			var e *ErrRequestRejected
			return errors.As(err, &e)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestOpenAIProvider(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]any{"type": "error", "message": http.StatusText(tt.status)},
				})
			})
			_, err := p.Generate(context.Background(), UserPrompt("", "test"))
			if err == nil || !tt.check(err) {
				t.Fatalf("unexpected error mapping: %T (%v)", err, err)
			}
		})
	}
}

func TestOpenAIProvider_NoChoices(t *testing.T) {
	p := newTestOpenAIProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		body := openAICompletion("", "stop")
		body["choices"] = []any{}
		json.NewEncoder(w).Encode(body)
	})
	_, err := p.Generate(context.Background(), UserPrompt("", "test"))
	var inv *ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("expected ErrInvalidResponse, got %T (%v)", err, err)
	}
}

func TestNewOpenAIProvider(t *testing.T) {
	p, err := NewOpenAIProvider(OpenAIConfig{APIKey: "k", Model: "gpt-4o", BaseURL: "https://example.invalid/v1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "gpt-4o" {
		t.Fatalf("expected 'gpt-4o', got %q", p.ModelID())
	}

	_, err = NewOpenAIProvider(OpenAIConfig{Model: "gpt-4o"})
	var cfgErr *ErrConfiguration
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ErrConfiguration, got %T", err)
	}
}

func TestOpenAIChatRequest(t *testing.T) {
	req := UserPrompt("analyst", "diagnose")
	req.Messages = append(req.Messages, Message{Role: RoleAssistant, Content: "[GRADE] warn"})
	req.Schema = gradeSchema()

	chat, err := openaiChatRequest("gpt-4o-mini", req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	roles := make([]string, len(chat.Messages))
	for i, m := range chat.Messages {
		roles[i] = m.Role
	}
	want := []string{openai.ChatMessageRoleSystem, openai.ChatMessageRoleUser, openai.ChatMessageRoleAssistant}
	if len(roles) != len(want) {
		t.Fatalf("roles = %v, want %v", roles, want)
	}
	for i := range want {
		if roles[i] != want[i] {
			t.Fatalf("roles = %v, want %v", roles, want)
		}
	}
	if chat.ResponseFormat == nil || chat.ResponseFormat.JSONSchema.Name != "test-grade" {
		t.Fatalf("expected json_schema response format, got %+v", chat.ResponseFormat)
	}
}

func TestOpenAIChatRequest_NoSystem(t *testing.T) {
	chat, err := openaiChatRequest("gpt-4o", UserPrompt("", "diagnose"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chat.Messages) != 1 || chat.ResponseFormat != nil {
		t.Fatalf("unexpected request %+v", chat)
	}
}

func TestNewOpenRouterProvider(t *testing.T) {
	t.Run("model pass-through", func(t *testing.T) {
		p, err := NewOpenRouterProvider(OpenRouterConfig{
			APIKey: "sk-or-test",
			Model:  "anthropic/claude-3-haiku",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.ModelID() != "anthropic/claude-3-haiku" {
			t.Errorf("model = %q, want %q", p.ModelID(), "anthropic/claude-3-haiku")
		}
	})

	t.Run("friendly names are not mapped", func(t *testing.T) {
		p, err := NewOpenRouterProvider(OpenRouterConfig{APIKey: "sk-or-test", Model: "gpt-4o"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.ModelID() != "gpt-4o" {
			t.Errorf("model = %q", p.ModelID())
		}
	})

	t.Run("empty API key", func(t *testing.T) {
		_, err := NewOpenRouterProvider(OpenRouterConfig{Model: "google/gemini-2.0-flash-exp"})
		var cfgErr *ErrConfiguration
		if !errors.As(err, &cfgErr) {
			t.Fatalf("expected ErrConfiguration, got %T", err)
		}
		if cfgErr.Provider != ProviderOpenRouter {
			t.Fatalf("provider = %q", cfgErr.Provider)
		}
	})
}
