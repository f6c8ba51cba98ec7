package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

var openaiModels = map[string]string{
	"gpt-4o":      "gpt-4o",
	"gpt-4o-mini": "gpt-4o-mini",
	"gpt-4.1":     "gpt-4.1",
}

// OpenAIProvider talks to the chat completions API. OpenRouter reuses it
// with a different base URL.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

func NewOpenAIProvider(cfg OpenAIConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, &ErrConfiguration{Provider: ProviderOpenAI, Reason: "API key is required"}
	}
	return newOpenAICompatible(cfg, openaiModels), nil
}

// newOpenAICompatible skips key checks. A nil aliases table passes the
// model name through untouched.
func newOpenAICompatible(cfg OpenAIConfig, aliases map[string]string) *OpenAIProvider {
	conf := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		conf.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if aliases != nil {
		model = resolveModel(model, aliases)
	}
	return &OpenAIProvider{client: openai.NewClientWithConfig(conf), model: model}
}

func (p *OpenAIProvider) ModelID() string { return p.model }

func (p *OpenAIProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	chat, err := openaiChatRequest(p.model, req)
	if err != nil {
		return nil, err
	}
	completion, err := p.client.CreateChatCompletion(ctx, chat)
	if err != nil {
		return nil, mapOpenAIError(err)
	}
	resp, err := openaiResponse(completion)
	if err != nil {
		return nil, err
	}
	if err := checkStructured(req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func openaiChatRequest(model string, req Request) (openai.ChatCompletionRequest, error) {
	msgs := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}
	for _, m := range req.Messages {
		role := openai.ChatMessageRoleUser
		if m.Role == RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}

	chat := openai.ChatCompletionRequest{
		Model:               model,
		Messages:            msgs,
		MaxCompletionTokens: req.MaxTokens,
		Temperature:         float32(req.Temperature),
	}
	if req.Schema == nil {
		return chat, nil
	}

	raw, err := json.Marshal(req.Schema.Definition)
	if err != nil {
		return chat, fmt.Errorf("encode schema %s: %w", req.Schema.Name, err)
	}
	chat.ResponseFormat = &openai.ChatCompletionResponseFormat{
		Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
		JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
			Name:   req.Schema.Name,
			Schema: json.RawMessage(raw),
			Strict: true,
		},
	}
	return chat, nil
}

func openaiResponse(c openai.ChatCompletionResponse) (*Response, error) {
	if len(c.Choices) == 0 {
		return nil, &ErrInvalidResponse{Err: fmt.Errorf("openai: reply has no choices")}
	}
	choice := c.Choices[0]
	stop := "end"
	if choice.FinishReason == openai.FinishReasonLength {
		stop = "max_tokens"
	}
	return &Response{
		Text: choice.Message.Content,
		Usage: Usage{
			InputTokens:  c.Usage.PromptTokens,
			OutputTokens: c.Usage.CompletionTokens,
			TotalTokens:  c.Usage.TotalTokens,
		},
		Model:      c.Model,
		StopReason: stop,
	}, nil
}

func mapOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.HTTPStatusCode, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return classifyStatus(reqErr.HTTPStatusCode, err)
	}
	return &ErrProviderUnavailable{Err: err}
}

const openRouterBaseURL = "https://openrouter.ai/api/v1"

// NewOpenRouterProvider returns an OpenAI-protocol client pointed at
// OpenRouter. Model IDs ("vendor/model") are sent as given.
func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, &ErrConfiguration{Provider: ProviderOpenRouter, Reason: "API key is required"}
	}
	base := cfg.BaseURL
	if base == "" {
		base = openRouterBaseURL
	}
	return newOpenAICompatible(OpenAIConfig{APIKey: cfg.APIKey, Model: cfg.Model, BaseURL: base}, nil), nil
}
