package llm

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// MockResponse is one queued reply for MockProvider.
type MockResponse struct {
	Text  string
	Usage Usage
	Err   error
}

// MockProvider replays queued responses in order and records every
// request. Once the queue is empty it answers through Fallback, or fails
// with ErrProviderUnavailable when Fallback is nil.
type MockProvider struct {
	mu       sync.Mutex
	queue    []MockResponse
	Calls    []Request
	Fallback func(Request) string
}

func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{queue: responses}
}

// NewEchoMockProvider backs the "mock" provider setting: every node is
// graded good, in whatever reply format the request asks for.
func NewEchoMockProvider() *MockProvider {
	return &MockProvider{Fallback: offlineDiagnosis}
}

func offlineDiagnosis(req Request) string {
	const summary, detail = "mock diagnosis", "generated offline by the mock provider"
	switch {
	case req.Schema != nil:
		return `{"grade":"good","summary":"` + summary + `","suggestion":"none","example":"none","detail":"` + detail + `"}`
	case len(req.Messages) > 0 && strings.Contains(req.Messages[len(req.Messages)-1].Content, `separated by "|"`):
		return "good|" + summary + "|none|" + detail
	default:
		return "[GRADE] good\n[SUMMARY] " + summary + "\n[SUGGESTION] none\n[EXAMPLE] none\n[DETAIL] " + detail
	}
}

func (m *MockProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if len(m.queue) == 0 {
		if m.Fallback == nil {
			return nil, &ErrProviderUnavailable{Err: errors.New("mock: no responses queued")}
		}
		return &Response{Text: m.Fallback(req), Model: "mock", StopReason: "end"}, nil
	}

	next := m.queue[0]
	m.queue = m.queue[1:]
	if next.Err != nil {
		return nil, next.Err
	}
	return &Response{Text: next.Text, Usage: next.Usage, Model: "mock", StopReason: "end"}, nil
}

func (m *MockProvider) ModelID() string { return "mock" }

func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, resp)
}

func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
