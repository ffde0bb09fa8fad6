package adapter

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MockAdapter returns deterministic responses for local runs and tests.
type MockAdapter struct {
	mu              sync.Mutex
	responses       map[string]string
	defaultResponse string
	failures        []error
	calls           []Request
	Usage           *Usage
}

// NewMockAdapter creates a mock adapter with a default response.
func NewMockAdapter() *MockAdapter {
	return &MockAdapter{
		responses:       make(map[string]string),
		defaultResponse: "mock response:",
	}
}

// NewMockAdapterWithResponses creates a mock adapter with predefined
// responses. A response is chosen when its key occurs in the last user turn.
func NewMockAdapterWithResponses(responses map[string]string, defaultResponse string) *MockAdapter {
	if defaultResponse == "" {
		defaultResponse = "mock response:"
	}
	if responses == nil {
		responses = make(map[string]string)
	}
	return &MockAdapter{responses: responses, defaultResponse: defaultResponse}
}

// FailNext makes the next len(errs) calls return the given errors in order.
func (a *MockAdapter) FailNext(errs ...error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.failures = append(a.failures, errs...)
}

// Calls returns the requests seen so far.
func (a *MockAdapter) Calls() []Request {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Request(nil), a.calls...)
}

// Name returns the adapter identifier.
func (a *MockAdapter) Name() string {
	return "mock"
}

// Models returns the list of supported mock models.
func (a *MockAdapter) Models() []string {
	return []string{"mock-1"}
}

// Generate returns a deterministic reply for the request.
func (a *MockAdapter) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, req)

	if len(a.failures) > 0 {
		err := a.failures[0]
		a.failures = a.failures[1:]
		return nil, err
	}

	model := req.Model
	if model == "" {
		model = "mock-1"
	}
	prompt := req.LastUserMessage()
	text := fmt.Sprintf("%s\n%s", a.defaultResponse, prompt)
	if response, ok := a.lookup(prompt); ok {
		text = response
	}
	return &Response{Text: text, Adapter: a.Name(), Model: model, Usage: a.Usage}, nil
}

// lookup prefers an exact match and then the longest key contained in
// prompt.
func (a *MockAdapter) lookup(prompt string) (string, bool) {
	if response, ok := a.responses[prompt]; ok {
		return response, true
	}
	best := ""
	for key := range a.responses {
		if key != "" && strings.Contains(prompt, key) && len(key) > len(best) {
			best = key
		}
	}
	if best == "" {
		return "", false
	}
	return a.responses[best], true
}
