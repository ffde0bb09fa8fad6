// Package adapter is the gateway to model providers. Each adapter turns a
// chat Request into a provider call and normalizes the reply.
package adapter

import (
	"context"
	"strings"
)

// Adapter defines the interface for LLM provider adapters.
type Adapter interface {
	// Generate sends the request to the model and returns its reply.
	Generate(ctx context.Context, req Request) (*Response, error)

	// Name returns the adapter's identifier.
	Name() string

	// Models returns the list of supported models.
	Models() []string
}

// Role is a chat message author.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one chat turn.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Request is a provider-neutral chat completion request.
type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

// Prompt builds a single-turn request.
func Prompt(model, prompt string) Request {
	return Request{
		Model:    model,
		Messages: []Message{{Role: RoleUser, Content: prompt}},
	}
}

// LastUserMessage returns the content of the final user turn.
func (r Request) LastUserMessage() string {
	for i := len(r.Messages) - 1; i >= 0; i-- {
		if r.Messages[i].Role == RoleUser {
			return r.Messages[i].Content
		}
	}
	return ""
}

// System joins the system turns.
func (r Request) System() string {
	var parts []string
	for _, m := range r.Messages {
		if m.Role == RoleSystem {
			parts = append(parts, m.Content)
		}
	}
	return strings.Join(parts, "\n\n")
}

func (r Request) maxTokens() int {
	if r.MaxTokens > 0 {
		return r.MaxTokens
	}
	return defaultMaxTokens
}

const defaultMaxTokens = 4096
