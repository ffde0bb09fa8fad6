package adapter

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIAdapter implements the Adapter interface for OpenAI models and for
// OpenAI-compatible endpoints such as GLM.
type OpenAIAdapter struct {
	client openai.Client
	name   string
	models []string
	// compatible endpoints accept max_tokens but not max_completion_tokens.
	compatible bool
}

// NewOpenAIAdapter creates a new OpenAI adapter.
func NewOpenAIAdapter(apiKey string) (*OpenAIAdapter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIAdapter{
		client: client,
		name:   "openai",
		models: []string{"gpt-4o-mini", "gpt-4.1"},
	}, nil
}

// NewCompatibleAdapter creates an adapter for an OpenAI-compatible endpoint
// served at baseURL with its own credential.
func NewCompatibleAdapter(name, baseURL, apiKey string, models []string) (*OpenAIAdapter, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("%s base URL is required", name)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%s API key is required", name)
	}

	client := openai.NewClient(option.WithBaseURL(baseURL), option.WithAPIKey(apiKey))
	return &OpenAIAdapter{
		client:     client,
		name:       name,
		models:     append([]string(nil), models...),
		compatible: true,
	}, nil
}

// Name returns the adapter identifier.
func (a *OpenAIAdapter) Name() string {
	return a.name
}

// Models returns the list of supported models.
func (a *OpenAIAdapter) Models() []string {
	return append([]string(nil), a.models...)
}

// Generate sends the conversation to the chat completions endpoint.
func (a *OpenAIAdapter) Generate(ctx context.Context, req Request) (*Response, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(req.Model),
	}
	if a.compatible {
		params.MaxTokens = openai.Int(int64(req.maxTokens()))
	} else {
		params.MaxCompletionTokens = openai.Int(int64(req.maxTokens()))
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}
	for _, m := range req.Messages {
		switch m.Role {
		case RoleSystem:
			params.Messages = append(params.Messages, openai.SystemMessage(m.Content))
		case RoleAssistant:
			params.Messages = append(params.Messages, openai.AssistantMessage(m.Content))
		default:
			params.Messages = append(params.Messages, openai.UserMessage(m.Content))
		}
	}

	resp, err := a.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, wrapProviderError(a.name, err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%s returned no choices", a.name)
	}

	return &Response{
		Text:    resp.Choices[0].Message.Content,
		Adapter: a.Name(),
		Model:   req.Model,
		Usage: &Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}, nil
}
