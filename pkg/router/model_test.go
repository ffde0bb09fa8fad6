package router

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zen-systems/intentgate/pkg/config"
)

func TestModelRouterRoute(t *testing.T) {
	prefs := config.DefaultRoutingConfig().Models
	r := NewModelRouter(prefs, config.DefaultAliases())

	tests := []struct {
		name      string
		prompt    string
		available []string
		want      string
	}{
		{"nothing available", "write code", nil, "glm-4.6"},
		{"default wins", "anything", []string{"gpt-4.1", "glm-4.6"}, "glm-4.6"},
		{"code prefers fallback family over others", "write code", []string{"claude-sonnet-4-20250514", "gpt-4.1"}, "gpt-4.1"},
		{"analysis prefers preferred family", "analyze this", []string{"claude-sonnet-4-20250514", "gpt-4.1", "glm-5"}, "glm-5"},
		{"writing without families", "draft a story", []string{"claude-sonnet-4-20250514"}, "claude-sonnet-4-20250514"},
		{"file reads skip fallback family", "read the file", []string{"claude-sonnet-4-20250514", "gpt-4.1"}, "claude-sonnet-4-20250514"},
		{"no keywords", "hello", []string{"claude-sonnet-4-20250514", "gpt-4.1"}, "claude-sonnet-4-20250514"},
		{"aliases resolve", "hello", []string{"fast"}, "gpt-4o-mini"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Route(tt.prompt, tt.available))
		})
	}
}

func TestModelRouterDefaultAlias(t *testing.T) {
	prefs := config.DefaultRoutingConfig().Models
	prefs.Default = "quality"
	r := NewModelRouter(prefs, config.DefaultAliases())

	assert.Equal(t, "claude-sonnet-4-20250514", r.Route("hi", nil))
	assert.Equal(t, "claude-sonnet-4-20250514", r.Route("hi", []string{"gpt-4.1", "quality"}))
}

func TestModelRouterProviderAndAvailable(t *testing.T) {
	prefs := config.DefaultRoutingConfig().Models
	r := NewModelRouter(prefs, config.DefaultAliases())

	assert.Equal(t, "custom", r.Provider("glm"))
	assert.Equal(t, "openai", r.Provider("gpt-4.1"))
	assert.Empty(t, r.Provider("nope"))
	assert.Equal(t, config.DefaultAliases().Models(), r.Available())

	prefs.Available = []string{"mock-1"}
	assert.Equal(t, []string{"mock-1"}, NewModelRouter(prefs, nil).Available())
	assert.Nil(t, NewModelRouter(config.ModelPreferences{}, nil).Available())
}

func TestModelRouterOnlyServedModels(t *testing.T) {
	prefs := config.DefaultRoutingConfig().Models
	aliases := config.DefaultAliases()

	r := NewModelRouter(prefs, aliases, WithProviders("openai", "anthropic"))
	available := r.Available()
	assert.Equal(t, []string{"claude-opus-4-20250514", "claude-sonnet-4-20250514", "gpt-4.1", "gpt-4o-mini"}, available)
	assert.Equal(t, "gpt-4.1", r.Route("Analyze the code in main.py", available))

	single := NewModelRouter(prefs, aliases, WithProviders("anthropic"))
	model := single.Route("hello", single.Available())
	assert.Equal(t, "claude-opus-4-20250514", model)
	assert.Equal(t, "anthropic", single.Provider(model))

	custom := NewModelRouter(prefs, aliases, WithProviders("custom", "openai"))
	assert.Equal(t, "glm-4.6", custom.Route("hello", custom.Available()))

	assert.Empty(t, NewModelRouter(prefs, aliases, WithProviders()).Available())
}
