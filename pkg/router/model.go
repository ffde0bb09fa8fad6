package router

import (
	"strings"

	"github.com/zen-systems/intentgate/pkg/config"
)

// keyword groups that favour the preferred family, then the fallback family.
var (
	codeKeywords     = []string{"code", "program", "function", "class", "script", "debug", "analyze code", "review code"}
	writeKeywords    = []string{"write", "create", "generate", "draft", "compose", "story", "article"}
	analysisKeywords = []string{"analyze", "compare", "evaluate", "assess", "review", "examine"}
	fileKeywords     = []string{"read", "file", "open", "load"}
)

// ModelRouter picks a model for a prompt from the models available.
type ModelRouter struct {
	prefs     config.ModelPreferences
	aliases   *config.ModelAliases
	providers map[string]struct{}
}

// ModelOption configures a ModelRouter.
type ModelOption func(*ModelRouter)

// WithProviders restricts the available models to those served by the
// named providers. Calling it with no names leaves nothing available.
func WithProviders(names ...string) ModelOption {
	return func(r *ModelRouter) {
		r.providers = make(map[string]struct{}, len(names))
		for _, name := range names {
			r.providers[name] = struct{}{}
		}
	}
}

// NewModelRouter creates a model router. aliases may be nil.
func NewModelRouter(prefs config.ModelPreferences, aliases *config.ModelAliases, opts ...ModelOption) *ModelRouter {
	r := &ModelRouter{prefs: prefs, aliases: aliases}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Route returns the best model for prompt. Aliases in available are resolved
// first. With nothing available the configured default is returned.
func (r *ModelRouter) Route(prompt string, available []string) string {
	models := make([]string, 0, len(available))
	for _, m := range available {
		models = append(models, r.resolve(m))
	}
	if len(models) == 0 {
		return r.resolve(r.prefs.Default)
	}

	def := r.resolve(r.prefs.Default)
	for _, m := range models {
		if m == def {
			return m
		}
	}

	lower := strings.ToLower(prompt)
	switch {
	case containsAny(lower, codeKeywords), containsAny(lower, writeKeywords), containsAny(lower, analysisKeywords):
		if m := firstFamily(models, r.prefs.Preferred); m != "" {
			return m
		}
		if m := firstFamily(models, r.prefs.Fallback); m != "" {
			return m
		}
		return models[0]
	case containsAny(lower, fileKeywords):
		if m := firstFamily(models, r.prefs.Preferred); m != "" {
			return m
		}
		return models[0]
	}

	if m := firstFamily(models, r.prefs.Preferred); m != "" {
		return m
	}
	return models[0]
}

// Provider returns the provider serving model, or "" if unknown.
func (r *ModelRouter) Provider(model string) string {
	return r.aliases.ProviderFor(model)
}

// Available returns the configured model list, or every model the aliases
// know about when none is configured. With providers set, only models a
// configured provider serves are kept.
func (r *ModelRouter) Available() []string {
	var models []string
	switch {
	case len(r.prefs.Available) > 0:
		models = append(models, r.prefs.Available...)
	case r.aliases != nil:
		models = r.aliases.Models()
	}
	if r.providers == nil {
		return models
	}

	served := make([]string, 0, len(models))
	for _, m := range models {
		if _, ok := r.providers[r.aliases.ProviderFor(m)]; ok {
			served = append(served, m)
		}
	}
	return served
}

func (r *ModelRouter) resolve(model string) string {
	return r.aliases.Resolve(model)
}

func firstFamily(models []string, family string) string {
	if family == "" {
		return ""
	}
	family = strings.ToLower(family)
	for _, m := range models {
		if strings.Contains(strings.ToLower(m), family) {
			return m
		}
	}
	return ""
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
