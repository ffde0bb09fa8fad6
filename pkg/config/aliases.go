package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// ModelAliases manages model alias resolution and validation.
type ModelAliases struct {
	Aliases   map[string]string   `yaml:"aliases"`
	Providers map[string][]string `yaml:"providers"`
}

// LoadAliases reads model aliases from a YAML file.
func LoadAliases(path string) (*ModelAliases, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var aliases ModelAliases
	if err := yaml.Unmarshal(data, &aliases); err != nil {
		return nil, err
	}

	if aliases.Aliases == nil {
		aliases.Aliases = make(map[string]string)
	}
	if aliases.Providers == nil {
		aliases.Providers = make(map[string][]string)
	}

	return &aliases, nil
}

// LoadAliasesWithFallback loads ~/.intentgate/models.yaml when present,
// otherwise the built-in defaults.
func LoadAliasesWithFallback(dir string) (*ModelAliases, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return DefaultAliases(), nil
		}
		dir = filepath.Join(home, ".intentgate")
	}

	path := filepath.Join(dir, "models.yaml")
	if _, err := os.Stat(path); err != nil {
		return DefaultAliases(), nil
	}
	return LoadAliases(path)
}

// Resolve returns the canonical model name for an alias.
// If the input is not an alias, it returns the input unchanged.
func (a *ModelAliases) Resolve(modelOrAlias string) string {
	if a == nil || a.Aliases == nil {
		return modelOrAlias
	}
	if canonical, ok := a.Aliases[modelOrAlias]; ok {
		return canonical
	}
	return modelOrAlias
}

// ValidateModel checks if a model exists in the provider's list.
func (a *ModelAliases) ValidateModel(provider, model string) error {
	if a == nil || a.Providers == nil {
		return nil
	}

	models, ok := a.Providers[provider]
	if !ok {
		return fmt.Errorf("unknown provider %q", provider)
	}
	for _, m := range models {
		if m == model {
			return nil
		}
	}
	return fmt.Errorf("model %q not in %s provider list", model, provider)
}

// ProviderFor returns the provider name for a canonical model or alias.
func (a *ModelAliases) ProviderFor(model string) string {
	if a == nil || a.Providers == nil {
		return ""
	}
	model = a.Resolve(model)
	for _, provider := range a.ProviderNames() {
		for _, m := range a.Providers[provider] {
			if m == model {
				return provider
			}
		}
	}
	return ""
}

// ProviderNames returns a sorted list of provider names.
func (a *ModelAliases) ProviderNames() []string {
	if a == nil || a.Providers == nil {
		return nil
	}
	providers := make([]string, 0, len(a.Providers))
	for p := range a.Providers {
		providers = append(providers, p)
	}
	sort.Strings(providers)
	return providers
}

// Models returns every canonical model across providers, sorted.
func (a *ModelAliases) Models() []string {
	var models []string
	for _, provider := range a.ProviderNames() {
		models = append(models, a.Providers[provider]...)
	}
	sort.Strings(models)
	return models
}

// ValidateRoutingConfig checks that the configured default and available
// models are known to some provider.
func (a *ModelAliases) ValidateRoutingConfig(cfg *RoutingConfig) []error {
	if a == nil || cfg == nil {
		return nil
	}

	var errs []error
	candidates := append([]string{cfg.Models.Default}, cfg.Models.Available...)
	for _, model := range candidates {
		if a.ProviderFor(model) == "" {
			errs = append(errs, fmt.Errorf("model %q has no provider", model))
		}
	}
	return errs
}

// DefaultAliases returns the default model aliases configuration.
func DefaultAliases() *ModelAliases {
	return &ModelAliases{
		Aliases: map[string]string{
			"fast":     "gpt-4o-mini",
			"code":     "gpt-4.1",
			"quality":  "claude-sonnet-4-20250514",
			"deep":     "claude-opus-4-20250514",
			"research": "gemini-2.0-pro",
			"glm":      "glm-4.6",
		},
		Providers: map[string][]string{
			"anthropic": {"claude-sonnet-4-20250514", "claude-opus-4-20250514"},
			"openai":    {"gpt-4o-mini", "gpt-4.1"},
			"google":    {"gemini-2.0-pro"},
			"custom":    {"glm-4.6"},
			"mock":      {"mock-1"},
		},
	}
}
