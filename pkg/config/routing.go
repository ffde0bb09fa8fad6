package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// RoutingConfig holds the tunable constants of the decision pipeline.
type RoutingConfig struct {
	CommandPrefix string           `yaml:"command_prefix,omitempty" validate:"required"`
	Thresholds    Thresholds       `yaml:"thresholds,omitempty"`
	Selector      SelectorConfig   `yaml:"selector,omitempty"`
	HistoryLimit  int              `yaml:"history_limit,omitempty" validate:"gte=1"`
	Temperature   float64          `yaml:"temperature,omitempty" validate:"gte=0,lte=2"`
	Models        ModelPreferences `yaml:"models,omitempty"`
	Retry         RetryConfig      `yaml:"retry,omitempty"`
}

// Thresholds are the confidence cut-offs used for routing, plus the tool
// count above which a decision is considered high complexity.
type Thresholds struct {
	Execute                 float64 `yaml:"execute,omitempty" validate:"gt=0,lte=1,gtfield=Confirm"`
	Confirm                 float64 `yaml:"confirm,omitempty" validate:"gt=0,lte=1,gtefield=Clarify"`
	Clarify                 float64 `yaml:"clarify,omitempty" validate:"gte=0,lte=1"`
	HighComplexityToolCount int     `yaml:"high_complexity_tool_count,omitempty" validate:"gte=1"`
}

// SelectorConfig tunes the keyword-scored fallback tool selector.
type SelectorConfig struct {
	ConfidenceThreshold int `yaml:"confidence_threshold,omitempty" validate:"gte=1"`
	MaxTools            int `yaml:"max_tools,omitempty" validate:"gte=1"`
}

// ModelPreferences drives model selection for a request.
type ModelPreferences struct {
	// Preferred and Fallback are model family substrings, matched case-insensitively.
	Preferred string   `yaml:"preferred,omitempty"`
	Fallback  string   `yaml:"fallback,omitempty"`
	Default   string   `yaml:"default,omitempty" validate:"required"`
	Available []string `yaml:"available,omitempty"`
}

// RetryConfig defines retry and backoff behavior around the execution runtime.
type RetryConfig struct {
	MaxRetries    int `yaml:"max_retries,omitempty" validate:"gte=0"`
	BaseBackoffMs int `yaml:"base_backoff_ms,omitempty" validate:"gte=0"`
	MaxBackoffMs  int `yaml:"max_backoff_ms,omitempty" validate:"gtefield=BaseBackoffMs"`
}

var validate = validator.New()

// LoadRoutingConfig reads routing configuration from a YAML file. Keys the
// file sets replace the defaults, including explicit zeros such as
// retry.max_retries: 0.
func LoadRoutingConfig(path string) (*RoutingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultRoutingConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if cfg.Retry.MaxBackoffMs < cfg.Retry.BaseBackoffMs {
		cfg.Retry.MaxBackoffMs = cfg.Retry.BaseBackoffMs
	}
	return cfg, nil
}

// DefaultRoutingConfig returns the default routing configuration.
func DefaultRoutingConfig() *RoutingConfig {
	cfg := &RoutingConfig{}
	applyRoutingDefaults(cfg)
	return cfg
}

// Validate checks field ranges and threshold ordering.
func (c *RoutingConfig) Validate() error {
	if c == nil {
		return fmt.Errorf("routing config is required")
	}
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	errs := make([]error, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		errs = append(errs, fmt.Errorf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return errors.Join(errs...)
}

// applyRoutingDefaults fills zero fields. It is only applied to an empty
// config; files are decoded on top of its result.
func applyRoutingDefaults(cfg *RoutingConfig) {
	if cfg == nil {
		return
	}
	if cfg.CommandPrefix == "" {
		cfg.CommandPrefix = "/"
	}
	if cfg.Thresholds.Execute == 0 {
		cfg.Thresholds.Execute = 0.8
	}
	if cfg.Thresholds.Confirm == 0 {
		cfg.Thresholds.Confirm = 0.5
	}
	if cfg.Thresholds.Clarify == 0 {
		cfg.Thresholds.Clarify = 0.4
	}
	if cfg.Thresholds.HighComplexityToolCount == 0 {
		cfg.Thresholds.HighComplexityToolCount = 3
	}
	if cfg.Selector.ConfidenceThreshold == 0 {
		cfg.Selector.ConfidenceThreshold = 3
	}
	if cfg.Selector.MaxTools == 0 {
		cfg.Selector.MaxTools = 5
	}
	if cfg.HistoryLimit == 0 {
		cfg.HistoryLimit = 256
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.7
	}
	if cfg.Models.Preferred == "" {
		cfg.Models.Preferred = "glm"
	}
	if cfg.Models.Fallback == "" {
		cfg.Models.Fallback = "gpt"
	}
	if cfg.Models.Default == "" {
		cfg.Models.Default = "glm-4.6"
	}
	if cfg.Retry.MaxRetries == 0 {
		cfg.Retry.MaxRetries = 2
	}
	if cfg.Retry.BaseBackoffMs == 0 {
		cfg.Retry.BaseBackoffMs = 200
	}
	if cfg.Retry.MaxBackoffMs == 0 {
		cfg.Retry.MaxBackoffMs = 2000
	}
	if cfg.Retry.MaxBackoffMs < cfg.Retry.BaseBackoffMs {
		cfg.Retry.MaxBackoffMs = cfg.Retry.BaseBackoffMs
	}
}
