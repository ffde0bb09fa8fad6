package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	AnthropicAPIKey string
	OpenAIAPIKey    string
	GoogleAPIKey    string
	// CustomBaseURL and CustomAPIKey address an OpenAI-compatible endpoint
	// (for example a GLM gateway).
	CustomBaseURL string
	CustomAPIKey  string
	CustomModel   string
	RoutingConfig *RoutingConfig
	ConfigDir     string
}

// FileConfig represents the structure of ~/.intentgate/config.yaml
type FileConfig struct {
	APIKeys APIKeysConfig `yaml:"api_keys"`
	Custom  CustomConfig  `yaml:"custom_endpoint"`
}

// APIKeysConfig holds API key configuration from file.
type APIKeysConfig struct {
	Anthropic string `yaml:"anthropic"`
	OpenAI    string `yaml:"openai"`
	Google    string `yaml:"google"`
}

// CustomConfig describes an OpenAI-compatible endpoint.
type CustomConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
}

// Load reads configuration from config files and environment variables.
// Environment variables take precedence over file configuration.
func Load() (*Config, error) {
	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}

	routingPath := filepath.Join(configDir, "routing.yaml")
	if _, err := os.Stat(routingPath); err != nil {
		return build(configDir, DefaultRoutingConfig())
	}
	return LoadWithRoutingFile(routingPath)
}

// LoadWithRoutingFile loads config with a specific routing file.
func LoadWithRoutingFile(routingPath string) (*Config, error) {
	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}

	routing, err := LoadRoutingConfig(routingPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load routing config from %s: %w", routingPath, err)
	}
	return build(configDir, routing)
}

func build(configDir string, routing *RoutingConfig) (*Config, error) {
	if err := routing.Validate(); err != nil {
		return nil, fmt.Errorf("invalid routing config: %w", err)
	}

	fileConfig := loadFileConfig(filepath.Join(configDir, "config.yaml"))
	return &Config{
		AnthropicAPIKey: getEnvOrDefault("ANTHROPIC_API_KEY", fileConfig.APIKeys.Anthropic),
		OpenAIAPIKey:    getEnvOrDefault("OPENAI_API_KEY", fileConfig.APIKeys.OpenAI),
		GoogleAPIKey:    getEnvOrDefault("GOOGLE_API_KEY", fileConfig.APIKeys.Google),
		CustomBaseURL:   getEnvOrDefault("INTENTGATE_API_BASE", fileConfig.Custom.BaseURL),
		CustomAPIKey:    getEnvOrDefault("INTENTGATE_API_KEY", fileConfig.Custom.APIKey),
		CustomModel:     getEnvOrDefault("INTENTGATE_MODEL", fileConfig.Custom.Model),
		RoutingConfig:   routing,
		ConfigDir:       configDir,
	}, nil
}

// HasAdapter returns true if the credentials for the given adapter are configured.
func (c *Config) HasAdapter(name string) bool {
	switch name {
	case "anthropic":
		return c.AnthropicAPIKey != ""
	case "openai":
		return c.OpenAIAPIKey != ""
	case "google":
		return c.GoogleAPIKey != ""
	case "custom":
		return c.CustomBaseURL != ""
	case "mock":
		return true
	default:
		return false
	}
}

// loadFileConfig reads the config file, returning empty config if not found.
func loadFileConfig(path string) *FileConfig {
	cfg := &FileConfig{}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}

	_ = yaml.Unmarshal(data, cfg) // Ignore parse errors, use defaults
	return cfg
}

// getEnvOrDefault returns the environment variable value if set,
// otherwise returns the default value.
func getEnvOrDefault(envVar, defaultValue string) string {
	if val := os.Getenv(envVar); val != "" {
		return val
	}
	return defaultValue
}

func getConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	configDir := filepath.Join(home, ".intentgate")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", err
	}
	return configDir, nil
}
