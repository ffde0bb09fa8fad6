package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigFallsBackToFileAPIKeys(t *testing.T) {
	home := t.TempDir()
	setHomeEnv(t, home)

	configDir := filepath.Join(home, ".intentgate")
	require.NoError(t, os.MkdirAll(configDir, 0700))
	data := []byte("api_keys:\n  anthropic: file-ant\n  openai: file-openai\ncustom_endpoint:\n  base_url: https://api.z.ai/api/paas/v4\n  api_key: file-custom\n  model: glm-4.6\n")
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.yaml"), data, 0600))

	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "env-openai")
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("INTENTGATE_API_BASE", "")
	t.Setenv("INTENTGATE_API_KEY", "")
	t.Setenv("INTENTGATE_MODEL", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "file-ant", cfg.AnthropicAPIKey)
	assert.Equal(t, "env-openai", cfg.OpenAIAPIKey, "env must win over file")
	assert.Empty(t, cfg.GoogleAPIKey)
	assert.Equal(t, "https://api.z.ai/api/paas/v4", cfg.CustomBaseURL)
	assert.True(t, cfg.HasAdapter("custom"))
	assert.False(t, cfg.HasAdapter("google"))
	assert.Equal(t, DefaultRoutingConfig(), cfg.RoutingConfig)
}

func TestLoadPicksUpRoutingFile(t *testing.T) {
	home := t.TempDir()
	setHomeEnv(t, home)

	configDir := filepath.Join(home, ".intentgate")
	require.NoError(t, os.MkdirAll(configDir, 0700))
	routing := "thresholds:\n  execute: 0.9\nselector:\n  max_tools: 3\n"
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "routing.yaml"), []byte(routing), 0600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 0.9, cfg.RoutingConfig.Thresholds.Execute)
	assert.Equal(t, 3, cfg.RoutingConfig.Selector.MaxTools)
	assert.Equal(t, 0.5, cfg.RoutingConfig.Thresholds.Confirm)
}

func TestLoadRejectsInvertedThresholds(t *testing.T) {
	home := t.TempDir()
	setHomeEnv(t, home)

	path := filepath.Join(t.TempDir(), "routing.yaml")
	routing := "thresholds:\n  execute: 0.4\n  confirm: 0.6\n"
	require.NoError(t, os.WriteFile(path, []byte(routing), 0600))

	_, err := LoadWithRoutingFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Execute")
}

func setHomeEnv(t *testing.T, home string) {
	t.Helper()
	t.Setenv("HOME", home)
	if runtime.GOOS == "windows" {
		t.Setenv("USERPROFILE", home)
	}
}
