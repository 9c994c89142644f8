package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "relay.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, NewValidator().Validate(cfg))

	assert.Equal(t, "script", cfg.Provider.Mode)
	assert.Equal(t, DefaultMaxTurns, cfg.Run.MaxTurns)
	assert.Equal(t, 30*time.Second, cfg.Run.ToolTimeout)
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := writeConfig(t, `
provider:
  mode: openai
  model: openai/gpt-4o
run:
  max_turns: 12
`)

	cfg, err := NewLoader(NewValidator()).Load(path)
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.Provider.Mode)
	assert.Equal(t, "openai/gpt-4o", cfg.Provider.Model)
	assert.Equal(t, 12, cfg.Run.MaxTurns)
	// Untouched fields keep their defaults.
	assert.Equal(t, DefaultBaseURL, cfg.Provider.BaseURL)
	assert.Equal(t, 2, cfg.Run.ToolRetries)
}

func TestLoadWithDefaultsMissingFile(t *testing.T) {
	cfg, err := NewLoader(NewValidator()).LoadWithDefaults(
		filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Run, cfg.Run)
}

func TestLoadInterpolatesEnvVars(t *testing.T) {
	t.Setenv("RELAY_TEST_MODEL", "openai/gpt-4o-mini")

	path := writeConfig(t, `
provider:
  model: ${RELAY_TEST_MODEL}
`)

	cfg, err := NewLoader(NewValidator()).Load(path)
	require.NoError(t, err)
	assert.Equal(t, "openai/gpt-4o-mini", cfg.Provider.Model)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad provider mode", "provider:\n  mode: carrier-pigeon\n"},
		{"zero max turns", "run:\n  max_turns: 0\n"},
		{"bad log level", "logging:\n  level: loud\n"},
	}

	loader := NewLoader(NewValidator())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loader.Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestOpenAIModeRequiresEndpointFields(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider.Mode = "openai"
	cfg.Provider.APIKeyEnv = ""

	err := NewValidator().Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api_key_env")
}

func TestAPIKeyResolvesFromEnvironment(t *testing.T) {
	t.Setenv("RELAY_TEST_KEY", "sk-test")

	cfg := DefaultConfig()
	cfg.Provider.APIKeyEnv = "RELAY_TEST_KEY"
	assert.Equal(t, "sk-test", cfg.APIKey())

	cfg.Provider.APIKeyEnv = ""
	assert.Empty(t, cfg.APIKey())
}
