package config

import (
	"time"
)

const (
	// DefaultMaxTurns matches the turn ceiling of the original demos
	DefaultMaxTurns = 40

	// DefaultModel is used when provider mode is "openai" and no model is set
	DefaultModel = "openai/gpt-4o-mini"

	// DefaultBaseURL targets OpenRouter's OpenAI-compatible endpoint
	DefaultBaseURL = "https://openrouter.ai/api/v1"
)

// DefaultConfig returns a Config with sensible default values. The defaults
// run fully offline: scripted provider, no network endpoints.
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderConfig{
			Mode:              "script",
			BaseURL:           DefaultBaseURL,
			APIKeyEnv:         "OPENROUTER_API_KEY",
			Model:             DefaultModel,
			Temperature:       0.2,
			RequestsPerSecond: 1,
		},
		Run: RunConfig{
			MaxTurns:    DefaultMaxTurns,
			ToolTimeout: 30 * time.Second,
			ToolRetries: 2,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Tracing: TracingConfig{
			Enabled:  false,
			Endpoint: "",
		},
	}
}
