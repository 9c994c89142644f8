// Package config loads and validates the relay CLI configuration from YAML
// files with environment variable interpolation and RELAY_* overrides.
package config

import (
	"time"
)

// Config is the root configuration for the relay CLI.
type Config struct {
	Provider ProviderConfig `mapstructure:"provider" yaml:"provider"`
	Run      RunConfig      `mapstructure:"run" yaml:"run" validate:"required"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
	Tracing  TracingConfig  `mapstructure:"tracing" yaml:"tracing"`
}

// ProviderConfig selects and parameterizes the reasoning provider.
// Mode "script" replays each scenario's built-in decision script offline;
// mode "openai" talks to any OpenAI-compatible chat completion endpoint.
type ProviderConfig struct {
	Mode              string  `mapstructure:"mode" yaml:"mode" validate:"oneof=script openai"`
	BaseURL           string  `mapstructure:"base_url" yaml:"base_url" validate:"omitempty,url"`
	APIKeyEnv         string  `mapstructure:"api_key_env" yaml:"api_key_env"`
	Model             string  `mapstructure:"model" yaml:"model"`
	Temperature       float64 `mapstructure:"temperature" yaml:"temperature" validate:"min=0,max=2"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" yaml:"requests_per_second" validate:"min=0"`
}

// RunConfig bounds a single pipeline run.
type RunConfig struct {
	MaxTurns    int           `mapstructure:"max_turns" yaml:"max_turns" validate:"min=1,max=1000"`
	ToolTimeout time.Duration `mapstructure:"tool_timeout" yaml:"tool_timeout" validate:"min=1ms"`
	ToolRetries int           `mapstructure:"tool_retries" yaml:"tool_retries" validate:"min=0,max=10"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=text json"`
}

// TracingConfig contains distributed tracing configuration. Tracing stays on
// a noop tracer unless enabled.
type TracingConfig struct {
	Enabled  bool   `mapstructure:"enabled" yaml:"enabled"`
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`
}
