package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

// Loader handles loading configuration from files.
type Loader interface {
	Load(path string) (*Config, error)
	LoadWithDefaults(path string) (*Config, error)
}

// viperLoader implements Loader using Viper.
type viperLoader struct {
	validator Validator
}

// NewLoader creates a new Loader instance.
func NewLoader(validator Validator) Loader {
	return &viperLoader{
		validator: validator,
	}
}

// Load loads configuration from the specified file path. File values are
// merged over defaults, ${VAR_NAME} references are interpolated from the
// environment, and RELAY_* environment variables override file values
// (RELAY_PROVIDER_MODEL overrides provider.model).
func (l *viperLoader) Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	setDefaults(v)

	v.SetEnvPrefix("RELAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	interpolate(&cfg)

	if err := l.validator.Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadWithDefaults loads configuration from the specified file path.
// If the file doesn't exist, returns default configuration with RELAY_*
// environment overrides applied.
func (l *viperLoader) LoadWithDefaults(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		v := viper.New()
		setDefaults(v)
		v.SetEnvPrefix("RELAY")
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()

		var cfg Config
		if err := v.Unmarshal(&cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal default config: %w", err)
		}
		interpolate(&cfg)

		if err := l.validator.Validate(&cfg); err != nil {
			return nil, fmt.Errorf("default configuration validation failed: %w", err)
		}
		return &cfg, nil
	}

	return l.Load(path)
}

// setDefaults registers DefaultConfig values so partial files and env
// overrides merge over a complete baseline.
func setDefaults(v *viper.Viper) {
	defaults := DefaultConfig()

	v.SetDefault("provider.mode", defaults.Provider.Mode)
	v.SetDefault("provider.base_url", defaults.Provider.BaseURL)
	v.SetDefault("provider.api_key_env", defaults.Provider.APIKeyEnv)
	v.SetDefault("provider.model", defaults.Provider.Model)
	v.SetDefault("provider.temperature", defaults.Provider.Temperature)
	v.SetDefault("provider.requests_per_second", defaults.Provider.RequestsPerSecond)
	v.SetDefault("run.max_turns", defaults.Run.MaxTurns)
	v.SetDefault("run.tool_timeout", defaults.Run.ToolTimeout)
	v.SetDefault("run.tool_retries", defaults.Run.ToolRetries)
	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.format", defaults.Logging.Format)
	v.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	v.SetDefault("tracing.endpoint", defaults.Tracing.Endpoint)
}

// interpolate replaces ${VAR_NAME} references in string fields with
// environment variable values.
func interpolate(cfg *Config) {
	cfg.Provider.BaseURL = interpolateString(cfg.Provider.BaseURL)
	cfg.Provider.APIKeyEnv = interpolateString(cfg.Provider.APIKeyEnv)
	cfg.Provider.Model = interpolateString(cfg.Provider.Model)
	cfg.Logging.Level = interpolateString(cfg.Logging.Level)
	cfg.Logging.Format = interpolateString(cfg.Logging.Format)
	cfg.Tracing.Endpoint = interpolateString(cfg.Tracing.Endpoint)
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// interpolateString replaces ${VAR_NAME} with environment variable values.
// Unset variables leave the reference untouched.
func interpolateString(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		if envValue := os.Getenv(varName); envValue != "" {
			return envValue
		}
		return match
	})
}

// APIKey resolves the provider API key from the configured environment
// variable. Empty when unset.
func (c *Config) APIKey() string {
	if c.Provider.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.Provider.APIKeyEnv)
}
