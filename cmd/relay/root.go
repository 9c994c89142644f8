package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/handoff-ai/relay/internal/config"
	"github.com/handoff-ai/relay/internal/scenario"
	"github.com/handoff-ai/relay/internal/scenario/browser"
	"github.com/handoff-ai/relay/internal/scenario/incident"
	"github.com/handoff-ai/relay/internal/scenario/research"
	"github.com/handoff-ai/relay/internal/scenario/support"
	"github.com/handoff-ai/relay/internal/scenario/threat"
	"github.com/handoff-ai/relay/pkg/version"
)

// Global flags
var (
	configFile  string
	verboseFlag bool
)

// cfg is populated by loadConfig before any command runs.
var cfg *config.Config

// scenarios holds every built-in demo pipeline.
var scenarios = newScenarioRegistry()

var rootCmd = &cobra.Command{
	Use:   "relay",
	Short: "Relay - Multi-Agent Handoff Pipeline Runner",
	Long: `Relay executes multi-agent pipelines: chains of reasoning nodes that
call schema-typed tools, pass work to each other through guardrailed
handoffs, and terminate with accepted final output.

Each built-in scenario bundles a simulated dataset and a deterministic
decision script, so every demo runs offline by default. Use --live to
drive a scenario with a real reasoning model instead.`,
	PersistentPreRunE: loadConfig,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

// Execute runs the root command with signal handling
func Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return rootCmd.ExecuteContext(ctx)
}

// loadConfig is called before any command runs to load configuration
func loadConfig(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "version" || cmd.Name() == "help" || cmd.Name() == "completion" {
		return nil
	}

	loader := config.NewLoader(config.NewValidator())
	loaded, err := loader.LoadWithDefaults(configFile)
	if err != nil {
		return WrapError(ExitConfigError, "failed to load configuration", err)
	}
	cfg = loaded

	slog.SetDefault(newLogger(cfg.Logging))
	return nil
}

// newLogger builds the process logger from the logging config.
func newLogger(lc config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch lc.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	if verboseFlag {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	if lc.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// newScenarioRegistry registers every built-in scenario.
func newScenarioRegistry() *scenario.Registry {
	registry := scenario.NewRegistry()
	registry.MustRegister(support.Scenario{})
	registry.MustRegister(incident.Scenario{})
	registry.MustRegister(threat.Scenario{})
	registry.MustRegister(research.Scenario{})
	registry.MustRegister(browser.Scenario{})
	return registry
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "relay.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose (debug) output")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(scenariosCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(version.String())
	},
}
