package main

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/handoff-ai/relay/internal/events"
	"github.com/handoff-ai/relay/internal/provider"
	"github.com/handoff-ai/relay/internal/runctx"
	"github.com/handoff-ai/relay/internal/runner"
	"github.com/handoff-ai/relay/internal/scenario"
)

// Run flags
var (
	runTurns int
	runLive  bool
	runJSON  bool
	runQuiet bool
)

var runCmd = &cobra.Command{
	Use:   "run SCENARIO",
	Short: "Execute a demo scenario pipeline",
	Long: `Execute one of the built-in scenario pipelines.

By default the run is driven by the scenario's recorded decision script,
so it completes offline and deterministically. With --live the reasoning
provider from the configuration drives the pipeline instead.`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeScenarioNames,
	RunE:              runRun,
}

func init() {
	runCmd.Flags().IntVar(&runTurns, "turns", 0, "Turn budget for the run (0 uses the configured maximum)")
	runCmd.Flags().BoolVar(&runLive, "live", false, "Drive the pipeline with the configured reasoning model")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "Print the run result as JSON")
	runCmd.Flags().BoolVarP(&runQuiet, "quiet", "q", false, "Suppress live progress output")
}

func runRun(cmd *cobra.Command, args []string) error {
	sc, err := scenarios.Get(args[0])
	if err != nil {
		return err
	}

	setup, err := sc.Setup()
	if err != nil {
		return WrapError(ExitError, fmt.Sprintf("failed to set up scenario %q", sc.Name()), err)
	}

	p, err := buildProvider(setup)
	if err != nil {
		return err
	}

	rc := runctx.New(setup.Input, setup.Data)

	bus := events.NewBus()
	var consoleDone <-chan struct{}
	if !runQuiet && !runJSON {
		consoleDone = startConsole(cmd.OutOrStdout(), bus)
	}

	turns := cfg.Run.MaxTurns
	if runTurns > 0 {
		turns = runTurns
	}

	options := []runner.Option{
		runner.WithLogger(slog.Default()),
		runner.WithToolTimeout(cfg.Run.ToolTimeout),
		runner.WithToolRetries(cfg.Run.ToolRetries),
		runner.WithObserver(events.NewPublisher(bus, rc.RunID())),
	}
	if cfg.Tracing.Enabled {
		options = append(options, runner.WithTracer(otel.Tracer("relay")))
	}

	r := runner.New(p, options...)
	result := r.Run(cmd.Context(), setup.Entry, setup.Input, rc, turns)

	// Drain the live progress stream before printing the summary.
	_ = bus.Close()
	if consoleDone != nil {
		<-consoleDone
	}

	if runJSON {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(result); err != nil {
			return err
		}
	} else {
		printSummary(cmd.OutOrStdout(), sc.Name(), result, rc, setup.Registry)
	}

	if !result.Completed() {
		return NewCLIError(ExitRunFailed, result.Failure.Error())
	}
	return nil
}

// buildProvider selects the scripted replay or the live model, honoring the
// --live flag and the configured provider mode.
func buildProvider(setup *scenario.Setup) (provider.Provider, error) {
	if !runLive && cfg.Provider.Mode != "openai" {
		return provider.NewScript(setup.Script), nil
	}

	apiKey := cfg.APIKey()
	if apiKey == "" {
		return nil, NewCLIError(ExitConfigError,
			fmt.Sprintf("live mode requires the %s environment variable", cfg.Provider.APIKeyEnv))
	}

	llm, err := provider.NewLLM(provider.LLMOptions{
		BaseURL:           cfg.Provider.BaseURL,
		APIKey:            apiKey,
		Model:             cfg.Provider.Model,
		Temperature:       cfg.Provider.Temperature,
		RequestsPerSecond: cfg.Provider.RequestsPerSecond,
		Logger:            slog.Default(),
	})
	if err != nil {
		return nil, WrapError(ExitConfigError, "failed to create reasoning provider", err)
	}
	return llm, nil
}
