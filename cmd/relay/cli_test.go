package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with the given args against a config path
// that does not exist, so defaults apply.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	missing := filepath.Join(t.TempDir(), "relay.yaml")
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(append(args, "--config", missing))

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestScenariosCommandListsAllScenarios(t *testing.T) {
	out, err := execute(t, "scenarios")
	require.NoError(t, err)

	for _, name := range []string{"support", "incident", "threat", "research", "browser"} {
		assert.Contains(t, out, name)
	}
}

func TestRunCommandCompletesOffline(t *testing.T) {
	out, err := execute(t, "run", "support", "--quiet")
	require.NoError(t, err)
	assert.Contains(t, out, "run completed: support")
	assert.Contains(t, out, "final output")

	// Per-tool execution stats accrue through the bound tools.
	assert.Contains(t, out, "tool calls:")
	assert.Contains(t, out, "fetch_customer_profile")
}

func TestRunCommandRejectsUnknownScenario(t *testing.T) {
	_, err := execute(t, "run", "no-such-scenario", "--quiet")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown scenario")
}

func TestRunCommandFailsOnExhaustedBudget(t *testing.T) {
	_, err := execute(t, "run", "support", "--quiet", "--turns", "1")
	require.Error(t, err)

	var cliErr *CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, ExitRunFailed, cliErr.Code)
	assert.Contains(t, cliErr.Message, "budget_exceeded")

	// Reset for later tests since flags are package globals.
	runTurns = 0
}
