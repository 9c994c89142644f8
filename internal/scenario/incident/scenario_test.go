package incident

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handoff-ai/relay/internal/provider"
	"github.com/handoff-ai/relay/internal/runctx"
	"github.com/handoff-ai/relay/internal/runner"
)

func TestScenarioRunsOfflineToCompletion(t *testing.T) {
	setup, err := Scenario{}.Setup()
	require.NoError(t, err)

	rc := runctx.New(setup.Input, setup.Data)
	r := runner.New(provider.NewScript(setup.Script))
	result := r.Run(context.Background(), setup.Entry, setup.Input, rc, 40)

	require.True(t, result.Completed(), "unexpected failure: %v", result.Failure)
	assert.Equal(t,
		[]string{"triage", "log_analyzer", "root_cause", "remediation", "reporter"},
		result.Path)
	assert.Contains(t, result.FinalOutput, "Root cause")
	assert.Equal(t, 1, rc.ActionCount())
}

func TestInputGuardrailBlocksWithoutActiveAlerts(t *testing.T) {
	setup, err := Scenario{}.Setup()
	require.NoError(t, err)

	quiet := &Dataset{Alerts: []Alert{
		{ID: "ALR-1", Service: "search-api", Severity: "warning", Status: "resolved"},
	}}

	rc := runctx.New(setup.Input, quiet)
	r := runner.New(provider.NewScript(setup.Script))
	result := r.Run(context.Background(), setup.Entry, setup.Input, rc, 40)

	require.Equal(t, runner.StatusFailed, result.Status)
	assert.Equal(t, runner.FailureGuardrailBlocked, result.Failure.Kind)
}

func TestRemediationGuardrailBlocksDestructiveCommands(t *testing.T) {
	guard := RemediationGuardrail()
	rc := runctx.New("", &Dataset{})

	verdict := guard.Check(context.Background(), rc,
		"Proposed fix: rm -rf /var/lib/checkout and restart")
	assert.False(t, verdict.Passed)

	verdict = guard.Check(context.Background(), rc,
		"Proposed fix: enable circuit breaker and raise pool limit")
	assert.True(t, verdict.Passed)
}

func TestDestructiveRemediationFailsTheRun(t *testing.T) {
	setup, err := Scenario{}.Setup()
	require.NoError(t, err)

	script := Script()
	script["remediation"] = []*provider.Decision{
		provider.Handoff("reporter", "run rm -rf /var/log on checkout-api hosts"),
	}

	rc := runctx.New(setup.Input, setup.Data)
	r := runner.New(provider.NewScript(script))
	result := r.Run(context.Background(), setup.Entry, setup.Input, rc, 40)

	require.Equal(t, runner.StatusFailed, result.Status)
	assert.Equal(t, runner.FailureGuardrailBlocked, result.Failure.Kind)
	assert.NotContains(t, result.Path, "reporter")
}
