package threat

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
	assert.Equal(t, []string{
		"intake", "auth_analyzer", "network_analyzer", "threat_intel", "containment", "soc_reporter",
	}, result.Path)
	assert.Contains(t, result.FinalOutput, "SilverTorrent")

	// Three containment proposals were recorded.
	assert.Equal(t, 3, rc.ActionCount())
	for _, action := range rc.Actions() {
		assert.Equal(t, "propose_containment", action.Tool)
	}
}

func TestInputGuardrailBlocksWithoutEvents(t *testing.T) {
	setup, err := Scenario{}.Setup()
	require.NoError(t, err)

	rc := runctx.New(setup.Input, &Dataset{})
	r := runner.New(provider.NewScript(setup.Script))
	result := r.Run(context.Background(), setup.Entry, setup.Input, rc, 40)

	require.Equal(t, runner.StatusFailed, result.Status)
	assert.Equal(t, runner.FailureGuardrailBlocked, result.Failure.Kind)
	assert.Empty(t, result.Path)
}

func TestContainmentGuardrailBlocksFleetWideActions(t *testing.T) {
	guard := ContainmentGuardrail()
	rc := runctx.New("", &Dataset{})

	verdict := guard.Check(context.Background(), rc,
		"Recommend we disable all accounts until the investigation completes")
	assert.False(t, verdict.Passed)

	verdict = guard.Check(context.Background(), rc,
		"Disable svc-backup and block 198.51.100.23")
	assert.True(t, verdict.Passed)
}
