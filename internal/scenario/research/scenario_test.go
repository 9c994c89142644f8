package research

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
	assert.Equal(t, []string{"planner", "researcher", "synthesizer", "writer"}, result.Path)
	assert.Contains(t, result.FinalOutput, "[1]")
	assert.Contains(t, result.FinalOutput, "arxiv.org")

	// The planner recorded its outline.
	require.Equal(t, 1, rc.ActionCount())
	assert.Equal(t, "record_outline", rc.Actions()[0].Tool)
}

func TestInputGuardrailBlocksThinTopics(t *testing.T) {
	guard := InputGuardrail()
	rc := runctx.New("", &Dataset{})

	for _, topic := range []string{"", "go", "llms?"} {
		verdict := guard.Check(context.Background(), rc, topic)
		assert.False(t, verdict.Passed, "topic %q should be blocked", topic)
	}

	verdict := guard.Check(context.Background(), rc,
		"How do RAG systems mitigate hallucination?")
	assert.True(t, verdict.Passed)
}

func TestOutputGuardrailRequiresCitations(t *testing.T) {
	guard := OutputGuardrail()
	rc := runctx.New("", &Dataset{})

	long := make([]byte, minReportLength+50)
	for i := range long {
		long[i] = 'a'
	}

	verdict := guard.Check(context.Background(), rc, "too short [1]")
	assert.False(t, verdict.Passed)

	verdict = guard.Check(context.Background(), rc, string(long))
	assert.False(t, verdict.Passed, "long but uncited report must be blocked")

	verdict = guard.Check(context.Background(), rc, string(long)+" [1]")
	assert.True(t, verdict.Passed)
}

func TestUncitedReportFailsTheRun(t *testing.T) {
	setup, err := Scenario{}.Setup()
	require.NoError(t, err)

	script := Script()
	script["writer"] = []*provider.Decision{
		provider.Final("A short unsupported claim with no citations at all."),
	}

	rc := runctx.New(setup.Input, setup.Data)
	r := runner.New(provider.NewScript(script))
	result := r.Run(context.Background(), setup.Entry, setup.Input, rc, 40)

	require.Equal(t, runner.StatusFailed, result.Status)
	assert.Equal(t, runner.FailureGuardrailBlocked, result.Failure.Kind)
	assert.Empty(t, result.FinalOutput)
}
