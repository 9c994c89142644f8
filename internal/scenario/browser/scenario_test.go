package browser

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
		[]string{"task_planner", "navigator", "interactor", "extractor", "reporter"},
		result.Path)
	assert.Contains(t, result.FinalOutput, "$29/mo")
	assert.Contains(t, result.FinalOutput, "priority support")

	// One page open plus one click, each attributed to the node that
	// proposed it.
	actions := rc.Actions()
	require.Len(t, actions, 2)
	assert.Equal(t, "open_page", actions[0].Tool)
	assert.Equal(t, "navigator", actions[0].Node)
	assert.Equal(t, "click_element", actions[1].Tool)
	assert.Equal(t, "interactor", actions[1].Node)
}

func TestInputGuardrailBlocksVagueTasks(t *testing.T) {
	guard := InputGuardrail()

	ds, err := LoadDataset()
	require.NoError(t, err)
	rc := runctx.New("", ds)

	for _, task := range []string{"", "do it", "browse"} {
		verdict := guard.Check(context.Background(), rc, task)
		assert.False(t, verdict.Passed, "task %q should be blocked", task)
	}

	verdict := guard.Check(context.Background(), rc, ds.Task)
	assert.True(t, verdict.Passed)
}

func TestInputGuardrailBlocksEmptySiteSnapshot(t *testing.T) {
	guard := InputGuardrail()
	rc := runctx.New("", &Dataset{Task: "find the pro plan price"})

	verdict := guard.Check(context.Background(), rc, "find the pro plan price")
	assert.False(t, verdict.Passed)
	assert.Contains(t, verdict.Reason, "no pages")
}

func TestVagueReportFailsTheRun(t *testing.T) {
	setup, err := Scenario{}.Setup()
	require.NoError(t, err)

	script := Script()
	script["reporter"] = []*provider.Decision{
		provider.Final("Done."),
	}

	rc := runctx.New(setup.Input, setup.Data)
	r := runner.New(provider.NewScript(script))
	result := r.Run(context.Background(), setup.Entry, setup.Input, rc, 40)

	require.Equal(t, runner.StatusFailed, result.Status)
	assert.Equal(t, runner.FailureGuardrailBlocked, result.Failure.Kind)
	assert.Empty(t, result.FinalOutput)
}

func TestClickRejectsNonClickableElements(t *testing.T) {
	ds, err := LoadDataset()
	require.NoError(t, err)
	rc := runctx.New(ds.Task, ds)

	res := clickElement(context.Background(), rc, map[string]any{
		"url": "https://shop.example.com", "selector": "#search",
	})
	require.False(t, res.OK())
	assert.Contains(t, res.Error.Message, "not clickable")
}
