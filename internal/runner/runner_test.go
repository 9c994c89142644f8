package runner

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handoff-ai/relay/internal/guardrail"
	"github.com/handoff-ai/relay/internal/pipeline"
	"github.com/handoff-ai/relay/internal/provider"
	"github.com/handoff-ai/relay/internal/runctx"
	"github.com/handoff-ai/relay/internal/tool"
	"github.com/handoff-ai/relay/internal/types"
)

// countingProvider wraps another provider and counts Decide calls.
type countingProvider struct {
	inner provider.Provider
	calls atomic.Int64
}

func (p *countingProvider) Decide(ctx context.Context, req provider.Request) (*provider.Decision, error) {
	p.calls.Add(1)
	return p.inner.Decide(ctx, req)
}

// recordingObserver captures lifecycle callbacks as ordered labels.
type recordingObserver struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingObserver) add(label string) {
	r.mu.Lock()
	r.events = append(r.events, label)
	r.mu.Unlock()
}

func (r *recordingObserver) OnNodeStart(node, input string) { r.add("start:" + node) }
func (r *recordingObserver) OnToolStart(node, toolName string, args map[string]any) {
	r.add("tool-start:" + toolName)
}
func (r *recordingObserver) OnToolEnd(node, toolName string, result tool.Result) {
	r.add("tool-end:" + toolName)
}
func (r *recordingObserver) OnHandoff(from, to, message string) { r.add("handoff:" + from + ">" + to) }
func (r *recordingObserver) OnNodeEnd(node string)              { r.add("end:" + node) }

func newTestRegistry(t *testing.T) (*tool.Registry, *atomic.Int64) {
	t.Helper()

	invocations := &atomic.Int64{}
	registry := tool.NewRegistry()

	registry.MustRegister(tool.NewFunc("lookup", "looks a record up",
		types.Object(map[string]*types.Schema{"id": types.String("record id")}, "id"),
		func(ctx context.Context, rc *runctx.RunContext, args map[string]any) tool.Result {
			invocations.Add(1)
			return tool.Ok(map[string]any{"id": args["id"], "found": true})
		}))

	registry.MustRegister(tool.NewFunc("probe", "probes a subsystem", nil,
		func(ctx context.Context, rc *runctx.RunContext, args map[string]any) tool.Result {
			invocations.Add(1)
			return tool.Ok(map[string]any{"healthy": true})
		}))

	registry.MustRegister(tool.NewFunc("slow", "never finishes in time", nil,
		func(ctx context.Context, rc *runctx.RunContext, args map[string]any) tool.Result {
			select {
			case <-ctx.Done():
			case <-time.After(5 * time.Second):
			}
			return tool.Ok(nil)
		}))

	registry.MustRegister(tool.NewFunc("boom", "always panics", nil,
		func(ctx context.Context, rc *runctx.RunContext, args map[string]any) tool.Result {
			panic("tool exploded")
		}))

	return registry, invocations
}

func buildChain(t *testing.T, registry *tool.Registry) *pipeline.Node {
	t.Helper()
	return pipeline.NewBuilder(registry).
		Add(pipeline.Spec{
			Name:       "intake",
			Directive:  "classify and route",
			Tools:      []string{"lookup", "probe"},
			Successors: []string{"resolution"},
		}).
		Add(pipeline.Spec{
			Name:      "resolution",
			Directive: "summarize and close",
		}).
		MustBuild("intake")
}

func TestRunFailsBeforeProviderWhenBudgetNonPositive(t *testing.T) {
	registry, _ := newTestRegistry(t)
	entry := buildChain(t, registry)

	counting := &countingProvider{inner: provider.NewScript(provider.Script{})}
	r := New(counting)

	for _, budget := range []int{0, -1} {
		rc := runctx.New("hello", nil)
		result := r.Run(context.Background(), entry, "hello", rc, budget)

		require.Equal(t, StatusFailed, result.Status)
		require.NotNil(t, result.Failure)
		assert.Equal(t, FailureBudgetExceeded, result.Failure.Kind)
		assert.Zero(t, result.TurnsUsed)
		assert.Empty(t, result.Path)
	}
	assert.Zero(t, counting.calls.Load(), "provider must not be consulted")
}

func TestRunSingleTerminalNodeCompletesInOneTurn(t *testing.T) {
	registry, _ := newTestRegistry(t)
	solo := pipeline.NewBuilder(registry).
		Add(pipeline.Spec{Name: "solo", Directive: "answer directly"}).
		MustBuild("solo")

	r := New(provider.NewScript(provider.Script{
		"solo": {provider.Final("forty-two")},
	}))

	rc := runctx.New("question", nil)
	result := r.Run(context.Background(), solo, "question", rc, 1)

	require.True(t, result.Completed(), "unexpected failure: %v", result.Failure)
	assert.Equal(t, "forty-two", result.FinalOutput)
	assert.Equal(t, []string{"solo"}, result.Path)
	assert.Equal(t, 1, result.TurnsUsed)
}

func TestRunChainWithToolBatchAndHandoff(t *testing.T) {
	registry, _ := newTestRegistry(t)
	entry := buildChain(t, registry)

	obs := &recordingObserver{}
	r := New(provider.NewScript(provider.Script{
		"intake": {
			provider.ToolCalls(provider.Call("lookup", map[string]any{"id": "A-1"})),
			provider.Handoff("resolution", "record A-1 verified"),
		},
		"resolution": {provider.Final("done")},
	}), WithObserver(obs))

	rc := runctx.New("check A-1", nil)
	result := r.Run(context.Background(), entry, "check A-1", rc, 5)

	require.True(t, result.Completed(), "unexpected failure: %v", result.Failure)
	assert.Equal(t, "done", result.FinalOutput)
	assert.Equal(t, []string{"intake", "resolution"}, result.Path)
	assert.Equal(t, 3, result.TurnsUsed)

	want := []string{
		"start:intake",
		"tool-start:lookup",
		"tool-end:lookup",
		"handoff:intake>resolution",
		"end:intake",
		"start:resolution",
		"end:resolution",
	}
	assert.Equal(t, want, obs.events)
}

func TestRunBudgetExceededMidChain(t *testing.T) {
	registry, _ := newTestRegistry(t)
	entry := buildChain(t, registry)

	r := New(provider.NewScript(provider.Script{
		"intake": {
			provider.ToolCalls(provider.Call("probe", nil)),
			provider.ToolCalls(provider.Call("probe", nil)),
			provider.Handoff("resolution", "probed twice"),
		},
		"resolution": {provider.Final("done")},
	}))

	rc := runctx.New("go", nil)
	result := r.Run(context.Background(), entry, "go", rc, 2)

	require.Equal(t, StatusFailed, result.Status)
	assert.Equal(t, FailureBudgetExceeded, result.Failure.Kind)
	assert.Equal(t, 2, result.TurnsUsed)
	assert.Empty(t, result.FinalOutput, "no partial artifact on failure")
}

func TestRunParallelBatchResultsAttachInRequestOrder(t *testing.T) {
	registry, invocations := newTestRegistry(t)
	entry := buildChain(t, registry)

	script := provider.Script{
		"intake": {
			provider.ToolCalls(
				provider.Call("probe", nil),
				provider.Call("lookup", map[string]any{"id": "A-1"}),
				provider.Call("probe", nil),
			),
			provider.Handoff("resolution", "three results gathered"),
		},
		"resolution": {provider.Final("done")},
	}

	runOnce := func() *RunResult {
		r := New(provider.NewScript(script))
		rc := runctx.New("go", nil)
		return r.Run(context.Background(), entry, "go", rc, 5)
	}

	first := runOnce()
	require.True(t, first.Completed(), "unexpected failure: %v", first.Failure)
	assert.Equal(t, int64(3), invocations.Load())

	var toolEntries []provider.HistoryEntry
	for _, entry := range first.History {
		if entry.Kind == provider.HistoryToolCall {
			toolEntries = append(toolEntries, entry)
		}
	}
	require.Len(t, toolEntries, 3)
	assert.Equal(t, "probe", toolEntries[0].Tool)
	assert.Equal(t, "lookup", toolEntries[1].Tool)
	assert.Equal(t, "probe", toolEntries[2].Tool)
	for _, entry := range toolEntries {
		require.NotNil(t, entry.Result)
		assert.True(t, entry.Result.OK())
	}

	// Same script, same inputs: the visited path is reproducible.
	second := runOnce()
	require.True(t, second.Completed())
	assert.Equal(t, first.Path, second.Path)
}

func TestRunUnknownToolFailsWholeBatchBeforeDispatch(t *testing.T) {
	registry, invocations := newTestRegistry(t)
	entry := buildChain(t, registry)

	obs := &recordingObserver{}
	r := New(provider.NewScript(provider.Script{
		"intake": {
			provider.ToolCalls(
				provider.Call("lookup", map[string]any{"id": "A-1"}),
				provider.Call("teleport", nil),
			),
		},
	}), WithObserver(obs))

	rc := runctx.New("go", nil)
	result := r.Run(context.Background(), entry, "go", rc, 5)

	require.Equal(t, StatusFailed, result.Status)
	assert.Equal(t, FailureUnknownTool, result.Failure.Kind)
	assert.Contains(t, result.Failure.Reason, "teleport")
	assert.Zero(t, invocations.Load(), "no call in the batch may be dispatched")
	assert.NotContains(t, obs.events, "tool-start:lookup")
}

func TestRunInvalidHandoffDoesNotActivateTarget(t *testing.T) {
	registry, _ := newTestRegistry(t)
	entry := buildChain(t, registry)

	obs := &recordingObserver{}
	r := New(provider.NewScript(provider.Script{
		"intake": {provider.Handoff("billing", "wrong lane")},
	}), WithObserver(obs))

	rc := runctx.New("go", nil)
	result := r.Run(context.Background(), entry, "go", rc, 5)

	require.Equal(t, StatusFailed, result.Status)
	assert.Equal(t, FailureInvalidHandoff, result.Failure.Kind)
	assert.Equal(t, []string{"intake"}, result.Path)
	assert.NotContains(t, obs.events, "start:billing")
}

func TestRunSelfHandoffIsInvalid(t *testing.T) {
	registry, _ := newTestRegistry(t)
	entry := buildChain(t, registry)

	r := New(provider.NewScript(provider.Script{
		"intake": {provider.Handoff("intake", "try again")},
	}))

	rc := runctx.New("go", nil)
	result := r.Run(context.Background(), entry, "go", rc, 5)

	require.Equal(t, StatusFailed, result.Status)
	assert.Equal(t, FailureInvalidHandoff, result.Failure.Kind)
}

func TestRunMissingHandoffOnNonTerminalFinal(t *testing.T) {
	registry, _ := newTestRegistry(t)
	entry := buildChain(t, registry)

	r := New(provider.NewScript(provider.Script{
		"intake": {provider.Final("I am done actually")},
	}))

	rc := runctx.New("go", nil)
	result := r.Run(context.Background(), entry, "go", rc, 5)

	require.Equal(t, StatusFailed, result.Status)
	assert.Equal(t, FailureMissingHandoff, result.Failure.Kind)
	assert.Empty(t, result.FinalOutput)
}

func TestRunToolTimeoutAfterRetries(t *testing.T) {
	registry, _ := newTestRegistry(t)
	entry := pipeline.NewBuilder(registry).
		Add(pipeline.Spec{Name: "solo", Directive: "use the slow tool", Tools: []string{"slow"}}).
		MustBuild("solo")

	r := New(provider.NewScript(provider.Script{
		"solo": {provider.ToolCalls(provider.Call("slow", nil))},
	}),
		WithToolTimeout(20*time.Millisecond),
		WithToolRetries(1))

	rc := runctx.New("go", nil)
	start := time.Now()
	result := r.Run(context.Background(), entry, "go", rc, 5)

	require.Equal(t, StatusFailed, result.Status)
	assert.Equal(t, FailureToolTimeout, result.Failure.Kind)
	assert.Contains(t, result.Failure.Reason, "slow")
	// Two attempts of 20ms each, not the tool's 5s sleep.
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestRunToolPanicBecomesStructuredResult(t *testing.T) {
	registry, _ := newTestRegistry(t)
	entry := pipeline.NewBuilder(registry).
		Add(pipeline.Spec{Name: "solo", Directive: "survive the boom", Tools: []string{"boom"}}).
		MustBuild("solo")

	r := New(provider.NewScript(provider.Script{
		"solo": {
			provider.ToolCalls(provider.Call("boom", nil)),
			provider.Final("survived"),
		},
	}))

	rc := runctx.New("go", nil)
	result := r.Run(context.Background(), entry, "go", rc, 5)

	require.True(t, result.Completed(), "unexpected failure: %v", result.Failure)
	assert.Equal(t, "survived", result.FinalOutput)

	var panicked *provider.HistoryEntry
	for i, entry := range result.History {
		if entry.Kind == provider.HistoryToolCall && entry.Tool == "boom" {
			panicked = &result.History[i]
		}
	}
	require.NotNil(t, panicked)
	require.NotNil(t, panicked.Result)
	require.NotNil(t, panicked.Result.Error)
	assert.Equal(t, "TOOL_PANIC", panicked.Result.Error.Code)
}

func TestRunToolDomainErrorIsNotARunFailure(t *testing.T) {
	registry, _ := newTestRegistry(t)
	entry := pipeline.NewBuilder(registry).
		Add(pipeline.Spec{Name: "solo", Directive: "look up a missing record", Tools: []string{"lookup"}}).
		MustBuild("solo")

	// Missing required argument: the schema rejects the call, the run goes on.
	r := New(provider.NewScript(provider.Script{
		"solo": {
			provider.ToolCalls(provider.Call("lookup", nil)),
			provider.Final("handled the miss"),
		},
	}))

	rc := runctx.New("go", nil)
	result := r.Run(context.Background(), entry, "go", rc, 5)

	require.True(t, result.Completed(), "unexpected failure: %v", result.Failure)
	assert.Equal(t, 2, result.TurnsUsed)
}

func TestRunInputGuardrailBlocksBeforeAnyToolOrTurn(t *testing.T) {
	registry, invocations := newTestRegistry(t)
	entry := pipeline.NewBuilder(registry).
		Add(pipeline.Spec{
			Name:      "solo",
			Directive: "triage records",
			Tools:     []string{"lookup"},
			InputGuardrail: guardrail.NewFunc("min-records",
				func(ctx context.Context, rc *runctx.RunContext, content string) guardrail.Result {
					return guardrail.Block("0 actionable record(s), need at least 1")
				}),
		}).
		MustBuild("solo")

	counting := &countingProvider{inner: provider.NewScript(provider.Script{
		"solo": {provider.Final("should never be reached")},
	})}

	obs := &recordingObserver{}
	r := New(counting, WithObserver(obs))

	rc := runctx.New("", nil)
	result := r.Run(context.Background(), entry, "", rc, 5)

	require.Equal(t, StatusFailed, result.Status)
	assert.Equal(t, FailureGuardrailBlocked, result.Failure.Kind)
	assert.Contains(t, result.Failure.Reason, "min-records")
	assert.Empty(t, result.Path, "blocked node never becomes active")
	assert.Zero(t, counting.calls.Load())
	assert.Zero(t, invocations.Load())
	assert.NotContains(t, obs.events, "start:solo")
}

func TestRunOutputGuardrailBlocksHandoffDeterministically(t *testing.T) {
	registry, _ := newTestRegistry(t)

	build := func() *pipeline.Node {
		return pipeline.NewBuilder(registry).
			Add(pipeline.Spec{
				Name:       "drafting",
				Directive:  "draft a reply",
				Successors: []string{"review"},
				OutputGuardrail: guardrail.NewFunc("no-promises",
					func(ctx context.Context, rc *runctx.RunContext, content string) guardrail.Result {
						if content == "we guarantee a refund" {
							return guardrail.Block("forbidden phrase")
						}
						return guardrail.Pass()
					}),
			}).
			Add(pipeline.Spec{Name: "review", Directive: "review the draft"}).
			MustBuild("drafting")
	}

	script := provider.Script{
		"drafting": {provider.Handoff("review", "we guarantee a refund")},
	}

	// Same inputs, same verdict: guardrail checks are deterministic, so the
	// failure is identical across repeated runs.
	var kinds []FailureKind
	var paths [][]string
	for i := 0; i < 2; i++ {
		obs := &recordingObserver{}
		r := New(provider.NewScript(script), WithObserver(obs))
		rc := runctx.New("go", nil)
		result := r.Run(context.Background(), build(), "go", rc, 5)

		require.Equal(t, StatusFailed, result.Status)
		kinds = append(kinds, result.Failure.Kind)
		paths = append(paths, result.Path)
		assert.NotContains(t, obs.events, "start:review", "blocked handoff never activates the target")
	}

	assert.Equal(t, []FailureKind{FailureGuardrailBlocked, FailureGuardrailBlocked}, kinds)
	assert.Equal(t, paths[0], paths[1])
}

func TestRunOutputGuardrailBlocksFinalOutput(t *testing.T) {
	registry, _ := newTestRegistry(t)
	entry := pipeline.NewBuilder(registry).
		Add(pipeline.Spec{
			Name:      "solo",
			Directive: "answer",
			OutputGuardrail: guardrail.NewFunc("pii",
				func(ctx context.Context, rc *runctx.RunContext, content string) guardrail.Result {
					return guardrail.Block("detected ssn")
				}),
		}).
		MustBuild("solo")

	r := New(provider.NewScript(provider.Script{
		"solo": {provider.Final("ssn is 123-45-6789")},
	}))

	rc := runctx.New("go", nil)
	result := r.Run(context.Background(), entry, "go", rc, 5)

	require.Equal(t, StatusFailed, result.Status)
	assert.Equal(t, FailureGuardrailBlocked, result.Failure.Kind)
	assert.Empty(t, result.FinalOutput, "blocked output is never released")
}

func TestRunProviderErrorSurfacesAsFailure(t *testing.T) {
	registry, _ := newTestRegistry(t)
	entry := buildChain(t, registry)

	// Empty script: the first Decide call errors.
	r := New(provider.NewScript(provider.Script{}))

	rc := runctx.New("go", nil)
	result := r.Run(context.Background(), entry, "go", rc, 5)

	require.Equal(t, StatusFailed, result.Status)
	assert.Equal(t, FailureProviderError, result.Failure.Kind)
	assert.Equal(t, 1, result.TurnsUsed)
}
