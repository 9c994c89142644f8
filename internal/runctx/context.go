// Package runctx provides the shared run context threaded through every node,
// tool invocation, and guardrail check of a single pipeline run.
package runctx

import (
	"context"
	"sync"
	"time"

	"github.com/handoff-ai/relay/internal/types"
)

type activeNodeKey struct{}

// WithActiveNode returns a context carrying the name of the node whose tool
// batch is being dispatched. The runner sets it before invoking tools so
// appended actions are attributed to the node that proposed them.
func WithActiveNode(ctx context.Context, node string) context.Context {
	return context.WithValue(ctx, activeNodeKey{}, node)
}

// ActiveNode returns the node name carried by the context, or "" when the
// invocation did not come through the runner.
func ActiveNode(ctx context.Context) string {
	node, _ := ctx.Value(activeNodeKey{}).(string)
	return node
}

// Action records one proposed action appended to the run context by a tool
// or by the runner. Actions are proposals over simulated data, never
// executions against the outside world, so replaying them is always safe.
type Action struct {
	ID      types.ID       `json:"id"`
	Node    string         `json:"node"`
	Tool    string         `json:"tool,omitempty"`
	Summary string         `json:"summary"`
	Payload map[string]any `json:"payload,omitempty"`
	At      time.Time      `json:"at"`
}

// RunContext is the single shared data bag for one pipeline run. It holds the
// original input, a read-mostly domain snapshot, and an append-only action
// log. The context itself is never replaced during a run; tools and the
// runner may only append to the accumulators, so every reader observes a
// monotonically growing history.
type RunContext struct {
	runID types.ID
	input string
	data  any

	mu      sync.RWMutex
	actions []Action
}

// New creates a run context for a single run with the given original input
// and domain data snapshot. The snapshot is read-only by contract; tools
// must not mutate it.
func New(input string, data any) *RunContext {
	return &RunContext{
		runID: types.NewID(),
		input: input,
		data:  data,
	}
}

// RunID returns the unique identifier of this run.
func (rc *RunContext) RunID() types.ID {
	return rc.runID
}

// Input returns the original input the run was started with.
func (rc *RunContext) Input() string {
	return rc.input
}

// Data returns the domain data snapshot. Callers type-assert to their
// scenario's snapshot type.
func (rc *RunContext) Data() any {
	return rc.data
}

// AppendAction appends a proposed action to the run's action log, attributed
// to the active node carried by the context.
// Safe for concurrent use by parallel tool calls.
func (rc *RunContext) AppendAction(ctx context.Context, tool, summary string, payload map[string]any) Action {
	action := Action{
		ID:      types.NewID(),
		Node:    ActiveNode(ctx),
		Tool:    tool,
		Summary: summary,
		Payload: payload,
		At:      time.Now(),
	}

	rc.mu.Lock()
	rc.actions = append(rc.actions, action)
	rc.mu.Unlock()

	return action
}

// Actions returns a copy of the accumulated action log.
func (rc *RunContext) Actions() []Action {
	rc.mu.RLock()
	defer rc.mu.RUnlock()

	out := make([]Action, len(rc.actions))
	copy(out, rc.actions)
	return out
}

// ActionCount returns the number of accumulated actions.
func (rc *RunContext) ActionCount() int {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return len(rc.actions)
}
