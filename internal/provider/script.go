package provider

import (
	"context"
	"fmt"
	"sync"

	"github.com/handoff-ai/relay/internal/types"
)

// Script maps a node name to the ordered sequence of decisions its turns
// should produce. Scripts make runs fully deterministic: the demo scenarios
// ship one so they execute offline, and tests use them to pin node
// visitation paths.
type Script map[string][]*Decision

// ScriptProvider replays a Script: each Decide call for a node pops that
// node's next decision. A ScriptProvider is single-run; create a fresh one
// per run.
type ScriptProvider struct {
	mu     sync.Mutex
	script map[string][]*Decision
}

// NewScript creates a provider that replays the given script.
func NewScript(script Script) *ScriptProvider {
	// Copy the per-node queues so replaying doesn't consume the caller's script.
	copied := make(map[string][]*Decision, len(script))
	for node, decisions := range script {
		queue := make([]*Decision, len(decisions))
		copy(queue, decisions)
		copied[node] = queue
	}
	return &ScriptProvider{script: copied}
}

// Decide pops the next scripted decision for the requesting node.
// Returns PROVIDER_SCRIPT_EXHAUSTED when the node has no decisions left.
func (p *ScriptProvider) Decide(ctx context.Context, req Request) (*Decision, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	queue := p.script[req.Node]
	if len(queue) == 0 {
		return nil, types.NewError(types.PROVIDER_SCRIPT_EXHAUSTED,
			fmt.Sprintf("no scripted decision left for node %q", req.Node))
	}

	decision := queue[0]
	p.script[req.Node] = queue[1:]

	if err := decision.Validate(); err != nil {
		return nil, types.WrapError(types.PROVIDER_INVALID_DECISION,
			fmt.Sprintf("scripted decision for node %q is malformed", req.Node), err)
	}

	return decision, nil
}

// ToolCalls builds a tool-call batch decision.
func ToolCalls(calls ...ToolCall) *Decision {
	return &Decision{Kind: DecisionToolCalls, ToolCalls: calls}
}

// Call builds one tool call for a batch.
func Call(toolName string, args map[string]any) ToolCall {
	return ToolCall{Tool: toolName, Args: args}
}

// Handoff builds a handoff decision carrying the given message to target.
func Handoff(target, message string) *Decision {
	return &Decision{Kind: DecisionHandoff, Target: target, Message: message}
}

// Final builds a terminal output decision.
func Final(text string) *Decision {
	return &Decision{Kind: DecisionFinal, Final: text}
}
