// Package pipeline defines the declarative node graph a run executes over:
// specialist nodes with bound tools, handoff successors, and guardrails,
// assembled by a two-pass builder that removes construction-order
// sensitivity.
package pipeline

import (
	"github.com/handoff-ai/relay/internal/guardrail"
	"github.com/handoff-ai/relay/internal/tool"
)

// Node is one specialist stage of a pipeline: a name, a behavioral directive
// for the reasoning provider, a bound tool set, the successors it may hand
// off to, and optional input/output guardrails. Nodes are immutable after
// Build and hold no per-run state; the same pipeline may serve many runs.
type Node struct {
	name        string
	directive   string
	tools       []tool.Tool
	toolsByName map[string]tool.Tool
	successors  []*Node
	inputGuard  guardrail.Guardrail
	outputGuard guardrail.Guardrail
}

// Name returns the unique node name used for handoff addressing and logging.
func (n *Node) Name() string { return n.name }

// Directive returns the opaque instruction blob passed to the reasoning
// provider. The runner never interprets it.
func (n *Node) Directive() string { return n.directive }

// Tools returns the node's bound tools in declaration order.
func (n *Node) Tools() []tool.Tool {
	out := make([]tool.Tool, len(n.tools))
	copy(out, n.tools)
	return out
}

// Tool looks up a bound tool by name.
func (n *Node) Tool(name string) (tool.Tool, bool) {
	t, ok := n.toolsByName[name]
	return t, ok
}

// Successors returns the nodes this node may hand off to, in declaration order.
func (n *Node) Successors() []*Node {
	out := make([]*Node, len(n.successors))
	copy(out, n.successors)
	return out
}

// Successor looks up a successor by name.
func (n *Node) Successor(name string) (*Node, bool) {
	for _, s := range n.successors {
		if s.name == name {
			return s, true
		}
	}
	return nil, false
}

// IsTerminal reports whether the node has no successors and may therefore
// emit final output.
func (n *Node) IsTerminal() bool {
	return len(n.successors) == 0
}

// InputGuardrail returns the guardrail checked before the node's first turn,
// or nil.
func (n *Node) InputGuardrail() guardrail.Guardrail { return n.inputGuard }

// OutputGuardrail returns the guardrail checked against the node's final
// output, or nil.
func (n *Node) OutputGuardrail() guardrail.Guardrail { return n.outputGuard }
