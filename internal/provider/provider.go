// Package provider defines the reasoning-provider contract: the opaque
// decision function that, given a node's directive, tool set, handoff
// targets, and run history, returns exactly one of a tool-call batch, a
// single handoff, or final text.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/handoff-ai/relay/internal/tool"
)

// DecisionKind identifies which of the three permitted decision forms the
// provider returned.
type DecisionKind string

const (
	// DecisionToolCalls requests a batch of tool invocations
	DecisionToolCalls DecisionKind = "tool_calls"

	// DecisionHandoff requests a one-way transfer to a named successor
	DecisionHandoff DecisionKind = "handoff"

	// DecisionFinal emits the node's final textual output
	DecisionFinal DecisionKind = "final"
)

// String returns the string representation of a DecisionKind.
func (k DecisionKind) String() string {
	return string(k)
}

// IsValid checks if the DecisionKind is one of the defined constants.
func (k DecisionKind) IsValid() bool {
	switch k {
	case DecisionToolCalls, DecisionHandoff, DecisionFinal:
		return true
	default:
		return false
	}
}

// ToolCall is one requested tool invocation within a batch. Calls in a
// batch are independent and may be dispatched concurrently.
type ToolCall struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args,omitempty"`
}

// Decision is the provider's reasoning output for one turn. This struct is
// JSON serializable for structured LLM output.
type Decision struct {
	// Kind is which decision form this is
	Kind DecisionKind `json:"kind"`

	// Reasoning is the chain-of-thought explanation for this decision
	Reasoning string `json:"reasoning,omitempty"`

	// ToolCalls is the requested batch (kind: tool_calls)
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`

	// Target names the successor to hand off to (kind: handoff)
	Target string `json:"target,omitempty"`

	// Message is the textual payload carried to the handoff target (kind: handoff)
	Message string `json:"message,omitempty"`

	// Final is the terminal textual output (kind: final)
	Final string `json:"final,omitempty"`
}

// Validate checks that the Decision is properly formed and all required
// fields are present for its kind.
func (d *Decision) Validate() error {
	if d == nil {
		return fmt.Errorf("decision is nil")
	}

	if !d.Kind.IsValid() {
		return fmt.Errorf("invalid decision kind: %q", d.Kind)
	}

	switch d.Kind {
	case DecisionToolCalls:
		if len(d.ToolCalls) == 0 {
			return fmt.Errorf("tool_calls decision requires at least one call")
		}
		for i, call := range d.ToolCalls {
			if strings.TrimSpace(call.Tool) == "" {
				return fmt.Errorf("tool call %d has an empty tool name", i)
			}
		}

	case DecisionHandoff:
		if strings.TrimSpace(d.Target) == "" {
			return fmt.Errorf("handoff decision requires a target")
		}

	case DecisionFinal:
		if strings.TrimSpace(d.Final) == "" {
			return fmt.Errorf("final decision requires output text")
		}
	}

	return nil
}

// String returns a human-readable representation of the decision.
func (d *Decision) String() string {
	if d == nil {
		return "<nil decision>"
	}

	switch d.Kind {
	case DecisionToolCalls:
		names := make([]string, len(d.ToolCalls))
		for i, call := range d.ToolCalls {
			names[i] = call.Tool
		}
		return fmt.Sprintf("Decision{tool_calls: [%s]}", strings.Join(names, ", "))
	case DecisionHandoff:
		return fmt.Sprintf("Decision{handoff: %s}", d.Target)
	case DecisionFinal:
		return fmt.Sprintf("Decision{final: %d chars}", len(d.Final))
	default:
		return fmt.Sprintf("Decision{invalid kind: %s}", d.Kind)
	}
}

// ParseDecision parses a JSON string (typically LLM structured output) into
// a Decision and validates it.
func ParseDecision(jsonStr string) (*Decision, error) {
	if strings.TrimSpace(jsonStr) == "" {
		return nil, fmt.Errorf("empty JSON string")
	}

	var decision Decision
	if err := json.Unmarshal([]byte(jsonStr), &decision); err != nil {
		return nil, fmt.Errorf("failed to parse decision JSON: %w", err)
	}

	if err := decision.Validate(); err != nil {
		return nil, fmt.Errorf("invalid decision: %w", err)
	}

	return &decision, nil
}

// HistoryKind identifies one entry type in the accumulated run history.
type HistoryKind string

const (
	HistoryInput     HistoryKind = "input"
	HistoryReasoning HistoryKind = "reasoning"
	HistoryToolCall  HistoryKind = "tool_call"
	HistoryHandoff   HistoryKind = "handoff"
)

// HistoryEntry is one item of the accumulated conversation/result history
// handed to the provider on every turn.
type HistoryEntry struct {
	Node    string         `json:"node"`
	Kind    HistoryKind    `json:"kind"`
	Tool    string         `json:"tool,omitempty"`
	Args    map[string]any `json:"args,omitempty"`
	Result  *tool.Result   `json:"result,omitempty"`
	Content string         `json:"content,omitempty"`
}

// Request carries everything the provider may consult for one turn.
type Request struct {
	// Node is the active node's name
	Node string

	// Directive is the node's behavioral instruction blob
	Directive string

	// Input is the textual input the node received (original input for the
	// entry node, the handoff message afterwards)
	Input string

	// Tools describes the node's bound tool set
	Tools []tool.Descriptor

	// Handoffs lists the node's candidate handoff targets; empty means the
	// node is terminal and must emit final output
	Handoffs []string

	// History is the full accumulated history of the run so far
	History []HistoryEntry
}

// Provider is the opaque reasoning collaborator driving node decisions.
// Implementations must return exactly one well-formed Decision per call;
// the runner validates structural constraints (known tools, declared
// successors, terminal-only final output) itself.
type Provider interface {
	Decide(ctx context.Context, req Request) (*Decision, error)
}
