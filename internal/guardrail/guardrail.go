// Package guardrail defines pass/block safety checks evaluated at fixed
// points of a pipeline run: once against a node's input before its first
// turn, and once against a node's final output before a handoff or terminal
// return is accepted.
package guardrail

import (
	"context"

	"github.com/handoff-ai/relay/internal/runctx"
)

// Result is the outcome of a guardrail check. Passed=false is a hard stop,
// never a soft warning; Reason carries the guardrail's explanation.
type Result struct {
	Passed bool   `json:"passed"`
	Reason string `json:"reason,omitempty"`
}

// Pass builds a passing result.
func Pass() Result {
	return Result{Passed: true}
}

// Block builds a blocking result with the given reason.
func Block(reason string) Result {
	return Result{Passed: false, Reason: reason}
}

// Guardrail is a named predicate over (run context, candidate text).
// Checks must be deterministic and read-only on the run context.
type Guardrail interface {
	// Name returns the unique name of this guardrail, used in failure reasons.
	Name() string

	// Check evaluates the candidate content against the run context.
	Check(ctx context.Context, rc *runctx.RunContext, content string) Result
}

// CheckFunc is the body of a function-backed guardrail.
type CheckFunc func(ctx context.Context, rc *runctx.RunContext, content string) Result

// Func adapts a plain function into a Guardrail.
type Func struct {
	name string
	fn   CheckFunc
}

// NewFunc creates a function-backed guardrail.
func NewFunc(name string, fn CheckFunc) *Func {
	return &Func{name: name, fn: fn}
}

// Name returns the guardrail name.
func (f *Func) Name() string { return f.name }

// Check runs the guardrail function.
func (f *Func) Check(ctx context.Context, rc *runctx.RunContext, content string) Result {
	return f.fn(ctx, rc, content)
}

// Chain evaluates several guardrails in order under a single name; the first
// block wins. A node binds at most one guardrail per checkpoint, so scenarios
// use Chain to stack policies.
type Chain struct {
	name   string
	guards []Guardrail
}

// NewChain creates a named guardrail chain.
func NewChain(name string, guards ...Guardrail) *Chain {
	return &Chain{name: name, guards: guards}
}

// Name returns the chain name.
func (c *Chain) Name() string { return c.name }

// Check runs each guardrail in order and returns the first block.
func (c *Chain) Check(ctx context.Context, rc *runctx.RunContext, content string) Result {
	for _, g := range c.guards {
		if verdict := g.Check(ctx, rc, content); !verdict.Passed {
			return Result{Passed: false, Reason: g.Name() + ": " + verdict.Reason}
		}
	}
	return Pass()
}
