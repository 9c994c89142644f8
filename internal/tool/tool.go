// Package tool defines the capability contract for pipeline tools and a
// registry for tool discovery and execution.
package tool

import (
	"context"

	"github.com/handoff-ai/relay/internal/runctx"
	"github.com/handoff-ai/relay/internal/types"
)

// Tool represents a named, schema-typed unit of work a pipeline node may
// invoke mid-turn. Tools are pure functions of (run context read, arguments)
// apart from permitted action-log appends; they must be safely repeatable
// since all actions here are proposals, not executions. A tool never raises
// to the orchestrator: invalid input and domain failures are reported as a
// structured error Result.
type Tool interface {
	// Name returns the unique identifier for this tool
	Name() string

	// Description returns the contract documentation shown to the reasoning provider
	Description() string

	// Schema returns the declared argument schema. Schemas are static,
	// hand-declared objects; no runtime introspection is involved.
	Schema() *types.Schema

	// Invoke runs the tool with validated arguments and read access to the
	// shared run context. Context is used for cancellation and deadlines.
	Invoke(ctx context.Context, rc *runctx.RunContext, args map[string]any) Result
}

// Result is the structured outcome of a tool invocation. Exactly one of
// Output or Error is set. Tool-level errors are ordinary results fed back
// into the run history so the reasoning provider can adapt; they are never
// orchestrator failures.
type Result struct {
	Output map[string]any `json:"output,omitempty"`
	Error  *ResultError   `json:"error,omitempty"`
}

// ResultError carries a structured tool-level failure.
type ResultError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// OK returns true when the invocation succeeded.
func (r Result) OK() bool {
	return r.Error == nil
}

// Ok builds a successful result with the given output payload.
func Ok(output map[string]any) Result {
	if output == nil {
		output = map[string]any{}
	}
	return Result{Output: output}
}

// Fail builds a structured error result.
func Fail(code, message string) Result {
	return Result{Error: &ResultError{Code: code, Message: message}}
}

// NotFound builds the conventional "record not found" domain error result.
func NotFound(message string) Result {
	return Fail("NOT_FOUND", message)
}

// InvalidArgs builds the conventional invalid-arguments error result.
func InvalidArgs(message string) Result {
	return Fail("INVALID_ARGS", message)
}
