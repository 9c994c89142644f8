package tool

import (
	"context"

	"github.com/handoff-ai/relay/internal/runctx"
	"github.com/handoff-ai/relay/internal/types"
)

// InvokeFunc is the body of a function-backed tool.
type InvokeFunc func(ctx context.Context, rc *runctx.RunContext, args map[string]any) Result

// FuncTool adapts a plain function plus a hand-declared schema into a Tool.
// This replaces the original system's decorator-based schema reflection with
// an explicit registration step.
type FuncTool struct {
	name        string
	description string
	schema      *types.Schema
	fn          InvokeFunc
}

// NewFunc creates a function-backed tool. The schema is validated against
// incoming arguments before the function runs, so the body can assume the
// declared shape.
func NewFunc(name, description string, schema *types.Schema, fn InvokeFunc) *FuncTool {
	return &FuncTool{
		name:        name,
		description: description,
		schema:      schema,
		fn:          fn,
	}
}

// Name returns the unique identifier for this tool.
func (t *FuncTool) Name() string { return t.name }

// Description returns the contract documentation for this tool.
func (t *FuncTool) Description() string { return t.description }

// Schema returns the declared argument schema.
func (t *FuncTool) Schema() *types.Schema { return t.schema }

// Invoke validates args against the declared schema and runs the tool body.
// Schema violations are returned as structured INVALID_ARGS results.
func (t *FuncTool) Invoke(ctx context.Context, rc *runctx.RunContext, args map[string]any) Result {
	if args == nil {
		args = map[string]any{}
	}
	if err := t.schema.Validate(args); err != nil {
		return InvalidArgs(err.Error())
	}
	return t.fn(ctx, rc, args)
}
