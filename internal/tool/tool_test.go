package tool

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handoff-ai/relay/internal/runctx"
	"github.com/handoff-ai/relay/internal/types"
)

func echoTool() *FuncTool {
	return NewFunc("echo", "echoes its message argument",
		types.Object(map[string]*types.Schema{
			"message": types.String("text to echo"),
		}, "message"),
		func(ctx context.Context, rc *runctx.RunContext, args map[string]any) Result {
			return Ok(map[string]any{"echo": args["message"]})
		},
	)
}

func TestFuncToolValidatesSchema(t *testing.T) {
	et := echoTool()
	rc := runctx.New("go", nil)

	result := et.Invoke(context.Background(), rc, map[string]any{"message": "hi"})
	require.True(t, result.OK())
	assert.Equal(t, "hi", result.Output["echo"])

	result = et.Invoke(context.Background(), rc, map[string]any{})
	require.False(t, result.OK())
	assert.Equal(t, "INVALID_ARGS", result.Error.Code)

	result = et.Invoke(context.Background(), rc, map[string]any{"message": 42})
	assert.False(t, result.OK())
}

func TestResultHelpers(t *testing.T) {
	ok := Ok(nil)
	assert.True(t, ok.OK())
	assert.NotNil(t, ok.Output)

	nf := NotFound("order ORD-9 not found")
	require.False(t, nf.OK())
	assert.Equal(t, "NOT_FOUND", nf.Error.Code)
}

func TestRegistryRegisterAndInvoke(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(echoTool()))

	err := reg.Register(echoTool())
	require.Error(t, err)
	assert.ErrorIs(t, err, types.NewError(types.TOOL_ALREADY_EXISTS, ""))

	rc := runctx.New("go", nil)
	result, err := reg.Invoke(context.Background(), "echo", rc, map[string]any{"message": "hi"})
	require.NoError(t, err)
	assert.True(t, result.OK())

	_, err = reg.Invoke(context.Background(), "missing", rc, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.NewError(types.TOOL_NOT_FOUND, ""))
}

func TestRegistryMetrics(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(NewFunc("flaky", "fails on demand",
		types.Object(map[string]*types.Schema{
			"fail": types.Boolean("whether to fail"),
		}, "fail"),
		func(ctx context.Context, rc *runctx.RunContext, args map[string]any) Result {
			if args["fail"].(bool) {
				return Fail("BOOM", "requested failure")
			}
			return Ok(nil)
		},
	))

	rc := runctx.New("go", nil)
	for _, fail := range []bool{false, false, true} {
		_, err := reg.Invoke(context.Background(), "flaky", rc, map[string]any{"fail": fail})
		require.NoError(t, err)
	}

	m, err := reg.Metrics("flaky")
	require.NoError(t, err)
	assert.EqualValues(t, 3, m.TotalCalls)
	assert.EqualValues(t, 2, m.SuccessCalls)
	assert.EqualValues(t, 1, m.FailedCalls)
	assert.InDelta(t, 2.0/3.0, m.SuccessRate(), 1e-9)

	_, err = reg.Metrics("missing")
	assert.Error(t, err)
}

func TestBindRecordsMetricsOnDirectInvoke(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(echoTool())

	bound, err := reg.Bind("echo")
	require.NoError(t, err)
	assert.Equal(t, "echo", bound.Name())
	assert.Equal(t, "echoes its message argument", bound.Description())
	require.NotNil(t, bound.Schema())

	rc := runctx.New("go", nil)
	result := bound.Invoke(context.Background(), rc, map[string]any{"message": "hi"})
	require.True(t, result.OK())

	// A schema-invalid call still counts, as a failed call.
	result = bound.Invoke(context.Background(), rc, map[string]any{})
	require.False(t, result.OK())

	m, err := reg.Metrics("echo")
	require.NoError(t, err)
	assert.EqualValues(t, 2, m.TotalCalls)
	assert.EqualValues(t, 1, m.SuccessCalls)
	assert.EqualValues(t, 1, m.FailedCalls)

	_, err = reg.Bind("missing")
	assert.Error(t, err)
}

func TestRegistryList(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(echoTool())

	descriptors := reg.List()
	require.Len(t, descriptors, 1)
	assert.Equal(t, "echo", descriptors[0].Name)
	assert.NotNil(t, descriptors[0].Schema)
}
