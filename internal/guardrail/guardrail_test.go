package guardrail

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/handoff-ai/relay/internal/runctx"
)

func newGuard(name, banned string) Guardrail {
	return NewFunc(name, func(ctx context.Context, rc *runctx.RunContext, content string) Result {
		if strings.Contains(content, banned) {
			return Block("contains " + banned)
		}
		return Pass()
	})
}

func TestFuncGuardrail(t *testing.T) {
	rc := runctx.New("input", nil)
	guard := newGuard("no-foo", "foo")

	assert.Equal(t, "no-foo", guard.Name())
	assert.True(t, guard.Check(context.Background(), rc, "clean text").Passed)

	verdict := guard.Check(context.Background(), rc, "some foo text")
	assert.False(t, verdict.Passed)
	assert.Equal(t, "contains foo", verdict.Reason)
}

func TestChainFirstBlockWins(t *testing.T) {
	rc := runctx.New("input", nil)
	chain := NewChain("safety",
		newGuard("no-foo", "foo"),
		newGuard("no-bar", "bar"),
	)

	assert.Equal(t, "safety", chain.Name())
	assert.True(t, chain.Check(context.Background(), rc, "clean").Passed)

	// Both guards would block; the first one's verdict is reported.
	verdict := chain.Check(context.Background(), rc, "foo and bar")
	assert.False(t, verdict.Passed)
	assert.Equal(t, "no-foo: contains foo", verdict.Reason)

	verdict = chain.Check(context.Background(), rc, "only bar")
	assert.False(t, verdict.Passed)
	assert.Equal(t, "no-bar: contains bar", verdict.Reason)
}

func TestEmptyChainPasses(t *testing.T) {
	rc := runctx.New("input", nil)
	assert.True(t, NewChain("empty").Check(context.Background(), rc, "anything").Passed)
}
