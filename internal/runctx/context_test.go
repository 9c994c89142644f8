package runctx

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type snapshot struct {
	Records []string
}

func TestRunContextBasics(t *testing.T) {
	rc := New("investigate ORD-1", snapshot{Records: []string{"a"}})

	require.NoError(t, rc.RunID().Validate())
	assert.Equal(t, "investigate ORD-1", rc.Input())

	data, ok := rc.Data().(snapshot)
	require.True(t, ok)
	assert.Equal(t, []string{"a"}, data.Records)

	assert.Zero(t, rc.ActionCount())
}

func TestAppendActionIsMonotonic(t *testing.T) {
	rc := New("go", nil)
	ctx := WithActiveNode(context.Background(), "triage")

	first := rc.AppendAction(ctx, "fetch_alerts", "fetched 3 alerts", nil)
	second := rc.AppendAction(ctx, "search_logs", "searched logs", map[string]any{"hits": 2})

	actions := rc.Actions()
	require.Len(t, actions, 2)
	assert.Equal(t, first.ID, actions[0].ID)
	assert.Equal(t, second.ID, actions[1].ID)
	assert.Equal(t, "search_logs", actions[1].Tool)

	// Returned slice is a copy; mutating it must not affect the log.
	actions[0].Summary = "tampered"
	assert.Equal(t, "fetched 3 alerts", rc.Actions()[0].Summary)
}

func TestAppendActionAttributesActiveNode(t *testing.T) {
	rc := New("go", nil)

	attributed := rc.AppendAction(WithActiveNode(context.Background(), "remediation"),
		"propose_fix", "proposed a fix", nil)
	assert.Equal(t, "remediation", attributed.Node)

	// Outside the runner's dispatch the context carries no node.
	bare := rc.AppendAction(context.Background(), "propose_fix", "proposed a fix", nil)
	assert.Empty(t, bare.Node)

	assert.Equal(t, "remediation", rc.Actions()[0].Node)
}

func TestActiveNodeRoundTrip(t *testing.T) {
	assert.Empty(t, ActiveNode(context.Background()))

	ctx := WithActiveNode(context.Background(), "navigator")
	assert.Equal(t, "navigator", ActiveNode(ctx))
}

func TestAppendActionConcurrent(t *testing.T) {
	rc := New("go", nil)
	ctx := WithActiveNode(context.Background(), "node")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rc.AppendAction(ctx, "tool", "summary", nil)
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, rc.ActionCount())
}
