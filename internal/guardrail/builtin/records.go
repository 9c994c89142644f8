package builtin

import (
	"context"
	"fmt"

	"github.com/handoff-ai/relay/internal/guardrail"
	"github.com/handoff-ai/relay/internal/runctx"
)

// CountFunc reports how many actionable records the run context's domain
// snapshot holds for a given scenario.
type CountFunc func(rc *runctx.RunContext) int

// MinRecords is an input-sufficiency guardrail: it blocks a node from
// starting when the domain snapshot has fewer actionable records than the
// configured minimum. This is the standard entry guard for every demo
// pipeline.
type MinRecords struct {
	name  string
	min   int
	count CountFunc
}

// NewMinRecords creates an input-sufficiency check that requires at least
// min records as counted by count.
func NewMinRecords(name string, min int, count CountFunc) *MinRecords {
	return &MinRecords{name: name, min: min, count: count}
}

// Name returns the name of this guardrail.
func (m *MinRecords) Name() string {
	return m.name
}

// Check blocks when the snapshot has fewer than the required records.
func (m *MinRecords) Check(ctx context.Context, rc *runctx.RunContext, content string) guardrail.Result {
	n := m.count(rc)
	if n < m.min {
		return guardrail.Block(fmt.Sprintf("insufficient input: %d actionable record(s), need at least %d", n, m.min))
	}
	return guardrail.Pass()
}
