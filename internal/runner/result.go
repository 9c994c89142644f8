package runner

import (
	"fmt"
	"time"

	"github.com/handoff-ai/relay/internal/provider"
)

// Status represents the final status of a pipeline run.
type Status string

const (
	// StatusCompleted indicates a terminal node emitted accepted final output
	StatusCompleted Status = "completed"

	// StatusFailed indicates the run ended in one of the failure kinds
	StatusFailed Status = "failed"
)

// String returns the string representation of Status.
func (s Status) String() string {
	return string(s)
}

// FailureKind classifies a terminal run failure. Tool-level domain errors
// are not failures; they are ordinary structured results in the history.
type FailureKind string

const (
	// FailureBudgetExceeded - turn ceiling reached without terminal output
	FailureBudgetExceeded FailureKind = "budget_exceeded"

	// FailureUnknownTool - provider requested a tool not bound to the active node
	FailureUnknownTool FailureKind = "unknown_tool"

	// FailureInvalidHandoff - handoff target not in the active node's successor set
	FailureInvalidHandoff FailureKind = "invalid_handoff"

	// FailureMissingHandoff - non-terminal node produced final text without handing off
	FailureMissingHandoff FailureKind = "missing_handoff"

	// FailureGuardrailBlocked - input or output guardrail returned passed=false
	FailureGuardrailBlocked FailureKind = "guardrail_blocked"

	// FailureToolTimeout - a tool call could not complete within its retry allowance
	FailureToolTimeout FailureKind = "tool_timeout"

	// FailureProviderError - the reasoning provider failed or returned a
	// malformed decision
	FailureProviderError FailureKind = "provider_error"
)

// String returns the string representation of FailureKind.
func (k FailureKind) String() string {
	return string(k)
}

// Failure carries the kind and human-readable reason of a failed run.
type Failure struct {
	Kind   FailureKind `json:"kind"`
	Reason string      `json:"reason"`
}

// Error renders the failure as a single line for CLI output.
func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %s", f.Kind, f.Reason)
}

// RunResult is the complete outcome of one pipeline run: either accepted
// final output with the visited path, or a classified failure. No partial
// artifact is ever returned on failure.
type RunResult struct {
	// Status is the final status of the run
	Status Status `json:"status"`

	// FinalOutput is the accepted terminal artifact (only when completed)
	FinalOutput string `json:"final_output,omitempty"`

	// Path is the ordered list of node names that became active
	Path []string `json:"path"`

	// Failure classifies a failed run (only when failed)
	Failure *Failure `json:"failure,omitempty"`

	// TurnsUsed is the number of reasoning-provider round-trips consumed
	TurnsUsed int `json:"turns_used"`

	// Duration is the total wall-clock time of the run
	Duration time.Duration `json:"duration"`

	// History is the accumulated conversation/result history
	History []provider.HistoryEntry `json:"history,omitempty"`
}

// Completed reports whether the run produced accepted final output.
func (r *RunResult) Completed() bool {
	return r.Status == StatusCompleted
}

// String returns a human-readable summary of the result.
func (r *RunResult) String() string {
	if r.Completed() {
		return fmt.Sprintf("RunResult{completed, path: %v, turns: %d, duration: %s}",
			r.Path, r.TurnsUsed, r.Duration)
	}
	return fmt.Sprintf("RunResult{failed(%s), path: %v, turns: %d, reason: %s}",
		r.Failure.Kind, r.Path, r.TurnsUsed, r.Failure.Reason)
}
