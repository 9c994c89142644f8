// Package runner implements the orchestration core: a single-active-node
// state machine that drives a pipeline from its entry node through tool
// batches and handoffs to accepted terminal output, under a hard turn
// budget and a closed set of failure kinds.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	"github.com/handoff-ai/relay/internal/observer"
	"github.com/handoff-ai/relay/internal/pipeline"
	"github.com/handoff-ai/relay/internal/provider"
	"github.com/handoff-ai/relay/internal/runctx"
	"github.com/handoff-ai/relay/internal/tool"
)

const (
	// DefaultToolTimeout bounds a single tool invocation attempt
	DefaultToolTimeout = 30 * time.Second

	// DefaultToolRetries is the number of additional attempts after a
	// timed-out tool call
	DefaultToolRetries = 2
)

// Runner executes pipeline runs. It holds no per-run state; one Runner may
// serve concurrent runs over the same pipeline.
type Runner struct {
	provider    provider.Provider
	logger      *slog.Logger
	tracer      trace.Tracer
	obs         observer.Observer
	toolTimeout time.Duration
	toolRetries int
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the structured logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithTracer sets the OpenTelemetry tracer. Default: a noop tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(r *Runner) {
		if tracer != nil {
			r.tracer = tracer
		}
	}
}

// WithObserver registers a lifecycle observer. Multiple calls accumulate;
// callbacks fire in registration order. Observers are panic-isolated.
func WithObserver(o observer.Observer) Option {
	return func(r *Runner) {
		if o == nil {
			return
		}
		switch existing := r.obs.(type) {
		case observer.Nop:
			r.obs = o
		case observer.Multi:
			r.obs = append(existing, o)
		default:
			r.obs = observer.Multi{existing, o}
		}
	}
}

// WithToolTimeout bounds each tool invocation attempt.
// Default: DefaultToolTimeout.
func WithToolTimeout(timeout time.Duration) Option {
	return func(r *Runner) {
		if timeout > 0 {
			r.toolTimeout = timeout
		}
	}
}

// WithToolRetries sets the number of additional attempts after a timed-out
// tool call. Default: DefaultToolRetries.
func WithToolRetries(retries int) Option {
	return func(r *Runner) {
		if retries >= 0 {
			r.toolRetries = retries
		}
	}
}

// New creates a Runner driven by the given reasoning provider.
func New(p provider.Provider, options ...Option) *Runner {
	r := &Runner{
		provider:    p,
		logger:      slog.Default(),
		tracer:      noop.NewTracerProvider().Tracer("relay.runner"),
		obs:         observer.Nop{},
		toolTimeout: DefaultToolTimeout,
		toolRetries: DefaultToolRetries,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// run carries the mutable state of one execution.
type run struct {
	rc      *runctx.RunContext
	current *pipeline.Node
	input   string
	history []provider.HistoryEntry
	path    []string
	turns   int
	budget  int
	started time.Time
	obs     observer.Observer
	logger  *slog.Logger
}

// Run executes the pipeline rooted at entry with the given initial input,
// shared run context, and turn budget. Every reasoning-provider round-trip
// consumes one turn; a budget of zero or less fails immediately without
// consulting the provider.
//
// The returned result is never nil: it is either StatusCompleted with the
// accepted final output, or StatusFailed with a classified Failure. Tool
// domain errors do not fail a run; they are fed back to the provider as
// structured results.
func (r *Runner) Run(ctx context.Context, entry *pipeline.Node, input string, rc *runctx.RunContext, turnBudget int) *RunResult {
	ctx, span := r.tracer.Start(ctx, "runner.run",
		trace.WithAttributes(
			attribute.String("run.id", rc.RunID().String()),
			attribute.String("run.entry", entry.Name()),
			attribute.Int("run.turn_budget", turnBudget),
		))
	defer span.End()

	st := &run{
		rc:      rc,
		current: entry,
		input:   input,
		budget:  turnBudget,
		started: time.Now(),
		obs:     observer.Safe(r.obs, r.logger),
		logger:  r.logger.With("run_id", rc.RunID().String()),
	}

	st.logger.Info("run starting",
		"entry", entry.Name(),
		"turn_budget", turnBudget)

	result := r.execute(ctx, st)
	if !result.Completed() && len(st.path) > 0 && st.path[len(st.path)-1] == st.current.Name() {
		// The node that was active when the run failed still gets its end
		// notification.
		st.obs.OnNodeEnd(st.current.Name())
	}
	result.Duration = time.Since(st.started)
	result.TurnsUsed = st.turns
	result.Path = st.path
	result.History = st.history

	span.SetAttributes(
		attribute.String("run.status", result.Status.String()),
		attribute.Int("run.turns_used", result.TurnsUsed),
	)
	if result.Completed() {
		st.logger.Info("run completed",
			"path", st.path,
			"turns", st.turns,
			"duration", result.Duration)
	} else {
		span.SetAttributes(attribute.String("run.failure", result.Failure.Kind.String()))
		st.logger.Warn("run failed",
			"kind", result.Failure.Kind,
			"reason", result.Failure.Reason,
			"path", st.path,
			"turns", st.turns)
	}

	return result
}

// execute drives the state machine until terminal output or failure.
func (r *Runner) execute(ctx context.Context, st *run) *RunResult {
	if st.budget <= 0 {
		return fail(FailureBudgetExceeded,
			fmt.Sprintf("turn budget %d leaves no room for a reasoning turn", st.budget))
	}

	if res := r.activate(ctx, st, st.input, true); res != nil {
		return res
	}

	for {
		if st.turns >= st.budget {
			return fail(FailureBudgetExceeded,
				fmt.Sprintf("turn budget %d exhausted at node %q", st.budget, st.current.Name()))
		}

		decision, err := r.decide(ctx, st)
		if err != nil {
			return fail(FailureProviderError,
				fmt.Sprintf("node %q: %v", st.current.Name(), err))
		}

		if decision.Reasoning != "" {
			st.history = append(st.history, provider.HistoryEntry{
				Node:    st.current.Name(),
				Kind:    provider.HistoryReasoning,
				Content: decision.Reasoning,
			})
		}

		switch decision.Kind {
		case provider.DecisionToolCalls:
			if res := r.runToolBatch(ctx, st, decision.ToolCalls); res != nil {
				return res
			}

		case provider.DecisionHandoff:
			if res := r.handoff(ctx, st, decision); res != nil {
				return res
			}

		case provider.DecisionFinal:
			return r.finalize(ctx, st, decision.Final)

		default:
			return fail(FailureProviderError,
				fmt.Sprintf("node %q: unsupported decision kind %q", st.current.Name(), decision.Kind))
		}
	}
}

// activate makes a node the active node: input guardrail first, then the
// OnNodeStart notification and path entry. On a guardrail block the node
// never becomes active and the run fails.
func (r *Runner) activate(ctx context.Context, st *run, input string, isEntry bool) *RunResult {
	node := st.current

	if guard := node.InputGuardrail(); guard != nil {
		verdict := guard.Check(ctx, st.rc, input)
		if !verdict.Passed {
			st.logger.Warn("input guardrail blocked node activation",
				"node", node.Name(),
				"guardrail", guard.Name(),
				"reason", verdict.Reason)
			return fail(FailureGuardrailBlocked,
				fmt.Sprintf("input guardrail %q blocked node %q: %s", guard.Name(), node.Name(), verdict.Reason))
		}
	}

	st.path = append(st.path, node.Name())
	st.obs.OnNodeStart(node.Name(), input)

	kind := provider.HistoryHandoff
	if isEntry {
		kind = provider.HistoryInput
	}
	st.history = append(st.history, provider.HistoryEntry{
		Node:    node.Name(),
		Kind:    kind,
		Content: input,
	})

	return nil
}

// decide performs one reasoning round-trip for the active node. Each call
// consumes one turn regardless of the decision kind.
func (r *Runner) decide(ctx context.Context, st *run) (*provider.Decision, error) {
	node := st.current

	toolSet := node.Tools()
	descriptors := make([]tool.Descriptor, len(toolSet))
	for i, t := range toolSet {
		descriptors[i] = tool.NewDescriptor(t)
	}
	successors := node.Successors()
	handoffs := make([]string, len(successors))
	for i, s := range successors {
		handoffs[i] = s.Name()
	}

	st.turns++
	st.logger.Debug("reasoning turn",
		"node", node.Name(),
		"turn", st.turns,
		"budget", st.budget)

	decision, err := r.provider.Decide(ctx, provider.Request{
		Node:      node.Name(),
		Directive: node.Directive(),
		Input:     st.input,
		Tools:     descriptors,
		Handoffs:  handoffs,
		History:   st.history,
	})
	if err != nil {
		return nil, fmt.Errorf("provider call failed: %w", err)
	}
	if err := decision.Validate(); err != nil {
		return nil, fmt.Errorf("provider returned malformed decision: %w", err)
	}

	return decision, nil
}

// runToolBatch validates, announces, dispatches, and records one tool-call
// batch. The whole batch is validated against the node's bound tool set
// before anything is dispatched; all OnToolStart notifications fire in
// request order before dispatch, and all OnToolEnd notifications fire in
// request order after the batch settles, so observers see a sequential
// stream while invocations run concurrently.
func (r *Runner) runToolBatch(ctx context.Context, st *run, calls []provider.ToolCall) *RunResult {
	node := st.current

	tools := make([]tool.Tool, len(calls))
	for i, call := range calls {
		t, ok := node.Tool(call.Tool)
		if !ok {
			return fail(FailureUnknownTool,
				fmt.Sprintf("node %q has no tool %q", node.Name(), call.Tool))
		}
		tools[i] = t
	}

	for _, call := range calls {
		st.obs.OnToolStart(node.Name(), call.Tool, call.Args)
	}

	ctx, span := r.tracer.Start(ctx, "runner.tool_batch",
		trace.WithAttributes(
			attribute.String("node", node.Name()),
			attribute.Int("batch.size", len(calls)),
		))
	defer span.End()

	ctx = runctx.WithActiveNode(ctx, node.Name())

	results := make([]tool.Result, len(calls))
	timedOut := make([]bool, len(calls))

	group, groupCtx := errgroup.WithContext(ctx)
	for i := range calls {
		group.Go(func() error {
			results[i], timedOut[i] = r.invokeWithRetry(groupCtx, st, tools[i], calls[i].Args)
			return nil
		})
	}
	_ = group.Wait()

	for i, call := range calls {
		st.obs.OnToolEnd(node.Name(), call.Tool, results[i])
	}

	for i, call := range calls {
		if timedOut[i] {
			return fail(FailureToolTimeout,
				fmt.Sprintf("tool %q on node %q did not complete within %s after %d attempt(s)",
					call.Tool, node.Name(), r.toolTimeout, r.toolRetries+1))
		}
		st.history = append(st.history, provider.HistoryEntry{
			Node:   node.Name(),
			Kind:   provider.HistoryToolCall,
			Tool:   call.Tool,
			Args:   call.Args,
			Result: &results[i],
		})
	}

	return nil
}

// invokeWithRetry runs one tool call with a per-attempt timeout and a
// bounded retry allowance. A panicking tool is converted to a structured
// error result, never propagated. The second return value reports that the
// allowance was exhausted without any result.
func (r *Runner) invokeWithRetry(ctx context.Context, st *run, t tool.Tool, args map[string]any) (tool.Result, bool) {
	attempts := r.toolRetries + 1
	for attempt := 1; attempt <= attempts; attempt++ {
		result, completed := r.invokeOnce(ctx, st, t, args)
		if completed {
			return result, false
		}
		if ctx.Err() != nil {
			break
		}
		st.logger.Warn("tool attempt timed out",
			"tool", t.Name(),
			"attempt", attempt,
			"timeout", r.toolTimeout)
	}
	return tool.Result{}, true
}

// invokeOnce runs a single attempt under the tool timeout. The invocation
// goroutine may outlive a timed-out attempt; its buffered channel lets it
// finish without blocking.
func (r *Runner) invokeOnce(ctx context.Context, st *run, t tool.Tool, args map[string]any) (result tool.Result, completed bool) {
	attemptCtx, cancel := context.WithTimeout(ctx, r.toolTimeout)
	defer cancel()

	done := make(chan tool.Result, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				st.logger.Error("tool panic recovered", "tool", t.Name(), "panic", rec)
				done <- tool.Fail("TOOL_PANIC", fmt.Sprintf("tool %q panicked: %v", t.Name(), rec))
			}
		}()
		done <- t.Invoke(attemptCtx, st.rc, args)
	}()

	select {
	case res := <-done:
		return res, true
	case <-attemptCtx.Done():
		return tool.Result{}, false
	}
}

// handoff validates and performs a one-way transfer to a declared successor.
// The departing node's output guardrail is checked against the handoff
// message before the transfer is accepted; on a block the target is never
// activated.
func (r *Runner) handoff(ctx context.Context, st *run, decision *provider.Decision) *RunResult {
	from := st.current

	target, ok := from.Successor(decision.Target)
	if !ok {
		return fail(FailureInvalidHandoff,
			fmt.Sprintf("node %q has no successor %q", from.Name(), decision.Target))
	}

	if guard := from.OutputGuardrail(); guard != nil {
		verdict := guard.Check(ctx, st.rc, decision.Message)
		if !verdict.Passed {
			return fail(FailureGuardrailBlocked,
				fmt.Sprintf("output guardrail %q blocked handoff from %q: %s", guard.Name(), from.Name(), verdict.Reason))
		}
	}

	st.obs.OnHandoff(from.Name(), target.Name(), decision.Message)
	st.obs.OnNodeEnd(from.Name())
	st.logger.Info("handoff accepted",
		"from", from.Name(),
		"to", target.Name())

	st.current = target
	st.input = decision.Message
	return r.activate(ctx, st, decision.Message, false)
}

// finalize accepts terminal output, enforcing that only a terminal node may
// emit it and that the node's output guardrail admits the text.
func (r *Runner) finalize(ctx context.Context, st *run, text string) *RunResult {
	node := st.current

	if !node.IsTerminal() {
		return fail(FailureMissingHandoff,
			fmt.Sprintf("non-terminal node %q emitted final output instead of handing off", node.Name()))
	}

	if guard := node.OutputGuardrail(); guard != nil {
		verdict := guard.Check(ctx, st.rc, text)
		if !verdict.Passed {
			return fail(FailureGuardrailBlocked,
				fmt.Sprintf("output guardrail %q blocked final output of %q: %s", guard.Name(), node.Name(), verdict.Reason))
		}
	}

	st.obs.OnNodeEnd(node.Name())

	return &RunResult{
		Status:      StatusCompleted,
		FinalOutput: text,
	}
}

func fail(kind FailureKind, reason string) *RunResult {
	return &RunResult{
		Status:  StatusFailed,
		Failure: &Failure{Kind: kind, Reason: reason},
	}
}
