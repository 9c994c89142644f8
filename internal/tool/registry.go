package tool

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/handoff-ai/relay/internal/runctx"
	"github.com/handoff-ai/relay/internal/types"
)

// Descriptor contains tool metadata for discovery and prompt rendering.
type Descriptor struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Schema      *types.Schema `json:"schema"`
}

// NewDescriptor creates a Descriptor from a Tool.
func NewDescriptor(t Tool) Descriptor {
	return Descriptor{
		Name:        t.Name(),
		Description: t.Description(),
		Schema:      t.Schema(),
	}
}

// Metrics tracks tool execution statistics. Metrics are updated by the
// registry during execution and safe to read after a run completes.
type Metrics struct {
	TotalCalls    int64         `json:"total_calls"`
	SuccessCalls  int64         `json:"success_calls"`
	FailedCalls   int64         `json:"failed_calls"`
	TotalDuration time.Duration `json:"total_duration"`
	AvgDuration   time.Duration `json:"avg_duration"`
}

func (m *Metrics) record(duration time.Duration, ok bool) {
	m.TotalCalls++
	if ok {
		m.SuccessCalls++
	} else {
		m.FailedCalls++
	}
	m.TotalDuration += duration
	m.AvgDuration = m.TotalDuration / time.Duration(m.TotalCalls)
}

// SuccessRate returns the success rate between 0.0 and 1.0.
func (m *Metrics) SuccessRate() float64 {
	if m.TotalCalls == 0 {
		return 0.0
	}
	return float64(m.SuccessCalls) / float64(m.TotalCalls)
}

// Registry manages tool registration, discovery, and execution with
// per-tool metrics. Scenario packages register their tools here and the
// pipeline builder binds them to nodes by name.
type Registry struct {
	mu      sync.RWMutex
	tools   map[string]Tool
	metrics map[string]*Metrics
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools:   make(map[string]Tool),
		metrics: make(map[string]*Metrics),
	}
}

// Register adds a tool to the registry.
// Returns TOOL_ALREADY_EXISTS if a tool with the same name is registered.
func (r *Registry) Register(t Tool) error {
	if t == nil {
		return types.NewError(types.TOOL_INVALID_INPUT, "tool cannot be nil")
	}

	name := t.Name()
	if name == "" {
		return types.NewError(types.TOOL_INVALID_INPUT, "tool name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[name]; exists {
		return types.NewError(types.TOOL_ALREADY_EXISTS, fmt.Sprintf("tool %q already registered", name))
	}

	r.tools[name] = t
	r.metrics[name] = &Metrics{}
	return nil
}

// MustRegister registers a tool and panics on error. Intended for scenario
// construction, where a duplicate name is a programming defect.
func (r *Registry) MustRegister(t Tool) {
	if err := r.Register(t); err != nil {
		panic(err)
	}
}

// Get retrieves a tool by name.
// Returns TOOL_NOT_FOUND if the tool doesn't exist.
func (r *Registry) Get(name string) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if t, exists := r.tools[name]; exists {
		return t, nil
	}
	return nil, types.NewError(types.TOOL_NOT_FOUND, fmt.Sprintf("tool %q not found", name))
}

// List returns descriptors for all registered tools.
func (r *Registry) List() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	descriptors := make([]Descriptor, 0, len(r.tools))
	for _, t := range r.tools {
		descriptors = append(descriptors, NewDescriptor(t))
	}
	return descriptors
}

// Bind returns the named tool wrapped so that every invocation records into
// the registry's metrics, whatever path dispatches it. The pipeline builder
// binds node tools through here, so metrics accrue during real runs.
func (r *Registry) Bind(name string) (Tool, error) {
	t, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	return &instrumented{tool: t, registry: r}, nil
}

// instrumented reports each invocation back to the owning registry.
type instrumented struct {
	tool     Tool
	registry *Registry
}

func (t *instrumented) Name() string         { return t.tool.Name() }
func (t *instrumented) Description() string  { return t.tool.Description() }
func (t *instrumented) Schema() *types.Schema { return t.tool.Schema() }

func (t *instrumented) Invoke(ctx context.Context, rc *runctx.RunContext, args map[string]any) Result {
	start := time.Now()
	result := t.tool.Invoke(ctx, rc, args)
	t.registry.observe(t.tool.Name(), time.Since(start), result.OK())
	return result
}

// Invoke runs a registered tool by name, recording metrics. A tool result
// carrying a structured error counts as a failed call.
func (r *Registry) Invoke(ctx context.Context, name string, rc *runctx.RunContext, args map[string]any) (Result, error) {
	t, err := r.Get(name)
	if err != nil {
		return Result{}, err
	}

	start := time.Now()
	result := t.Invoke(ctx, rc, args)
	r.observe(name, time.Since(start), result.OK())

	return result, nil
}

func (r *Registry) observe(name string, duration time.Duration, ok bool) {
	r.mu.Lock()
	if m, exists := r.metrics[name]; exists {
		m.record(duration, ok)
	}
	r.mu.Unlock()
}

// Metrics returns a copy of execution metrics for a specific tool.
func (r *Registry) Metrics(name string) (Metrics, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, exists := r.metrics[name]
	if !exists {
		return Metrics{}, types.NewError(types.TOOL_NOT_FOUND, fmt.Sprintf("tool %q not found", name))
	}
	return *m, nil
}
