// Package scenario defines the demo-scenario contract and registry. Each
// scenario package assembles a complete pipeline: a simulated domain
// snapshot, a registered tool set, the node chain with guardrails, a default
// goal, and a deterministic decision script so the demo runs offline.
package scenario

import (
	"fmt"
	"sort"
	"sync"

	"github.com/handoff-ai/relay/internal/pipeline"
	"github.com/handoff-ai/relay/internal/provider"
	"github.com/handoff-ai/relay/internal/tool"
	"github.com/handoff-ai/relay/internal/types"
)

// Setup is everything needed to execute one scenario run.
type Setup struct {
	// Entry is the pipeline's entry node
	Entry *pipeline.Node

	// Input is the default goal text fed to the entry node
	Input string

	// Data is the immutable domain snapshot for the run context
	Data any

	// Script replays the scenario offline through provider.NewScript
	Script provider.Script

	// Registry holds the scenario's registered tools, for metrics display
	Registry *tool.Registry
}

// Scenario is one self-contained demo pipeline.
type Scenario interface {
	// Name returns the scenario identifier used on the command line
	Name() string

	// Description returns a one-line summary for scenario listings
	Description() string

	// Setup builds a fresh pipeline, dataset, and decision script
	Setup() (*Setup, error)
}

// Registry holds the available scenarios.
type Registry struct {
	mu        sync.RWMutex
	scenarios map[string]Scenario
}

// NewRegistry creates an empty scenario registry.
func NewRegistry() *Registry {
	return &Registry{scenarios: make(map[string]Scenario)}
}

// Register adds a scenario. Duplicate names are a programming defect.
func (r *Registry) Register(s Scenario) error {
	if s == nil || s.Name() == "" {
		return types.NewError(types.SCENARIO_INVALID, "scenario must have a name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.scenarios[s.Name()]; exists {
		return types.NewError(types.SCENARIO_ALREADY_EXISTS,
			fmt.Sprintf("scenario %q already registered", s.Name()))
	}
	r.scenarios[s.Name()] = s
	return nil
}

// MustRegister registers a scenario and panics on error.
func (r *Registry) MustRegister(s Scenario) {
	if err := r.Register(s); err != nil {
		panic(err)
	}
}

// Get retrieves a scenario by name.
// Returns SCENARIO_NOT_FOUND if no such scenario is registered.
func (r *Registry) Get(name string) (Scenario, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if s, exists := r.scenarios[name]; exists {
		return s, nil
	}
	return nil, types.NewError(types.SCENARIO_NOT_FOUND,
		fmt.Sprintf("unknown scenario %q (run 'relay scenarios' to list)", name))
}

// List returns all registered scenarios sorted by name.
func (r *Registry) List() []Scenario {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Scenario, 0, len(r.scenarios))
	for _, s := range r.scenarios {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}
