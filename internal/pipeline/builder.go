package pipeline

import (
	"fmt"

	"github.com/handoff-ai/relay/internal/guardrail"
	"github.com/handoff-ai/relay/internal/tool"
	"github.com/handoff-ai/relay/internal/types"
)

// Spec declares one node by name, with tool and successor references as
// stable names rather than pointers. Declaration order is free: successors
// are resolved in a second pass, so pipelines no longer have to be built
// terminal-first.
type Spec struct {
	Name            string
	Directive       string
	Tools           []string
	Successors      []string
	InputGuardrail  guardrail.Guardrail
	OutputGuardrail guardrail.Guardrail
}

// Builder assembles an immutable node graph from Specs. Tools are bound by
// name from the supplied registry.
type Builder struct {
	registry *tool.Registry
	specs    []Spec
	byName   map[string]int
}

// NewBuilder creates a builder that binds tools from the given registry.
func NewBuilder(registry *tool.Registry) *Builder {
	return &Builder{
		registry: registry,
		byName:   make(map[string]int),
	}
}

// Add declares a node. Declaration order is preserved but does not constrain
// successor references.
func (b *Builder) Add(spec Spec) *Builder {
	b.specs = append(b.specs, spec)
	return b
}

// Build validates the declarations and resolves successor names to node
// references, returning the entry node. It fails fast on duplicate node
// names, duplicate tool bindings, unresolved tool or successor references,
// self-handoffs, and a missing entry node.
func (b *Builder) Build(entry string) (*Node, error) {
	nodes := make(map[string]*Node, len(b.specs))

	// First pass: construct nodes with tools bound, successors unresolved.
	for _, spec := range b.specs {
		if spec.Name == "" {
			return nil, types.NewError(types.PIPELINE_VALIDATION_FAILED, "node name cannot be empty")
		}
		if _, exists := nodes[spec.Name]; exists {
			return nil, types.NewError(types.PIPELINE_DUPLICATE_NODE,
				fmt.Sprintf("node %q declared more than once", spec.Name))
		}

		node := &Node{
			name:        spec.Name,
			directive:   spec.Directive,
			toolsByName: make(map[string]tool.Tool, len(spec.Tools)),
			inputGuard:  spec.InputGuardrail,
			outputGuard: spec.OutputGuardrail,
		}

		for _, toolName := range spec.Tools {
			if _, bound := node.toolsByName[toolName]; bound {
				return nil, types.NewError(types.PIPELINE_DUPLICATE_TOOL,
					fmt.Sprintf("node %q binds tool %q more than once", spec.Name, toolName))
			}
			t, err := b.registry.Bind(toolName)
			if err != nil {
				return nil, types.WrapError(types.PIPELINE_UNRESOLVED_NODE,
					fmt.Sprintf("node %q references unregistered tool %q", spec.Name, toolName), err)
			}
			node.tools = append(node.tools, t)
			node.toolsByName[toolName] = t
		}

		nodes[spec.Name] = node
	}

	// Second pass: resolve successor names to references.
	for _, spec := range b.specs {
		node := nodes[spec.Name]
		for _, successorName := range spec.Successors {
			if successorName == spec.Name {
				return nil, types.NewError(types.PIPELINE_VALIDATION_FAILED,
					fmt.Sprintf("node %q declares itself as a successor", spec.Name))
			}
			successor, ok := nodes[successorName]
			if !ok {
				return nil, types.NewError(types.PIPELINE_UNRESOLVED_NODE,
					fmt.Sprintf("node %q references undeclared successor %q", spec.Name, successorName))
			}
			node.successors = append(node.successors, successor)
		}
	}

	entryNode, ok := nodes[entry]
	if !ok {
		return nil, types.NewError(types.PIPELINE_MISSING_ENTRY,
			fmt.Sprintf("entry node %q not declared", entry))
	}

	return entryNode, nil
}

// MustBuild builds the pipeline and panics on error. Pipeline assembly
// errors are programming defects, so demo scenarios fail fast.
func (b *Builder) MustBuild(entry string) *Node {
	node, err := b.Build(entry)
	if err != nil {
		panic(err)
	}
	return node
}
