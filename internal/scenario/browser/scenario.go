package browser

import (
	"context"
	"strings"

	"github.com/handoff-ai/relay/internal/guardrail"
	"github.com/handoff-ai/relay/internal/pipeline"
	"github.com/handoff-ai/relay/internal/provider"
	"github.com/handoff-ai/relay/internal/runctx"
	"github.com/handoff-ai/relay/internal/scenario"
	"github.com/handoff-ai/relay/internal/tool"
)

// Scenario is the browser automation demo pipeline.
type Scenario struct{}

var _ scenario.Scenario = Scenario{}

// Name returns the scenario identifier.
func (Scenario) Name() string { return "browser" }

// Description returns the one-line scenario summary.
func (Scenario) Description() string {
	return "browser automation: plan task, navigate simulated pages, interact, extract, report"
}

// Setup assembles the browser pipeline, site snapshot, and offline script.
func (Scenario) Setup() (*scenario.Setup, error) {
	ds, err := LoadDataset()
	if err != nil {
		return nil, err
	}

	registry := tool.NewRegistry()
	RegisterTools(registry)

	entry, err := BuildPipeline(registry)
	if err != nil {
		return nil, err
	}

	return &scenario.Setup{
		Entry:    entry,
		Input:    ds.Task,
		Data:     ds,
		Script:   Script(),
		Registry: registry,
	}, nil
}

// InputGuardrail blocks the planner when the task is empty or the snapshot
// has no pages to browse.
func InputGuardrail() guardrail.Guardrail {
	return guardrail.NewFunc("task-validity",
		func(ctx context.Context, rc *runctx.RunContext, content string) guardrail.Result {
			if len(strings.Fields(content)) < 3 {
				return guardrail.Block("task description is too vague to plan")
			}
			ds := dataset(rc)
			if ds == nil || len(ds.Pages) == 0 {
				return guardrail.Block("no pages available to browse")
			}
			return guardrail.Pass()
		})
}

// OutputGuardrail blocks final reports that do not state an outcome for the
// task.
func OutputGuardrail() guardrail.Guardrail {
	return guardrail.NewFunc("output-validation",
		func(ctx context.Context, rc *runctx.RunContext, content string) guardrail.Result {
			if len(content) < 80 {
				return guardrail.Block("report is too short to describe the outcome")
			}
			lower := strings.ToLower(content)
			if !strings.Contains(lower, "result") && !strings.Contains(lower, "found") {
				return guardrail.Block("report does not state the task result")
			}
			return guardrail.Pass()
		})
}

// BuildPipeline declares the browser chain:
// task_planner -> navigator -> interactor -> extractor -> reporter.
func BuildPipeline(registry *tool.Registry) (*pipeline.Node, error) {
	builder := pipeline.NewBuilder(registry)

	builder.Add(pipeline.Spec{
		Name: "task_planner",
		Directive: "Break the task into navigation, interaction, and extraction steps, " +
			"then hand the plan to the navigator with the starting URL.",
		Successors:     []string{"navigator"},
		InputGuardrail: InputGuardrail(),
	})

	builder.Add(pipeline.Spec{
		Name: "navigator",
		Directive: "Open the starting page, observe it, and locate the route toward the " +
			"target content. Hand the destination and relevant selectors to the interactor.",
		Tools:      []string{"open_page", "observe_page"},
		Successors: []string{"interactor"},
	})

	builder.Add(pipeline.Spec{
		Name: "interactor",
		Directive: "Perform the planned interactions (clicks, form fills) to reach the " +
			"target content, then hand the final page and selectors to the extractor.",
		Tools:      []string{"click_element", "observe_page"},
		Successors: []string{"extractor"},
	})

	builder.Add(pipeline.Spec{
		Name: "extractor",
		Directive: "Extract the target content from the final page and hand the raw " +
			"values to the reporter.",
		Tools:      []string{"extract_content"},
		Successors: []string{"reporter"},
	})

	builder.Add(pipeline.Spec{
		Name: "reporter",
		Directive: "Write the task report: what was done, what was found, and the " +
			"extracted values. State the result explicitly.",
		OutputGuardrail: OutputGuardrail(),
	})

	return builder.Build("task_planner")
}

// Script is the deterministic decision sequence for the offline provider:
// navigate home -> pricing, extract the Pro plan price and features.
func Script() provider.Script {
	return provider.Script{
		"task_planner": {
			provider.Handoff("navigator",
				"Plan: start at https://shop.example.com, follow the pricing link, "+
					"then extract the Pro plan price and feature list."),
		},
		"navigator": {
			provider.ToolCalls(
				provider.Call("open_page", map[string]any{"url": "https://shop.example.com"}),
			),
			provider.ToolCalls(
				provider.Call("observe_page", map[string]any{"url": "https://shop.example.com"}),
			),
			provider.Handoff("interactor",
				"Home page open. The pricing link is 'nav a.pricing' targeting "+
					"https://shop.example.com/pricing."),
		},
		"interactor": {
			provider.ToolCalls(
				provider.Call("click_element", map[string]any{
					"url": "https://shop.example.com", "selector": "nav a.pricing",
				}),
			),
			provider.ToolCalls(
				provider.Call("observe_page", map[string]any{"url": "https://shop.example.com/pricing"}),
			),
			provider.Handoff("extractor",
				"On the pricing page. Target selectors: '.plan-pro .price' and "+
					"'.plan-pro .features'."),
		},
		"extractor": {
			provider.ToolCalls(
				provider.Call("extract_content", map[string]any{
					"url": "https://shop.example.com/pricing", "selector": ".plan-pro .price",
				}),
				provider.Call("extract_content", map[string]any{
					"url": "https://shop.example.com/pricing", "selector": ".plan-pro .features",
				}),
			),
			provider.Handoff("reporter",
				"Extracted: Pro plan price $29/mo; features: unlimited projects, "+
					"priority support, SSO, audit logs."),
		},
		"reporter": {
			provider.Final(
				"Task result: found the Pro plan on shop.example.com/pricing. Price: " +
					"$29/mo. Features: unlimited projects, priority support, SSO, and " +
					"audit logs. Route: home page -> pricing link -> Pro plan card; " +
					"price and feature list extracted from the plan card."),
		},
	}
}
