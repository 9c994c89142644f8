package support

import (
	"github.com/handoff-ai/relay/internal/guardrail"
	"github.com/handoff-ai/relay/internal/guardrail/builtin"
	"github.com/handoff-ai/relay/internal/pipeline"
	"github.com/handoff-ai/relay/internal/provider"
	"github.com/handoff-ai/relay/internal/runctx"
	"github.com/handoff-ai/relay/internal/scenario"
	"github.com/handoff-ai/relay/internal/tool"
)

// Scenario is the customer support demo pipeline.
type Scenario struct{}

var _ scenario.Scenario = Scenario{}

// Name returns the scenario identifier.
func (Scenario) Name() string { return "support" }

// Description returns the one-line scenario summary.
func (Scenario) Description() string {
	return "customer support desk: intake router, specialist desks, resolution reply"
}

// Setup assembles the support pipeline, dataset, and offline script.
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
		Input:    ds.Ticket.Message,
		Data:     ds,
		Script:   Script(),
		Registry: registry,
	}, nil
}

// InputGuardrail blocks the intake node when the snapshot has no customers
// to serve.
func InputGuardrail() guardrail.Guardrail {
	return builtin.NewMinRecords("support-input", 1, func(rc *runctx.RunContext) int {
		ds := dataset(rc)
		if ds == nil {
			return 0
		}
		return len(ds.Customers)
	})
}

// OutputGuardrail blocks customer replies that leak payment-card-like digit
// runs or use unprofessional language.
func OutputGuardrail() guardrail.Guardrail {
	return guardrail.NewChain("response-safety",
		builtin.NewPIIDetector(builtin.PIIPatternCreditCard, builtin.PIIPatternSSN),
		builtin.NewPhraseDenylist("unprofessional-language", []string{
			"calm down",
			"that's not our problem",
			"you should have",
			"deal with it",
		}),
	)
}

// BuildPipeline declares the support chain:
// intake -> {order, billing, technical, escalation} -> resolution.
func BuildPipeline(registry *tool.Registry) (*pipeline.Node, error) {
	builder := pipeline.NewBuilder(registry)

	builder.Add(pipeline.Spec{
		Name: "intake",
		Directive: "Classify the ticket's intent (order, billing, technical, or complex), " +
			"fetch the customer profile, gauge sentiment, and hand off to the right " +
			"specialist with a triage summary including IDs and priority.",
		Tools:          []string{"fetch_customer_profile", "analyze_sentiment"},
		Successors:     []string{"order", "billing", "technical", "escalation"},
		InputGuardrail: InputGuardrail(),
	})

	builder.Add(pipeline.Spec{
		Name: "order",
		Directive: "Investigate order and shipping issues: look up the order, track the " +
			"shipment, and propose a carrier trace or replacement where warranted. " +
			"Hand your findings to resolution.",
		Tools:      []string{"lookup_order", "track_shipment", "open_carrier_trace"},
		Successors: []string{"resolution"},
	})

	builder.Add(pipeline.Spec{
		Name: "billing",
		Directive: "Investigate billing issues: look up invoices, flag duplicate or " +
			"disputed charges, and propose refunds where warranted. Hand your findings " +
			"to resolution.",
		Tools:      []string{"lookup_invoice"},
		Successors: []string{"resolution"},
	})

	builder.Add(pipeline.Spec{
		Name: "technical",
		Directive: "Troubleshoot technical issues using the knowledge base and hand the " +
			"recommended steps to resolution.",
		Tools:      []string{"search_knowledge_base"},
		Successors: []string{"resolution"},
	})

	builder.Add(pipeline.Spec{
		Name: "escalation",
		Directive: "Handle multi-category or high-risk tickets: gather the full picture " +
			"across orders and billing, then hand a prioritized summary to resolution.",
		Tools:      []string{"lookup_order", "lookup_invoice", "fetch_customer_profile"},
		Successors: []string{"resolution"},
	})

	builder.Add(pipeline.Spec{
		Name: "resolution",
		Directive: "Write the final customer reply: acknowledge the issue, state the " +
			"actions taken, and set expectations. Record the resolution before replying. " +
			"Never include payment card numbers.",
		Tools:           []string{"draft_resolution"},
		OutputGuardrail: OutputGuardrail(),
	})

	return builder.Build("intake")
}

// Script is the deterministic decision sequence replayed by the offline
// provider: intake triages and routes the stalled-shipment ticket to the
// order desk, which opens a carrier trace and hands off to resolution.
func Script() provider.Script {
	return provider.Script{
		"intake": {
			provider.ToolCalls(
				provider.Call("fetch_customer_profile", map[string]any{"customer_id": "CUST-1001"}),
				provider.Call("analyze_sentiment", map[string]any{
					"message": "My order ORD-2024-1001 shows in transit for five days with no movement.",
				}),
			),
			provider.Handoff("order",
				"Gold-tier customer Maya Tran (CUST-1001), negative sentiment. Intent: ORDER. "+
					"Order ORD-2024-1001 in transit with no movement for five days. Priority: high."),
		},
		"order": {
			provider.ToolCalls(
				provider.Call("lookup_order", map[string]any{"order_id": "ORD-2024-1001"}),
			),
			provider.ToolCalls(
				provider.Call("track_shipment", map[string]any{"tracking_number": "TRK-9876543210"}),
				provider.Call("open_carrier_trace", map[string]any{
					"order_id": "ORD-2024-1001",
					"reason":   "no carrier scan in over 48 hours",
				}),
			),
			provider.Handoff("resolution",
				"Shipment TRK-9876543210 stalled in transit; carrier trace proposed. "+
					"Recommend informing the customer and offering a replacement if the trace "+
					"is not resolved within 48 hours."),
		},
		"resolution": {
			provider.ToolCalls(
				provider.Call("draft_resolution", map[string]any{
					"action": "inform",
					"summary": "Opened carrier trace for stalled shipment on ORD-2024-1001; " +
						"replacement offered if unresolved within 48 hours.",
				}),
			),
			provider.Final(
				"Hi Maya, thanks for flagging this. Your order ORD-2024-1001 stopped " +
					"updating in transit, so we opened a carrier trace with the shipping " +
					"partner. If it does not move within 48 hours we will ship a free " +
					"replacement. We will email you as soon as the trace comes back."),
		},
	}
}
