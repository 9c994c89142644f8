package incident

import (
	"github.com/handoff-ai/relay/internal/guardrail"
	"github.com/handoff-ai/relay/internal/guardrail/builtin"
	"github.com/handoff-ai/relay/internal/pipeline"
	"github.com/handoff-ai/relay/internal/provider"
	"github.com/handoff-ai/relay/internal/runctx"
	"github.com/handoff-ai/relay/internal/scenario"
	"github.com/handoff-ai/relay/internal/tool"
)

// Scenario is the AIOps incident response demo pipeline.
type Scenario struct{}

var _ scenario.Scenario = Scenario{}

// Name returns the scenario identifier.
func (Scenario) Name() string { return "incident" }

// Description returns the one-line scenario summary.
func (Scenario) Description() string {
	return "aiops incident response: triage, log analysis, root cause, remediation, report"
}

// Setup assembles the incident pipeline, dataset, and offline script.
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
		Input:    ds.Incident,
		Data:     ds,
		Script:   Script(),
		Registry: registry,
	}, nil
}

// InputGuardrail blocks triage when no alert is firing.
func InputGuardrail() guardrail.Guardrail {
	return builtin.NewMinRecords("incident-input", 1, func(rc *runctx.RunContext) int {
		ds := dataset(rc)
		if ds == nil {
			return 0
		}
		return len(ds.ActiveAlerts())
	})
}

// RemediationGuardrail blocks remediation handoffs proposing destructive
// commands. Remediations are proposals; destructive ones never leave the node.
func RemediationGuardrail() guardrail.Guardrail {
	return builtin.NewPhraseDenylist("remediation-safety", []string{
		"rm -rf",
		"drop table",
		"drop database",
		"delete namespace",
		"shutdown -h",
		"kill -9 1",
		"mkfs",
	})
}

// BuildPipeline declares the incident chain:
// triage -> log_analyzer -> root_cause -> remediation -> reporter.
func BuildPipeline(registry *tool.Registry) (*pipeline.Node, error) {
	builder := pipeline.NewBuilder(registry)

	builder.Add(pipeline.Spec{
		Name: "triage",
		Directive: "Assess the firing alerts, identify the most impacted service, and " +
			"hand off to the log analyzer with the services to investigate.",
		Tools:          []string{"fetch_active_alerts"},
		Successors:     []string{"log_analyzer"},
		InputGuardrail: InputGuardrail(),
	})

	builder.Add(pipeline.Spec{
		Name: "log_analyzer",
		Directive: "Pull error and warning logs for the implicated services, identify " +
			"failure patterns, and hand the evidence to root cause analysis.",
		Tools:      []string{"query_logs", "check_metrics"},
		Successors: []string{"root_cause"},
	})

	builder.Add(pipeline.Spec{
		Name: "root_cause",
		Directive: "Form a root-cause hypothesis from the evidence, test it with " +
			"correlation, and hand the confirmed cause to remediation.",
		Tools:      []string{"correlate_evidence", "check_metrics"},
		Successors: []string{"remediation"},
	})

	builder.Add(pipeline.Spec{
		Name: "remediation",
		Directive: "Propose the smallest safe remediation for the confirmed root cause. " +
			"Never propose destructive commands. Hand the proposal to the reporter.",
		Tools:           []string{"propose_remediation"},
		Successors:      []string{"reporter"},
		OutputGuardrail: RemediationGuardrail(),
	})

	builder.Add(pipeline.Spec{
		Name: "reporter",
		Directive: "Write the incident report: timeline, impact, root cause, remediation " +
			"proposed, and follow-ups.",
	})

	return builder.Build("triage")
}

// Script is the deterministic decision sequence for the offline provider:
// the checkout latency incident traces back to an exhausted connection pool
// against a slow payment gateway.
func Script() provider.Script {
	return provider.Script{
		"triage": {
			provider.ToolCalls(provider.Call("fetch_active_alerts", nil)),
			provider.Handoff("log_analyzer",
				"Two firing alerts on checkout-api (critical p99 latency, 5xx rate). "+
					"Investigate checkout-api and its payment dependency."),
		},
		"log_analyzer": {
			provider.ToolCalls(
				provider.Call("query_logs", map[string]any{"service": "checkout-api", "level": "error"}),
				provider.Call("query_logs", map[string]any{"service": "payments-gw", "level": "error"}),
			),
			provider.ToolCalls(
				provider.Call("check_metrics", map[string]any{"service": "checkout-api"}),
			),
			provider.Handoff("root_cause",
				"checkout-api shows payment call timeouts and an exhausted connection "+
					"pool; payments-gw shows slow TLS handshakes. Metrics confirm severe "+
					"latency deviation on both services."),
		},
		"root_cause": {
			provider.ToolCalls(
				provider.Call("correlate_evidence", map[string]any{
					"hypothesis": "payment gateway latency exhausted the checkout connection pool",
				}),
			),
			provider.Handoff("remediation",
				"Confirmed with high confidence: payments-gw latency caused timeout "+
					"retries that exhausted checkout-api's connection pool."),
		},
		"remediation": {
			provider.ToolCalls(
				provider.Call("propose_remediation", map[string]any{
					"action": "enable circuit breaker on payment calls and raise pool limit to 400",
					"target": "checkout-api",
					"risk":   "low",
				}),
			),
			provider.Handoff("reporter",
				"Proposed low-risk remediation: circuit breaker on payment calls plus "+
					"a temporary connection pool increase on checkout-api."),
		},
		"reporter": {
			provider.Final(
				"Incident report: at 09:14 UTC checkout-api p99 latency breached 4s with " +
					"a rising 5xx rate. Root cause: payments-gw TLS latency caused retry " +
					"storms that exhausted checkout-api's connection pool. Remediation " +
					"proposed: enable a circuit breaker on payment calls and raise the " +
					"pool limit to 400 (low risk). Follow-ups: investigate payments-gw " +
					"TLS performance and add pool saturation alerting."),
		},
	}
}
