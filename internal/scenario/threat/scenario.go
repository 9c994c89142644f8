package threat

import (
	"github.com/handoff-ai/relay/internal/guardrail"
	"github.com/handoff-ai/relay/internal/guardrail/builtin"
	"github.com/handoff-ai/relay/internal/pipeline"
	"github.com/handoff-ai/relay/internal/provider"
	"github.com/handoff-ai/relay/internal/runctx"
	"github.com/handoff-ai/relay/internal/scenario"
	"github.com/handoff-ai/relay/internal/tool"
)

// Scenario is the cybersecurity threat detection demo pipeline.
type Scenario struct{}

var _ scenario.Scenario = Scenario{}

// Name returns the scenario identifier.
func (Scenario) Name() string { return "threat" }

// Description returns the one-line scenario summary.
func (Scenario) Description() string {
	return "threat detection: alert intake, auth and network analysis, intel, containment, SOC report"
}

// Setup assembles the threat pipeline, dataset, and offline script.
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
		Input:    ds.Alert,
		Data:     ds,
		Script:   Script(),
		Registry: registry,
	}, nil
}

// InputGuardrail blocks intake when the snapshot carries no security events.
func InputGuardrail() guardrail.Guardrail {
	return builtin.NewMinRecords("threat-input", 1, func(rc *runctx.RunContext) int {
		ds := dataset(rc)
		if ds == nil {
			return 0
		}
		return len(ds.Events)
	})
}

// ContainmentGuardrail blocks containment handoffs proposing indiscriminate
// or business-halting actions.
func ContainmentGuardrail() guardrail.Guardrail {
	return builtin.NewPhraseDenylist("containment-safety", []string{
		"disable all accounts",
		"block 0.0.0.0/0",
		"isolate all hosts",
		"shut down the domain controller",
		"wipe",
	})
}

// BuildPipeline declares the threat chain:
// intake -> auth_analyzer -> network_analyzer -> threat_intel -> containment -> soc_reporter.
func BuildPipeline(registry *tool.Registry) (*pipeline.Node, error) {
	builder := pipeline.NewBuilder(registry)

	builder.Add(pipeline.Spec{
		Name: "intake",
		Directive: "Review the security events behind the alert, identify the accounts " +
			"and hosts involved, and hand off to the auth analyzer.",
		Tools:          []string{"fetch_security_events"},
		Successors:     []string{"auth_analyzer"},
		InputGuardrail: InputGuardrail(),
	})

	builder.Add(pipeline.Spec{
		Name: "auth_analyzer",
		Directive: "Analyze authentication activity for the implicated accounts and " +
			"assess whether credentials were compromised. Hand your assessment to the " +
			"network analyzer.",
		Tools:      []string{"analyze_auth_logs"},
		Successors: []string{"network_analyzer"},
	})

	builder.Add(pipeline.Spec{
		Name: "network_analyzer",
		Directive: "Analyze outbound flows from the implicated hosts for beaconing and " +
			"exfiltration. Hand the suspicious destinations to threat intel.",
		Tools:      []string{"analyze_network_flows"},
		Successors: []string{"threat_intel"},
	})

	builder.Add(pipeline.Spec{
		Name: "threat_intel",
		Directive: "Enrich the suspicious indicators against threat intelligence and " +
			"classify the campaign. Hand the enriched picture to containment.",
		Tools:      []string{"lookup_ioc"},
		Successors: []string{"containment"},
	})

	builder.Add(pipeline.Spec{
		Name: "containment",
		Directive: "Propose the narrowest containment actions that stop the threat: " +
			"scoped to specific IPs, accounts, or hosts, never fleet-wide. Hand the " +
			"proposals to the SOC reporter.",
		Tools:           []string{"propose_containment"},
		Successors:      []string{"soc_reporter"},
		OutputGuardrail: ContainmentGuardrail(),
	})

	builder.Add(pipeline.Spec{
		Name: "soc_reporter",
		Directive: "Write the SOC analyst summary: what happened, evidence, campaign " +
			"attribution, containment proposed, and recommended follow-ups.",
	})

	return builder.Build("intake")
}

// Script is the deterministic decision sequence for the offline provider:
// a compromised service account leads to exfiltration from build-07 toward
// known campaign infrastructure.
func Script() provider.Script {
	return provider.Script{
		"intake": {
			provider.ToolCalls(provider.Call("fetch_security_events", nil)),
			provider.Handoff("auth_analyzer",
				"High-severity events around svc-backup: login failures then a success "+
					"from 203.0.113.77, plus a suspicious scheduled task on build-07."),
		},
		"auth_analyzer": {
			provider.ToolCalls(
				provider.Call("analyze_auth_logs", map[string]any{"user": "svc-backup"}),
			),
			provider.Handoff("network_analyzer",
				"svc-backup shows 40 failures then a success from 203.0.113.77: likely "+
					"credential stuffing with eventual success. Check build-07's outbound traffic."),
		},
		"network_analyzer": {
			provider.ToolCalls(
				provider.Call("analyze_network_flows", map[string]any{"host": "build-07"}),
			),
			provider.Handoff("threat_intel",
				"build-07 is beaconing to 198.51.100.23 with ~700MB outbound: "+
					"high-volume exfiltration. Enrich 198.51.100.23 and 203.0.113.77."),
		},
		"threat_intel": {
			provider.ToolCalls(
				provider.Call("lookup_ioc", map[string]any{"value": "198.51.100.23"}),
				provider.Call("lookup_ioc", map[string]any{"value": "203.0.113.77"}),
			),
			provider.Handoff("containment",
				"198.51.100.23 is known SilverTorrent exfil infrastructure (high "+
					"confidence); 203.0.113.77 is a credential stuffing pool. Contain "+
					"svc-backup, build-07, and both IPs."),
		},
		"containment": {
			provider.ToolCalls(
				provider.Call("propose_containment", map[string]any{
					"action": "disable_account", "target": "svc-backup",
					"reason": "credentials compromised via stuffing",
				}),
				provider.Call("propose_containment", map[string]any{
					"action": "isolate_host", "target": "build-07",
					"reason": "active exfiltration to known campaign infrastructure",
				}),
				provider.Call("propose_containment", map[string]any{
					"action": "block_ip", "target": "198.51.100.23",
					"reason": "SilverTorrent exfil endpoint",
				}),
			),
			provider.Handoff("soc_reporter",
				"Proposed: disable svc-backup, isolate build-07, block 198.51.100.23. "+
					"All actions scoped to confirmed indicators."),
		},
		"soc_reporter": {
			provider.Final(
				"SOC summary: svc-backup was compromised via credential stuffing from " +
					"203.0.113.77, after which build-07 began beaconing to SilverTorrent " +
					"infrastructure at 198.51.100.23 with roughly 700MB exfiltrated. " +
					"Containment proposed: disable svc-backup, isolate build-07, and " +
					"block 198.51.100.23. Follow-ups: rotate service credentials, audit " +
					"scheduled tasks on build hosts, and review egress alerting thresholds."),
		},
	}
}
