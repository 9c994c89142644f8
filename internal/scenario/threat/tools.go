package threat

import (
	"context"
	"fmt"

	"github.com/handoff-ai/relay/internal/runctx"
	"github.com/handoff-ai/relay/internal/tool"
	"github.com/handoff-ai/relay/internal/types"
)

// RegisterTools registers the SOC tool set.
func RegisterTools(registry *tool.Registry) {
	registry.MustRegister(tool.NewFunc("fetch_security_events",
		"List the security events behind the current alert.",
		nil,
		fetchSecurityEvents))

	registry.MustRegister(tool.NewFunc("analyze_auth_logs",
		"Summarize authentication activity for a user: failures, successes, source IPs.",
		types.Object(map[string]*types.Schema{
			"user": types.String("the account to analyze"),
		}, "user"),
		analyzeAuthLogs))

	registry.MustRegister(tool.NewFunc("analyze_network_flows",
		"Analyze outbound flows from a host for beaconing and exfiltration volume.",
		types.Object(map[string]*types.Schema{
			"host": types.String("the source host to analyze"),
		}, "host"),
		analyzeNetworkFlows))

	registry.MustRegister(tool.NewFunc("lookup_ioc",
		"Look an indicator up in threat intelligence (campaign, confidence).",
		types.Object(map[string]*types.Schema{
			"value": types.String("the indicator value, e.g. an IP address"),
		}, "value"),
		lookupIOC))

	registry.MustRegister(tool.NewFunc("propose_containment",
		"Record a proposed containment action. Proposals only; nothing is executed.",
		types.Object(map[string]*types.Schema{
			"action": types.String("e.g. block_ip, disable_account, isolate_host"),
			"target": types.String("the IP, account, or host the action applies to"),
			"reason": types.String("why this action is warranted"),
		}, "action", "target", "reason"),
		proposeContainment))
}

func fetchSecurityEvents(ctx context.Context, rc *runctx.RunContext, args map[string]any) tool.Result {
	events := dataset(rc).Events
	out := make([]map[string]any, 0, len(events))
	for _, e := range events {
		out = append(out, map[string]any{
			"id":       e.ID,
			"source":   e.Source,
			"severity": e.Severity,
			"summary":  e.Summary,
		})
	}
	return tool.Ok(map[string]any{"events": out, "count": len(out)})
}

func analyzeAuthLogs(ctx context.Context, rc *runctx.RunContext, args map[string]any) tool.Result {
	user, _ := args["user"].(string)

	failures, successes := 0, 0
	sourceIPs := map[string]bool{}
	for _, e := range dataset(rc).Auth {
		if e.User != user {
			continue
		}
		sourceIPs[e.SourceIP] = true
		if e.Outcome == "failure" {
			failures += e.Count
		} else {
			successes += e.Count
		}
	}
	if failures == 0 && successes == 0 {
		return tool.NotFound(fmt.Sprintf("no auth activity for user %s", user))
	}

	ips := make([]string, 0, len(sourceIPs))
	for ip := range sourceIPs {
		ips = append(ips, ip)
	}
	verdict := "normal"
	if failures >= 10 && successes > 0 {
		verdict = "likely credential stuffing with eventual success"
	}
	return tool.Ok(map[string]any{
		"user":       user,
		"failures":   failures,
		"successes":  successes,
		"source_ips": ips,
		"assessment": verdict,
	})
}

func analyzeNetworkFlows(ctx context.Context, rc *runctx.RunContext, args map[string]any) tool.Result {
	host, _ := args["host"].(string)

	var flows []map[string]any
	var suspicious []string
	for _, f := range dataset(rc).Flows {
		if f.SourceHost != host {
			continue
		}
		entry := map[string]any{
			"dest_ip":   f.DestIP,
			"dest_port": f.DestPort,
			"bytes_out": f.BytesOut,
			"periodic":  f.Periodic,
		}
		if f.Periodic && f.BytesOut > 100*1024*1024 {
			entry["assessment"] = "beaconing with high-volume exfiltration"
			suspicious = append(suspicious, f.DestIP)
		}
		flows = append(flows, entry)
	}
	if len(flows) == 0 {
		return tool.NotFound(fmt.Sprintf("no flows recorded for host %s", host))
	}
	return tool.Ok(map[string]any{
		"host":             host,
		"flows":            flows,
		"suspicious_dests": suspicious,
	})
}

func lookupIOC(ctx context.Context, rc *runctx.RunContext, args map[string]any) tool.Result {
	value, _ := args["value"].(string)
	ioc, ok := dataset(rc).Indicator(value)
	if !ok {
		return tool.Ok(map[string]any{"value": value, "known": false})
	}
	return tool.Ok(map[string]any{
		"value":      ioc.Value,
		"known":      true,
		"type":       ioc.Type,
		"campaign":   ioc.Campaign,
		"confidence": ioc.Confidence,
	})
}

func proposeContainment(ctx context.Context, rc *runctx.RunContext, args map[string]any) tool.Result {
	actionKind, _ := args["action"].(string)
	target, _ := args["target"].(string)
	reason, _ := args["reason"].(string)

	switch actionKind {
	case "block_ip", "disable_account", "isolate_host":
	default:
		return tool.InvalidArgs(fmt.Sprintf("unsupported containment action %q", actionKind))
	}

	action := rc.AppendAction(ctx, "propose_containment",
		fmt.Sprintf("%s proposed for %s", actionKind, target),
		map[string]any{"action": actionKind, "target": target, "reason": reason})
	return tool.Ok(map[string]any{
		"containment_id": action.ID.String(),
		"action":         actionKind,
		"target":         target,
		"status":         "proposed",
	})
}
