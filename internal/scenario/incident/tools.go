package incident

import (
	"context"
	"fmt"
	"strings"

	"github.com/handoff-ai/relay/internal/runctx"
	"github.com/handoff-ai/relay/internal/tool"
	"github.com/handoff-ai/relay/internal/types"
)

// RegisterTools registers the incident-response tool set.
func RegisterTools(registry *tool.Registry) {
	registry.MustRegister(tool.NewFunc("fetch_active_alerts",
		"List currently firing alerts with service, severity, and summary.",
		nil,
		fetchActiveAlerts))

	registry.MustRegister(tool.NewFunc("query_logs",
		"Query recent log lines for a service, optionally filtered by level.",
		types.Object(map[string]*types.Schema{
			"service": types.String("service name, e.g. checkout-api"),
			"level":   types.String("optional level filter: error, warn, info"),
		}, "service"),
		queryLogs))

	registry.MustRegister(tool.NewFunc("check_metrics",
		"Compare a service's current metrics against baseline and flag deviations.",
		types.Object(map[string]*types.Schema{
			"service": types.String("service name"),
		}, "service"),
		checkMetrics))

	registry.MustRegister(tool.NewFunc("correlate_evidence",
		"Correlate alerts, logs, and metric deviations into a ranked cause hypothesis.",
		types.Object(map[string]*types.Schema{
			"hypothesis": types.String("the suspected root cause to test"),
		}, "hypothesis"),
		correlateEvidence))

	registry.MustRegister(tool.NewFunc("propose_remediation",
		"Record a proposed remediation step. Proposals only; nothing is executed.",
		types.Object(map[string]*types.Schema{
			"action": types.String("the remediation command or change"),
			"target": types.String("the service or component it applies to"),
			"risk":   types.String("low, medium, or high"),
		}, "action", "target", "risk"),
		proposeRemediation))
}

func fetchActiveAlerts(ctx context.Context, rc *runctx.RunContext, args map[string]any) tool.Result {
	active := dataset(rc).ActiveAlerts()
	out := make([]map[string]any, 0, len(active))
	for _, a := range active {
		out = append(out, map[string]any{
			"id":       a.ID,
			"service":  a.Service,
			"severity": a.Severity,
			"summary":  a.Summary,
		})
	}
	return tool.Ok(map[string]any{"alerts": out, "count": len(out)})
}

func queryLogs(ctx context.Context, rc *runctx.RunContext, args map[string]any) tool.Result {
	service, _ := args["service"].(string)
	level, _ := args["level"].(string)

	var lines []map[string]any
	for _, line := range dataset(rc).Logs {
		if line.Service != service {
			continue
		}
		if level != "" && line.Level != level {
			continue
		}
		lines = append(lines, map[string]any{"level": line.Level, "message": line.Message})
	}
	if len(lines) == 0 {
		return tool.NotFound(fmt.Sprintf("no log lines for service %s", service))
	}
	return tool.Ok(map[string]any{"service": service, "lines": lines})
}

func checkMetrics(ctx context.Context, rc *runctx.RunContext, args map[string]any) tool.Result {
	service, _ := args["service"].(string)

	var deviations []map[string]any
	for _, m := range dataset(rc).Metrics {
		if m.Service != service {
			continue
		}
		entry := map[string]any{
			"name":     m.Name,
			"value":    m.Value,
			"baseline": m.Baseline,
		}
		if m.Baseline > 0 && m.Value > 3*m.Baseline {
			entry["deviation"] = "severe"
		}
		deviations = append(deviations, entry)
	}
	if len(deviations) == 0 {
		return tool.NotFound(fmt.Sprintf("no metrics for service %s", service))
	}
	return tool.Ok(map[string]any{"service": service, "metrics": deviations})
}

func correlateEvidence(ctx context.Context, rc *runctx.RunContext, args map[string]any) tool.Result {
	hypothesis, _ := args["hypothesis"].(string)
	ds := dataset(rc)

	// Count supporting signals: matching error logs and severe metric deviations.
	support := 0
	lower := strings.ToLower(hypothesis)
	for _, line := range ds.Logs {
		if line.Level == "error" && containsAnyWord(lower, strings.ToLower(line.Message)) {
			support++
		}
	}
	for _, m := range ds.Metrics {
		if m.Baseline > 0 && m.Value > 3*m.Baseline {
			support++
		}
	}

	confidence := "low"
	switch {
	case support >= 4:
		confidence = "high"
	case support >= 2:
		confidence = "medium"
	}
	return tool.Ok(map[string]any{
		"hypothesis":         hypothesis,
		"supporting_signals": support,
		"confidence":         confidence,
	})
}

// containsAnyWord reports whether any word of needle appears in haystack.
func containsAnyWord(needle, haystack string) bool {
	for _, word := range strings.Fields(needle) {
		if len(word) >= 4 && strings.Contains(haystack, word) {
			return true
		}
	}
	return false
}

func proposeRemediation(ctx context.Context, rc *runctx.RunContext, args map[string]any) tool.Result {
	actionText, _ := args["action"].(string)
	target, _ := args["target"].(string)
	risk, _ := args["risk"].(string)

	switch risk {
	case "low", "medium", "high":
	default:
		return tool.InvalidArgs(fmt.Sprintf("unknown risk level %q", risk))
	}

	action := rc.AppendAction(ctx, "propose_remediation",
		fmt.Sprintf("remediation proposed for %s: %s", target, actionText),
		map[string]any{"action": actionText, "target": target, "risk": risk})
	return tool.Ok(map[string]any{
		"remediation_id": action.ID.String(),
		"status":         "proposed",
		"risk":           risk,
	})
}
