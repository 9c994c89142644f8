package provider

import (
	"encoding/json"
	"fmt"
	"strings"
)

// renderPrompt flattens a Request into the single prompt handed to the LLM.
// The wire format for decisions is JSON; the schema mirrors Decision.
func renderPrompt(req Request) string {
	var sb strings.Builder

	sb.WriteString("You are the specialist stage \"")
	sb.WriteString(req.Node)
	sb.WriteString("\" in a multi-stage pipeline.\n\n")

	sb.WriteString("## Directive\n\n")
	sb.WriteString(req.Directive)
	sb.WriteString("\n\n")

	if len(req.Tools) > 0 {
		sb.WriteString("## Available tools\n\n")
		for _, desc := range req.Tools {
			schemaJSON, _ := json.Marshal(desc.Schema)
			fmt.Fprintf(&sb, "- %s: %s\n  arguments schema: %s\n", desc.Name, desc.Description, schemaJSON)
		}
		sb.WriteString("\n")
	}

	if len(req.Handoffs) > 0 {
		sb.WriteString("## Handoff targets\n\n")
		sb.WriteString("You may hand off to exactly one of: ")
		sb.WriteString(strings.Join(req.Handoffs, ", "))
		sb.WriteString("\n\n")
	}

	if len(req.History) > 0 {
		sb.WriteString("## History\n\n")
		for _, entry := range req.History {
			switch entry.Kind {
			case HistoryInput:
				fmt.Fprintf(&sb, "[input -> %s] %s\n", entry.Node, entry.Content)
			case HistoryReasoning:
				fmt.Fprintf(&sb, "[%s reasoning] %s\n", entry.Node, entry.Content)
			case HistoryToolCall:
				resultJSON, _ := json.Marshal(entry.Result)
				fmt.Fprintf(&sb, "[%s called %s] result: %s\n", entry.Node, entry.Tool, resultJSON)
			case HistoryHandoff:
				fmt.Fprintf(&sb, "[handoff -> %s] %s\n", entry.Node, entry.Content)
			}
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Current input\n\n")
	sb.WriteString(req.Input)
	sb.WriteString("\n\n")

	sb.WriteString("## Response format\n\n")
	sb.WriteString(`Respond with a single JSON object and nothing else. Exactly one of:
{"kind":"tool_calls","reasoning":"...","tool_calls":[{"tool":"<name>","args":{...}}]}
{"kind":"handoff","reasoning":"...","target":"<successor>","message":"<payload for the next stage>"}
{"kind":"final","reasoning":"...","final":"<your complete final output>"}
`)

	if len(req.Handoffs) == 0 {
		sb.WriteString("\nThis stage is terminal: when your work is complete you MUST respond with kind \"final\".\n")
	} else {
		sb.WriteString("\nThis stage is NOT terminal: you MUST eventually respond with kind \"handoff\" to one of the listed targets. Do not respond with kind \"final\".\n")
	}

	return sb.String()
}
