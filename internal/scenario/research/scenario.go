package research

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

// Scenario is the deep research demo pipeline.
type Scenario struct{}

var _ scenario.Scenario = Scenario{}

// Name returns the scenario identifier.
func (Scenario) Name() string { return "research" }

// Description returns the one-line scenario summary.
func (Scenario) Description() string {
	return "deep research: plan, gather and score sources, synthesize, write cited report"
}

// Setup assembles the research pipeline, corpus, and offline script.
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
		Input:    ds.Topic,
		Data:     ds,
		Script:   Script(),
		Registry: registry,
	}, nil
}

// minReportLength is the smallest acceptable final report, in characters.
const minReportLength = 200

// InputGuardrail blocks the planner when the topic is too thin to research.
func InputGuardrail() guardrail.Guardrail {
	return guardrail.NewFunc("topic-validity",
		func(ctx context.Context, rc *runctx.RunContext, content string) guardrail.Result {
			topic := strings.TrimSpace(content)
			if len(topic) < 12 {
				return guardrail.Block("topic is too short to research meaningfully")
			}
			if len(strings.Fields(topic)) < 3 {
				return guardrail.Block("topic needs at least a few words of context")
			}
			return guardrail.Pass()
		})
}

// OutputGuardrail blocks final reports that are too short or uncited.
func OutputGuardrail() guardrail.Guardrail {
	return guardrail.NewFunc("report-quality",
		func(ctx context.Context, rc *runctx.RunContext, content string) guardrail.Result {
			if len(content) < minReportLength {
				return guardrail.Block("report is shorter than the minimum acceptable length")
			}
			if !strings.Contains(content, "[1]") {
				return guardrail.Block("report has no numbered citations")
			}
			return guardrail.Pass()
		})
}

// BuildPipeline declares the research chain:
// planner -> researcher -> synthesizer -> writer.
func BuildPipeline(registry *tool.Registry) (*pipeline.Node, error) {
	builder := pipeline.NewBuilder(registry)

	builder.Add(pipeline.Spec{
		Name: "planner",
		Directive: "Decompose the research topic into two or three concrete angles, " +
			"record the planned report outline, and hand the plan to the researcher.",
		Tools:          []string{"record_outline"},
		Successors:     []string{"researcher"},
		InputGuardrail: InputGuardrail(),
	})

	builder.Add(pipeline.Spec{
		Name: "researcher",
		Directive: "Search the corpus for each planned angle, assess the most credible " +
			"sources in full, and hand the evidence to the synthesizer. Prefer sources " +
			"with credibility above 0.7.",
		Tools:      []string{"search_sources", "assess_source"},
		Successors: []string{"synthesizer"},
	})

	builder.Add(pipeline.Spec{
		Name: "synthesizer",
		Directive: "Merge the gathered evidence into coherent findings per outline " +
			"section, noting agreements and open questions, and hand the synthesis to " +
			"the writer.",
		Tools:      []string{},
		Successors: []string{"writer"},
	})

	builder.Add(pipeline.Spec{
		Name: "writer",
		Directive: "Write the final report following the outline, with numbered " +
			"citations formatted through the citation tool. The report must cite its " +
			"sources.",
		Tools:           []string{"format_citations"},
		OutputGuardrail: OutputGuardrail(),
	})

	return builder.Build("planner")
}

// Script is the deterministic decision sequence for the offline provider.
func Script() provider.Script {
	return provider.Script{
		"planner": {
			provider.ToolCalls(
				provider.Call("record_outline", map[string]any{
					"sections": []any{
						"Why LLMs hallucinate",
						"How retrieval grounding helps",
						"Measuring faithfulness in production",
					},
				}),
			),
			provider.Handoff("researcher",
				"Outline recorded. Research three angles: hallucination causes, "+
					"retrieval grounding, and faithfulness evaluation."),
		},
		"researcher": {
			provider.ToolCalls(
				provider.Call("search_sources", map[string]any{"query": "hallucination"}),
				provider.Call("search_sources", map[string]any{"query": "rag retrieval grounding"}),
			),
			provider.ToolCalls(
				provider.Call("assess_source", map[string]any{"source_id": "SRC-02"}),
				provider.Call("assess_source", map[string]any{"source_id": "SRC-01"}),
				provider.Call("assess_source", map[string]any{"source_id": "SRC-05"}),
			),
			provider.Handoff("synthesizer",
				"Best evidence: SRC-02 (hallucination taxonomy), SRC-01 (RAG "+
					"architecture), SRC-05 (faithfulness evals), with SRC-03 as an "+
					"industry perspective. All above 0.7 credibility except blogs."),
		},
		"synthesizer": {
			provider.Handoff("writer",
				"Findings: hallucination stems from ungrounded parametric generation "+
					"(SRC-02); RAG constrains generation to retrieved evidence (SRC-01); "+
					"faithfulness must be continuously measured since retrieval failures "+
					"reintroduce hallucination (SRC-05). Open question: evaluation "+
					"coverage for multi-hop queries."),
		},
		"writer": {
			provider.ToolCalls(
				provider.Call("format_citations", map[string]any{
					"source_ids": []any{"SRC-02", "SRC-01", "SRC-05"},
				}),
			),
			provider.Final(
				"RAG systems mitigate hallucination by constraining generation to " +
					"retrieved evidence rather than parametric memory. Hallucination in " +
					"open-ended generation is well documented and stems from ungrounded " +
					"decoding [1]. Retrieval-augmented architectures couple a dense " +
					"retriever with the generator so claims can be traced to source " +
					"documents [2]. In production, grounding alone is insufficient: " +
					"retrieval failures silently reintroduce hallucination, so teams " +
					"deploy automated faithfulness evaluations over live traffic [3]. " +
					"Remaining gaps include evaluation coverage for multi-hop questions.\n\n" +
					"Sources:\n" +
					"[1] Survey of Hallucination in Natural Language Generation (2022). " +
					"https://arxiv.org/abs/2202.03629\n" +
					"[2] Retrieval-Augmented Generation for Knowledge-Intensive NLP Tasks " +
					"(2020). https://arxiv.org/abs/2005.11401\n" +
					"[3] Measuring faithfulness of RAG pipelines with automated evals " +
					"(2023). https://arxiv.org/abs/2309.01431"),
		},
	}
}
