package research

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/handoff-ai/relay/internal/runctx"
	"github.com/handoff-ai/relay/internal/tool"
	"github.com/handoff-ai/relay/internal/types"
)

// RegisterTools registers the research tool set.
func RegisterTools(registry *tool.Registry) {
	registry.MustRegister(tool.NewFunc("search_sources",
		"Search the source corpus by keywords, ranked by credibility.",
		types.Object(map[string]*types.Schema{
			"query": types.String("search keywords"),
		}, "query"),
		searchSources))

	registry.MustRegister(tool.NewFunc("assess_source",
		"Fetch a source's full record: kind, year, credibility score, summary.",
		types.Object(map[string]*types.Schema{
			"source_id": types.String("source ID, e.g. SRC-01"),
		}, "source_id"),
		assessSource))

	registry.MustRegister(tool.NewFunc("record_outline",
		"Record the planned report outline as an ordered list of section titles.",
		types.Object(map[string]*types.Schema{
			"sections": {Type: "array", Items: types.String("section title"),
				Description: "ordered section titles"},
		}, "sections"),
		recordOutline))

	registry.MustRegister(tool.NewFunc("format_citations",
		"Format a set of source IDs as a numbered citation list.",
		types.Object(map[string]*types.Schema{
			"source_ids": {Type: "array", Items: types.String("source ID"),
				Description: "sources to cite, in citation order"},
		}, "source_ids"),
		formatCitations))
}

func searchSources(ctx context.Context, rc *runctx.RunContext, args map[string]any) tool.Result {
	query, _ := args["query"].(string)
	terms := strings.Fields(strings.ToLower(query))

	type hit struct {
		source Source
		score  int
	}
	var hits []hit
	for _, s := range dataset(rc).Sources {
		haystack := strings.ToLower(s.Title + " " + strings.Join(s.Keywords, " "))
		score := 0
		for _, term := range terms {
			if strings.Contains(haystack, term) {
				score++
			}
		}
		if score > 0 {
			hits = append(hits, hit{source: s, score: score})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].source.Credibility > hits[j].source.Credibility
	})

	out := make([]map[string]any, 0, len(hits))
	for _, h := range hits {
		out = append(out, map[string]any{
			"id":          h.source.ID,
			"title":       h.source.Title,
			"kind":        h.source.Kind,
			"credibility": h.source.Credibility,
		})
	}
	return tool.Ok(map[string]any{"results": out, "count": len(out)})
}

func assessSource(ctx context.Context, rc *runctx.RunContext, args map[string]any) tool.Result {
	id, _ := args["source_id"].(string)
	source, ok := dataset(rc).Source(id)
	if !ok {
		return tool.NotFound(fmt.Sprintf("source %s not in corpus", id))
	}
	return tool.Ok(map[string]any{
		"id":          source.ID,
		"title":       source.Title,
		"url":         source.URL,
		"kind":        source.Kind,
		"year":        source.Year,
		"credibility": source.Credibility,
		"summary":     source.Summary,
	})
}

func recordOutline(ctx context.Context, rc *runctx.RunContext, args map[string]any) tool.Result {
	raw, _ := args["sections"].([]any)
	if len(raw) == 0 {
		return tool.InvalidArgs("outline needs at least one section")
	}
	sections := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok && s != "" {
			sections = append(sections, s)
		}
	}

	rc.AppendAction(ctx, "record_outline",
		fmt.Sprintf("outline with %d section(s)", len(sections)),
		map[string]any{"sections": sections})
	return tool.Ok(map[string]any{"sections": sections})
}

func formatCitations(ctx context.Context, rc *runctx.RunContext, args map[string]any) tool.Result {
	raw, _ := args["source_ids"].([]any)
	if len(raw) == 0 {
		return tool.InvalidArgs("citation list cannot be empty")
	}

	ds := dataset(rc)
	citations := make([]string, 0, len(raw))
	for i, item := range raw {
		id, _ := item.(string)
		source, ok := ds.Source(id)
		if !ok {
			return tool.NotFound(fmt.Sprintf("source %s not in corpus", id))
		}
		citations = append(citations,
			fmt.Sprintf("[%d] %s (%d). %s", i+1, source.Title, source.Year, source.URL))
	}
	return tool.Ok(map[string]any{"citations": citations})
}
