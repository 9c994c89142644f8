package browser

import (
	"context"
	"fmt"

	"github.com/handoff-ai/relay/internal/runctx"
	"github.com/handoff-ai/relay/internal/tool"
	"github.com/handoff-ai/relay/internal/types"
)

// RegisterTools registers the browser automation tool set.
func RegisterTools(registry *tool.Registry) {
	registry.MustRegister(tool.NewFunc("open_page",
		"Open a page by URL and return its title.",
		types.Object(map[string]*types.Schema{
			"url": types.String("absolute URL to open"),
		}, "url"),
		openPage))

	registry.MustRegister(tool.NewFunc("observe_page",
		"List the interactive and text elements on a page.",
		types.Object(map[string]*types.Schema{
			"url": types.String("URL of the page to observe"),
		}, "url"),
		observePage))

	registry.MustRegister(tool.NewFunc("click_element",
		"Propose clicking an element; returns the navigation target if it has one.",
		types.Object(map[string]*types.Schema{
			"url":      types.String("URL of the page the element is on"),
			"selector": types.String("CSS selector of the element"),
		}, "url", "selector"),
		clickElement))

	registry.MustRegister(tool.NewFunc("extract_content",
		"Extract the text content of an element.",
		types.Object(map[string]*types.Schema{
			"url":      types.String("URL of the page the element is on"),
			"selector": types.String("CSS selector of the element"),
		}, "url", "selector"),
		extractContent))
}

func openPage(ctx context.Context, rc *runctx.RunContext, args map[string]any) tool.Result {
	url, _ := args["url"].(string)
	page, ok := dataset(rc).Page(url)
	if !ok {
		return tool.NotFound(fmt.Sprintf("page %s does not resolve", url))
	}

	rc.AppendAction(ctx, "open_page", fmt.Sprintf("opened %s", url),
		map[string]any{"url": url})
	return tool.Ok(map[string]any{"url": page.URL, "title": page.Title})
}

func observePage(ctx context.Context, rc *runctx.RunContext, args map[string]any) tool.Result {
	url, _ := args["url"].(string)
	page, ok := dataset(rc).Page(url)
	if !ok {
		return tool.NotFound(fmt.Sprintf("page %s does not resolve", url))
	}

	elements := make([]map[string]any, 0, len(page.Elements))
	for _, e := range page.Elements {
		elements = append(elements, map[string]any{
			"selector": e.Selector,
			"kind":     e.Kind,
			"text":     e.Text,
		})
	}
	return tool.Ok(map[string]any{"url": url, "elements": elements})
}

func clickElement(ctx context.Context, rc *runctx.RunContext, args map[string]any) tool.Result {
	url, _ := args["url"].(string)
	selector, _ := args["selector"].(string)

	page, ok := dataset(rc).Page(url)
	if !ok {
		return tool.NotFound(fmt.Sprintf("page %s does not resolve", url))
	}
	element, ok := page.Element(selector)
	if !ok {
		return tool.NotFound(fmt.Sprintf("no element %q on %s", selector, url))
	}
	if element.Kind != "link" && element.Kind != "button" {
		return tool.InvalidArgs(fmt.Sprintf("element %q is not clickable (kind %s)", selector, element.Kind))
	}

	rc.AppendAction(ctx, "click_element",
		fmt.Sprintf("clicked %q on %s", selector, url),
		map[string]any{"url": url, "selector": selector})
	return tool.Ok(map[string]any{
		"clicked":    selector,
		"navigates":  element.Target != "",
		"target_url": element.Target,
	})
}

func extractContent(ctx context.Context, rc *runctx.RunContext, args map[string]any) tool.Result {
	url, _ := args["url"].(string)
	selector, _ := args["selector"].(string)

	page, ok := dataset(rc).Page(url)
	if !ok {
		return tool.NotFound(fmt.Sprintf("page %s does not resolve", url))
	}
	element, ok := page.Element(selector)
	if !ok {
		return tool.NotFound(fmt.Sprintf("no element %q on %s", selector, url))
	}
	return tool.Ok(map[string]any{
		"selector": selector,
		"text":     element.Text,
	})
}
