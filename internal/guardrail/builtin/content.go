// Package builtin provides reusable guardrail policies shared by the demo
// scenarios: content denylists, PII detection, and input-sufficiency checks.
// The phrase lists and patterns are domain configuration; the checks
// themselves are deterministic and read-only on the run context.
package builtin

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/handoff-ai/relay/internal/guardrail"
	"github.com/handoff-ai/relay/internal/runctx"
)

// ContentFilter blocks candidate text matching any of a configured set of
// regex patterns. Patterns are pre-compiled at construction.
type ContentFilter struct {
	name     string
	patterns []*regexp.Regexp
}

// NewContentFilter creates a content filter with the given name and regex
// patterns. Returns an error if any pattern fails to compile.
func NewContentFilter(name string, patterns []string) (*ContentFilter, error) {
	cf := &ContentFilter{
		name:     name,
		patterns: make([]*regexp.Regexp, 0, len(patterns)),
	}

	for i, pattern := range patterns {
		regex, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid regex pattern at index %d: %w", i, err)
		}
		cf.patterns = append(cf.patterns, regex)
	}

	return cf, nil
}

// NewPhraseDenylist creates a content filter that blocks text containing any
// of the given phrases, case-insensitively.
func NewPhraseDenylist(name string, phrases []string) *ContentFilter {
	patterns := make([]*regexp.Regexp, 0, len(phrases))
	for _, phrase := range phrases {
		patterns = append(patterns, regexp.MustCompile(`(?i)`+regexp.QuoteMeta(phrase)))
	}
	return &ContentFilter{name: name, patterns: patterns}
}

// Name returns the name of this guardrail.
func (c *ContentFilter) Name() string {
	return c.name
}

// Check blocks when any configured pattern matches the content.
func (c *ContentFilter) Check(ctx context.Context, rc *runctx.RunContext, content string) guardrail.Result {
	var matched []string
	for _, regex := range c.patterns {
		if regex.MatchString(content) {
			matched = append(matched, regex.String())
		}
	}

	if len(matched) == 0 {
		return guardrail.Pass()
	}
	return guardrail.Block(fmt.Sprintf("matched denied pattern(s): %s", strings.Join(matched, ", ")))
}
