package builtin

import (
	"context"
	"fmt"
	"regexp"

	"github.com/handoff-ai/relay/internal/guardrail"
	"github.com/handoff-ai/relay/internal/runctx"
)

// PIIPattern identifies a predefined PII detection pattern.
type PIIPattern string

const (
	PIIPatternSSN        PIIPattern = "ssn"
	PIIPatternEmail      PIIPattern = "email"
	PIIPatternPhone      PIIPattern = "phone"
	PIIPatternCreditCard PIIPattern = "credit_card"
)

// Predefined PII regex patterns.
var piiPatterns = map[PIIPattern]*regexp.Regexp{
	PIIPatternSSN:        regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),
	PIIPatternEmail:      regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`),
	PIIPatternPhone:      regexp.MustCompile(`(?:\+?1[-.\s]?)?\(?[0-9]{3}\)?[-.\s]?[0-9]{3}[-.\s]?[0-9]{4}\b`),
	PIIPatternCreditCard: regexp.MustCompile(`\b\d{4}[\s-]?\d{4}[\s-]?\d{4}[\s-]?\d{4}\b`),
}

// PIIDetector blocks candidate text containing personally identifiable
// information such as payment-card-like digit runs or SSNs.
type PIIDetector struct {
	name     string
	patterns map[PIIPattern]*regexp.Regexp
}

// NewPIIDetector creates a PII detector for the given pattern set.
// If no patterns are specified, all built-in patterns are enabled.
func NewPIIDetector(enabled ...PIIPattern) *PIIDetector {
	detector := &PIIDetector{
		name:     "pii-detector",
		patterns: make(map[PIIPattern]*regexp.Regexp),
	}

	if len(enabled) == 0 {
		for pattern, regex := range piiPatterns {
			detector.patterns[pattern] = regex
		}
		return detector
	}

	for _, pattern := range enabled {
		if regex, ok := piiPatterns[pattern]; ok {
			detector.patterns[pattern] = regex
		}
	}
	return detector
}

// Name returns the name of this guardrail.
func (p *PIIDetector) Name() string {
	return p.name
}

// Check blocks when any enabled PII pattern matches the content.
func (p *PIIDetector) Check(ctx context.Context, rc *runctx.RunContext, content string) guardrail.Result {
	// Deterministic iteration: check patterns in a fixed order.
	for _, pattern := range []PIIPattern{PIIPatternCreditCard, PIIPatternSSN, PIIPatternEmail, PIIPatternPhone} {
		regex, enabled := p.patterns[pattern]
		if !enabled {
			continue
		}
		if regex.MatchString(content) {
			return guardrail.Block(fmt.Sprintf("content contains %s-like data and must not be exposed", pattern))
		}
	}
	return guardrail.Pass()
}
