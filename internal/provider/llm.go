package provider

import (
	"context"
	"log/slog"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"golang.org/x/time/rate"

	"github.com/handoff-ai/relay/internal/types"
)

// LLMOptions configures the LLM-backed provider. BaseURL accepts any
// OpenAI-compatible endpoint (the demos were authored against OpenRouter).
type LLMOptions struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64

	// RequestsPerSecond paces provider round-trips; 0 disables pacing.
	RequestsPerSecond float64

	Logger *slog.Logger
}

// LLM is a reasoning provider backed by an OpenAI-compatible chat model.
// Decisions are requested as structured JSON and parsed tolerantly, since
// models occasionally wrap JSON in markdown fences.
type LLM struct {
	model       llms.Model
	temperature float64
	limiter     *rate.Limiter
	logger      *slog.Logger
}

// NewLLM creates an LLM provider from the given options.
func NewLLM(opts LLMOptions) (*LLM, error) {
	clientOpts := []openai.Option{
		openai.WithToken(opts.APIKey),
		openai.WithModel(opts.Model),
	}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, openai.WithBaseURL(opts.BaseURL))
	}

	model, err := openai.New(clientOpts...)
	if err != nil {
		return nil, types.WrapError(types.PROVIDER_CALL_FAILED, "failed to create LLM client", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}

	return &LLM{
		model:       model,
		temperature: opts.Temperature,
		limiter:     limiter,
		logger:      logger,
	}, nil
}

// Decide renders the request into a prompt, calls the model, and parses the
// returned decision.
func (l *LLM) Decide(ctx context.Context, req Request) (*Decision, error) {
	if l.limiter != nil {
		if err := l.limiter.Wait(ctx); err != nil {
			return nil, types.WrapError(types.PROVIDER_CALL_FAILED, "rate limiter wait cancelled", err)
		}
	}

	prompt := renderPrompt(req)

	l.logger.Debug("provider call starting", "node", req.Node, "prompt_chars", len(prompt))

	response, err := llms.GenerateFromSinglePrompt(ctx, l.model, prompt,
		llms.WithTemperature(l.temperature),
	)
	if err != nil {
		return nil, types.WrapError(types.PROVIDER_CALL_FAILED, "LLM completion failed", err)
	}

	jsonStr, err := ExtractJSON(response)
	if err != nil {
		return nil, types.WrapError(types.PROVIDER_INVALID_DECISION, "no decision JSON in LLM response", err)
	}

	decision, err := ParseDecision(jsonStr)
	if err != nil {
		return nil, types.WrapError(types.PROVIDER_INVALID_DECISION, "malformed decision from LLM", err)
	}

	l.logger.Debug("provider decision", "node", req.Node, "decision", decision.String())

	return decision, nil
}
