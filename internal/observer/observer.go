// Package observer defines the lifecycle-observation contract for pipeline
// runs. Observers receive ordered, synchronous notifications and must never
// affect control flow; panics raised by an observer are isolated.
package observer

import (
	"log/slog"

	"github.com/handoff-ai/relay/internal/tool"
)

// Observer receives ordered lifecycle notifications for one run. Callbacks
// are invoked synchronously from the runner goroutine in event order: a
// tool-start is always paired with a later tool-end before the next node
// event.
type Observer interface {
	// OnNodeStart fires when a node becomes active, after its input
	// guardrail (if any) passed.
	OnNodeStart(node, input string)

	// OnToolStart fires before a requested tool call is dispatched.
	OnToolStart(node, toolName string, args map[string]any)

	// OnToolEnd fires after a tool call completed, with its structured result.
	OnToolEnd(node, toolName string, result tool.Result)

	// OnHandoff fires when control transfers from one node to a successor.
	OnHandoff(from, to, message string)

	// OnNodeEnd fires when a node ceases to be active (handoff accepted,
	// terminal output accepted, or run failure while active).
	OnNodeEnd(node string)
}

// Nop is an Observer that ignores all notifications.
type Nop struct{}

func (Nop) OnNodeStart(node, input string)                          {}
func (Nop) OnToolStart(node, toolName string, args map[string]any)  {}
func (Nop) OnToolEnd(node, toolName string, result tool.Result)     {}
func (Nop) OnHandoff(from, to, message string)                      {}
func (Nop) OnNodeEnd(node string)                                   {}

// Multi fans notifications out to several observers in order.
type Multi []Observer

func (m Multi) OnNodeStart(node, input string) {
	for _, o := range m {
		o.OnNodeStart(node, input)
	}
}

func (m Multi) OnToolStart(node, toolName string, args map[string]any) {
	for _, o := range m {
		o.OnToolStart(node, toolName, args)
	}
}

func (m Multi) OnToolEnd(node, toolName string, result tool.Result) {
	for _, o := range m {
		o.OnToolEnd(node, toolName, result)
	}
}

func (m Multi) OnHandoff(from, to, message string) {
	for _, o := range m {
		o.OnHandoff(from, to, message)
	}
}

func (m Multi) OnNodeEnd(node string) {
	for _, o := range m {
		o.OnNodeEnd(node)
	}
}

// Safe wraps an observer so that panics in its callbacks are recovered and
// logged instead of aborting the run.
func Safe(inner Observer, logger *slog.Logger) Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return &safeObserver{inner: inner, logger: logger}
}

type safeObserver struct {
	inner  Observer
	logger *slog.Logger
}

func (s *safeObserver) guard(callback string) {
	if r := recover(); r != nil {
		s.logger.Warn("observer panic isolated", "callback", callback, "panic", r)
	}
}

func (s *safeObserver) OnNodeStart(node, input string) {
	defer s.guard("OnNodeStart")
	s.inner.OnNodeStart(node, input)
}

func (s *safeObserver) OnToolStart(node, toolName string, args map[string]any) {
	defer s.guard("OnToolStart")
	s.inner.OnToolStart(node, toolName, args)
}

func (s *safeObserver) OnToolEnd(node, toolName string, result tool.Result) {
	defer s.guard("OnToolEnd")
	s.inner.OnToolEnd(node, toolName, result)
}

func (s *safeObserver) OnHandoff(from, to, message string) {
	defer s.guard("OnHandoff")
	s.inner.OnHandoff(from, to, message)
}

func (s *safeObserver) OnNodeEnd(node string) {
	defer s.guard("OnNodeEnd")
	s.inner.OnNodeEnd(node)
}

// Slog is an Observer that writes structured log lines for every lifecycle
// event, in the spirit of the original demos' console hooks.
type Slog struct {
	Logger *slog.Logger
}

// NewSlog creates a logging observer. A nil logger uses slog.Default().
func NewSlog(logger *slog.Logger) *Slog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Slog{Logger: logger}
}

func (s *Slog) OnNodeStart(node, input string) {
	s.Logger.Info("node started", "node", node, "input_chars", len(input))
}

func (s *Slog) OnToolStart(node, toolName string, args map[string]any) {
	s.Logger.Info("tool call starting", "node", node, "tool", toolName)
}

func (s *Slog) OnToolEnd(node, toolName string, result tool.Result) {
	s.Logger.Info("tool call finished", "node", node, "tool", toolName, "ok", result.OK())
}

func (s *Slog) OnHandoff(from, to, message string) {
	s.Logger.Info("handoff", "from", from, "to", to)
}

func (s *Slog) OnNodeEnd(node string) {
	s.Logger.Info("node finished", "node", node)
}
