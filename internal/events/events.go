// Package events provides a small in-process event bus used to stream
// pipeline lifecycle events to interested consumers (the CLI's live
// progress view). Publishing never blocks; slow subscribers drop events.
package events

import (
	"time"

	"github.com/handoff-ai/relay/internal/observer"
	"github.com/handoff-ai/relay/internal/tool"
	"github.com/handoff-ai/relay/internal/types"
)

// EventType identifies a pipeline lifecycle event.
type EventType string

const (
	EventNodeStarted  EventType = "node_started"
	EventToolStarted  EventType = "tool_started"
	EventToolFinished EventType = "tool_finished"
	EventHandoff      EventType = "handoff"
	EventNodeFinished EventType = "node_finished"
)

// Event is one lifecycle notification flowing through the bus.
type Event struct {
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	RunID     types.ID       `json:"run_id"`
	Node      string         `json:"node,omitempty"`
	Tool      string         `json:"tool,omitempty"`
	Target    string         `json:"target,omitempty"`
	OK        bool           `json:"ok,omitempty"`
	Attrs     map[string]any `json:"attrs,omitempty"`
}

// Publisher is an observer.Observer that republishes lifecycle callbacks as
// bus events, bridging the runner's synchronous observer contract to
// asynchronous consumers.
type Publisher struct {
	bus   *Bus
	runID types.ID
}

// NewPublisher creates a publishing observer for one run.
func NewPublisher(bus *Bus, runID types.ID) *Publisher {
	return &Publisher{bus: bus, runID: runID}
}

var _ observer.Observer = (*Publisher)(nil)

func (p *Publisher) publish(event Event) {
	event.Timestamp = time.Now()
	event.RunID = p.runID
	p.bus.Publish(event)
}

func (p *Publisher) OnNodeStart(node, input string) {
	p.publish(Event{Type: EventNodeStarted, Node: node})
}

func (p *Publisher) OnToolStart(node, toolName string, args map[string]any) {
	p.publish(Event{Type: EventToolStarted, Node: node, Tool: toolName})
}

func (p *Publisher) OnToolEnd(node, toolName string, result tool.Result) {
	p.publish(Event{Type: EventToolFinished, Node: node, Tool: toolName, OK: result.OK()})
}

func (p *Publisher) OnHandoff(from, to, message string) {
	p.publish(Event{Type: EventHandoff, Node: from, Target: to})
}

func (p *Publisher) OnNodeEnd(node string) {
	p.publish(Event{Type: EventNodeFinished, Node: node})
}
