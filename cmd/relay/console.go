package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/handoff-ai/relay/internal/events"
	"github.com/handoff-ai/relay/internal/runctx"
	"github.com/handoff-ai/relay/internal/runner"
	"github.com/handoff-ai/relay/internal/tool"
)

// Console styles for live progress and run summaries.
var (
	nodeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	toolStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	handoffStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	headerStyle  = lipgloss.NewStyle().Bold(true)
)

// startConsole streams bus events to w until the bus is closed. The returned
// channel closes once the stream is fully drained.
func startConsole(w io.Writer, bus *events.Bus) <-chan struct{} {
	ch, cancel := bus.Subscribe(0)
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer cancel()
		for event := range ch {
			renderEvent(w, event)
		}
	}()

	return done
}

// renderEvent prints one lifecycle event as a single progress line.
func renderEvent(w io.Writer, event events.Event) {
	switch event.Type {
	case events.EventNodeStarted:
		fmt.Fprintf(w, "%s %s\n", nodeStyle.Render("▶"), nodeStyle.Render(event.Node))
	case events.EventToolStarted:
		fmt.Fprintf(w, "  %s %s\n", dimStyle.Render("·"), toolStyle.Render(event.Tool))
	case events.EventToolFinished:
		mark := okStyle.Render("✓")
		if !event.OK {
			mark = failStyle.Render("✗")
		}
		fmt.Fprintf(w, "  %s %s\n", mark, toolStyle.Render(event.Tool))
	case events.EventHandoff:
		fmt.Fprintf(w, "%s %s -> %s\n", handoffStyle.Render("⇒"), event.Node, event.Target)
	case events.EventNodeFinished:
		fmt.Fprintf(w, "%s\n", dimStyle.Render("  done "+event.Node))
	}
}

// printSummary renders the final run outcome.
func printSummary(w io.Writer, name string, result *runner.RunResult, rc *runctx.RunContext, registry *tool.Registry) {
	fmt.Fprintln(w)
	if result.Completed() {
		fmt.Fprintf(w, "%s %s\n", okStyle.Render("✓"), headerStyle.Render("run completed: "+name))
	} else {
		fmt.Fprintf(w, "%s %s\n", failStyle.Render("✗"), headerStyle.Render("run failed: "+name))
		fmt.Fprintf(w, "  %s %s\n", failStyle.Render(string(result.Failure.Kind)), result.Failure.Reason)
	}

	fmt.Fprintf(w, "  path:     %s\n", strings.Join(result.Path, " -> "))
	fmt.Fprintf(w, "  turns:    %d\n", result.TurnsUsed)
	fmt.Fprintf(w, "  duration: %s\n", result.Duration)

	printToolStats(w, registry)

	if actions := rc.Actions(); len(actions) > 0 {
		fmt.Fprintf(w, "  proposed actions:\n")
		for _, action := range actions {
			fmt.Fprintf(w, "    %s %s\n", dimStyle.Render("["+action.Node+"/"+action.Tool+"]"), action.Summary)
		}
	}

	if result.Completed() {
		fmt.Fprintln(w)
		fmt.Fprintln(w, headerStyle.Render("final output"))
		fmt.Fprintln(w, result.FinalOutput)
	}
}

// printToolStats lists per-tool execution metrics for the tools the run
// actually invoked.
func printToolStats(w io.Writer, registry *tool.Registry) {
	if registry == nil {
		return
	}

	descriptors := registry.List()
	sort.Slice(descriptors, func(i, j int) bool { return descriptors[i].Name < descriptors[j].Name })

	var lines []string
	for _, d := range descriptors {
		m, err := registry.Metrics(d.Name)
		if err != nil || m.TotalCalls == 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf("    %-24s calls %d  ok %d  failed %d  avg %s",
			d.Name, m.TotalCalls, m.SuccessCalls, m.FailedCalls, m.AvgDuration.Round(time.Microsecond)))
	}
	if len(lines) == 0 {
		return
	}

	fmt.Fprintf(w, "  tool calls:\n")
	for _, line := range lines {
		fmt.Fprintln(w, dimStyle.Render(line))
	}
}
