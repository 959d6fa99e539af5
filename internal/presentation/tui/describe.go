package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/espalier/pkg/machine"
)

// Describe builds a markdown report of the machine: overview counts, the
// declared timers and events, and the full transition listing per state.
// Deterministic output, sorted everywhere.
func Describe(m *machine.StateMachine) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# State machine: %d states, %d events, %d timers\n\n",
		len(m.States), len(m.Events), len(m.Timers))
	fmt.Fprintf(&sb, "Starts in **%s**.\n\n", m.StartState)

	if len(m.Timers) > 0 {
		sb.WriteString("## Timers\n\n| Timer | Timeout |\n|---|---|\n")
		for _, name := range m.TimerNames() {
			fmt.Fprintf(&sb, "| `%s` | %gs |\n", name, m.Timers[name].Timeout)
		}
		sb.WriteString("\n")
	}

	if len(m.Events) > 0 {
		sb.WriteString("## Events\n\n| Event | Arguments | Legal after | Once |\n|---|---|---|---|\n")
		for _, name := range m.EventNames() {
			event := m.Events[name]
			fmt.Fprintf(&sb, "| `%s` | %s | %s | %s |\n",
				name, formatArgs(event.Args), formatAfterStates(event.AfterStates), formatOnce(event.OnlyOnce))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## States\n\n")
	for _, name := range m.StateNames() {
		describeState(&sb, m, m.States[name])
	}
	return sb.String()
}

func describeState(sb *strings.Builder, m *machine.StateMachine, state *machine.State) {
	fmt.Fprintf(sb, "### %s", state.Name)
	if state.Name == m.StartState {
		sb.WriteString(" (start)")
	}
	sb.WriteString("\n\n")

	if len(state.StartTimers) > 0 {
		for _, timer := range sortedStartTimers(state) {
			fmt.Fprintf(sb, "- starts timer `%s`%s\n", timer, formatModify(state.StartTimers[timer].Modify))
		}
	}
	if len(state.StopTimers) > 0 {
		fmt.Fprintf(sb, "- stops timers: %s\n", joinCode(state.StopTimers))
	}
	if state.OnEnter != nil {
		sb.WriteString("- notifies on entry")
		if state.OnEnter.Comment != "" {
			fmt.Fprintf(sb, " (%s)", state.OnEnter.Comment)
		}
		sb.WriteString("\n")
		for _, label := range sortedLabels(state.OnEnter.Targets) {
			fmt.Fprintf(sb, "  - `%s` → %s\n", label, formatTarget(state.OnEnter.Targets[label]))
		}
	}

	for _, invoker := range sortedEdges(state.TimerEdges) {
		describeEdge(sb, state.TimerEdges[invoker])
	}
	for _, invoker := range sortedEdges(state.EventEdges) {
		describeEdge(sb, state.EventEdges[invoker])
	}

	switch {
	case state.NextState != "":
		fmt.Fprintf(sb, "- continues to **%s**\n", state.NextState)
	case state.Final:
		sb.WriteString("- **final**\n")
	}
	sb.WriteString("\n")
}

func describeEdge(sb *strings.Builder, edge *machine.Edge) {
	kind := "event"
	if edge.IsTimer {
		kind = "timer"
	}
	fmt.Fprintf(sb, "- on %s `%s`", kind, edge.Invoker)
	if edge.Targets == nil {
		fmt.Fprintf(sb, " → %s", formatTarget(edge.Target))
	}
	if len(edge.OnTraverse) > 0 {
		shapes := make([]string, len(edge.OnTraverse))
		for i, shape := range edge.OnTraverse {
			shapes[i] = string(shape)
		}
		fmt.Fprintf(sb, " (notifies: %s)", strings.Join(shapes, ", "))
	}
	if edge.TraverseComment != "" {
		fmt.Fprintf(sb, ": %s", edge.TraverseComment)
	}
	if edge.Color != "" {
		fmt.Fprintf(sb, " [%s]", edge.Color)
	}
	sb.WriteString("\n")
	for _, label := range sortedLabels(edge.Targets) {
		fmt.Fprintf(sb, "  - `%s` → %s\n", label, formatTarget(edge.Targets[label]))
	}
}

func formatTarget(target machine.EdgeTarget) string {
	switch target.Kind {
	case machine.TargetState:
		return fmt.Sprintf("**%s**", target.State)
	case machine.TargetFailure:
		return "**failure**"
	default:
		return "no change"
	}
}

func formatModify(modify *machine.TimerModify) string {
	if modify == nil {
		return ""
	}
	var parts []string
	if modify.Set != nil {
		parts = append(parts, fmt.Sprintf("set %gs", *modify.Set))
	}
	if modify.Increment != nil {
		parts = append(parts, fmt.Sprintf("%+gs", *modify.Increment))
	}
	if modify.Multiplier != nil {
		parts = append(parts, fmt.Sprintf("×%g", *modify.Multiplier))
	}
	if modify.Min != nil {
		parts = append(parts, fmt.Sprintf("min %gs", *modify.Min))
	}
	if modify.Max != nil {
		parts = append(parts, fmt.Sprintf("max %gs", *modify.Max))
	}
	return " (" + strings.Join(parts, ", ") + ")"
}

func formatArgs(args []machine.Arg) string {
	if len(args) == 0 {
		return "-"
	}
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = fmt.Sprintf("`%s %s`", arg.Name, arg.Type)
	}
	return strings.Join(parts, ", ")
}

func formatAfterStates(states []string) string {
	if len(states) == 0 {
		return "any state"
	}
	return joinCode(states)
}

func formatOnce(once bool) string {
	if once {
		return "yes"
	}
	return ""
}

func joinCode(names []string) string {
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = "`" + name + "`"
	}
	return strings.Join(parts, ", ")
}

func sortedStartTimers(state *machine.State) []string {
	names := make([]string, 0, len(state.StartTimers))
	for name := range state.StartTimers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sortedEdges(edges map[string]*machine.Edge) []string {
	names := make([]string, 0, len(edges))
	for name := range edges {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sortedLabels(targets map[string]machine.EdgeTarget) []string {
	names := make([]string, 0, len(targets))
	for name := range targets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
