package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/espalier/pkg/machine"
)

// Mermaid renders the machine as a Mermaid state diagram. Output is fully
// deterministic: states and edge labels are emitted in sorted order.
//
// Conventions:
// - the start marker points at the start state
// - timer edges carry a clock annotation with the default timeout
// - sub-edges repeat the invoker with their label in brackets
// - failure targets converge on one dedicated failure node
// - final states point at the terminal marker
func Mermaid(m *machine.StateMachine) string {
	var sb strings.Builder
	sb.WriteString("stateDiagram-v2\n")

	hasFailure := false
	for _, name := range m.StateNames() {
		state := m.States[name]
		for _, edge := range state.TimerEdges {
			hasFailure = hasFailure || edge.Target.Kind == machine.TargetFailure
		}
		for _, edge := range state.EventEdges {
			hasFailure = hasFailure || edge.Target.Kind == machine.TargetFailure
		}
	}

	// Alias declarations for names Mermaid cannot carry as bare IDs.
	for _, name := range m.StateNames() {
		if safeID(name) != name {
			sb.WriteString(fmt.Sprintf("    state %q as %s\n", name, safeID(name)))
		}
	}
	if hasFailure {
		sb.WriteString("    state \"failure\" as espalier_failure\n")
	}

	sb.WriteString(fmt.Sprintf("    [*] --> %s\n", safeID(m.StartState)))

	for _, name := range m.StateNames() {
		state := m.States[name]
		from := safeID(name)

		for _, invoker := range sortedEdgeKeys(state.TimerEdges) {
			edge := state.TimerEdges[invoker]
			label := fmt.Sprintf("⏱️ %s", invoker)
			if timer, ok := m.Timers[invoker]; ok {
				label = fmt.Sprintf("⏱️ %s (%gs)", invoker, timer.Timeout)
			}
			writeEdge(&sb, from, edge, label)
		}
		for _, invoker := range sortedEdgeKeys(state.EventEdges) {
			writeEdge(&sb, from, state.EventEdges[invoker], invoker)
		}

		if state.OnEnter != nil {
			for _, label := range sortedTargetKeys(state.OnEnter.Targets) {
				writeTransition(&sb, from, state.OnEnter.Targets[label], fmt.Sprintf("on_enter [%s]", label))
			}
			if state.OnEnter.Comment != "" {
				sb.WriteString(fmt.Sprintf("    note right of %s: %s\n", from, escapeLabel(state.OnEnter.Comment)))
			}
		}

		if state.NextState != "" {
			sb.WriteString(fmt.Sprintf("    %s --> %s\n", from, safeID(state.NextState)))
		}
		if state.Final {
			sb.WriteString(fmt.Sprintf("    %s --> [*]\n", from))
		}
	}

	writeColorClasses(&sb, m)
	return sb.String()
}

func writeEdge(sb *strings.Builder, from string, edge *machine.Edge, label string) {
	if edge.Targets == nil {
		writeTransition(sb, from, edge.Target, label)
		return
	}
	for _, sub := range sortedTargetKeys(edge.Targets) {
		writeTransition(sb, from, edge.Targets[sub], fmt.Sprintf("%s [%s]", label, sub))
	}
}

func writeTransition(sb *strings.Builder, from string, target machine.EdgeTarget, label string) {
	var to string
	switch target.Kind {
	case machine.TargetState:
		to = safeID(target.State)
	case machine.TargetNoChange:
		to = from
	case machine.TargetFailure:
		to = "espalier_failure"
	}
	sb.WriteString(fmt.Sprintf("    %s --> %s: %s\n", from, to, escapeLabel(label)))
}

func writeColorClasses(sb *strings.Builder, m *machine.StateMachine) {
	colored := make(map[string][]string)
	for _, name := range m.StateNames() {
		if color := m.States[name].Color; color != "" {
			colored[color] = append(colored[color], safeID(name))
		}
	}
	if len(colored) == 0 {
		return
	}

	colors := make([]string, 0, len(colored))
	for color := range colored {
		colors = append(colors, color)
	}
	sort.Strings(colors)

	sb.WriteString("\n")
	for i, color := range colors {
		class := fmt.Sprintf("hint%d", i)
		sb.WriteString(fmt.Sprintf("    classDef %s fill:%s,color:#000;\n", class, color))
		for _, id := range colored[color] {
			sb.WriteString(fmt.Sprintf("    class %s %s;\n", id, class))
		}
	}
}

func sortedEdgeKeys(edges map[string]*machine.Edge) []string {
	keys := make([]string, 0, len(edges))
	for k := range edges {
		keys = append(keys, k)
	}
	sort.Strings(keys) // Deterministic order
	return keys
}

func sortedTargetKeys(targets map[string]machine.EdgeTarget) []string {
	keys := make([]string, 0, len(targets))
	for k := range targets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func escapeLabel(label string) string {
	s := strings.ReplaceAll(label, "\"", "'")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}

func safeID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
