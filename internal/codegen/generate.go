// Package codegen emits Go source for a validated machine: typed name
// constants, timeout durations, and flat transition tables ready for an
// executor or test harness to drive.
package codegen

import (
	"bytes"
	"fmt"
	"go/format"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/aretw0/espalier/pkg/machine"
)

// Options controls the emitted file.
type Options struct {
	// Package is the package clause of the generated file. Defaults to
	// "machine".
	Package string
}

// Generate renders the model as a self-contained Go source file and gofmts
// it. Output is deterministic for a given model.
func Generate(m *machine.StateMachine, opts Options) ([]byte, error) {
	if opts.Package == "" {
		opts.Package = "machine"
	}

	var buf bytes.Buffer
	if err := fileTemplate.Execute(&buf, newTemplateData(m, opts)); err != nil {
		return nil, fmt.Errorf("rendering generated code: %w", err)
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("formatting generated code: %w", err)
	}
	return src, nil
}

type constant struct {
	Ident string
	Value string
}

type choiceData struct {
	Label  string
	Target string // state ident, empty when Stay
	Stay   bool
}

type transitionData struct {
	Source  string // state ident
	Trigger string // timer or event ident
	IsTimer bool
	Target  string // state ident, empty for stay/fail/choices
	Stay    bool
	Fail    bool
	Choices []choiceData
	Notify  []string
}

type argData struct {
	Name string
	Type string
}

type templateData struct {
	Package     string
	States      []constant
	Events      []constant
	Timers      []constant
	StartState  string
	Finals      []string
	Nexts       [][2]string
	Timeouts    [][2]string // timer ident, duration expression
	Transitions []transitionData
	EventArgs   []struct {
		Event string
		Args  []argData
	}
}

func newTemplateData(m *machine.StateMachine, opts Options) *templateData {
	states := newIdentTable("State", m.StateNames())
	events := newIdentTable("Event", m.EventNames())
	timers := newIdentTable("Timer", m.TimerNames())

	data := &templateData{
		Package:    opts.Package,
		States:     states.constants(),
		Events:     events.constants(),
		Timers:     timers.constants(),
		StartState: states.ident(m.StartState),
	}

	for _, name := range m.TimerNames() {
		data.Timeouts = append(data.Timeouts, [2]string{timers.ident(name), durationExpr(m.Timers[name].Timeout)})
	}

	for _, name := range m.StateNames() {
		state := m.States[name]
		if state.Final {
			data.Finals = append(data.Finals, states.ident(name))
		}
		if state.NextState != "" {
			data.Nexts = append(data.Nexts, [2]string{states.ident(name), states.ident(state.NextState)})
		}
		for _, invoker := range sortedKeys(state.TimerEdges) {
			data.Transitions = append(data.Transitions,
				newTransition(states, state.TimerEdges[invoker], states.ident(name), timers.ident(invoker)))
		}
		for _, invoker := range sortedKeys(state.EventEdges) {
			data.Transitions = append(data.Transitions,
				newTransition(states, state.EventEdges[invoker], states.ident(name), events.ident(invoker)))
		}
	}

	for _, name := range m.EventNames() {
		event := m.Events[name]
		if len(event.Args) == 0 {
			continue
		}
		args := make([]argData, len(event.Args))
		for i, arg := range event.Args {
			args[i] = argData{Name: arg.Name, Type: arg.Type}
		}
		data.EventArgs = append(data.EventArgs, struct {
			Event string
			Args  []argData
		}{events.ident(name), args})
	}
	return data
}

func newTransition(states *identTable, edge *machine.Edge, source, trigger string) transitionData {
	t := transitionData{Source: source, Trigger: trigger, IsTimer: edge.IsTimer}
	for _, shape := range edge.OnTraverse {
		t.Notify = append(t.Notify, string(shape))
	}
	if edge.Targets != nil {
		labels := make([]string, 0, len(edge.Targets))
		for label := range edge.Targets {
			labels = append(labels, label)
		}
		sort.Strings(labels)
		for _, label := range labels {
			target := edge.Targets[label]
			choice := choiceData{Label: label, Stay: target.Kind == machine.TargetNoChange}
			if target.Kind == machine.TargetState {
				choice.Target = states.ident(target.State)
			}
			t.Choices = append(t.Choices, choice)
		}
		return t
	}
	switch edge.Target.Kind {
	case machine.TargetNoChange:
		t.Stay = true
	case machine.TargetFailure:
		t.Fail = true
	case machine.TargetState:
		t.Target = states.ident(edge.Target.State)
	}
	return t
}

// identTable maps declared names to collision-free exported identifiers.
type identTable struct {
	prefix string
	idents map[string]string
}

func newIdentTable(prefix string, names []string) *identTable {
	t := &identTable{prefix: prefix, idents: make(map[string]string, len(names))}
	taken := make(map[string]struct{}, len(names))
	for _, name := range names {
		ident := prefix + camel(name)
		for base, n := ident, 2; ; n++ {
			if _, dup := taken[ident]; !dup {
				break
			}
			ident = fmt.Sprintf("%s_%d", base, n)
		}
		taken[ident] = struct{}{}
		t.idents[name] = ident
	}
	return t
}

func (t *identTable) ident(name string) string {
	ident, ok := t.idents[name]
	if !ok {
		panic(fmt.Sprintf("codegen: no identifier for %s %q", strings.ToLower(t.prefix), name))
	}
	return ident
}

func (t *identTable) constants() []constant {
	names := make([]string, 0, len(t.idents))
	for name := range t.idents {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]constant, len(names))
	for i, name := range names {
		out[i] = constant{Ident: t.idents[name], Value: name}
	}
	return out
}

// camel upper-cases the first letter of every alphanumeric run, so
// "t_give_up" becomes "TGiveUp". Runs of other characters are dropped.
func camel(name string) string {
	var sb strings.Builder
	upper := true
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
			if upper {
				r -= 'a' - 'A'
			}
			sb.WriteRune(r)
			upper = false
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			sb.WriteRune(r)
			upper = false
		default:
			upper = true
		}
	}
	if sb.Len() == 0 {
		return "X"
	}
	return sb.String()
}

// durationExpr renders a timeout as a readable duration literal.
func durationExpr(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second))
	switch {
	case d == 0:
		return "0"
	case d%time.Second == 0:
		return fmt.Sprintf("%d * time.Second", d/time.Second)
	case d%time.Millisecond == 0:
		return fmt.Sprintf("%d * time.Millisecond", d/time.Millisecond)
	default:
		return fmt.Sprintf("time.Duration(%d)", int64(d))
	}
}

func sortedKeys(edges map[string]*machine.Edge) []string {
	keys := make([]string, 0, len(edges))
	for k := range edges {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var fileTemplate = template.Must(template.New("machine").Parse(`// Code generated by espalier; DO NOT EDIT.

package {{.Package}}
{{if .Timeouts}}
import "time"
{{end}}
// State identifies one machine state.
type State string

// Event identifies one declared event.
type Event string

// Timer identifies one declared timer.
type Timer string
{{if .States}}
const (
{{- range .States}}
	{{.Ident}} State = {{printf "%q" .Value}}
{{- end}}
)
{{end}}{{if .Events}}
const (
{{- range .Events}}
	{{.Ident}} Event = {{printf "%q" .Value}}
{{- end}}
)
{{end}}{{if .Timers}}
const (
{{- range .Timers}}
	{{.Ident}} Timer = {{printf "%q" .Value}}
{{- end}}
)
{{end}}
// StartState is the state every run begins in.
const StartState = {{.StartState}}

// Final reports whether s terminates a run.
func Final(s State) bool {
	_, ok := finalStates[s]
	return ok
}

var finalStates = map[State]struct{}{
{{- range .Finals}}
	{{.}}: {},
{{- end}}
}

// Next returns the unconditional continuation of s, if it has one.
func Next(s State) (State, bool) {
	n, ok := nextStates[s]
	return n, ok
}

var nextStates = map[State]State{
{{- range .Nexts}}
	{{index . 0}}: {{index . 1}},
{{- end}}
}
{{if .Timeouts}}
// Timeout returns t's default expiry.
func Timeout(t Timer) time.Duration {
	return timeouts[t]
}

var timeouts = map[Timer]time.Duration{
{{- range .Timeouts}}
	{{index . 0}}: {{index . 1}},
{{- end}}
}
{{end}}
// Choice is one label-selectable destination of a transition.
type Choice struct {
	Target State
	Stay   bool
}

// Transition is one compiled edge. Exactly one of Target, Stay, Fail, or a
// non-empty Choices applies.
type Transition struct {
	Source  State
	Timer   Timer
	Event   Event
	Target  State
	Stay    bool
	Fail    bool
	Choices map[string]Choice
	Notify  []string
}

// Transitions lists every edge, ordered by source state, timers before
// events, then by trigger.
var Transitions = []Transition{
{{- range .Transitions}}
	{
		Source: {{.Source}},
{{- if .IsTimer}}
		Timer: {{.Trigger}},
{{- else}}
		Event: {{.Trigger}},
{{- end}}
{{- if .Target}}
		Target: {{.Target}},
{{- end}}
{{- if .Stay}}
		Stay: true,
{{- end}}
{{- if .Fail}}
		Fail: true,
{{- end}}
{{- if .Choices}}
		Choices: map[string]Choice{
{{- range .Choices}}
			{{printf "%q" .Label}}: {{"{"}}{{if .Target}}Target: {{.Target}}{{end}}{{if .Stay}}Stay: true{{end}}{{"}"}},
{{- end}}
		},
{{- end}}
{{- if .Notify}}
		Notify: []string{ {{- range $i, $n := .Notify}}{{if $i}}, {{end}}{{printf "%q" $n}}{{- end}} },
{{- end}}
	},
{{- end}}
}
{{if .EventArgs}}
// EventArg is one payload field of an event.
type EventArg struct {
	Name string
	Type string
}

// Args lists each event's payload fields in declaration order.
var Args = map[Event][]EventArg{
{{- range .EventArgs}}
	{{.Event}}: {
{{- range .Args}}
		{Name: {{printf "%q" .Name}}, Type: {{printf "%q" .Type}}},
{{- end}}
	},
{{- end}}
}
{{end}}`))
