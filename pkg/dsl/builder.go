package dsl

import (
	"github.com/aretw0/espalier/internal/compiler"
	"github.com/aretw0/espalier/pkg/document"
	"github.com/aretw0/espalier/pkg/machine"
)

// Builder manages machine definition construction. Declarations keep their
// insertion order, so validation walks them the way a file would be walked.
type Builder struct {
	timerOrder []string
	timers     map[string]float64

	eventOrder []string
	events     map[string]*EventBuilder

	stateOrder []string
	states     map[string]*StateBuilder

	start string
}

// New creates a new definition builder.
func New() *Builder {
	return &Builder{
		timers: make(map[string]float64),
		events: make(map[string]*EventBuilder),
		states: make(map[string]*StateBuilder),
	}
}

// Timer declares a timer with its default timeout in seconds. Redeclaring a
// timer updates its timeout.
func (b *Builder) Timer(name string, seconds float64) *Builder {
	if _, ok := b.timers[name]; !ok {
		b.timerOrder = append(b.timerOrder, name)
	}
	b.timers[name] = seconds
	return b
}

// Event declares an event. If the event already exists, it returns the
// existing builder.
func (b *Builder) Event(name string) *EventBuilder {
	if eb, ok := b.events[name]; ok {
		return eb
	}
	eb := &EventBuilder{name: name}
	b.eventOrder = append(b.eventOrder, name)
	b.events[name] = eb
	return eb
}

// State declares a state. If the state already exists, it returns the
// existing builder.
func (b *Builder) State(name string) *StateBuilder {
	if sb, ok := b.states[name]; ok {
		return sb
	}
	sb := &StateBuilder{name: name}
	b.stateOrder = append(b.stateOrder, name)
	b.states[name] = sb
	return sb
}

// Start sets the machine's start state.
func (b *Builder) Start(name string) *Builder {
	b.start = name
	return b
}

// Build synthesizes the definition and validates it, returning the compiled
// model or the first violation.
func (b *Builder) Build() (*machine.StateMachine, error) {
	root, err := b.Definition()
	if err != nil {
		return nil, err
	}
	return compiler.Compile(root)
}

// Definition returns the definition as a document tree without validating
// it. This is primarily used by Build, but exposed for advanced usage.
func (b *Builder) Definition() (*document.Node, error) {
	var root []document.Entry

	if len(b.timerOrder) > 0 {
		entries := make([]document.Entry, 0, len(b.timerOrder))
		for _, name := range b.timerOrder {
			entries = append(entries, entryOf(name, floatNode(b.timers[name])))
		}
		root = append(root, entryOf("timers", objectNode(entries...)))
	}

	if len(b.eventOrder) > 0 {
		entries := make([]document.Entry, 0, len(b.eventOrder))
		for _, name := range b.eventOrder {
			entries = append(entries, entryOf(name, b.events[name].synthesize()))
		}
		root = append(root, entryOf("events", objectNode(entries...)))
	}

	states := make([]document.Entry, 0, len(b.stateOrder))
	for _, name := range b.stateOrder {
		node, err := b.states[name].synthesize()
		if err != nil {
			return nil, err
		}
		states = append(states, entryOf(name, node))
	}
	root = append(root, entryOf("states", objectNode(states...)))

	if b.start != "" {
		root = append(root, entryOf("start_state", stringNode(b.start)))
	}

	return objectNode(root...), nil
}

// EventBuilder provides a fluent API for configuring an event.
type EventBuilder struct {
	name     string
	argOrder []string
	args     map[string]string
	after    []string
	once     bool
}

// Arg declares a payload field and its opaque type tag. Declaration order is
// preserved in the model.
func (e *EventBuilder) Arg(name, typeTag string) *EventBuilder {
	if e.args == nil {
		e.args = make(map[string]string)
	}
	if _, ok := e.args[name]; !ok {
		e.argOrder = append(e.argOrder, name)
	}
	e.args[name] = typeTag
	return e
}

// After restricts the event to fire only in the given states.
func (e *EventBuilder) After(states ...string) *EventBuilder {
	for _, s := range states {
		if !containsString(e.after, s) {
			e.after = append(e.after, s)
		}
	}
	return e
}

// Once marks the event as deliverable at most once per run.
func (e *EventBuilder) Once() *EventBuilder {
	e.once = true
	return e
}

func (e *EventBuilder) synthesize() *document.Node {
	var entries []document.Entry

	if len(e.after) > 0 {
		items := make([]*document.Node, len(e.after))
		for i, s := range e.after {
			items[i] = stringNode(s)
		}
		entries = append(entries, entryOf("after_states", arrayNode(items...)))
	}
	if len(e.argOrder) > 0 {
		args := make([]document.Entry, len(e.argOrder))
		for i, name := range e.argOrder {
			args[i] = entryOf(name, stringNode(e.args[name]))
		}
		entries = append(entries, entryOf("args", objectNode(args...)))
	}
	if e.once {
		entries = append(entries, entryOf("only_once", boolNode(true)))
	}

	return objectNode(entries...)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Document node constructors. Built nodes carry zero positions.

func stringNode(v string) *document.Node {
	return &document.Node{Kind: document.String, StrVal: v}
}

func floatNode(v float64) *document.Node {
	return &document.Node{Kind: document.Float, FloatVal: v}
}

func boolNode(v bool) *document.Node {
	return &document.Node{Kind: document.Bool, BoolVal: v}
}

func nullNode() *document.Node {
	return &document.Node{Kind: document.Null}
}

func arrayNode(items ...*document.Node) *document.Node {
	return &document.Node{Kind: document.Array, Items: items}
}

func objectNode(entries ...document.Entry) *document.Node {
	return &document.Node{Kind: document.Object, Entries: entries}
}

func entryOf(key string, value *document.Node) document.Entry {
	return document.Entry{Key: key, Value: value}
}
