package dsl

import (
	"fmt"

	"github.com/aretw0/espalier/pkg/document"
	"github.com/aretw0/espalier/pkg/machine"
)

// StateBuilder provides a fluent API for configuring a state.
type StateBuilder struct {
	name string

	startOrder []string
	starts     map[string]*timerStart

	stopTimers []string

	enterPlain   bool
	enterChoices *choiceSet
	enterComment string

	timerEdgeOrder []string
	timerEdges     map[string]*EdgeBuilder

	eventEdgeOrder []string
	eventEdges     map[string]*EdgeBuilder

	next  string
	final bool
	color string
}

// timerStart is one start_timers entry under construction.
type timerStart struct {
	set        *float64
	increment  *float64
	multiplier *float64
	min        *float64
	max        *float64
}

// TimerOption adjusts how a started timer's timeout is derived.
type TimerOption func(*timerStart)

// Set replaces the timer's default timeout with a fixed value.
func Set(seconds float64) TimerOption {
	return func(ts *timerStart) { ts.set = &seconds }
}

// Increment adds to the timer's default timeout.
func Increment(delta float64) TimerOption {
	return func(ts *timerStart) { ts.increment = &delta }
}

// Multiplier scales the timer's default timeout.
func Multiplier(factor float64) TimerOption {
	return func(ts *timerStart) { ts.multiplier = &factor }
}

// Min clamps the derived timeout from below.
func Min(seconds float64) TimerOption {
	return func(ts *timerStart) { ts.min = &seconds }
}

// Max clamps the derived timeout from above.
func Max(seconds float64) TimerOption {
	return func(ts *timerStart) { ts.max = &seconds }
}

// StartTimer starts a timer on entry to this state, optionally with a
// modified timeout. Restarting the same timer replaces its options.
func (s *StateBuilder) StartTimer(name string, opts ...TimerOption) *StateBuilder {
	if s.starts == nil {
		s.starts = make(map[string]*timerStart)
	}
	if _, ok := s.starts[name]; !ok {
		s.startOrder = append(s.startOrder, name)
	}
	ts := &timerStart{}
	for _, opt := range opts {
		opt(ts)
	}
	s.starts[name] = ts
	return s
}

// StopTimer cancels timers on entry to this state.
func (s *StateBuilder) StopTimer(names ...string) *StateBuilder {
	for _, name := range names {
		if !containsString(s.stopTimers, name) {
			s.stopTimers = append(s.stopTimers, name)
		}
	}
	return s
}

// OnEnter requests a plain entry notification for this state.
func (s *StateBuilder) OnEnter() *StateBuilder {
	s.enterPlain = true
	return s
}

// OnEnterTarget adds a label-selectable redirect to the entry notification.
// Any redirect turns the notification into its target-map form.
func (s *StateBuilder) OnEnterTarget(label string, target machine.EdgeTarget) *StateBuilder {
	if s.enterChoices == nil {
		s.enterChoices = &choiceSet{}
	}
	s.enterChoices.add(label, target)
	return s
}

// OnEnterComment attaches free text to the entry notification.
func (s *StateBuilder) OnEnterComment(comment string) *StateBuilder {
	s.enterComment = comment
	return s
}

// OnTimer adds a transition edge fired by the named timer. If the edge
// already exists, it returns the existing builder.
func (s *StateBuilder) OnTimer(timer string) *EdgeBuilder {
	if s.timerEdges == nil {
		s.timerEdges = make(map[string]*EdgeBuilder)
	}
	if eb, ok := s.timerEdges[timer]; ok {
		return eb
	}
	eb := &EdgeBuilder{}
	s.timerEdgeOrder = append(s.timerEdgeOrder, timer)
	s.timerEdges[timer] = eb
	return eb
}

// OnEvent adds a transition edge fired by the named event. If the edge
// already exists, it returns the existing builder.
func (s *StateBuilder) OnEvent(event string) *EdgeBuilder {
	if s.eventEdges == nil {
		s.eventEdges = make(map[string]*EdgeBuilder)
	}
	if eb, ok := s.eventEdges[event]; ok {
		return eb
	}
	eb := &EdgeBuilder{}
	s.eventEdgeOrder = append(s.eventEdgeOrder, event)
	s.eventEdges[event] = eb
	return eb
}

// Next chains this state unconditionally into another.
func (s *StateBuilder) Next(state string) *StateBuilder {
	s.next = state
	return s
}

// Final marks this state as terminal.
func (s *StateBuilder) Final() *StateBuilder {
	s.final = true
	return s
}

// Color sets a display hint for diagram renderers.
func (s *StateBuilder) Color(color string) *StateBuilder {
	s.color = color
	return s
}

func (s *StateBuilder) synthesize() (*document.Node, error) {
	var entries []document.Entry

	if len(s.startOrder) > 0 {
		items := make([]*document.Node, 0, len(s.startOrder))
		for _, name := range s.startOrder {
			node, err := s.starts[name].synthesize(name)
			if err != nil {
				return nil, err
			}
			items = append(items, node)
		}
		entries = append(entries, entryOf("start_timers", arrayNode(items...)))
	}

	if len(s.stopTimers) > 0 {
		items := make([]*document.Node, len(s.stopTimers))
		for i, name := range s.stopTimers {
			items[i] = stringNode(name)
		}
		entries = append(entries, entryOf("stop_timers", arrayNode(items...)))
	}

	if s.enterChoices != nil {
		entries = append(entries, entryOf("on_enter", s.enterChoices.synthesize()))
	} else if s.enterPlain {
		entries = append(entries, entryOf("on_enter", boolNode(true)))
	}
	if s.enterComment != "" {
		entries = append(entries, entryOf("on_enter_comment", stringNode(s.enterComment)))
	}

	timerEdges, err := synthesizeEdges(s.name, "timer", s.timerEdgeOrder, s.timerEdges)
	if err != nil {
		return nil, err
	}
	if timerEdges != nil {
		entries = append(entries, entryOf("on_timer", timerEdges))
	}

	eventEdges, err := synthesizeEdges(s.name, "event", s.eventEdgeOrder, s.eventEdges)
	if err != nil {
		return nil, err
	}
	if eventEdges != nil {
		entries = append(entries, entryOf("on_event", eventEdges))
	}

	if s.next != "" {
		entries = append(entries, entryOf("next_state", stringNode(s.next)))
	}
	if s.final {
		entries = append(entries, entryOf("final", boolNode(true)))
	}
	if s.color != "" {
		entries = append(entries, entryOf("color", stringNode(s.color)))
	}

	return objectNode(entries...), nil
}

func synthesizeEdges(state, kind string, order []string, edges map[string]*EdgeBuilder) (*document.Node, error) {
	if len(order) == 0 {
		return nil, nil
	}
	entries := make([]document.Entry, 0, len(order))
	for _, invoker := range order {
		node, err := edges[invoker].synthesize()
		if err != nil {
			return nil, fmt.Errorf("state %q, %s %q: %w", state, kind, invoker, err)
		}
		entries = append(entries, entryOf(invoker, node))
	}
	return objectNode(entries...), nil
}

func (ts *timerStart) synthesize(name string) (*document.Node, error) {
	if ts.set == nil && ts.increment == nil && ts.multiplier == nil && ts.min == nil && ts.max == nil {
		return stringNode(name), nil
	}

	var modify *document.Node
	if ts.set != nil {
		if ts.increment != nil || ts.multiplier != nil || ts.min != nil || ts.max != nil {
			return nil, fmt.Errorf("start timer %q mixes a set value with adjustment options", name)
		}
		modify = floatNode(*ts.set)
	} else {
		var fields []document.Entry
		for _, f := range []struct {
			key   string
			value *float64
		}{
			{"increment", ts.increment},
			{"multiplier", ts.multiplier},
			{"min", ts.min},
			{"max", ts.max},
		} {
			if f.value != nil {
				fields = append(fields, entryOf(f.key, floatNode(*f.value)))
			}
		}
		modify = objectNode(fields...)
	}

	return objectNode(
		entryOf("timer", stringNode(name)),
		entryOf("modify", modify),
	), nil
}

// EdgeBuilder provides a fluent API for configuring one transition edge.
type EdgeBuilder struct {
	target  *machine.EdgeTarget
	choices *choiceSet
	notify  []machine.TraverseKind
	comment string
	color   string
}

// To makes the edge transition into the named state.
func (e *EdgeBuilder) To(state string) *EdgeBuilder {
	t := machine.ToState(state)
	e.target = &t
	return e
}

// Stay makes the edge remain in its source state.
func (e *EdgeBuilder) Stay() *EdgeBuilder {
	t := machine.NoChange()
	e.target = &t
	return e
}

// Fail makes the edge abort the run.
func (e *EdgeBuilder) Fail() *EdgeBuilder {
	t := machine.ToFailure()
	e.target = &t
	return e
}

// Choice adds a label-selectable destination. Edges with choices must carry
// exactly one non-revealing notification shape.
func (e *EdgeBuilder) Choice(label string, target machine.EdgeTarget) *EdgeBuilder {
	if e.choices == nil {
		e.choices = &choiceSet{}
	}
	e.choices.add(label, target)
	return e
}

// Notify selects the notification shapes fired when the edge traverses.
func (e *EdgeBuilder) Notify(shapes ...machine.TraverseKind) *EdgeBuilder {
	for _, shape := range shapes {
		seen := false
		for _, have := range e.notify {
			if have == shape {
				seen = true
				break
			}
		}
		if !seen {
			e.notify = append(e.notify, shape)
		}
	}
	return e
}

// NotifyComment attaches free text to the traversal notification.
func (e *EdgeBuilder) NotifyComment(comment string) *EdgeBuilder {
	e.comment = comment
	return e
}

// Color sets a display hint for diagram renderers.
func (e *EdgeBuilder) Color(color string) *EdgeBuilder {
	e.color = color
	return e
}

func (e *EdgeBuilder) synthesize() (*document.Node, error) {
	plain := e.choices == nil && len(e.notify) == 0 && e.comment == "" && e.color == ""
	if plain {
		if e.target == nil {
			return nullNode(), nil
		}
		return targetNode(*e.target), nil
	}

	if e.target != nil && e.target.Kind == machine.TargetFailure {
		return nil, fmt.Errorf("a failure edge allows no other settings")
	}

	var entries []document.Entry
	if e.target != nil && e.target.Kind == machine.TargetState {
		entries = append(entries, entryOf("state", stringNode(e.target.State)))
	}
	if e.choices != nil {
		entries = append(entries, entryOf("states", e.choices.synthesize()))
	}
	if len(e.notify) == 1 {
		entries = append(entries, entryOf("on_traverse", stringNode(string(e.notify[0]))))
	} else if len(e.notify) > 1 {
		items := make([]*document.Node, len(e.notify))
		for i, shape := range e.notify {
			items[i] = stringNode(string(shape))
		}
		entries = append(entries, entryOf("on_traverse", arrayNode(items...)))
	}
	if e.comment != "" {
		entries = append(entries, entryOf("on_traverse_comment", stringNode(e.comment)))
	}
	if e.color != "" {
		entries = append(entries, entryOf("color", stringNode(e.color)))
	}

	return objectNode(entries...), nil
}

// choiceSet holds label-keyed targets in insertion order.
type choiceSet struct {
	order   []string
	targets map[string]machine.EdgeTarget
}

func (c *choiceSet) add(label string, target machine.EdgeTarget) {
	if c.targets == nil {
		c.targets = make(map[string]machine.EdgeTarget)
	}
	if _, ok := c.targets[label]; !ok {
		c.order = append(c.order, label)
	}
	c.targets[label] = target
}

func (c *choiceSet) synthesize() *document.Node {
	entries := make([]document.Entry, 0, len(c.order))
	for _, label := range c.order {
		entries = append(entries, entryOf(label, targetNode(c.targets[label])))
	}
	return objectNode(entries...)
}

// targetNode renders an edge target in its scalar form. The zero value
// renders as no change.
func targetNode(t machine.EdgeTarget) *document.Node {
	switch t.Kind {
	case machine.TargetState:
		return stringNode(t.State)
	case machine.TargetFailure:
		return boolNode(false)
	default:
		return nullNode()
	}
}
