// Package compiler turns a parsed machine definition into a validated
// machine.StateMachine model.
//
// Compilation is one synchronous pass over the document tree. It keeps three
// name registries (states, events, timers), enforces every structural and
// cross-reference rule, and stops at the first violation with an error
// anchored to the offending token. On success the returned model is complete
// and immutable; no partial model ever escapes.
package compiler

import (
	"fmt"

	"github.com/aretw0/espalier/pkg/document"
	"github.com/aretw0/espalier/pkg/machine"
)

// compilation is the explicit state of one compile pass: the three name
// registries plus the model being assembled. A fresh value is made per call,
// so passes share nothing.
type compilation struct {
	states *registry
	events *registry
	timers *registry
	model  *machine.StateMachine
}

// Compile validates the definition rooted at root and assembles the model.
// The error, when non-nil, is a *document.Error pointing at the first
// violated rule.
func Compile(root *document.Node) (*machine.StateMachine, error) {
	if root == nil {
		return nil, &document.Error{Msg: "empty document"}
	}
	if root.Kind != document.Object {
		return nil, document.Errorf(root.Pos, "machine definition must be an object, got %s", root.Kind)
	}

	c := &compilation{
		states: newRegistry("state"),
		events: newRegistry("event"),
		timers: newRegistry("timer"),
		model: &machine.StateMachine{
			Timers: make(map[string]*machine.Timer),
			Events: make(map[string]*machine.Event),
			States: make(map[string]*machine.State),
		},
	}
	s := newScope(root)

	// State names are registered from key enumeration before any body
	// parses, so forward references between sections resolve.
	statesNode, err := s.requiredObject("states")
	if err != nil {
		return nil, err
	}
	for _, e := range statesNode.Entries {
		c.states.add(e.Key)
	}

	timersNode, ok, err := s.optionalObject("timers")
	if err != nil {
		return nil, err
	}
	if ok {
		if err := c.parseTimers(timersNode); err != nil {
			return nil, err
		}
	}

	eventsNode, ok, err := s.optionalObject("events")
	if err != nil {
		return nil, err
	}
	if ok {
		if err := c.parseEvents(eventsNode); err != nil {
			return nil, err
		}
	}

	for _, e := range statesNode.Entries {
		state, err := c.parseState(e.Key, e.Value)
		if err != nil {
			return nil, err
		}
		c.addState(state)
	}

	// start_state is read last: every state is validated by now, so the
	// only thing left to check is that the reference resolves.
	startState, startPos, err := s.requiredString("start_state")
	if err != nil {
		return nil, err
	}
	if err := s.close(); err != nil {
		return nil, err
	}
	if err := c.states.require(startState, startPos); err != nil {
		return nil, err
	}
	c.model.StartState = startState
	return c.model, nil
}

// The model maps mirror the registries, so colliding insertions mean the
// pass itself is broken, not the document.

func (c *compilation) addTimer(t *machine.Timer) {
	if _, dup := c.model.Timers[t.Name]; dup {
		internalf("duplicate timer %q in model", t.Name)
	}
	c.model.Timers[t.Name] = t
}

func (c *compilation) addEvent(e *machine.Event) {
	if _, dup := c.model.Events[e.Name]; dup {
		internalf("duplicate event %q in model", e.Name)
	}
	c.model.Events[e.Name] = e
}

func (c *compilation) addState(s *machine.State) {
	if _, dup := c.model.States[s.Name]; dup {
		internalf("duplicate state %q in model", s.Name)
	}
	c.model.States[s.Name] = s
}

// internalf reports a broken pass invariant. These are assertion failures,
// never document problems, and are deliberately not returned as errors.
func internalf(format string, args ...any) {
	panic(fmt.Sprintf("compiler: internal error: "+format, args...))
}
