package compiler

import (
	"math"

	"github.com/aretw0/espalier/pkg/document"
	"github.com/aretw0/espalier/pkg/machine"
)

// parseState validates one state body. Fields are extracted in a fixed
// order, so when a body breaks several rules the reported one is stable.
func (c *compilation) parseState(name string, node *document.Node) (*machine.State, error) {
	if node.Kind != document.Object {
		return nil, document.Errorf(node.Pos, "state %q must be an object, got %s", name, node.Kind)
	}
	s := newScope(node)
	state := &machine.State{Name: name}

	startTimers, ok, err := s.optionalArray("start_timers")
	if err != nil {
		return nil, err
	}
	if ok {
		state.StartTimers = make(map[string]*machine.TimerStart, len(startTimers.Items))
		for _, item := range startTimers.Items {
			start, err := c.parseTimerStart(item)
			if err != nil {
				return nil, err
			}
			if _, dup := state.StartTimers[start.Timer]; dup {
				return nil, document.Errorf(item.Pos, "duplicate start_timers entry %q", start.Timer)
			}
			state.StartTimers[start.Timer] = start
		}
	}

	stopTimers, ok, err := s.optionalArray("stop_timers")
	if err != nil {
		return nil, err
	}
	if ok {
		seen := make(map[string]struct{}, len(stopTimers.Items))
		for _, item := range stopTimers.Items {
			if item.Kind != document.String {
				return nil, document.Errorf(item.Pos, "stop_timers entries must be strings, got %s", item.Kind)
			}
			if err := c.timers.require(item.StrVal, item.Pos); err != nil {
				return nil, err
			}
			if _, dup := seen[item.StrVal]; dup {
				return nil, document.Errorf(item.Pos, "duplicate stop_timers entry %q", item.StrVal)
			}
			seen[item.StrVal] = struct{}{}
			state.StopTimers = append(state.StopTimers, item.StrVal)
		}
	}

	if err := c.parseOnEnter(state, s); err != nil {
		return nil, err
	}

	timerEdges, timerEdgesPresent, err := s.optionalObject("on_timer")
	if err != nil {
		return nil, err
	}
	if timerEdgesPresent {
		state.TimerEdges = make(map[string]*machine.Edge, len(timerEdges.Entries))
		for _, e := range timerEdges.Entries {
			if err := c.timers.require(e.Key, e.KeyPos); err != nil {
				return nil, err
			}
			edge, err := c.parseEdge(e.Key, true, e.Value)
			if err != nil {
				return nil, err
			}
			if _, dup := state.TimerEdges[e.Key]; dup {
				return nil, document.Errorf(e.KeyPos, "duplicate edge for timer %q", e.Key)
			}
			state.TimerEdges[e.Key] = edge
		}
	}

	eventEdges, eventEdgesPresent, err := s.optionalObject("on_event")
	if err != nil {
		return nil, err
	}
	if eventEdgesPresent {
		state.EventEdges = make(map[string]*machine.Edge, len(eventEdges.Entries))
		for _, e := range eventEdges.Entries {
			if err := c.events.require(e.Key, e.KeyPos); err != nil {
				return nil, err
			}
			edge, err := c.parseEdge(e.Key, false, e.Value)
			if err != nil {
				return nil, err
			}
			if _, dup := state.EventEdges[e.Key]; dup {
				return nil, document.Errorf(e.KeyPos, "duplicate edge for event %q", e.Key)
			}
			state.EventEdges[e.Key] = edge
		}
	}

	nextState, nextPos, nextPresent, err := s.optionalString("next_state")
	if err != nil {
		return nil, err
	}
	if nextPresent {
		if err := c.states.require(nextState, nextPos); err != nil {
			return nil, err
		}
		state.NextState = nextState
	}

	final, ok, err := s.optionalBool("final")
	if err != nil {
		return nil, err
	}
	if ok {
		state.Final = final
	}

	color, _, ok, err := s.optionalString("color")
	if err != nil {
		return nil, err
	}
	if ok {
		state.Color = color
	}

	if err := s.close(); err != nil {
		return nil, err
	}

	// A state is exactly one of: edge-driven, chained, or final. Presence
	// of an edge section counts even when it is empty; final only counts
	// when true.
	behaviors := 0
	if timerEdgesPresent || eventEdgesPresent {
		behaviors++
	}
	if nextPresent {
		behaviors++
	}
	if state.Final {
		behaviors++
	}
	switch {
	case behaviors == 0:
		return nil, document.Errorf(node.Pos,
			`state %q has no behavior: exactly one of transition edges, "next_state", or "final": true is required`, name)
	case behaviors > 1:
		return nil, document.Errorf(node.Pos,
			`state %q has conflicting behaviors: only one of transition edges, "next_state", or "final": true is allowed`, name)
	}
	return state, nil
}

// parseOnEnter handles on_enter and its companion comment. false and absent
// are the same: no entry notification.
func (c *compilation) parseOnEnter(state *machine.State, s *scope) error {
	enter, present := s.any("on_enter")
	if present {
		switch enter.Kind {
		case document.Bool:
			if enter.BoolVal {
				state.OnEnter = &machine.OnEnter{}
			}
		case document.Object:
			targets, err := c.parseSubEdges(enter, "on_enter")
			if err != nil {
				return err
			}
			state.OnEnter = &machine.OnEnter{Targets: targets}
		default:
			return document.Errorf(enter.Pos, "on_enter must be true, false, or an object of targets, got %s", enter.Kind)
		}
	}

	comment, commentPos, present, err := s.optionalString("on_enter_comment")
	if err != nil {
		return err
	}
	if present {
		if state.OnEnter == nil {
			return document.Errorf(commentPos, `"on_enter_comment" requires an active "on_enter"`)
		}
		state.OnEnter.Comment = comment
	}
	return nil
}

// parseTimerStart reads one start_timers element: a bare timer name, or an
// object pairing the timer with a timeout modification.
func (c *compilation) parseTimerStart(node *document.Node) (*machine.TimerStart, error) {
	switch node.Kind {
	case document.String:
		if err := c.timers.require(node.StrVal, node.Pos); err != nil {
			return nil, err
		}
		return &machine.TimerStart{Timer: node.StrVal}, nil
	case document.Object:
		s := newScope(node)
		timer, pos, err := s.requiredString("timer")
		if err != nil {
			return nil, err
		}
		if err := c.timers.require(timer, pos); err != nil {
			return nil, err
		}
		start := &machine.TimerStart{Timer: timer}
		if modify, ok := s.any("modify"); ok {
			start.Modify, err = parseTimerModify(modify)
			if err != nil {
				return nil, err
			}
		}
		if err := s.close(); err != nil {
			return nil, err
		}
		return start, nil
	default:
		return nil, document.Errorf(node.Pos, "start_timers entries must be timer names or objects, got %s", node.Kind)
	}
}

// parseTimerModify reads a timeout modification: a bare number replaces the
// timeout outright, an object adjusts it.
func parseTimerModify(node *document.Node) (*machine.TimerModify, error) {
	if node.IsNumber() {
		set := node.Number()
		if math.IsNaN(set) || math.IsInf(set, 0) {
			return nil, document.Errorf(node.Pos, "modify value must be finite")
		}
		if set < 0 {
			return nil, document.Errorf(node.Pos, "modify value must be non-negative")
		}
		return &machine.TimerModify{Set: &set}, nil
	}
	if node.Kind != document.Object {
		return nil, document.Errorf(node.Pos, "modify must be a number or an object, got %s", node.Kind)
	}

	s := newScope(node)
	modify := &machine.TimerModify{}
	fields := []struct {
		key string
		dst **float64
	}{
		{"increment", &modify.Increment},
		{"multiplier", &modify.Multiplier},
		{"min", &modify.Min},
		{"max", &modify.Max},
	}
	positions := make(map[string]document.Position, len(fields))
	for _, f := range fields {
		value, pos, ok, err := s.optionalNumber(f.key)
		if err != nil {
			return nil, err
		}
		if ok {
			v := value
			*f.dst = &v
			positions[f.key] = pos
		}
	}
	if err := s.close(); err != nil {
		return nil, err
	}
	if modify.Increment == nil && modify.Multiplier == nil {
		return nil, document.Errorf(node.Pos, `modify requires at least one of "increment" or "multiplier"`)
	}
	if modify.Min != nil && modify.Max != nil && *modify.Min > *modify.Max {
		return nil, document.Errorf(positions["min"], `modify "min" must not exceed "max"`)
	}
	return modify, nil
}
