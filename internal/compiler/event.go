package compiler

import (
	"github.com/aretw0/espalier/pkg/document"
	"github.com/aretw0/espalier/pkg/machine"
)

// parseEvents reads the events section entry by entry, registering each name
// once its body validates.
func (c *compilation) parseEvents(node *document.Node) error {
	for _, e := range node.Entries {
		event, err := c.parseEvent(e.Key, e.Value)
		if err != nil {
			return err
		}
		c.events.add(event.Name)
		c.addEvent(event)
	}
	return nil
}

func (c *compilation) parseEvent(name string, node *document.Node) (*machine.Event, error) {
	if node.Kind != document.Object {
		return nil, document.Errorf(node.Pos, "event %q must be an object, got %s", name, node.Kind)
	}
	s := newScope(node)
	event := &machine.Event{Name: name}

	afterStates, ok, err := s.optionalArray("after_states")
	if err != nil {
		return nil, err
	}
	if ok {
		seen := make(map[string]struct{}, len(afterStates.Items))
		for _, item := range afterStates.Items {
			if item.Kind != document.String {
				return nil, document.Errorf(item.Pos, "after_states entries must be strings, got %s", item.Kind)
			}
			if err := c.states.require(item.StrVal, item.Pos); err != nil {
				return nil, err
			}
			if _, dup := seen[item.StrVal]; dup {
				return nil, document.Errorf(item.Pos, "duplicate after_states entry %q", item.StrVal)
			}
			seen[item.StrVal] = struct{}{}
			event.AfterStates = append(event.AfterStates, item.StrVal)
		}
	}

	// Argument names are object keys, so uniqueness is already guaranteed;
	// the type tags are opaque here and interpreted by backends.
	args, ok, err := s.optionalObject("args")
	if err != nil {
		return nil, err
	}
	if ok {
		for _, a := range args.Entries {
			if a.Value.Kind != document.String {
				return nil, document.Errorf(a.Value.Pos, "argument %q type must be a string, got %s", a.Key, a.Value.Kind)
			}
			event.Args = append(event.Args, machine.Arg{Name: a.Key, Type: a.Value.StrVal})
		}
	}

	onlyOnce, ok, err := s.optionalBool("only_once")
	if err != nil {
		return nil, err
	}
	if ok {
		event.OnlyOnce = onlyOnce
	}

	if err := s.close(); err != nil {
		return nil, err
	}
	return event, nil
}
