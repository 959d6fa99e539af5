package compiler

import (
	"math"

	"github.com/aretw0/espalier/pkg/document"
)

// scope wraps one object node and tracks which of its keys have been
// consumed, so close can reject leftovers. Every object with a fixed field
// set goes through a scope; sections with caller-chosen keys (states, events,
// timers, edge maps) are iterated directly instead.
type scope struct {
	node *document.Node
	used map[string]struct{}
}

func newScope(node *document.Node) *scope {
	return &scope{node: node, used: make(map[string]struct{}, len(node.Entries))}
}

// any returns the named field of whatever kind, marking it consumed.
func (s *scope) any(key string) (*document.Node, bool) {
	s.used[key] = struct{}{}
	return s.node.Get(key)
}

// typed returns the named field when present, failing unless it has the
// wanted kind.
func (s *scope) typed(key string, kind document.Kind) (*document.Node, bool, error) {
	node, ok := s.any(key)
	if !ok {
		return nil, false, nil
	}
	if node.Kind != kind {
		return nil, false, document.Errorf(node.Pos, "field %q must be %s, got %s", key, article(kind), node.Kind)
	}
	return node, true, nil
}

func (s *scope) optionalString(key string) (string, document.Position, bool, error) {
	node, ok, err := s.typed(key, document.String)
	if err != nil || !ok {
		return "", document.Position{}, false, err
	}
	return node.StrVal, node.Pos, true, nil
}

func (s *scope) requiredString(key string) (string, document.Position, error) {
	value, pos, ok, err := s.optionalString(key)
	if err != nil {
		return "", document.Position{}, err
	}
	if !ok {
		return "", document.Position{}, document.Errorf(s.node.Pos, "missing required field %q", key)
	}
	return value, pos, nil
}

func (s *scope) optionalBool(key string) (bool, bool, error) {
	node, ok, err := s.typed(key, document.Bool)
	if err != nil || !ok {
		return false, false, err
	}
	return node.BoolVal, true, nil
}

// optionalNumber accepts integer and float fields and widens to float64.
// Non-finite values are rejected here so no caller has to re-check.
func (s *scope) optionalNumber(key string) (float64, document.Position, bool, error) {
	node, ok := s.any(key)
	if !ok {
		return 0, document.Position{}, false, nil
	}
	if !node.IsNumber() {
		return 0, document.Position{}, false, document.Errorf(node.Pos, "field %q must be a number, got %s", key, node.Kind)
	}
	value := node.Number()
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, document.Position{}, false, document.Errorf(node.Pos, "field %q must be a finite number", key)
	}
	return value, node.Pos, true, nil
}

func (s *scope) optionalArray(key string) (*document.Node, bool, error) {
	return s.typed(key, document.Array)
}

func (s *scope) optionalObject(key string) (*document.Node, bool, error) {
	return s.typed(key, document.Object)
}

func (s *scope) requiredObject(key string) (*document.Node, error) {
	node, ok, err := s.optionalObject(key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, document.Errorf(s.node.Pos, "missing required field %q", key)
	}
	return node, nil
}

// close walks the scope's keys in file order and fails on the first one no
// accessor consumed. Schemas are closed: unknown fields are hard errors.
func (s *scope) close() error {
	for _, e := range s.node.Entries {
		if _, ok := s.used[e.Key]; !ok {
			return document.Errorf(e.KeyPos, "unrecognized field %q", e.Key)
		}
	}
	return nil
}

// article prefixes the kind name with its indefinite article for error text.
func article(kind document.Kind) string {
	switch kind {
	case document.Int, document.Array, document.Object:
		return "an " + kind.String()
	default:
		return "a " + kind.String()
	}
}
