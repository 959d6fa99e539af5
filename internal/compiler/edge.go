package compiler

import (
	"fmt"

	"github.com/aretw0/espalier/pkg/document"
	"github.com/aretw0/espalier/pkg/machine"
)

func invokerDesc(invoker string, isTimer bool) string {
	if isTimer {
		return fmt.Sprintf("timer %q", invoker)
	}
	return fmt.Sprintf("event %q", invoker)
}

// parseEdge reads one transition. Scalars are shorthand for a single target;
// the object form adds sub-edges, traversal shapes and display hints.
func (c *compilation) parseEdge(invoker string, isTimer bool, node *document.Node) (*machine.Edge, error) {
	edge := &machine.Edge{Invoker: invoker, IsTimer: isTimer}
	if node.Kind != document.Object {
		target, err := c.parseTarget(node, "edge for "+invokerDesc(invoker, isTimer))
		if err != nil {
			return nil, err
		}
		edge.Target = target
		return edge, nil
	}

	s := newScope(node)
	desc := invokerDesc(invoker, isTimer)

	stateName, statePos, statePresent, err := s.optionalString("state")
	if err != nil {
		return nil, err
	}
	statesNode, statesPresent, err := s.optionalObject("states")
	if err != nil {
		return nil, err
	}
	switch {
	case statePresent && statesPresent:
		return nil, document.Errorf(node.Pos, `edge for %s cannot have both "state" and "states"`, desc)
	case statePresent:
		if err := c.states.require(stateName, statePos); err != nil {
			return nil, err
		}
		edge.Target = machine.ToState(stateName)
	case statesPresent:
		targets, err := c.parseSubEdges(statesNode, "edge for "+desc)
		if err != nil {
			return nil, err
		}
		edge.Targets = targets
	default:
		edge.Target = machine.NoChange()
	}

	traverseNode, traversePresent := s.any("on_traverse")
	var shapePositions []document.Position
	if traversePresent {
		edge.OnTraverse, shapePositions, err = parseTraverseShapes(traverseNode)
		if err != nil {
			return nil, err
		}
	}

	comment, commentPos, commentPresent, err := s.optionalString("on_traverse_comment")
	if err != nil {
		return nil, err
	}
	if commentPresent {
		if len(edge.OnTraverse) == 0 {
			return nil, document.Errorf(commentPos, `"on_traverse_comment" requires "on_traverse"`)
		}
		edge.TraverseComment = comment
	}

	color, _, colorPresent, err := s.optionalString("color")
	if err != nil {
		return nil, err
	}
	if colorPresent {
		edge.Color = color
	}

	if err := s.close(); err != nil {
		return nil, err
	}

	// A sub-edge map defers the destination choice, so the notification has
	// to fire exactly once and must not claim to know where the machine
	// goes.
	if edge.Targets != nil {
		if len(edge.OnTraverse) != 1 {
			pos := node.Pos
			if traversePresent {
				pos = traverseNode.Pos
			}
			return nil, document.Errorf(pos, "a sub-edge map requires exactly one traversal shape")
		}
		if edge.OnTraverse[0].RevealsTarget() {
			return nil, document.Errorf(shapePositions[0],
				"traversal shape %q reveals the destination and cannot be used with a sub-edge map", edge.OnTraverse[0])
		}
	}
	return edge, nil
}

// parseTarget applies the scalar target rule: null stays, a string names a
// state, false fails the run. true is never a target.
func (c *compilation) parseTarget(node *document.Node, context string) (machine.EdgeTarget, error) {
	switch node.Kind {
	case document.Null:
		return machine.NoChange(), nil
	case document.String:
		if err := c.states.require(node.StrVal, node.Pos); err != nil {
			return machine.EdgeTarget{}, err
		}
		return machine.ToState(node.StrVal), nil
	case document.Bool:
		if node.BoolVal {
			return machine.EdgeTarget{}, document.Errorf(node.Pos, "%s must not be true (only false denotes a failure target)", context)
		}
		return machine.ToFailure(), nil
	default:
		return machine.EdgeTarget{}, document.Errorf(node.Pos, "%s must be null, a state name, or false, got %s", context, node.Kind)
	}
}

// parseSubEdges reads a label-to-target map. Labels are free text; the
// document layer keeps them unique. Targets must be unique too, and failure
// is not an allowed branch.
func (c *compilation) parseSubEdges(node *document.Node, context string) (map[string]machine.EdgeTarget, error) {
	if len(node.Entries) == 0 {
		return nil, document.Errorf(node.Pos, "%s: sub-edge map must not be empty", context)
	}
	targets := make(map[string]machine.EdgeTarget, len(node.Entries))
	seen := make(map[machine.EdgeTarget]struct{}, len(node.Entries))
	for _, e := range node.Entries {
		target, err := c.parseTarget(e.Value, fmt.Sprintf("sub-edge %q", e.Key))
		if err != nil {
			return nil, err
		}
		if target.Kind == machine.TargetFailure {
			return nil, document.Errorf(e.Value.Pos, "sub-edge %q must not target failure", e.Key)
		}
		if _, dup := seen[target]; dup {
			return nil, document.Errorf(e.Value.Pos, "duplicate sub-edge target %s", target)
		}
		seen[target] = struct{}{}
		if _, dup := targets[e.Key]; dup {
			return nil, document.Errorf(e.KeyPos, "duplicate sub-edge label %q", e.Key)
		}
		targets[e.Key] = target
	}
	return targets, nil
}

// parseTraverseShapes reads on_traverse: null selects nothing, a string
// selects one shape, an array selects several without repeats. The returned
// positions parallel the shapes for later diagnostics.
func parseTraverseShapes(node *document.Node) ([]machine.TraverseKind, []document.Position, error) {
	switch node.Kind {
	case document.Null:
		return nil, nil, nil
	case document.String:
		kind, ok := machine.ParseTraverseKind(node.StrVal)
		if !ok {
			return nil, nil, document.Errorf(node.Pos, "unknown traversal shape %q", node.StrVal)
		}
		return []machine.TraverseKind{kind}, []document.Position{node.Pos}, nil
	case document.Array:
		kinds := make([]machine.TraverseKind, 0, len(node.Items))
		positions := make([]document.Position, 0, len(node.Items))
		seen := make(map[machine.TraverseKind]struct{}, len(node.Items))
		for _, item := range node.Items {
			if item.Kind != document.String {
				return nil, nil, document.Errorf(item.Pos, "on_traverse entries must be strings, got %s", item.Kind)
			}
			kind, ok := machine.ParseTraverseKind(item.StrVal)
			if !ok {
				return nil, nil, document.Errorf(item.Pos, "unknown traversal shape %q", item.StrVal)
			}
			if _, dup := seen[kind]; dup {
				return nil, nil, document.Errorf(item.Pos, "duplicate traversal shape %q", kind)
			}
			seen[kind] = struct{}{}
			kinds = append(kinds, kind)
			positions = append(positions, item.Pos)
		}
		return kinds, positions, nil
	default:
		return nil, nil, document.Errorf(node.Pos, "on_traverse must be a string or an array of strings, got %s", node.Kind)
	}
}
