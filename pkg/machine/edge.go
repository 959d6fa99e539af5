package machine

import "fmt"

// TargetKind discriminates the three places an edge can lead.
type TargetKind string

const (
	// TargetNoChange keeps the machine in its current state.
	TargetNoChange TargetKind = "no_change"
	// TargetState moves the machine to a named state.
	TargetState TargetKind = "state"
	// TargetFailure aborts the machine run.
	TargetFailure TargetKind = "failure"
)

// EdgeTarget is the destination of an edge: stay, move to a named state, or
// fail the run. State is set only when Kind is TargetState. The type is
// comparable, so target uniqueness checks are plain equality.
type EdgeTarget struct {
	Kind  TargetKind `json:"kind" yaml:"kind"`
	State string     `json:"state,omitempty" yaml:"state,omitempty"`
}

// NoChange returns the stay-in-place target.
func NoChange() EdgeTarget {
	return EdgeTarget{Kind: TargetNoChange}
}

// ToState returns a target naming a destination state.
func ToState(name string) EdgeTarget {
	return EdgeTarget{Kind: TargetState, State: name}
}

// ToFailure returns the run-aborting target.
func ToFailure() EdgeTarget {
	return EdgeTarget{Kind: TargetFailure}
}

func (t EdgeTarget) String() string {
	switch t.Kind {
	case TargetNoChange:
		return "no change"
	case TargetState:
		return fmt.Sprintf("state %q", t.State)
	case TargetFailure:
		return "failure"
	default:
		return string(t.Kind)
	}
}

// Edge is one transition out of a state, owned by the invoker (timer or
// event) that triggers it.
type Edge struct {
	// Invoker is the declared timer or event name this edge reacts to.
	Invoker string `json:"invoker" yaml:"invoker"`

	// IsTimer distinguishes timer edges from event edges.
	IsTimer bool `json:"is_timer,omitempty" yaml:"is_timer,omitempty"`

	// Target is the destination when Targets is nil. It is zero, and left
	// out of serialized forms, when the edge branches through Targets.
	Target EdgeTarget `json:"target,omitzero" yaml:"target,omitempty"`

	// Targets, when non-nil, is a label-keyed choice of destinations
	// offered to the notified party. Labels are unique, targets are unique,
	// and none of them is a failure.
	Targets map[string]EdgeTarget `json:"targets,omitempty" yaml:"targets,omitempty"`

	// OnTraverse lists the notification shapes selected for this edge, in
	// declaration order, without duplicates.
	OnTraverse []TraverseKind `json:"on_traverse,omitempty" yaml:"on_traverse,omitempty"`

	// TraverseComment is free text attached to the traversal notification.
	TraverseComment string `json:"on_traverse_comment,omitempty" yaml:"on_traverse_comment,omitempty"`

	// Color is a free-form rendering hint for diagram backends.
	Color string `json:"color,omitempty" yaml:"color,omitempty"`
}

// HasTargets reports whether the edge branches through a sub-edge map rather
// than a single destination.
func (e *Edge) HasTargets() bool {
	return e.Targets != nil
}
