package machine

// TraverseKind names the payload shape of a transition notification. The set
// is closed; definition files select shapes by these exact tokens.
type TraverseKind string

const (
	// TraverseNone notifies with no payload.
	TraverseNone TraverseKind = "none"
	// TraverseTriggerOnly carries the triggering timer or event.
	TraverseTriggerOnly TraverseKind = "trigger_only"
	// TraverseSourceOnly carries the state being left.
	TraverseSourceOnly TraverseKind = "source_only"
	// TraverseFullContext carries trigger, source and destination.
	TraverseFullContext TraverseKind = "full_context"
	// TraverseTriggerTarget carries the trigger and the destination.
	TraverseTriggerTarget TraverseKind = "trigger_target"
	// TraverseSourceTarget carries the source and the destination.
	TraverseSourceTarget TraverseKind = "source_target"
	// TraverseTargetOnly carries only the destination.
	TraverseTargetOnly TraverseKind = "target_only"
)

// traverseKinds lists every member in its canonical order, used for
// membership checks and for enumerating valid tokens in diagnostics.
var traverseKinds = []TraverseKind{
	TraverseNone,
	TraverseTriggerOnly,
	TraverseSourceOnly,
	TraverseFullContext,
	TraverseTriggerTarget,
	TraverseSourceTarget,
	TraverseTargetOnly,
}

// TraverseKinds returns all members of the enumeration in canonical order.
func TraverseKinds() []TraverseKind {
	out := make([]TraverseKind, len(traverseKinds))
	copy(out, traverseKinds)
	return out
}

// ParseTraverseKind maps a definition-file token to its TraverseKind. The
// second result is false for tokens outside the closed set.
func ParseTraverseKind(token string) (TraverseKind, bool) {
	for _, k := range traverseKinds {
		if string(k) == token {
			return k, true
		}
	}
	return "", false
}

// RevealsTarget reports whether the shape includes the destination state in
// its payload. Shapes that do are incompatible with edges whose destination
// is chosen later through a sub-edge map.
func (k TraverseKind) RevealsTarget() bool {
	switch k {
	case TraverseFullContext, TraverseTriggerTarget, TraverseSourceTarget, TraverseTargetOnly:
		return true
	default:
		return false
	}
}
