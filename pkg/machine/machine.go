package machine

import "sort"

// StateMachine is the fully validated model of one machine definition.
// All maps are keyed by declared name; references between descriptors are
// carried as names and are guaranteed to resolve.
type StateMachine struct {
	// StartState names the state the machine begins in.
	StartState string `json:"start_state" yaml:"start_state"`

	Timers map[string]*Timer `json:"timers,omitempty" yaml:"timers,omitempty"`
	Events map[string]*Event `json:"events" yaml:"events"`
	States map[string]*State `json:"states" yaml:"states"`
}

// Timer is a declared timer with its default timeout.
type Timer struct {
	Name string `json:"name" yaml:"name"`

	// Timeout is the default expiry in seconds. Finite and non-negative.
	Timeout float64 `json:"timeout" yaml:"timeout"`
}

// Event is a declared event: an external stimulus the machine can react to.
type Event struct {
	Name string `json:"name" yaml:"name"`

	// AfterStates restricts the states the event may fire in. Empty means
	// unrestricted. Order follows the definition file; entries are unique
	// and name declared states.
	AfterStates []string `json:"after_states,omitempty" yaml:"after_states,omitempty"`

	// Args describes the payload carried by the event, in declaration order.
	Args []Arg `json:"args,omitempty" yaml:"args,omitempty"`

	// OnlyOnce marks events that may fire at most once per machine run.
	OnlyOnce bool `json:"only_once,omitempty" yaml:"only_once,omitempty"`
}

// Arg is one named event argument. Type is an opaque tag passed through to
// code generation backends; the compiler does not interpret it.
type Arg struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
}

// StateNames returns the declared state names in sorted order.
func (m *StateMachine) StateNames() []string {
	return sortedKeys(m.States)
}

// EventNames returns the declared event names in sorted order.
func (m *StateMachine) EventNames() []string {
	return sortedKeys(m.Events)
}

// TimerNames returns the declared timer names in sorted order.
func (m *StateMachine) TimerNames() []string {
	return sortedKeys(m.Timers)
}

func sortedKeys[V any](in map[string]V) []string {
	out := make([]string, 0, len(in))
	for name := range in {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
