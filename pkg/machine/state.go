package machine

// State is one declared machine state. Exactly one of the three behaviors is
// set: transition edges (HasEdges), an unconditional NextState, or Final.
type State struct {
	Name string `json:"name" yaml:"name"`

	// StartTimers maps timer names to the (re)start action taken on entry.
	// Every key names a declared timer.
	StartTimers map[string]*TimerStart `json:"start_timers,omitempty" yaml:"start_timers,omitempty"`

	// StopTimers lists the timers cancelled on entry, in declaration order,
	// without duplicates.
	StopTimers []string `json:"stop_timers,omitempty" yaml:"stop_timers,omitempty"`

	// OnEnter, when non-nil, requests an entry notification.
	OnEnter *OnEnter `json:"on_enter,omitempty" yaml:"on_enter,omitempty"`

	// TimerEdges and EventEdges map invoker names (declared timers or
	// events) to the edge taken when that invoker fires. A nil map means
	// the definition carried no such section; a non-nil empty map means the
	// section was present but empty.
	TimerEdges map[string]*Edge `json:"on_timer,omitempty" yaml:"on_timer,omitempty"`
	EventEdges map[string]*Edge `json:"on_event,omitempty" yaml:"on_event,omitempty"`

	// NextState, when set, is the state entered unconditionally after this
	// one's entry actions run.
	NextState string `json:"next_state,omitempty" yaml:"next_state,omitempty"`

	// Final marks a terminal state.
	Final bool `json:"final,omitempty" yaml:"final,omitempty"`

	// Color is a free-form rendering hint for diagram backends.
	Color string `json:"color,omitempty" yaml:"color,omitempty"`
}

// HasEdges reports whether the definition carried a transition-edge section,
// even an empty one.
func (s *State) HasEdges() bool {
	return s.TimerEdges != nil || s.EventEdges != nil
}

// OnEnter describes the entry notification of a state. A nil Targets map is
// the plain form: notify and stay on whatever path brought the machine here.
// A non-nil Targets map branches to one of several follow-up targets chosen
// by the notified party; labels are unique and so are the targets behind
// them.
type OnEnter struct {
	Comment string                `json:"comment,omitempty" yaml:"comment,omitempty"`
	Targets map[string]EdgeTarget `json:"targets,omitempty" yaml:"targets,omitempty"`
}

// TimerStart is one entry of a state's start_timers section. A nil Modify
// starts the timer with its declared default timeout.
type TimerStart struct {
	Timer  string       `json:"timer" yaml:"timer"`
	Modify *TimerModify `json:"modify,omitempty" yaml:"modify,omitempty"`
}

// TimerModify adjusts a timer's timeout at start time. Either Set is present
// alone (a fixed replacement timeout), or at least one of Increment and
// Multiplier is present, optionally clamped by Min and Max.
type TimerModify struct {
	Set        *float64 `json:"set,omitempty" yaml:"set,omitempty"`
	Increment  *float64 `json:"increment,omitempty" yaml:"increment,omitempty"`
	Multiplier *float64 `json:"multiplier,omitempty" yaml:"multiplier,omitempty"`
	Min        *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max        *float64 `json:"max,omitempty" yaml:"max,omitempty"`
}
