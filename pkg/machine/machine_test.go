package machine

import (
	"reflect"
	"testing"
)

func TestStateMachine_SortedNames(t *testing.T) {
	m := &StateMachine{
		StartState: "idle",
		Timers:     map[string]*Timer{"t_slow": {Name: "t_slow"}, "t_fast": {Name: "t_fast"}},
		Events:     map[string]*Event{"go": {Name: "go"}, "abort": {Name: "abort"}},
		States:     map[string]*State{"idle": {Name: "idle"}, "done": {Name: "done"}, "busy": {Name: "busy"}},
	}

	if got, want := m.TimerNames(), []string{"t_fast", "t_slow"}; !reflect.DeepEqual(got, want) {
		t.Errorf("TimerNames() = %v, want %v", got, want)
	}
	if got, want := m.EventNames(), []string{"abort", "go"}; !reflect.DeepEqual(got, want) {
		t.Errorf("EventNames() = %v, want %v", got, want)
	}
	if got, want := m.StateNames(), []string{"busy", "done", "idle"}; !reflect.DeepEqual(got, want) {
		t.Errorf("StateNames() = %v, want %v", got, want)
	}
}

func TestEdgeTarget_Equality(t *testing.T) {
	if ToState("a") != ToState("a") {
		t.Error("identical state targets should compare equal")
	}
	if ToState("a") == ToState("b") {
		t.Error("different state targets should compare unequal")
	}
	if NoChange() == ToFailure() {
		t.Error("no-change and failure should compare unequal")
	}
	if NoChange() == ToState("") {
		t.Error("kind must participate in equality")
	}
}

func TestEdgeTarget_String(t *testing.T) {
	cases := []struct {
		target EdgeTarget
		want   string
	}{
		{NoChange(), "no change"},
		{ToState("ready"), `state "ready"`},
		{ToFailure(), "failure"},
	}
	for _, tc := range cases {
		if got := tc.target.String(); got != tc.want {
			t.Errorf("String() = %q, want %q", got, tc.want)
		}
	}
}

func TestParseTraverseKind(t *testing.T) {
	for _, k := range TraverseKinds() {
		got, ok := ParseTraverseKind(string(k))
		if !ok || got != k {
			t.Errorf("ParseTraverseKind(%q) = %v, %v", k, got, ok)
		}
	}
	if _, ok := ParseTraverseKind("everything"); ok {
		t.Error("tokens outside the set must be rejected")
	}
	if _, ok := ParseTraverseKind("Trigger_Only"); ok {
		t.Error("matching is case-sensitive")
	}
}

func TestTraverseKind_RevealsTarget(t *testing.T) {
	revealing := map[TraverseKind]bool{
		TraverseNone:          false,
		TraverseTriggerOnly:   false,
		TraverseSourceOnly:    false,
		TraverseFullContext:   true,
		TraverseTriggerTarget: true,
		TraverseSourceTarget:  true,
		TraverseTargetOnly:    true,
	}
	for k, want := range revealing {
		if got := k.RevealsTarget(); got != want {
			t.Errorf("%s.RevealsTarget() = %v, want %v", k, got, want)
		}
	}
}
