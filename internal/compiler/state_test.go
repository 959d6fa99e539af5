package compiler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/espalier/pkg/machine"
)

// wrap builds a one-state document around a state body so tests only spell
// out the part under test.
func wrap(body string) string {
	return "timers:\n  t1: 5\n  t2: 10\nevents:\n  go: {}\nstates:\n  Other:\n    final: true\n  A:\n" + body + "start_state: A\n"
}

func TestState_ExactlyOneBehavior(t *testing.T) {
	t.Run("No Behavior", func(t *testing.T) {
		_, err := compile(t, wrap("    color: red\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), `state "A" has no behavior`)
	})

	t.Run("Final False Does Not Count", func(t *testing.T) {
		_, err := compile(t, wrap("    final: false\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), `state "A" has no behavior`)
	})

	t.Run("Empty Edge Section Counts", func(t *testing.T) {
		model := mustCompile(t, wrap("    on_timer: {}\n"))
		a := model.States["A"]
		assert.True(t, a.HasEdges())
		assert.NotNil(t, a.TimerEdges)
		assert.Empty(t, a.TimerEdges)
	})

	t.Run("Both Edge Sections Count As One", func(t *testing.T) {
		model := mustCompile(t, wrap("    on_timer:\n      t1: null\n    on_event:\n      go: null\n"))
		a := model.States["A"]
		assert.Len(t, a.TimerEdges, 1)
		assert.Len(t, a.EventEdges, 1)
	})

	t.Run("Edges Conflict With Final", func(t *testing.T) {
		_, err := compile(t, wrap("    on_timer: {}\n    final: true\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "conflicting behaviors")
	})

	t.Run("Next State Conflicts With Final", func(t *testing.T) {
		_, err := compile(t, wrap("    next_state: Other\n    final: true\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "conflicting behaviors")
	})

	t.Run("All Three Conflict", func(t *testing.T) {
		_, err := compile(t, wrap("    on_event: {}\n    next_state: Other\n    final: true\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "conflicting behaviors")
	})
}

func TestState_StartTimers(t *testing.T) {
	t.Run("Bare Timer Name", func(t *testing.T) {
		model := mustCompile(t, wrap("    start_timers: [t1]\n    final: true\n"))
		start := model.States["A"].StartTimers["t1"]
		require.NotNil(t, start)
		assert.Equal(t, "t1", start.Timer)
		assert.Nil(t, start.Modify)
	})

	t.Run("Fixed Set Value", func(t *testing.T) {
		model := mustCompile(t, wrap("    start_timers:\n      - {timer: t1, modify: 2.5}\n    final: true\n"))
		modify := model.States["A"].StartTimers["t1"].Modify
		require.NotNil(t, modify)
		require.NotNil(t, modify.Set)
		assert.Equal(t, 2.5, *modify.Set)
		assert.Nil(t, modify.Increment)
	})

	t.Run("Adjustment Record", func(t *testing.T) {
		model := mustCompile(t, wrap("    start_timers:\n      - {timer: t1, modify: {increment: -1, min: 0.5, max: 30}}\n    final: true\n"))
		modify := model.States["A"].StartTimers["t1"].Modify
		require.NotNil(t, modify)
		assert.Nil(t, modify.Set)
		require.NotNil(t, modify.Increment)
		assert.Equal(t, -1.0, *modify.Increment)
		require.NotNil(t, modify.Min)
		assert.Equal(t, 0.5, *modify.Min)
		require.NotNil(t, modify.Max)
		assert.Equal(t, 30.0, *modify.Max)
	})

	t.Run("Undeclared Timer", func(t *testing.T) {
		_, err := compile(t, wrap("    start_timers: [ghost]\n    final: true\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown timer "ghost"`)
	})

	t.Run("Duplicate Entry", func(t *testing.T) {
		_, err := compile(t, wrap("    start_timers: [t1, t1]\n    final: true\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), `duplicate start_timers entry "t1"`)
	})

	t.Run("Duplicate Across Forms", func(t *testing.T) {
		_, err := compile(t, wrap("    start_timers:\n      - t1\n      - {timer: t1, modify: 3}\n    final: true\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), `duplicate start_timers entry "t1"`)
	})

	t.Run("Bad Entry Kind", func(t *testing.T) {
		_, err := compile(t, wrap("    start_timers: [5]\n    final: true\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "start_timers entries must be timer names or objects, got integer")
	})

	t.Run("Missing Timer Field", func(t *testing.T) {
		_, err := compile(t, wrap("    start_timers:\n      - {modify: 3}\n    final: true\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), `missing required field "timer"`)
	})

	t.Run("Unrecognized Entry Field", func(t *testing.T) {
		_, err := compile(t, wrap("    start_timers:\n      - {timer: t1, modfy: 3}\n    final: true\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unrecognized field "modfy"`)
	})
}

func TestState_TimerModify(t *testing.T) {
	t.Run("Negative Set Value", func(t *testing.T) {
		_, err := compile(t, wrap("    start_timers:\n      - {timer: t1, modify: -2}\n    final: true\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "modify value must be non-negative")
	})

	t.Run("Min Above Max", func(t *testing.T) {
		_, err := compile(t, wrap("    start_timers:\n      - {timer: t1, modify: {increment: 1, min: 10, max: 5}}\n    final: true\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), `modify "min" must not exceed "max"`)
	})

	t.Run("Clamp Alone Is Not Enough", func(t *testing.T) {
		_, err := compile(t, wrap("    start_timers:\n      - {timer: t1, modify: {min: 1, max: 5}}\n    final: true\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), `modify requires at least one of "increment" or "multiplier"`)
	})

	t.Run("Bad Modify Kind", func(t *testing.T) {
		_, err := compile(t, wrap("    start_timers:\n      - {timer: t1, modify: soon}\n    final: true\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "modify must be a number or an object, got string")
	})

	t.Run("Non-Numeric Field", func(t *testing.T) {
		_, err := compile(t, wrap("    start_timers:\n      - {timer: t1, modify: {increment: fast}}\n    final: true\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), `field "increment" must be a number, got string`)
	})
}

func TestState_StopTimers(t *testing.T) {
	t.Run("Declared Timers In Order", func(t *testing.T) {
		model := mustCompile(t, wrap("    stop_timers: [t2, t1]\n    final: true\n"))
		assert.Equal(t, []string{"t2", "t1"}, model.States["A"].StopTimers)
	})

	t.Run("Undeclared Timer", func(t *testing.T) {
		_, err := compile(t, wrap("    stop_timers: [ghost]\n    final: true\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown timer "ghost"`)
	})

	t.Run("Duplicate Entry", func(t *testing.T) {
		_, err := compile(t, wrap("    stop_timers: [t1, t1]\n    final: true\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), `duplicate stop_timers entry "t1"`)
	})

	t.Run("Non-String Entry", func(t *testing.T) {
		_, err := compile(t, wrap("    stop_timers: [null]\n    final: true\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "stop_timers entries must be strings, got null")
	})
}

func TestState_OnEnter(t *testing.T) {
	t.Run("True Is Plain Notification", func(t *testing.T) {
		model := mustCompile(t, wrap("    on_enter: true\n    final: true\n"))
		enter := model.States["A"].OnEnter
		require.NotNil(t, enter)
		assert.Nil(t, enter.Targets)
		assert.Empty(t, enter.Comment)
	})

	t.Run("False Is Inactive", func(t *testing.T) {
		model := mustCompile(t, wrap("    on_enter: false\n    final: true\n"))
		assert.Nil(t, model.States["A"].OnEnter)
	})

	t.Run("Object Is Sub-Edge Map", func(t *testing.T) {
		model := mustCompile(t, wrap("    on_enter:\n      proceed: Other\n      hold: null\n    final: true\n"))
		enter := model.States["A"].OnEnter
		require.NotNil(t, enter)
		require.Len(t, enter.Targets, 2)
		assert.Equal(t, machine.ToState("Other"), enter.Targets["proceed"])
		assert.Equal(t, machine.NoChange(), enter.Targets["hold"])
	})

	t.Run("Empty Map Rejected", func(t *testing.T) {
		_, err := compile(t, wrap("    on_enter: {}\n    final: true\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "on_enter: sub-edge map must not be empty")
	})

	t.Run("Failure Target Rejected", func(t *testing.T) {
		_, err := compile(t, wrap("    on_enter:\n      abort: false\n    final: true\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), `sub-edge "abort" must not target failure`)
	})

	t.Run("Comment Requires Active On Enter", func(t *testing.T) {
		_, err := compile(t, wrap("    on_enter_comment: note\n    final: true\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"on_enter_comment" requires an active "on_enter"`)
	})

	t.Run("Comment With Disabled On Enter", func(t *testing.T) {
		_, err := compile(t, wrap("    on_enter: false\n    on_enter_comment: note\n    final: true\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"on_enter_comment" requires an active "on_enter"`)
	})

	t.Run("Comment Stored", func(t *testing.T) {
		model := mustCompile(t, wrap("    on_enter: true\n    on_enter_comment: arrival note\n    final: true\n"))
		assert.Equal(t, "arrival note", model.States["A"].OnEnter.Comment)
	})

	t.Run("Bad Kind", func(t *testing.T) {
		_, err := compile(t, wrap("    on_enter: soon\n    final: true\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "on_enter must be true, false, or an object of targets, got string")
	})
}

func TestState_Misc(t *testing.T) {
	t.Run("Next State Unknown", func(t *testing.T) {
		_, err := compile(t, wrap("    next_state: Nowhere\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown state "Nowhere"`)
	})

	t.Run("Unrecognized Field", func(t *testing.T) {
		_, err := compile(t, wrap("    final: true\n    colour: red\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unrecognized field "colour"`)
	})

	t.Run("Body Must Be Object", func(t *testing.T) {
		_, err := compile(t, "states:\n  A: final\nstart_state: A\n")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `state "A" must be an object, got string`)
	})

	t.Run("Color Stored", func(t *testing.T) {
		model := mustCompile(t, wrap("    final: true\n    color: \"#ff8800\"\n"))
		assert.Equal(t, "#ff8800", model.States["A"].Color)
	})

	t.Run("Unknown Event Edge Key", func(t *testing.T) {
		_, err := compile(t, wrap("    on_event:\n      missing_event: null\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown event "missing_event"`)
	})
}
