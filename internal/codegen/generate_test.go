package codegen_test

import (
	"go/parser"
	"go/token"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/espalier/internal/codegen"
	"github.com/aretw0/espalier/internal/compiler"
	"github.com/aretw0/espalier/pkg/document"
	"github.com/aretw0/espalier/pkg/machine"
)

func compileModel(t *testing.T, src string) *machine.StateMachine {
	t.Helper()
	root, err := document.Parse([]byte(src))
	require.NoError(t, err)
	m, err := compiler.Compile(root)
	require.NoError(t, err)
	return m
}

const generatorInput = `
timers:
  t_tick: 5
  t_poll: 1.5
events:
  go:
    args:
      payload: blob
  cancel: {}
states:
  Idle:
    on_event:
      go: Busy
      cancel: false
  Busy:
    start_timers: [t_tick]
    on_timer:
      t_tick:
        states:
          win: Done
          retry: Idle
        on_traverse: trigger_only
      t_poll: ~
  Done:
    stop_timers: [t_tick]
    next_state: End
  End:
    final: true
start_state: Idle
`

func TestGenerate(t *testing.T) {
	m := compileModel(t, generatorInput)

	src, err := codegen.Generate(m, codegen.Options{})
	require.NoError(t, err)
	out := string(src)

	t.Run("Is Valid Go", func(t *testing.T) {
		_, err := parser.ParseFile(token.NewFileSet(), "machine_gen.go", src, 0)
		require.NoError(t, err)
	})

	t.Run("Header And Package", func(t *testing.T) {
		assert.True(t, strings.HasPrefix(out, "// Code generated by espalier; DO NOT EDIT."))
		assert.Contains(t, out, "package machine\n")
	})

	t.Run("Name Constants", func(t *testing.T) {
		assert.Contains(t, out, `StateBusy State = "Busy"`)
		assert.Contains(t, out, `StateEnd State = "End"`)
		assert.Contains(t, out, `EventCancel Event = "cancel"`)
		assert.Contains(t, out, `TimerTPoll Timer = "t_poll"`)
	})

	t.Run("Start Final Next", func(t *testing.T) {
		assert.Contains(t, out, "const StartState = StateIdle")
		assert.Contains(t, out, "StateEnd: {},")
		assert.Contains(t, out, "StateDone: StateEnd,")
	})

	t.Run("Timeouts", func(t *testing.T) {
		assert.Contains(t, out, "TimerTTick: 5 * time.Second,")
		assert.Contains(t, out, "TimerTPoll: 1500 * time.Millisecond,")
	})

	t.Run("Transition Table", func(t *testing.T) {
		assert.Contains(t, out, "Stay: true,")
		assert.Contains(t, out, "Fail: true,")
		assert.Contains(t, out, `"retry": {Target: StateIdle},`)
		assert.Contains(t, out, `"win": {Target: StateDone},`)
		assert.Contains(t, out, `Notify: []string{"trigger_only"},`)

		// Sources sorted, timers ahead of events within a state.
		poll := strings.Index(out, "Timer: TimerTPoll,")
		tick := strings.Index(out, "Timer: TimerTTick,")
		cancel := strings.Index(out, "Event: EventCancel,")
		require.NotEqual(t, -1, poll)
		require.NotEqual(t, -1, tick)
		require.NotEqual(t, -1, cancel)
		assert.Less(t, poll, tick)
		assert.Less(t, tick, cancel)
	})

	t.Run("Event Args", func(t *testing.T) {
		assert.Contains(t, out, `{Name: "payload", Type: "blob"},`)
		assert.NotContains(t, out, "EventCancel: {")
	})
}

func TestGenerate_PackageOption(t *testing.T) {
	m := compileModel(t, generatorInput)

	src, err := codegen.Generate(m, codegen.Options{Package: "traffic"})
	require.NoError(t, err)
	assert.Contains(t, string(src), "package traffic\n")
}

func TestGenerate_Deterministic(t *testing.T) {
	m := compileModel(t, generatorInput)

	first, err := codegen.Generate(m, codegen.Options{})
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		next, err := codegen.Generate(m, codegen.Options{})
		require.NoError(t, err)
		require.Equal(t, string(first), string(next))
	}
}

func TestGenerate_IdentifierCollisions(t *testing.T) {
	m := compileModel(t, `
events:
  a-b: {}
  a_b: {}
states:
  A:
    final: true
start_state: A
`)

	src, err := codegen.Generate(m, codegen.Options{})
	require.NoError(t, err)
	out := string(src)

	assert.Contains(t, out, `EventAB Event = "a-b"`)
	assert.Contains(t, out, `EventAB_2 Event = "a_b"`)
}

func TestGenerate_NoTimersOmitsTimeImport(t *testing.T) {
	m := compileModel(t, `
states:
  A:
    final: true
start_state: A
`)

	src, err := codegen.Generate(m, codegen.Options{})
	require.NoError(t, err)
	out := string(src)

	assert.NotContains(t, out, `"time"`)
	_, err = parser.ParseFile(token.NewFileSet(), "machine_gen.go", src, 0)
	require.NoError(t, err)
}
