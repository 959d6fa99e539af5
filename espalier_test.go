package espalier_test

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/pkg/document"
)

const facadeDefinition = `
timers:
  t_retry: 30
events:
  confirm:
    after_states: [waiting, sending]
states:
  waiting:
    on_event:
      confirm: sending
  sending:
    start_timers: [t_retry]
    on_timer:
      t_retry: sending
    on_event:
      confirm: done
  done:
    final: true
start_state: waiting
`

func TestCompile(t *testing.T) {
	model, err := espalier.Compile([]byte(facadeDefinition))
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	if model.StartState != "waiting" {
		t.Errorf("Expected start state 'waiting', got %q", model.StartState)
	}
	if got := model.StateNames(); len(got) != 3 {
		t.Errorf("Expected 3 states, got %v", got)
	}
	if model.Timers["t_retry"].Timeout != 30 {
		t.Errorf("Expected t_retry timeout 30, got %v", model.Timers["t_retry"].Timeout)
	}
	if !model.States["done"].Final {
		t.Error("Expected 'done' to be final")
	}
}

func TestCompile_JSONInput(t *testing.T) {
	src := `{"states": {"A": {"final": true}}, "start_state": "A"}`
	model, err := espalier.Compile([]byte(src))
	if err != nil {
		t.Fatalf("Compile failed on JSON input: %v", err)
	}
	if model.StartState != "A" {
		t.Errorf("Expected start state 'A', got %q", model.StartState)
	}
}

func TestCompile_ReportsFirstViolation(t *testing.T) {
	src := strings.Replace(facadeDefinition, "confirm: sending", "confirm: sennding", 1)

	_, err := espalier.Compile([]byte(src))
	if err == nil {
		t.Fatal("Expected a validation error")
	}

	var docErr *document.Error
	if !errors.As(err, &docErr) {
		t.Fatalf("Expected *document.Error, got %T", err)
	}
	if docErr.Pos.Line == 0 {
		t.Errorf("Expected an anchored position, got %v", docErr.Pos)
	}
	if !strings.Contains(docErr.Msg, `unknown state "sennding"`) {
		t.Errorf("Unexpected message: %q", docErr.Msg)
	}
}

func TestCompileFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "machine.yaml")
	if err := os.WriteFile(path, []byte(facadeDefinition), 0644); err != nil {
		t.Fatal(err)
	}

	model, err := espalier.CompileFile(path)
	if err != nil {
		t.Fatalf("CompileFile failed: %v", err)
	}
	if model.StartState != "waiting" {
		t.Errorf("Expected start state 'waiting', got %q", model.StartState)
	}

	if _, err := espalier.CompileFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected an error for a missing file")
	}
}

func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	c := espalier.New(espalier.WithLogger(logger))
	if _, err := c.Compile([]byte(facadeDefinition)); err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	if !strings.Contains(buf.String(), "definition compiled") {
		t.Errorf("Expected compile log entry, got: %s", buf.String())
	}
}

func TestVersion(t *testing.T) {
	if strings.TrimSpace(espalier.Version) == "" {
		t.Error("Expected embedded version to be non-empty")
	}
}
