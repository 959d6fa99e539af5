package espalier

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/espalier/internal/compiler"
	"github.com/aretw0/espalier/internal/logging"
	"github.com/aretw0/espalier/pkg/document"
	"github.com/aretw0/espalier/pkg/machine"
)

// Compiler is the high-level entry point for the espalier library.
// It wraps parsing and semantic validation behind a single call.
type Compiler struct {
	logger *slog.Logger
}

// Option defines a functional option for configuring the Compiler.
type Option func(*Compiler)

// WithLogger sets a custom structured logger for the compiler.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Compiler) {
		c.logger = logger
	}
}

// New initializes a new Compiler.
func New(opts ...Option) *Compiler {
	c := &Compiler{}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logging.NewNop()
	}
	return c
}

// Compile parses and validates a machine definition in one shot. The source
// may be YAML or JSON. The first violation aborts compilation with a
// *document.Error carrying the offending position; on success the returned
// model is complete and safe to share between goroutines.
func (c *Compiler) Compile(src []byte) (*machine.StateMachine, error) {
	root, err := document.Parse(src)
	if err != nil {
		c.logger.Debug("definition rejected", "stage", "parse", "error", err)
		return nil, err
	}

	m, err := compiler.Compile(root)
	if err != nil {
		c.logger.Debug("definition rejected", "stage", "validate", "error", err)
		return nil, err
	}

	c.logger.Debug("definition compiled",
		"start_state", m.StartState,
		"states", len(m.States),
		"events", len(m.Events),
		"timers", len(m.Timers),
	)
	return m, nil
}

// CompileFile reads and compiles a definition file.
func (c *Compiler) CompileFile(path string) (*machine.StateMachine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read definition: %w", err)
	}
	return c.Compile(data)
}

// Compile validates src with default options.
func Compile(src []byte) (*machine.StateMachine, error) {
	return New().Compile(src)
}

// CompileFile reads and validates a definition file with default options.
func CompileFile(path string) (*machine.StateMachine, error) {
	return New().CompileFile(path)
}
