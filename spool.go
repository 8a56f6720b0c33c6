package spool

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/spool/internal/codegen"
	"github.com/aretw0/spool/internal/logging"
	"github.com/aretw0/spool/internal/optimizer"
	"github.com/aretw0/spool/pkg/lang"
	"github.com/aretw0/spool/pkg/machine"
	"github.com/aretw0/spool/pkg/sim"
)

// Version is the library version, reported by the CLI and the MCP
// server.
const Version = "0.3.0"

// Option configures Compile and Run.
type Option func(*config)

type config struct {
	optimize  bool
	stepLimit int
	logger    *slog.Logger
}

func newConfig(opts []Option) config {
	cfg := config{
		optimize:  true,
		stepLimit: sim.DefaultStepLimit,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithOptimize toggles the post-compile optimizer passes (on by
// default).
func WithOptimize(on bool) Option {
	return func(c *config) {
		c.optimize = on
	}
}

// WithStepLimit bounds simulator runs started through Run.
func WithStepLimit(n int) Option {
	return func(c *config) {
		c.stepLimit = n
	}
}

// WithLogger sets a structured logger for compile diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// Compile parses and lowers decision-language source to a validated
// machine.
func Compile(source string, opts ...Option) (*machine.Machine, error) {
	cfg := newConfig(opts)

	prog, err := lang.Parse(source)
	if err != nil {
		return nil, err
	}

	m, err := codegen.Compile(prog)
	if err != nil {
		return nil, err
	}
	cfg.logger.Debug("lowered program",
		"states", len(m.States),
		"transitions", m.TransitionCount(),
	)

	if cfg.optimize {
		optimizer.Optimize(m, optimizer.DefaultOptions())
		cfg.logger.Debug("optimized machine", "states", len(m.States))
	}

	if err := m.Validate(); err != nil {
		// A structurally broken machine out of lowering is a compiler
		// bug, not a user error.
		return nil, fmt.Errorf("compiler produced an invalid machine: %w", err)
	}
	return m, nil
}

// Run compiles the source and executes the machine on input.
func Run(source, input string, opts ...Option) (sim.Result, error) {
	cfg := newConfig(opts)
	m, err := Compile(source, opts...)
	if err != nil {
		return sim.Result{}, err
	}
	return sim.New(m, sim.WithStepLimit(cfg.stepLimit)).Run(input), nil
}

// RunMachine executes an already-compiled machine on input.
func RunMachine(m *machine.Machine, input string, opts ...Option) sim.Result {
	cfg := newConfig(opts)
	return sim.New(m, sim.WithStepLimit(cfg.stepLimit)).Run(input)
}
