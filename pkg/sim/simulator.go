// Package sim executes machines against concrete inputs under a step
// budget. The tape is left-bounded (Sipser model): cells are indexed
// 0, 1, 2, … and a Left move from cell 0 leaves the head at cell 0.
package sim

import (
	"strings"

	"github.com/aretw0/spool/pkg/machine"
)

// DefaultStepLimit bounds a Run call when no explicit limit is given.
const DefaultStepLimit = 1_000_000

// Result is the outcome of one Run. HitLimit distinguishes a timeout
// from a genuine halting rejection; no failure mode is an error.
type Result struct {
	Accepted  bool   `json:"accepted"`
	Steps     int    `json:"steps"`
	FinalTape string `json:"final_tape"`
	HitLimit  bool   `json:"hit_limit"`
}

// Config is a point-in-time snapshot of the simulation.
type Config struct {
	Tape  []machine.Symbol
	Head  int
	State string
}

// Simulator runs one machine. A simulator may be reused: Run and Reset
// discard all prior state.
type Simulator struct {
	m        *machine.Machine
	maxSteps int

	tape   []machine.Symbol
	head   int
	state  string
	steps  int
	halted bool
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithStepLimit overrides the default step budget.
func WithStepLimit(n int) Option {
	return func(s *Simulator) {
		s.maxSteps = n
	}
}

// New creates a simulator for a finalized machine.
func New(m *machine.Machine, opts ...Option) *Simulator {
	s := &Simulator{m: m, maxSteps: DefaultStepLimit}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes the machine on input until it halts or the step budget
// is exhausted. Identical inputs produce identical results.
func (s *Simulator) Run(input string) Result {
	s.Reset(input)

	for !s.halted && s.steps < s.maxSteps {
		s.Step()
	}

	return Result{
		Accepted:  s.Accepted(),
		Steps:     s.steps,
		FinalTape: s.finalTape(),
		HitLimit:  !s.halted && s.steps >= s.maxSteps,
	}
}

// Reset prepares a fresh run: cell 0 receives the first input byte,
// further cells the rest; an empty input starts with a single blank.
// The head starts at cell 0 in the start state.
func (s *Simulator) Reset(input string) {
	s.tape = make([]machine.Symbol, 0, len(input)+16)
	for i := 0; i < len(input); i++ {
		s.tape = append(s.tape, machine.Symbol(input[i]))
	}
	if len(s.tape) == 0 {
		s.tape = append(s.tape, machine.Blank)
	}
	s.head = 0
	s.state = s.m.Start
	s.steps = 0
	s.halted = false
}

// Step executes a single transition. A missing (state, read) entry is
// an implicit reject: the machine halts in the reject state without
// counting a step. Step returns false once the machine has halted.
func (s *Simulator) Step() bool {
	if s.halted {
		return false
	}
	if s.state == s.m.Accept || s.state == s.m.Reject {
		s.halted = true
		return false
	}

	current := s.read()

	row, ok := s.m.Delta[s.state]
	if !ok {
		s.state = s.m.Reject
		s.halted = true
		return false
	}
	tr, ok := row[current]
	if !ok {
		tr, ok = row[machine.Wildcard]
	}
	if !ok {
		s.state = s.m.Reject
		s.halted = true
		return false
	}

	write := tr.Write
	if write == machine.Wildcard {
		write = current
	}
	s.tape[s.head] = write

	switch tr.Move {
	case machine.Left:
		if s.head > 0 {
			s.head--
		}
	case machine.Right:
		s.head++
		if s.head >= len(s.tape) {
			s.tape = append(s.tape, machine.Blank)
		}
	}

	s.state = tr.Next
	s.steps++

	if s.state == s.m.Accept || s.state == s.m.Reject {
		s.halted = true
	}
	return !s.halted
}

// Halted reports whether the machine has reached a halting sink.
func (s *Simulator) Halted() bool { return s.halted }

// Accepted reports whether the machine halted in the accept state.
func (s *Simulator) Accepted() bool { return s.halted && s.state == s.m.Accept }

// Steps returns the number of transitions taken so far.
func (s *Simulator) Steps() int { return s.steps }

// Config returns a snapshot of the current configuration. The tape is
// copied; mutating it does not affect the simulation.
func (s *Simulator) Config() Config {
	tape := make([]machine.Symbol, len(s.tape))
	copy(tape, s.tape)
	return Config{Tape: tape, Head: s.head, State: s.state}
}

func (s *Simulator) read() machine.Symbol {
	if s.head < len(s.tape) {
		return s.tape[s.head]
	}
	return machine.Blank
}

// finalTape renders the tape with leading and trailing blanks trimmed.
func (s *Simulator) finalTape() string {
	var sb strings.Builder
	for _, c := range s.tape {
		sb.WriteByte(byte(c))
	}
	return strings.Trim(sb.String(), string(rune(machine.Blank)))
}
