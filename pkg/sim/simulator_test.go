package sim_test

import (
	"testing"

	"github.com/aretw0/spool/pkg/machine"
	"github.com/aretw0/spool/pkg/sim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startsWithA decides a(a|b)* with explicit transitions for every
// first symbol, so rejection always costs exactly one step.
func startsWithA() *machine.Machine {
	m := machine.New()
	m.Start = "start"
	m.Accept = "qA"
	m.Reject = "qR"
	m.InputAlphabet['a'] = true
	m.InputAlphabet['b'] = true
	m.AddTransition("start", 'a', 'a', machine.Stay, "qA")
	m.AddTransition("start", 'b', 'b', machine.Stay, "qR")
	m.AddTransition("start", machine.Blank, machine.Blank, machine.Stay, "qR")
	m.Finalize()
	return m
}

// sipserAnBn is the textbook a^n b^n machine: cross off the leftmost a
// as X, cross off the leftmost b as Y, repeat, then verify only Y's
// remain. Unhandled configurations reject implicitly.
func sipserAnBn() *machine.Machine {
	m := machine.New()
	m.Start = "q1"
	m.Accept = "qA"
	m.Reject = "qR"
	m.InputAlphabet['a'] = true
	m.InputAlphabet['b'] = true

	m.AddTransition("q1", machine.Blank, machine.Blank, machine.Stay, "qA")
	m.AddTransition("q1", 'a', 'X', machine.Right, "q2")
	m.AddTransition("q1", 'Y', 'Y', machine.Right, "q4")

	m.AddTransition("q2", 'a', 'a', machine.Right, "q2")
	m.AddTransition("q2", 'Y', 'Y', machine.Right, "q2")
	m.AddTransition("q2", 'b', 'Y', machine.Left, "q3")

	m.AddTransition("q3", 'a', 'a', machine.Left, "q3")
	m.AddTransition("q3", 'Y', 'Y', machine.Left, "q3")
	m.AddTransition("q3", 'X', 'X', machine.Right, "q1")

	m.AddTransition("q4", 'Y', 'Y', machine.Right, "q4")
	m.AddTransition("q4", machine.Blank, machine.Blank, machine.Stay, "qA")

	m.Finalize()
	return m
}

func TestStartsWithA(t *testing.T) {
	s := sim.New(startsWithA())

	res := s.Run("a")
	assert.True(t, res.Accepted)
	assert.Equal(t, 1, res.Steps)

	res = s.Run("")
	assert.False(t, res.Accepted)
	assert.Equal(t, 1, res.Steps)

	res = s.Run("ba")
	assert.False(t, res.Accepted)
	assert.Equal(t, 1, res.Steps)
}

func TestSipserAnBn(t *testing.T) {
	s := sim.New(sipserAnBn())

	for _, input := range []string{"", "ab", "aabb"} {
		assert.True(t, s.Run(input).Accepted, "input %q", input)
	}
	for _, input := range []string{"a", "aab", "ba"} {
		assert.False(t, s.Run(input).Accepted, "input %q", input)
	}
}

func TestImplicitReject(t *testing.T) {
	m := machine.New()
	m.Start = "s0"
	m.Accept = "qA"
	m.Reject = "qR"
	m.InputAlphabet['a'] = true
	m.AddTransition("s0", 'a', 'a', machine.Right, "s1")
	m.Finalize()

	s := sim.New(m)
	res := s.Run("a")
	assert.False(t, res.Accepted)
	assert.False(t, res.HitLimit)
	// One real transition, then a missing (s1, _) entry halts without
	// counting a step.
	assert.Equal(t, 1, res.Steps)
}

func TestLeftBoundedHead(t *testing.T) {
	m := machine.New()
	m.Start = "s0"
	m.Accept = "qA"
	m.Reject = "qR"
	m.InputAlphabet['a'] = true
	m.AddTransition("s0", 'a', 'a', machine.Left, "s0")
	m.AddTransition("s0", machine.Blank, machine.Blank, machine.Left, "s0")
	m.Finalize()

	s := sim.New(m, sim.WithStepLimit(50))
	s.Reset("a")
	for s.Step() {
		require.GreaterOrEqual(t, s.Config().Head, 0)
		if s.Steps() >= 50 {
			break
		}
	}
	assert.Equal(t, 0, s.Config().Head)
}

func TestStepLimit(t *testing.T) {
	m := machine.New()
	m.Start = "s0"
	m.Accept = "qA"
	m.Reject = "qR"
	m.InputAlphabet['a'] = true
	m.AddTransition("s0", 'a', 'a', machine.Right, "s0")
	m.AddTransition("s0", machine.Blank, machine.Blank, machine.Right, "s0")
	m.Finalize()

	res := sim.New(m, sim.WithStepLimit(10)).Run("a")
	assert.True(t, res.HitLimit)
	assert.False(t, res.Accepted)
	assert.Equal(t, 10, res.Steps)
}

func TestWildcardReadAndPreserveWrite(t *testing.T) {
	m := machine.New()
	m.Start = "s0"
	m.Accept = "qA"
	m.Reject = "qR"
	m.InputAlphabet['b'] = true
	m.AddTransition("s0", machine.Wildcard, machine.Wildcard, machine.Right, "s1")
	m.AddTransition("s1", 'b', 'b', machine.Stay, "qA")
	m.Finalize()

	s := sim.New(m)
	res := s.Run("xb")
	assert.True(t, res.Accepted)
	// The wildcard write preserved the read symbol.
	assert.Equal(t, "xb", res.FinalTape)
}

func TestDeterminism(t *testing.T) {
	s := sim.New(sipserAnBn())
	first := s.Run("aabb")
	second := s.Run("aabb")
	assert.Equal(t, first, second)
}

func TestFinalTapeTrimsBlanks(t *testing.T) {
	m := machine.New()
	m.Start = "s0"
	m.Accept = "qA"
	m.Reject = "qR"
	m.InputAlphabet['a'] = true
	m.AddTransition("s0", 'a', machine.Blank, machine.Right, "s1")
	m.AddTransition("s1", 'a', 'a', machine.Right, "s2")
	m.AddTransition("s2", machine.Blank, machine.Blank, machine.Stay, "qA")
	m.Finalize()

	res := sim.New(m).Run("aa")
	assert.True(t, res.Accepted)
	assert.Equal(t, "a", res.FinalTape)
}
