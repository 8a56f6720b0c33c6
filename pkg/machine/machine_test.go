package machine_test

import (
	"testing"

	"github.com/aretw0/spool/pkg/machine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddTransitionRegistersEndpoints(t *testing.T) {
	m := machine.New()
	m.Start = "s0"
	m.Accept = "qA"
	m.Reject = "qR"

	m.AddTransition("s0", 'a', 'X', machine.Right, "s1")

	assert.True(t, m.States["s0"])
	assert.True(t, m.States["s1"])
	assert.True(t, m.TapeAlphabet['a'])
	assert.True(t, m.TapeAlphabet['X'])
	assert.Equal(t, 1, m.TransitionCount())
}

func TestAddTransitionOverwrites(t *testing.T) {
	m := machine.New()
	m.Start = "s0"
	m.Accept = "qA"
	m.Reject = "qR"

	m.AddTransition("s0", 'a', 'a', machine.Right, "s1")
	m.AddTransition("s0", 'a', 'b', machine.Left, "s2")

	tr := m.Delta["s0"]['a']
	assert.Equal(t, machine.Symbol('b'), tr.Write)
	assert.Equal(t, machine.Left, tr.Move)
	assert.Equal(t, "s2", tr.Next)
	assert.Equal(t, 1, m.TransitionCount())
}

func TestFinalizeIdempotent(t *testing.T) {
	m := machine.New()
	m.Start = "s0"
	m.Accept = "qA"
	m.Reject = "qR"
	m.InputAlphabet['a'] = true

	m.Finalize()
	statesOnce := m.SortedStates()
	tapeOnce := m.SortedTapeAlphabet()

	m.Finalize()
	assert.Equal(t, statesOnce, m.SortedStates())
	assert.Equal(t, tapeOnce, m.SortedTapeAlphabet())

	assert.True(t, m.TapeAlphabet[machine.Blank])
	assert.True(t, m.TapeAlphabet['a'])
	assert.True(t, m.States["qA"])
	assert.True(t, m.States["qR"])
}

func TestValidate(t *testing.T) {
	build := func() *machine.Machine {
		m := machine.New()
		m.Start = "s0"
		m.Accept = "qA"
		m.Reject = "qR"
		m.InputAlphabet['a'] = true
		m.AddTransition("s0", 'a', 'a', machine.Right, "qA")
		m.Finalize()
		return m
	}

	t.Run("valid machine", func(t *testing.T) {
		require.NoError(t, build().Validate())
	})

	t.Run("dangling next state", func(t *testing.T) {
		m := build()
		m.Delta["s0"]['a'] = machine.Transition{Write: 'a', Move: machine.Right, Next: "ghost"}
		err := m.Validate()
		require.Error(t, err)
		var verr *machine.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "ghost", verr.Element)
	})

	t.Run("missing start", func(t *testing.T) {
		m := build()
		delete(m.States, "s0")
		assert.Error(t, m.Validate())
	})

	t.Run("sink with outgoing transitions", func(t *testing.T) {
		m := build()
		m.Delta["qA"] = map[machine.Symbol]machine.Transition{
			'a': {Write: 'a', Move: machine.Stay, Next: "qA"},
		}
		assert.Error(t, m.Validate())
	})

	t.Run("foreign read symbol", func(t *testing.T) {
		m := build()
		m.Delta["s0"]['z'] = machine.Transition{Write: 'z', Move: machine.Stay, Next: "qA"}
		assert.Error(t, m.Validate())
	})

	t.Run("wildcard read is allowed", func(t *testing.T) {
		m := build()
		m.Delta["s0"][machine.Wildcard] = machine.Transition{Write: machine.Wildcard, Move: machine.Stay, Next: "qA"}
		assert.NoError(t, m.Validate())
	})
}

func TestDirectionString(t *testing.T) {
	assert.Equal(t, "L", machine.Left.String())
	assert.Equal(t, "R", machine.Right.String())
	assert.Equal(t, "S", machine.Stay.String())

	d, ok := machine.ParseDirection("L")
	require.True(t, ok)
	assert.Equal(t, machine.Left, d)
	_, ok = machine.ParseDirection("Q")
	assert.False(t, ok)
}
