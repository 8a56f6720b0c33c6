// Package optimizer post-processes compiled machines. Every pass
// preserves accept/reject behaviour; the only contract is the language
// the machine decides.
package optimizer

import (
	"maps"

	"github.com/aretw0/spool/pkg/machine"
)

// Options selects which passes run.
type Options struct {
	EliminateDeadStates   bool
	MergeEquivalentStates bool
}

// DefaultOptions enables every structural pass.
func DefaultOptions() Options {
	return Options{EliminateDeadStates: true, MergeEquivalentStates: true}
}

// Optimize runs the selected passes and re-finalizes the machine.
func Optimize(m *machine.Machine, opts Options) {
	if opts.EliminateDeadStates {
		EliminateDeadStates(m)
	}
	if opts.MergeEquivalentStates {
		MergeEquivalentStates(m)
	}
	m.Finalize()
}

// EliminateDeadStates removes states unreachable from the start state
// and returns how many were dropped. Accept and reject are always
// kept.
func EliminateDeadStates(m *machine.Machine) int {
	reachable := map[string]bool{m.Start: true}
	queue := []string{m.Start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, tr := range m.Delta[current] {
			if !reachable[tr.Next] {
				reachable[tr.Next] = true
				queue = append(queue, tr.Next)
			}
		}
	}
	reachable[m.Accept] = true
	reachable[m.Reject] = true

	removed := 0
	for _, state := range m.SortedStates() {
		if !reachable[state] {
			delete(m.States, state)
			delete(m.Delta, state)
			removed++
		}
	}
	return removed
}

// MergeEquivalentStates folds states with identical transition tables
// into one, repeating until a fixpoint. This is the cheap variant of
// DFA minimisation: it only sees syntactic equality, not behavioural.
func MergeEquivalentStates(m *machine.Machine) int {
	merged := 0
	for {
		a, b, found := findIdenticalPair(m)
		if !found {
			return merged
		}
		// Redirect every reference to b onto a, then drop b.
		for state, row := range m.Delta {
			for read, tr := range row {
				if tr.Next == b {
					tr.Next = a
					m.Delta[state][read] = tr
				}
			}
		}
		delete(m.Delta, b)
		delete(m.States, b)
		merged++
	}
}

func findIdenticalPair(m *machine.Machine) (string, string, bool) {
	states := m.SortedStates()
	for i, a := range states {
		if a == m.Start || a == m.Accept || a == m.Reject {
			continue
		}
		rowA, ok := m.Delta[a]
		if !ok {
			continue
		}
		for _, b := range states[i+1:] {
			if b == m.Start || b == m.Accept || b == m.Reject {
				continue
			}
			rowB, ok := m.Delta[b]
			if !ok {
				continue
			}
			if maps.Equal(rowA, rowB) {
				return a, b, true
			}
		}
	}
	return "", "", false
}

// AddPrecomputed grafts a fast-path prefix trie onto the start state:
// for every input up to maxLen, a chain of states consumes the input
// and jumps straight to the oracle's verdict on the trailing blank.
// Existing transitions are never overwritten, so the slow path stays
// intact for longer inputs.
func AddPrecomputed(m *machine.Machine, maxLen int, oracle func(string) bool) {
	inputs := []string{""}
	queue := []string{""}
	alphabet := m.SortedInputAlphabet()

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if len(current) < maxLen {
			for _, s := range alphabet {
				next := current + string(byte(s))
				inputs = append(inputs, next)
				queue = append(queue, next)
			}
		}
	}

	prefixStates := make(map[string]string)
	for _, input := range inputs {
		accepted := oracle(input)

		prev := m.Start
		for i := 0; i < len(input); i++ {
			prefix := input[:i+1]
			state, ok := prefixStates[prefix]
			if !ok {
				state = "pre_" + prefix
				m.States[state] = true
				prefixStates[prefix] = state
				sym := machine.Symbol(input[i])
				if !m.Has(prev, sym) {
					m.AddTransition(prev, sym, sym, machine.Right, state)
				}
			}
			prev = state
		}

		verdict := m.Reject
		if accepted {
			verdict = m.Accept
		}
		if !m.Has(prev, machine.Blank) {
			m.AddTransition(prev, machine.Blank, machine.Blank, machine.Stay, verdict)
		}
	}
}
