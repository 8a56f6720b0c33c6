// Package codegen lowers a parsed decision-language program to a
// deterministic single-tape Turing machine.
//
// Tape layout (left-bounded, Sipser model):
//
//	> [input] # [region0] # [region1] # ... #
//
// The sentinel > sits at cell 0 and the input starts at cell 1. Each
// declared variable owns one region holding its value in unary: value
// k is k consecutive 1 cells, value 0 an empty region. During
// multi-pass algorithms a processed 1 is rewritten to I and a
// processed input letter to its upper-case form; every emitter
// restores those marks before the enclosing statement exits.
package codegen

import "github.com/aretw0/spool/pkg/machine"

const (
	sep     machine.Symbol = '#'
	one     machine.Symbol = '1'
	oneMark machine.Symbol = 'I'
	leftEnd machine.Symbol = '>'
)

// markFor returns the transient mark for an input symbol: lower-case
// letters upper-case, everything else marks as itself (and is
// therefore not countable).
func markFor(s machine.Symbol) machine.Symbol {
	if s >= 'a' && s <= 'z' {
		return s - 'a' + 'A'
	}
	return s
}

// regionInfo tracks one declared variable.
type regionInfo struct {
	index int // region position: 0 is the first region after the input
}
