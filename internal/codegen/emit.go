package codegen

import "github.com/aretw0/spool/pkg/machine"

// The primitive emitters below grow the machine under construction and
// thread control through (entry, exit) state pairs. Shared contract:
// at entry and at exit every transient mark on the tape is restored,
// except where an emitter's documented purpose is to carry marks
// across its boundary (the internal phases of the comparators, which
// are always sandwiched by restore sweeps).

// add records one transition unless from is a halting sink; the sinks
// never acquire outgoing entries.
func (c *Compiler) add(from string, read, write machine.Symbol, move machine.Direction, to string) {
	if c.halting(from) {
		return
	}
	c.m.AddTransition(from, read, write, move, to)
}

// wire routes every symbol from -> to with a stay move, overwriting
// any prior entries. Statement lowering wires each construct's entry
// this way, so a state handed forward with stale transitions (a break
// target joined into an if, for instance) is rewired cleanly.
func (c *Compiler) wire(from, to string) {
	for _, s := range c.alphabet {
		c.add(from, s, s, machine.Stay, to)
	}
}

// wireOpen routes only the symbols that have no entry yet; used for
// joins and for the final completion pass.
func (c *Compiler) wireOpen(from, to string) {
	if c.halting(from) {
		return
	}
	for _, s := range c.alphabet {
		if !c.m.Has(from, s) {
			c.add(from, s, s, machine.Stay, to)
		}
	}
}

func (c *Compiler) halting(state string) bool {
	return state == c.m.Accept || state == c.m.Reject
}

// emitRewind scans Left to the sentinel and exits one cell to its
// right, on the first input cell. Termination relies on the
// left-bounded tape: a Left move from cell 0 stays at cell 0, so the
// sentinel always stops the scan.
func (c *Compiler) emitRewind(entry string) string {
	scan := c.newState("rewind")
	exit := c.newState("at_start")

	for _, s := range c.alphabet {
		c.add(entry, s, s, machine.Left, scan)
	}
	for _, s := range c.alphabet {
		if s == leftEnd {
			c.add(scan, s, s, machine.Right, exit)
		} else {
			c.add(scan, s, s, machine.Left, scan)
		}
	}
	return exit
}

// emitNavigate positions the head on the first cell of the given
// region, assuming the head starts on cell 1. It chains region+1
// scan-through-separator states; stopping early on blank is permitted
// (the region is empty or missing) and cascades to the exit.
func (c *Compiler) emitNavigate(entry string, region int) string {
	current := entry
	for i := 0; i <= region; i++ {
		next := c.newState("nav")
		for _, s := range c.alphabet {
			switch s {
			case sep:
				c.add(current, s, s, machine.Right, next)
			case machine.Blank:
				c.add(current, s, s, machine.Stay, next)
			default:
				c.add(current, s, s, machine.Right, current)
			}
		}
		current = next
	}
	return current
}

// emitCopyRegion appends |src| ones to the tape tail, one at a time:
// mark the next unmarked 1 in src as I, walk right to the first blank,
// write a 1, rewind, repeat. When src holds no further unmarked 1 a
// restore sweep converts the I marks back, leaving src unchanged. The
// destination must be the rightmost region.
func (c *Compiler) emitCopyRegion(entry string, src, dst int) string {
	findDest := c.newState("cpy_dest")
	back := c.newState("cpy_back")
	done := c.newState("cpy_done")

	inSrc := c.emitNavigate(entry, src)
	for _, s := range c.alphabet {
		switch s {
		case one:
			c.add(inSrc, s, oneMark, machine.Right, findDest)
		case oneMark:
			c.add(inSrc, s, s, machine.Right, inSrc)
		case sep, machine.Blank:
			c.add(inSrc, s, s, machine.Stay, done)
		default:
			c.add(inSrc, s, s, machine.Right, inSrc)
		}
	}

	for _, s := range c.alphabet {
		if s == machine.Blank {
			c.add(findDest, s, one, machine.Left, back)
		} else {
			c.add(findDest, s, s, machine.Right, findDest)
		}
	}

	for _, s := range c.alphabet {
		if s == leftEnd {
			c.add(back, s, s, machine.Right, entry)
		} else {
			c.add(back, s, s, machine.Left, back)
		}
	}

	return c.emitRestoreRegion(done, src)
}

// emitRestoreRegion rewinds, navigates to the region and sweeps Right
// rewriting every I to 1, stopping at the next separator or blank.
func (c *Compiler) emitRestoreRegion(entry string, region int) string {
	atStart := c.emitRewind(entry)
	sweep := c.emitNavigate(atStart, region)
	done := c.newState("rst_done")

	for _, s := range c.alphabet {
		switch s {
		case oneMark:
			c.add(sweep, s, one, machine.Right, sweep)
		case one:
			c.add(sweep, s, s, machine.Right, sweep)
		default:
			c.add(sweep, s, s, machine.Stay, done)
		}
	}
	return c.emitRewind(done)
}

// emitInsert writes one 1 at the end of the given region. When the
// region is the rightmost the boundary is blank and a single write
// suffices; otherwise the displaced boundary separator is carried
// rightward cell by cell. Only #, 1 and I can sit to the right of a
// region boundary, so three carry states cover every displacement.
// The head exits rewound to cell 1.
func (c *Compiler) emitInsert(entry string, region int) string {
	atEnd := c.newState("ins_end")
	done := c.newState("ins_done")

	inRegion := c.emitNavigate(entry, region)
	for _, s := range c.alphabet {
		if s == one || s == oneMark {
			c.add(inRegion, s, s, machine.Right, inRegion)
		} else {
			c.add(inRegion, s, s, machine.Stay, atEnd)
		}
	}

	c.add(atEnd, machine.Blank, one, machine.Stay, done)

	carrySep := c.newState("carry_sep")
	carryOne := c.newState("carry_one")
	carryMark := c.newState("carry_mark")
	c.add(atEnd, sep, one, machine.Right, carrySep)

	carries := []struct {
		state   string
		carried machine.Symbol
	}{
		{carrySep, sep},
		{carryOne, one},
		{carryMark, oneMark},
	}
	for _, carry := range carries {
		c.add(carry.state, machine.Blank, carry.carried, machine.Stay, done)
		c.add(carry.state, sep, carry.carried, machine.Right, carrySep)
		c.add(carry.state, one, carry.carried, machine.Right, carryOne)
		c.add(carry.state, oneMark, carry.carried, machine.Right, carryMark)
	}

	return c.emitRewind(done)
}

// emitCompareEqual decides |a| == |b| by iterated one-to-one matching:
// mark a 1 in a, mark a 1 in b, repeat; whichever region exhausts
// first decides. Both regions are restored before control reaches the
// caller-supplied exits, so the tape is observably unchanged.
func (c *Compiler) emitCompareEqual(entry string, regA, regB int, ifEq, ifNeq string) {
	loopStart := c.newState("ceq_loop")
	restoreEq := c.newState("ceq_eq")
	restoreNeq := c.newState("ceq_neq")
	aDone := c.newState("ceq_adone")
	findB := c.newState("ceq_findb")
	backToA := c.newState("ceq_back")

	c.wire(entry, loopStart)

	// Phase 1: find an unmarked 1 in region a; none left means a is
	// exhausted and only the b-side check remains.
	inA := c.emitNavigate(loopStart, regA)
	for _, s := range c.alphabet {
		switch s {
		case one:
			c.add(inA, s, oneMark, machine.Stay, findB)
		case oneMark:
			c.add(inA, s, s, machine.Right, inA)
		default:
			c.add(inA, s, s, machine.Stay, aDone)
		}
	}

	// Phase 2: rewind, find an unmarked 1 in region b. If b runs out
	// first the tallies cannot match.
	rwB := c.emitRewind(findB)
	inB := c.emitNavigate(rwB, regB)
	for _, s := range c.alphabet {
		switch s {
		case one:
			c.add(inB, s, oneMark, machine.Stay, backToA)
		case oneMark:
			c.add(inB, s, s, machine.Right, inB)
		default:
			c.add(inB, s, s, machine.Stay, restoreNeq)
		}
	}

	// Phase 3: rewind and pair the next 1.
	rwA := c.emitRewind(backToA)
	c.wire(rwA, loopStart)

	// Phase 4: a is exhausted; any unmarked 1 left in b breaks equality.
	rwChk := c.emitRewind(aDone)
	inBChk := c.emitNavigate(rwChk, regB)
	for _, s := range c.alphabet {
		switch s {
		case one:
			c.add(inBChk, s, s, machine.Stay, restoreNeq)
		case oneMark:
			c.add(inBChk, s, s, machine.Right, inBChk)
		default:
			c.add(inBChk, s, s, machine.Stay, restoreEq)
		}
	}

	afterEq := c.emitRestoreRegion(restoreEq, regA)
	afterEq = c.emitRestoreRegion(afterEq, regB)
	c.wireOpen(afterEq, ifEq)

	afterNeq := c.emitRestoreRegion(restoreNeq, regA)
	afterNeq = c.emitRestoreRegion(afterNeq, regB)
	c.wireOpen(afterNeq, ifNeq)
}

// emitCompareLE is the ordered comparator behind the bounded for-loop:
// ones of region a are matched against ones of region b left to right.
// If a exhausts first (including simultaneously), |a| <= |b|; if b
// exhausts first, |a| > |b|. Both regions are restored on both exits.
func (c *Compiler) emitCompareLE(entry string, regA, regB int, ifLE, ifGT string) {
	loopStart := c.newState("cle_loop")
	restoreLE := c.newState("cle_le")
	restoreGT := c.newState("cle_gt")
	findB := c.newState("cle_findb")
	backToA := c.newState("cle_back")

	c.wire(entry, loopStart)

	inA := c.emitNavigate(loopStart, regA)
	for _, s := range c.alphabet {
		switch s {
		case one:
			c.add(inA, s, oneMark, machine.Stay, findB)
		case oneMark:
			c.add(inA, s, s, machine.Right, inA)
		default:
			c.add(inA, s, s, machine.Stay, restoreLE)
		}
	}

	rwB := c.emitRewind(findB)
	inB := c.emitNavigate(rwB, regB)
	for _, s := range c.alphabet {
		switch s {
		case one:
			c.add(inB, s, oneMark, machine.Stay, backToA)
		case oneMark:
			c.add(inB, s, s, machine.Right, inB)
		default:
			c.add(inB, s, s, machine.Stay, restoreGT)
		}
	}

	rwA := c.emitRewind(backToA)
	c.wire(rwA, loopStart)

	afterLE := c.emitRestoreRegion(restoreLE, regA)
	afterLE = c.emitRestoreRegion(afterLE, regB)
	c.wireOpen(afterLE, ifLE)

	afterGT := c.emitRestoreRegion(restoreGT, regA)
	afterGT = c.emitRestoreRegion(afterGT, regB)
	c.wireOpen(afterGT, ifGT)
}

// emitAppend copies region src onto the end of region dst without
// permanently altering src: mark the next unmarked 1 in src, rewind,
// insert one 1 into dst, repeat; finally restore src.
func (c *Compiler) emitAppend(entry string, src, dst int) string {
	loopStart := c.newState("app_loop")
	insertNext := c.newState("app_ins")
	srcDone := c.newState("app_done")

	c.wire(entry, loopStart)

	inSrc := c.emitNavigate(loopStart, src)
	for _, s := range c.alphabet {
		switch s {
		case one:
			c.add(inSrc, s, oneMark, machine.Stay, insertNext)
		case oneMark:
			c.add(inSrc, s, s, machine.Right, inSrc)
		default:
			c.add(inSrc, s, s, machine.Stay, srcDone)
		}
	}

	preInsert := c.emitRewind(insertNext)
	afterInsert := c.emitInsert(preInsert, dst)
	c.wire(afterInsert, loopStart)

	return c.emitRestoreRegion(srcDone, src)
}

// emitPreamble shifts the input one cell right and writes the sentinel
// at cell 0, using one carry state per displaceable tape symbol. The
// exit state sits on cell 1, the first input cell.
func (c *Compiler) emitPreamble(start string) string {
	atInput := c.newState("pre_done")
	doneRewind := c.newState("pre_rw")

	carry := make(map[machine.Symbol]string)
	for _, s := range c.alphabet {
		if s != machine.Blank && s != leftEnd {
			carry[s] = c.newState("pre_c")
		}
	}

	for _, s := range c.alphabet {
		switch {
		case s == machine.Blank:
			// Empty input: the sentinel is all there is to write.
			c.add(start, s, leftEnd, machine.Right, atInput)
		case s != leftEnd:
			c.add(start, s, leftEnd, machine.Right, carry[s])
		}
	}

	for _, carried := range c.alphabet {
		state, ok := carry[carried]
		if !ok {
			continue
		}
		for _, next := range c.alphabet {
			switch {
			case next == machine.Blank:
				c.add(state, next, carried, machine.Left, doneRewind)
			case next != leftEnd:
				c.add(state, next, carried, machine.Right, carry[next])
			}
		}
	}

	for _, s := range c.alphabet {
		if s == leftEnd {
			c.add(doneRewind, s, s, machine.Right, atInput)
		} else {
			c.add(doneRewind, s, s, machine.Left, doneRewind)
		}
	}

	return atInput
}
