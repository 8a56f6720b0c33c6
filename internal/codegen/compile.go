package codegen

import (
	"fmt"

	"github.com/aretw0/spool/pkg/lang"
	"github.com/aretw0/spool/pkg/machine"
)

// LoweringError reports a construct the compiler cannot lower. It is
// the only user-visible failure; no partial machine accompanies it.
type LoweringError struct {
	Construct string
	Reason    string
}

func (e *LoweringError) Error() string {
	return fmt.Sprintf("lower %s: %s", e.Construct, e.Reason)
}

// Compiler lowers one program. Its only mutable pieces are the fresh
// state counter, the variable table and the break-target stack, all of
// which live for a single Compile call.
type Compiler struct {
	m        *machine.Machine
	alphabet []machine.Symbol

	counter    int
	vars       map[string]*regionInfo
	nextRegion int
	breaks     []string
}

// Compile lowers a program to a finalized machine.
func Compile(prog *lang.Program) (*machine.Machine, error) {
	c := &Compiler{
		m:    machine.New(),
		vars: make(map[string]*regionInfo),
	}
	c.setupAlphabet(prog)

	c.m.Start = c.newState("start")
	c.m.Accept = "qA"
	c.m.Reject = "qR"
	c.m.States[c.m.Accept] = true
	c.m.States[c.m.Reject] = true

	current := c.emitPreamble(c.m.Start)
	current, err := c.compileStmts(prog.Body, current)
	if err != nil {
		return nil, err
	}

	// Whatever falls off the end of the program accepts.
	c.wireOpen(current, c.m.Accept)

	c.m.Finalize()
	return c.m, nil
}

func (c *Compiler) setupAlphabet(prog *lang.Program) {
	for _, s := range prog.Alphabet {
		c.m.InputAlphabet[s] = true
		c.m.TapeAlphabet[s] = true
		if s >= 'a' && s <= 'z' {
			c.m.TapeAlphabet[markFor(s)] = true
		}
	}
	for _, s := range prog.Markers {
		c.m.TapeAlphabet[s] = true
	}
	c.m.TapeAlphabet[machine.Blank] = true
	c.m.TapeAlphabet[sep] = true
	c.m.TapeAlphabet[one] = true
	c.m.TapeAlphabet[oneMark] = true
	c.m.TapeAlphabet[leftEnd] = true

	// Emitters iterate a fixed sorted snapshot so identical programs
	// produce identical machines.
	c.alphabet = c.m.SortedTapeAlphabet()
}

func (c *Compiler) newState(hint string) string {
	name := fmt.Sprintf("%s%d", hint, c.counter)
	c.counter++
	return name
}

func (c *Compiler) declare(name string) *regionInfo {
	if info, ok := c.vars[name]; ok {
		return info
	}
	info := &regionInfo{index: c.nextRegion}
	c.nextRegion++
	c.vars[name] = info
	return info
}

func (c *Compiler) getVar(name string) *regionInfo {
	return c.declare(name)
}

func (c *Compiler) compileStmts(stmts []lang.Stmt, entry string) (string, error) {
	current := entry
	for _, stmt := range stmts {
		var err error
		current, err = c.compileStmt(stmt, current)
		if err != nil {
			return "", err
		}
	}
	return current, nil
}

func (c *Compiler) compileStmt(stmt lang.Stmt, entry string) (string, error) {
	switch s := stmt.(type) {
	case *lang.LetStmt:
		return c.compileLet(s, entry)
	case *lang.AssignStmt:
		return c.compileAssign(s, entry)
	case *lang.ForStmt:
		return c.compileFor(s, entry)
	case *lang.IfStmt:
		return c.compileIf(s, entry)
	case *lang.IfEqStmt:
		return c.compileIfEq(s, entry)
	case *lang.ReturnStmt:
		return c.compileReturn(s, entry)
	case *lang.AcceptStmt:
		c.wire(entry, c.m.Accept)
		return c.m.Accept, nil
	case *lang.RejectStmt:
		c.wire(entry, c.m.Reject)
		return c.m.Reject, nil
	case *lang.LoopStmt:
		return c.compileLoop(s, entry)
	case *lang.BreakStmt:
		return c.compileBreak(entry)
	case *lang.ScanStmt:
		return c.compileScan(s, entry)
	case *lang.WriteStmt:
		return c.compileWrite(s, entry)
	case *lang.MoveStmt:
		return c.compileMove(s, entry)
	case *lang.IfCurrentStmt:
		return c.compileIfCurrent(s, entry)
	case *lang.IncStmt:
		info := c.getVar(s.Var)
		return c.emitInsert(entry, info.index), nil
	case *lang.AppendStmt:
		src := c.getVar(s.Src)
		dst := c.getVar(s.Dst)
		return c.emitAppend(entry, src.index, dst.index), nil
	}
	return "", &LoweringError{Construct: "statement", Reason: fmt.Sprintf("unknown node %T", stmt)}
}

// compileLet creates a fresh empty region at the tape tail (scan to
// the first blank, write a separator, rewind) and evaluates the
// initializer into it.
func (c *Compiler) compileLet(stmt *lang.LetStmt, entry string) (string, error) {
	c.declare(stmt.Name)

	scanEnd := c.newState("let_scan")
	goBack := c.newState("let_back")
	addSep := c.newState("let_sep")

	for _, s := range c.alphabet {
		if s == machine.Blank {
			c.add(scanEnd, s, sep, machine.Left, goBack)
		} else {
			c.add(scanEnd, s, s, machine.Right, scanEnd)
		}
	}
	for _, s := range c.alphabet {
		if s == leftEnd {
			c.add(goBack, s, s, machine.Right, addSep)
		} else {
			c.add(goBack, s, s, machine.Left, goBack)
		}
	}
	c.wire(entry, scanEnd)

	exprDone, err := c.compileExpr(stmt.Init, stmt.Name, addSep)
	if err != nil {
		return "", err
	}
	return c.emitRewind(exprDone), nil
}

func (c *Compiler) compileExpr(expr lang.Expr, destVar string, entry string) (string, error) {
	switch e := expr.(type) {
	case *lang.CountExpr:
		return c.compileCount(e.Symbol, entry), nil
	case *lang.IntLit:
		return c.compileIntLit(e.Value, entry), nil
	case *lang.VarRef:
		src := c.getVar(e.Name)
		dst := c.getVar(destVar)
		return c.emitCopyRegion(entry, src.index, dst.index), nil
	}
	return "", &LoweringError{Construct: "let initialiser", Reason: fmt.Sprintf("unsupported expression %T", expr)}
}

// compileIntLit writes the literal's tally at the tape tail. Zero is
// an empty region and emits nothing.
func (c *Compiler) compileIntLit(value int, entry string) string {
	current := entry
	for i := 0; i < value; i++ {
		next := c.newState("lit")
		c.add(current, machine.Blank, one, machine.Right, next)
		for _, s := range c.alphabet {
			if s != machine.Blank {
				c.add(current, s, s, machine.Right, current)
			}
		}
		current = next
	}
	return current
}

// compileCount scans the input for the counted symbol, upper-casing
// each hit and walking to the tape tail to write one tally. A final
// sweep restores the marks: a later count of the same symbol must see
// the input unchanged.
func (c *Compiler) compileCount(sym machine.Symbol, entry string) string {
	marked := markFor(sym)

	scan := c.newState("cnt_scan")
	write := c.newState("cnt_write")
	back := c.newState("cnt_back")
	done := c.newState("cnt_done")

	for _, s := range c.alphabet {
		switch {
		case s == sym:
			c.add(scan, s, marked, machine.Right, write)
		case s == sep || s == machine.Blank:
			c.add(scan, s, s, machine.Stay, done)
		default:
			c.add(scan, s, s, machine.Right, scan)
		}
	}
	for _, s := range c.alphabet {
		if s == machine.Blank {
			c.add(write, s, one, machine.Left, back)
		} else {
			c.add(write, s, s, machine.Right, write)
		}
	}
	for _, s := range c.alphabet {
		if s == leftEnd {
			c.add(back, s, s, machine.Right, scan)
		} else {
			c.add(back, s, s, machine.Left, back)
		}
	}
	c.wire(entry, scan)

	restoreRewind := c.newState("cnt_rrewind")
	restoreScan := c.newState("cnt_restore")
	restoreDone := c.newState("cnt_rdone")

	for _, s := range c.alphabet {
		c.add(done, s, s, machine.Left, restoreRewind)
	}
	for _, s := range c.alphabet {
		if s == leftEnd {
			c.add(restoreRewind, s, s, machine.Right, restoreScan)
		} else {
			c.add(restoreRewind, s, s, machine.Left, restoreRewind)
		}
	}
	for _, s := range c.alphabet {
		switch {
		case s == marked:
			c.add(restoreScan, s, sym, machine.Right, restoreScan)
		case s == sep || s == machine.Blank:
			c.add(restoreScan, s, s, machine.Stay, restoreDone)
		default:
			c.add(restoreScan, s, s, machine.Right, restoreScan)
		}
	}
	return restoreDone
}

// compileAssign accepts exactly the shape x = x + y and lowers it as a
// non-destructive append of y onto x.
func (c *Compiler) compileAssign(stmt *lang.AssignStmt, entry string) (string, error) {
	bin, ok := stmt.Value.(*lang.BinaryExpr)
	if ok && bin.Op == lang.OpAdd {
		left, lok := bin.Left.(*lang.VarRef)
		right, rok := bin.Right.(*lang.VarRef)
		if lok && rok && left.Name == stmt.Name {
			src := c.getVar(right.Name)
			dst := c.getVar(stmt.Name)
			return c.emitAppend(entry, src.index, dst.index), nil
		}
	}
	return "", &LoweringError{Construct: "assignment", Reason: fmt.Sprintf("unsupported shape for %q", stmt.Name)}
}

// compileFor lowers the bounded loop: declare the loop variable with a
// fresh tail region, then per iteration increment it and run the body
// while |i| <= |n|.
func (c *Compiler) compileFor(stmt *lang.ForStmt, entry string) (string, error) {
	startLit, ok := stmt.Start.(*lang.IntLit)
	if !ok || startLit.Value != 1 {
		return "", &LoweringError{Construct: "for", Reason: "loop must start at 1"}
	}
	endVar, ok := stmt.End.(*lang.VarRef)
	if !ok {
		return "", &LoweringError{Construct: "for", Reason: "loop end must be a variable"}
	}

	c.declare(stmt.Var)
	iInfo := c.getVar(stmt.Var)
	nInfo := c.getVar(endVar.Name)

	setup := c.newState("for_setup")
	setupDone := c.newState("for_set")
	loopHead := c.newState("for_head")
	loopBody := c.newState("for_body")
	loopEnd := c.newState("for_end")

	for _, s := range c.alphabet {
		if s == machine.Blank {
			c.add(setup, s, sep, machine.Stay, setupDone)
		} else {
			c.add(setup, s, s, machine.Right, setup)
		}
	}
	c.wire(entry, setup)
	c.wire(c.emitRewind(setupDone), loopHead)

	afterInc := c.emitInsert(loopHead, iInfo.index)
	c.emitCompareLE(afterInc, iInfo.index, nInfo.index, loopBody, loopEnd)

	bodyDone, err := c.compileStmts(stmt.Body, loopBody)
	if err != nil {
		return "", err
	}
	c.wire(c.emitRewind(bodyDone), loopHead)

	return c.emitRewind(loopEnd), nil
}

// compileIf lowers the fused count(c) == v conditional. Any other
// condition shape is a lowering error; two plain variables arrive as
// IfEqStmt from the parser.
func (c *Compiler) compileIf(stmt *lang.IfStmt, entry string) (string, error) {
	bin, ok := stmt.Cond.(*lang.BinaryExpr)
	if !ok || bin.Op != lang.OpEq {
		return "", &LoweringError{Construct: "if", Reason: "condition must be an == comparison"}
	}
	count, cok := bin.Left.(*lang.CountExpr)
	varRef, vok := bin.Right.(*lang.VarRef)
	if !cok || !vok {
		return "", &LoweringError{Construct: "if", Reason: "condition must compare a count or a variable"}
	}
	return c.compileFusedCount(count.Symbol, varRef.Name, stmt.Then, stmt.Else, entry)
}

// compileFusedCount interleaves "find the next unmarked occurrence in
// the input" with "find the next unmarked 1 in the variable's region".
// If either side runs out first the branches diverge to else; if both
// run out together, to then. Input and region marks are restored on
// both paths before the branch bodies run.
func (c *Compiler) compileFusedCount(sym machine.Symbol, varName string, thenBody, elseBody []lang.Stmt, entry string) (string, error) {
	marked := markFor(sym)
	v := c.getVar(varName)

	thenSt := c.newState("then")
	elseSt := c.newState("else")
	endSt := c.newState("endif")
	goStart := c.newState("match_rewind")
	matchLoop := c.newState("match")
	toVar := c.newState("match_var")
	verify := c.newState("match_verify")
	eqRestore := c.newState("match_eq")
	neqRestore := c.newState("match_neq")

	c.wire(entry, goStart)
	for _, s := range c.alphabet {
		if s == leftEnd {
			c.add(goStart, s, s, machine.Right, matchLoop)
		} else {
			c.add(goStart, s, s, machine.Left, goStart)
		}
	}

	// Scan the input for an unmarked occurrence.
	for _, s := range c.alphabet {
		switch {
		case s == sym:
			c.add(matchLoop, s, marked, machine.Stay, toVar)
		case s == marked:
			c.add(matchLoop, s, s, machine.Right, matchLoop)
		case s == sep || s == machine.Blank:
			c.add(matchLoop, s, s, machine.Stay, verify)
		default:
			c.add(matchLoop, s, s, machine.Right, matchLoop)
		}
	}

	// Pair it with an unmarked 1 in the variable's region.
	inV := c.emitNavigate(c.emitRewind(toVar), v.index)
	backSt := c.newState("match_back")
	for _, s := range c.alphabet {
		switch s {
		case one:
			c.add(inV, s, oneMark, machine.Stay, backSt)
		case oneMark:
			c.add(inV, s, s, machine.Right, inV)
		default:
			c.add(inV, s, s, machine.Stay, neqRestore)
		}
	}
	c.wire(c.emitRewind(backSt), matchLoop)

	// Input exhausted: any unmarked 1 left in the region breaks the
	// equality.
	inVChk := c.emitNavigate(c.emitRewind(verify), v.index)
	for _, s := range c.alphabet {
		switch s {
		case one:
			c.add(inVChk, s, s, machine.Stay, neqRestore)
		case oneMark:
			c.add(inVChk, s, s, machine.Right, inVChk)
		default:
			c.add(inVChk, s, s, machine.Stay, eqRestore)
		}
	}

	// Restore the input marks and the region on both paths.
	restorePaths := []struct {
		from   string
		target string
	}{
		{eqRestore, thenSt},
		{neqRestore, elseSt},
	}
	for _, path := range restorePaths {
		sweep := c.emitRewind(path.from)
		next := c.newState("match_swept")
		for _, s := range c.alphabet {
			switch {
			case s == marked:
				c.add(sweep, s, sym, machine.Right, sweep)
			case s == sep || s == machine.Blank:
				c.add(sweep, s, s, machine.Stay, next)
			default:
				c.add(sweep, s, s, machine.Right, sweep)
			}
		}
		c.wireOpen(c.emitRestoreRegion(next, v.index), path.target)
	}

	thenDone, err := c.compileStmts(thenBody, thenSt)
	if err != nil {
		return "", err
	}
	elseDone := elseSt
	if len(elseBody) > 0 {
		elseDone, err = c.compileStmts(elseBody, elseSt)
		if err != nil {
			return "", err
		}
	}
	c.wireOpen(thenDone, endSt)
	c.wireOpen(elseDone, endSt)

	return c.emitRewind(endSt), nil
}

func (c *Compiler) compileIfEq(stmt *lang.IfEqStmt, entry string) (string, error) {
	a := c.getVar(stmt.A)
	b := c.getVar(stmt.B)

	thenSt := c.newState("ifeq_then")
	elseSt := c.newState("ifeq_else")
	endSt := c.newState("ifeq_end")

	c.emitCompareEqual(entry, a.index, b.index, thenSt, elseSt)

	thenDone, err := c.compileStmts(stmt.Then, thenSt)
	if err != nil {
		return "", err
	}
	elseDone := elseSt
	if len(stmt.Else) > 0 {
		elseDone, err = c.compileStmts(stmt.Else, elseSt)
		if err != nil {
			return "", err
		}
	}
	c.wireOpen(thenDone, endSt)
	c.wireOpen(elseDone, endSt)

	return c.emitRewind(endSt), nil
}

// compileReturn desugars to if cond { accept } else { reject }.
func (c *Compiler) compileReturn(stmt *lang.ReturnStmt, entry string) (string, error) {
	bin, ok := stmt.Value.(*lang.BinaryExpr)
	if !ok || bin.Op != lang.OpEq {
		return "", &LoweringError{Construct: "return", Reason: "condition must be an == comparison"}
	}
	accept := []lang.Stmt{&lang.AcceptStmt{}}
	reject := []lang.Stmt{&lang.RejectStmt{}}

	if count, cok := bin.Left.(*lang.CountExpr); cok {
		if varRef, vok := bin.Right.(*lang.VarRef); vok {
			return c.compileFusedCount(count.Symbol, varRef.Name, accept, reject, entry)
		}
	}
	if left, lok := bin.Left.(*lang.VarRef); lok {
		if right, rok := bin.Right.(*lang.VarRef); rok {
			return c.compileIfEq(&lang.IfEqStmt{A: left.Name, B: right.Name, Then: accept, Else: reject}, entry)
		}
	}
	return "", &LoweringError{Construct: "return", Reason: "left-hand side must be a count or a variable"}
}

func (c *Compiler) compileLoop(stmt *lang.LoopStmt, entry string) (string, error) {
	head := c.newState("loop_head")
	exit := c.newState("loop_exit")

	c.breaks = append(c.breaks, exit)
	c.wire(entry, head)

	bodyDone, err := c.compileStmts(stmt.Body, head)
	if err != nil {
		return "", err
	}
	if bodyDone != exit {
		c.wireOpen(bodyDone, head)
	}

	c.breaks = c.breaks[:len(c.breaks)-1]
	return exit, nil
}

func (c *Compiler) compileBreak(entry string) (string, error) {
	if len(c.breaks) == 0 {
		return "", &LoweringError{Construct: "break", Reason: "outside of any loop"}
	}
	target := c.breaks[len(c.breaks)-1]
	c.wire(entry, target)
	return target, nil
}

func (c *Compiler) compileScan(stmt *lang.ScanStmt, entry string) (string, error) {
	scan := c.newState("scan")
	done := c.newState("scan_done")

	stop := make(map[machine.Symbol]bool, len(stmt.Stop))
	for _, s := range stmt.Stop {
		stop[s] = true
	}

	c.wire(entry, scan)
	for _, s := range c.alphabet {
		if stop[s] {
			c.add(scan, s, s, machine.Stay, done)
		} else {
			c.add(scan, s, s, stmt.Move, scan)
		}
	}
	return done, nil
}

func (c *Compiler) compileWrite(stmt *lang.WriteStmt, entry string) (string, error) {
	done := c.newState("write_done")
	for _, s := range c.alphabet {
		c.add(entry, s, stmt.Symbol, machine.Stay, done)
	}
	return done, nil
}

func (c *Compiler) compileMove(stmt *lang.MoveStmt, entry string) (string, error) {
	done := c.newState("move_done")
	for _, s := range c.alphabet {
		c.add(entry, s, s, stmt.Move, done)
	}
	return done, nil
}

func (c *Compiler) compileIfCurrent(stmt *lang.IfCurrentStmt, entry string) (string, error) {
	end := c.newState("if_cur_end")
	handled := make(map[machine.Symbol]bool)

	for _, branch := range stmt.Branches {
		head := c.newState("branch")
		c.add(entry, branch.Symbol, branch.Symbol, machine.Stay, head)
		handled[branch.Symbol] = true

		branchDone, err := c.compileStmts(branch.Body, head)
		if err != nil {
			return "", err
		}
		c.wireOpen(branchDone, end)
	}

	if len(stmt.Else) > 0 {
		head := c.newState("else")
		for _, s := range c.alphabet {
			if !handled[s] && !c.m.Has(entry, s) {
				c.add(entry, s, s, machine.Stay, head)
			}
		}
		elseDone, err := c.compileStmts(stmt.Else, head)
		if err != nil {
			return "", err
		}
		c.wireOpen(elseDone, end)
	} else {
		for _, s := range c.alphabet {
			if !handled[s] && !c.m.Has(entry, s) {
				c.add(entry, s, s, machine.Stay, end)
			}
		}
	}

	return end, nil
}
