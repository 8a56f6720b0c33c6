package lang_test

import (
	"testing"

	"github.com/aretw0/spool/pkg/lang"
	"github.com/aretw0/spool/pkg/machine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCountingProgram(t *testing.T) {
	src := `
alphabet input: [a, b]

# count the a's, then check the b's match
n = count(a)
return count(b) == n
`
	prog, err := lang.Parse(src)
	require.NoError(t, err)

	assert.Equal(t, []machine.Symbol{'a', 'b'}, prog.Alphabet)
	require.Len(t, prog.Body, 2)

	let, ok := prog.Body[0].(*lang.LetStmt)
	require.True(t, ok)
	assert.Equal(t, "n", let.Name)
	cnt, ok := let.Init.(*lang.CountExpr)
	require.True(t, ok)
	assert.Equal(t, machine.Symbol('a'), cnt.Symbol)

	ret, ok := prog.Body[1].(*lang.ReturnStmt)
	require.True(t, ok)
	bin, ok := ret.Value.(*lang.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, lang.OpEq, bin.Op)
	_, ok = bin.Left.(*lang.CountExpr)
	assert.True(t, ok)
	_, ok = bin.Right.(*lang.VarRef)
	assert.True(t, ok)
}

func TestParseLoopWithBreak(t *testing.T) {
	src := `
alphabet input: [a, b]
n = count(a)
i = 0
loop {
	inc i
	if i == n {
		break
	}
}
`
	prog, err := lang.Parse(src)
	require.NoError(t, err)
	require.Len(t, prog.Body, 3)

	loop, ok := prog.Body[2].(*lang.LoopStmt)
	require.True(t, ok)
	require.Len(t, loop.Body, 2)

	_, ok = loop.Body[0].(*lang.IncStmt)
	assert.True(t, ok)

	ifeq, ok := loop.Body[1].(*lang.IfEqStmt)
	require.True(t, ok)
	assert.Equal(t, "i", ifeq.A)
	assert.Equal(t, "n", ifeq.B)
	require.Len(t, ifeq.Then, 1)
	_, ok = ifeq.Then[0].(*lang.BreakStmt)
	assert.True(t, ok)
}

func TestParseAppendAndAssign(t *testing.T) {
	src := `
alphabet input: [a]
sum = 0
i = 0
append i -> sum
sum = sum + i
`
	prog, err := lang.Parse(src)
	require.NoError(t, err)
	require.Len(t, prog.Body, 4)

	app, ok := prog.Body[2].(*lang.AppendStmt)
	require.True(t, ok)
	assert.Equal(t, "i", app.Src)
	assert.Equal(t, "sum", app.Dst)

	asg, ok := prog.Body[3].(*lang.AssignStmt)
	require.True(t, ok)
	assert.Equal(t, "sum", asg.Name)
	bin, ok := asg.Value.(*lang.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, lang.OpAdd, bin.Op)
}

func TestParseForLoop(t *testing.T) {
	src := `
alphabet input: [a]
n = count(a)
for i in 1..n {
	accept
}
`
	prog, err := lang.Parse(src)
	require.NoError(t, err)

	loop, ok := prog.Body[1].(*lang.ForStmt)
	require.True(t, ok)
	assert.Equal(t, "i", loop.Var)
	start, ok := loop.Start.(*lang.IntLit)
	require.True(t, ok)
	assert.Equal(t, 1, start.Value)
	end, ok := loop.End.(*lang.VarRef)
	require.True(t, ok)
	assert.Equal(t, "n", end.Name)
	require.Len(t, loop.Body, 1)
}

func TestParseHeadStatements(t *testing.T) {
	src := `
alphabet input: [a, b]
markers: [X]
scan right for [b, _]
write X
left
if a {
	accept
} else if b {
	reject
} else {
	reject
}
`
	prog, err := lang.Parse(src)
	require.NoError(t, err)
	assert.Equal(t, []machine.Symbol{'X'}, prog.Markers)
	require.Len(t, prog.Body, 4)

	scan, ok := prog.Body[0].(*lang.ScanStmt)
	require.True(t, ok)
	assert.Equal(t, machine.Right, scan.Move)
	assert.Equal(t, []machine.Symbol{'b', machine.Blank}, scan.Stop)

	wr, ok := prog.Body[1].(*lang.WriteStmt)
	require.True(t, ok)
	assert.Equal(t, machine.Symbol('X'), wr.Symbol)

	mv, ok := prog.Body[2].(*lang.MoveStmt)
	require.True(t, ok)
	assert.Equal(t, machine.Left, mv.Move)

	ifc, ok := prog.Body[3].(*lang.IfCurrentStmt)
	require.True(t, ok)
	require.Len(t, ifc.Branches, 2)
	assert.Equal(t, machine.Symbol('a'), ifc.Branches[0].Symbol)
	assert.Equal(t, machine.Symbol('b'), ifc.Branches[1].Symbol)
	require.Len(t, ifc.Else, 1)
}

func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"unclosed block":      "loop {\n accept\n",
		"bad append":          "append x y\n",
		"bad alphabet":        "alphabet input [a]\n",
		"stray token":         "= 3\n",
		"unclosed expression": "n = (1\n",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := lang.Parse(src)
			require.Error(t, err)
			var perr *lang.ParseError
			assert.ErrorAs(t, err, &perr)
		})
	}
}
