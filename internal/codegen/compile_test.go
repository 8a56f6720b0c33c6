package codegen_test

import (
	"strings"
	"testing"

	"github.com/aretw0/spool/internal/codegen"
	"github.com/aretw0/spool/pkg/lang"
	"github.com/aretw0/spool/pkg/machine"
	"github.com/aretw0/spool/pkg/sim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compileSource(t *testing.T, src string) *machine.Machine {
	t.Helper()
	prog, err := lang.Parse(src)
	require.NoError(t, err)
	m, err := codegen.Compile(prog)
	require.NoError(t, err)
	require.NoError(t, m.Validate())
	return m
}

// allStrings enumerates every string over the alphabet up to maxLen,
// including the empty string.
func allStrings(alphabet string, maxLen int) []string {
	result := []string{""}
	current := []string{""}
	for len(current[0]) < maxLen {
		var next []string
		for _, s := range current {
			for i := 0; i < len(alphabet); i++ {
				next = append(next, s+string(alphabet[i]))
			}
		}
		result = append(result, next...)
		current = next
	}
	return result
}

// verifyExhaustive runs the machine on every string up to maxLen and
// compares against the oracle. Accepted or not, the final tape must
// carry no transient marks: statement boundaries restore them all.
func verifyExhaustive(t *testing.T, m *machine.Machine, alphabet string, maxLen int, oracle func(string) bool) {
	t.Helper()
	s := sim.New(m, sim.WithStepLimit(10_000_000))
	for _, input := range allStrings(alphabet, maxLen) {
		res := s.Run(input)
		require.False(t, res.HitLimit, "input %q hit the step limit", input)
		assert.Equal(t, oracle(input), res.Accepted, "input %q", input)
		assert.False(t, strings.ContainsAny(res.FinalTape, "IABCDEFGH"),
			"input %q left transient marks on the tape: %q", input, res.FinalTape)
	}
}

const anbnSource = `
alphabet input: [a, b]

n = count(a)
return count(b) == n
`

func TestAnBnProgram(t *testing.T) {
	m := compileSource(t, anbnSource)

	oracle := func(s string) bool {
		return strings.Count(s, "a") == strings.Count(s, "b")
	}
	verifyExhaustive(t, m, "ab", 8, oracle)
}

func TestAnBnScenarios(t *testing.T) {
	m := compileSource(t, anbnSource)
	s := sim.New(m)

	assert.True(t, s.Run("aabb").Accepted)
	assert.False(t, s.Run("aab").Accepted)
	// The language is order-insensitive: only the tallies matter.
	assert.True(t, s.Run("abba").Accepted)
}

func TestCountIsNonDestructive(t *testing.T) {
	src := `
alphabet input: [a, b]

n = count(a)
return count(a) == n
`
	m := compileSource(t, src)

	// The second count must see the input exactly as the first did, so
	// every string over the alphabet is accepted.
	verifyExhaustive(t, m, "ab", 8, func(string) bool { return true })
}

const triangularSource = `
alphabet input: [a, b]

# structure: a*b*
scan right for [b, _]
scan right for [a, _]
if a {
	reject
}

n = count(a)
m = count(b)
sum = 0
zero = 0
if n == zero {
	return m == zero
}
i = 0
loop {
	inc i
	append i -> sum
	if i == n {
		break
	}
}
return sum == m
`

func TestTriangularProgram(t *testing.T) {
	oracle := func(s string) bool {
		n, m := 0, 0
		inB := false
		for _, c := range s {
			if c == 'a' {
				if inB {
					return false
				}
				n++
			} else {
				inB = true
				m++
			}
		}
		return m == n*(n+1)/2
	}

	m := compileSource(t, triangularSource)
	verifyExhaustive(t, m, "ab", 8, oracle)
}

func TestTriangularScenarios(t *testing.T) {
	m := compileSource(t, triangularSource)
	s := sim.New(m, sim.WithStepLimit(10_000_000))

	assert.True(t, s.Run("aaabbbbbb").Accepted)
	assert.False(t, s.Run("aaabbbbb").Accepted)
	// T(0) = 0: the empty string belongs to the language.
	assert.True(t, s.Run("").Accepted)
}

func TestStartsAndEndsWithA(t *testing.T) {
	src := `
alphabet input: [a, b]

if a {
} else {
	reject
}
scan right for [_]
left
if a {
	accept
} else {
	reject
}
`
	oracle := func(s string) bool {
		return len(s) > 0 && s[0] == 'a' && s[len(s)-1] == 'a'
	}

	m := compileSource(t, src)
	verifyExhaustive(t, m, "ab", 10, oracle)
}

func TestCountingLoopTerminates(t *testing.T) {
	src := `
alphabet input: [a]

n = count(a)
i = 0
loop {
	inc i
	if i == n {
		break
	}
}
accept
`
	m := compileSource(t, src)
	s := sim.New(m, sim.WithStepLimit(10_000_000))

	// Termination is the observable property: for any non-empty input
	// with at least one a the loop counts i up to n and breaks.
	for _, input := range []string{"a", "aa", "aaaa", "aaaaaaaa"} {
		res := s.Run(input)
		assert.False(t, res.HitLimit, "input %q", input)
		assert.True(t, res.Accepted, "input %q", input)
	}
}

func TestForLoop(t *testing.T) {
	src := `
alphabet input: [a]

n = count(a)
s = 0
for j in 1..n {
	inc s
}
return s == n
`
	m := compileSource(t, src)

	// The body runs exactly n times, so s == n always holds.
	verifyExhaustive(t, m, "a", 6, func(string) bool { return true })
}

func TestPreamble(t *testing.T) {
	src := `
alphabet input: [a, b, c]
`
	m := compileSource(t, src)
	res := sim.New(m).Run("abc")

	// The preamble shifts the input one cell right and plants the
	// sentinel; an empty program then accepts.
	assert.True(t, res.Accepted)
	assert.Equal(t, ">abc", res.FinalTape)
}

func TestPreambleEmptyInput(t *testing.T) {
	m := compileSource(t, "alphabet input: [a]\n")
	res := sim.New(m).Run("")
	assert.True(t, res.Accepted)
	assert.Equal(t, ">", res.FinalTape)
}

func TestInsertAndShiftPreservesLayout(t *testing.T) {
	src := `
alphabet input: [a, b]

n = count(a)
m = count(b)
inc n
`
	mach := compileSource(t, src)
	res := sim.New(mach).Run("aab")

	require.True(t, res.Accepted)
	// n's region grows by exactly one; the separator count, their
	// order, and every other region are untouched.
	assert.Equal(t, ">aab#111#1", res.FinalTape)
	assert.Equal(t, 2, strings.Count(res.FinalTape, "#"))
}

func TestInsertIntoTailRegion(t *testing.T) {
	src := `
alphabet input: [a]

n = count(a)
inc n
`
	mach := compileSource(t, src)
	res := sim.New(mach).Run("aa")
	require.True(t, res.Accepted)
	assert.Equal(t, ">aa#111", res.FinalTape)
}

func TestCopyRegionInitialiser(t *testing.T) {
	src := `
alphabet input: [a]

n = count(a)
c = n
return c == n
`
	mach := compileSource(t, src)

	res := sim.New(mach).Run("aaa")
	require.True(t, res.Accepted)
	// The copy is restored: both regions hold the tally.
	assert.Equal(t, ">aaa#111#111", res.FinalTape)

	verifyExhaustive(t, mach, "a", 6, func(string) bool { return true })
}

func TestIntLiteralInitialiser(t *testing.T) {
	src := `
alphabet input: [a]

three = 3
n = count(a)
return n == three
`
	mach := compileSource(t, src)
	oracle := func(s string) bool { return len(s) == 3 }
	verifyExhaustive(t, mach, "a", 6, oracle)
}

func TestAssignmentAppends(t *testing.T) {
	src := `
alphabet input: [a, b]

x = count(a)
y = count(b)
x = x + y
n = count(a)
m = count(b)
z = 0
z = z + n
z = z + m
return x == z
`
	mach := compileSource(t, src)
	// x and z both end up holding count(a) + count(b).
	verifyExhaustive(t, mach, "ab", 6, func(string) bool { return true })
}

func TestFusedCountAgainstLaterRegion(t *testing.T) {
	// The counted variable lives in the second region; the matcher must
	// navigate past the first one rather than pair with the first
	// unmarked tally on the tape.
	src := `
alphabet input: [a, b]

pad = 2
n = count(a)
return count(b) == n
`
	m := compileSource(t, src)
	oracle := func(s string) bool {
		return strings.Count(s, "a") == strings.Count(s, "b")
	}
	verifyExhaustive(t, m, "ab", 6, oracle)
}

func TestCompileDeterminism(t *testing.T) {
	prog1, err := lang.Parse(anbnSource)
	require.NoError(t, err)
	prog2, err := lang.Parse(anbnSource)
	require.NoError(t, err)

	m1, err := codegen.Compile(prog1)
	require.NoError(t, err)
	m2, err := codegen.Compile(prog2)
	require.NoError(t, err)

	assert.Equal(t, machine.ToYAML(m1), machine.ToYAML(m2))
}

func TestMarkersJoinTapeAlphabet(t *testing.T) {
	src := `
alphabet input: [a]
markers: [X, Y]
`
	m := compileSource(t, src)
	assert.True(t, m.TapeAlphabet['X'])
	assert.True(t, m.TapeAlphabet['Y'])
}

func TestLoweringErrors(t *testing.T) {
	cases := map[string]string{
		"assignment shape":     "alphabet input: [a]\nx = 0\ny = 0\nx = y + x\n",
		"for start":            "alphabet input: [a]\nn = count(a)\nfor i in 2..n {\n}\n",
		"for end":              "alphabet input: [a]\nfor i in 1..3 {\n}\n",
		"break outside loop":   "alphabet input: [a]\nbreak\n",
		"if condition literal": "alphabet input: [a]\nn = count(a)\nif n == 0 {\n}\n",
		"return condition":     "alphabet input: [a]\nn = count(a)\nreturn n\n",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			prog, err := lang.Parse(src)
			require.NoError(t, err)
			_, err = codegen.Compile(prog)
			require.Error(t, err)
			var lerr *codegen.LoweringError
			assert.ErrorAs(t, err, &lerr)
		})
	}
}
