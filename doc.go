/*
Package spool compiles a small imperative decision-language into
deterministic single-tape Turing machines, and simulates those machines
on concrete inputs.

A source program describes a decision procedure over strings using
counts of input symbols, unary integer variables stored in auxiliary
tape regions, bounded loops, and primitive head movements. The compiler
lowers each construct to a block of transitions over one left-bounded
tape, and the simulator runs the finished table under a step budget.

# Usage

Compile and run in one step:

	result, err := spool.Run(`
	alphabet input: [a, b]

	n = count(a)
	return count(b) == n
	`, "aabb")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(result.Accepted, result.Steps)

Or keep the compiled machine around:

	m, err := spool.Compile(source)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Print(machine.ToYAML(m))
	res := spool.RunMachine(m, "abba")

# Layout

The heavy lifting lives in the subpackages: pkg/machine holds the
machine model and its YAML interchange format, pkg/sim the simulator,
pkg/lang the surface syntax, and internal/codegen the lowering
pipeline. The cmd/spool binary wraps it all in a CLI with serve and
MCP modes.
*/
package spool
