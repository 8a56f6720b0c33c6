package spool_test

import (
	"fmt"
	"log"

	"github.com/aretw0/spool"
)

// ExampleRun compiles a program and runs it on one input in a single
// call.
func ExampleRun() {
	result, err := spool.Run(`
alphabet input: [a, b]

n = count(a)
return count(b) == n
`, "abba")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(result.Accepted)
	// Output: true
}

// ExampleCompile keeps the compiled machine around so many inputs can
// be decided without recompiling.
func ExampleCompile() {
	m, err := spool.Compile(`
alphabet input: [a, b]

n = count(a)
return count(b) == n
`)
	if err != nil {
		log.Fatal(err)
	}

	for _, input := range []string{"ab", "aab"} {
		fmt.Println(input, spool.RunMachine(m, input).Accepted)
	}
	// Output:
	// ab true
	// aab false
}
