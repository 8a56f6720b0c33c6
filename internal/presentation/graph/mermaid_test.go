package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/spool/internal/presentation/graph"
	"github.com/aretw0/spool/pkg/machine"
	"github.com/stretchr/testify/assert"
)

func TestGenerateMermaid(t *testing.T) {
	m := machine.New()
	m.Start = "start"
	m.Accept = "qA"
	m.Reject = "qR"
	m.InputAlphabet['a'] = true
	m.AddTransition("start", 'a', 'a', machine.Right, "qA")
	m.AddTransition("start", machine.Blank, machine.Blank, machine.Stay, "qR")
	m.Finalize()

	out := graph.GenerateMermaid(m)

	assert.True(t, strings.HasPrefix(out, "stateDiagram-v2\n"))
	assert.Contains(t, out, "[*] --> start")
	assert.Contains(t, out, "start --> qA: a/a,R")
	assert.Contains(t, out, "start --> qR: ␣/␣,S")
	assert.Contains(t, out, "qA --> [*]")
	assert.Contains(t, out, "qR --> [*]")
}

func TestSanitizedStateNames(t *testing.T) {
	m := machine.New()
	m.Start = "let-scan.0"
	m.Accept = "qA"
	m.Reject = "qR"
	m.AddTransition("let-scan.0", 'a', 'a', machine.Stay, "qA")
	m.Finalize()

	out := graph.GenerateMermaid(m)
	assert.Contains(t, out, "let_scan_0 --> qA")
	assert.NotContains(t, out, "let-scan.0 -->")
}
