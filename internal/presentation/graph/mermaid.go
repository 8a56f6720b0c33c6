// Package graph renders a machine's transition table as a Mermaid
// state diagram.
package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/spool/pkg/machine"
)

// GenerateMermaid produces Mermaid stateDiagram-v2 syntax for the
// machine. Accept and reject are styled as terminal states; every
// transition edge is labelled read/write,move. Generated machines can
// run to hundreds of states, so this is mostly useful on optimized
// output or hand-written machines.
func GenerateMermaid(m *machine.Machine) string {
	var sb strings.Builder
	sb.WriteString("stateDiagram-v2\n")
	sb.WriteString(fmt.Sprintf("    [*] --> %s\n", sanitizeID(m.Start)))

	for _, state := range m.SortedStates() {
		row, ok := m.Delta[state]
		if !ok {
			continue
		}
		safeFrom := sanitizeID(state)
		for _, read := range sortedReads(row) {
			tr := row[read]
			label := fmt.Sprintf("%s/%s,%s", symbolLabel(read), symbolLabel(tr.Write), tr.Move)
			sb.WriteString(fmt.Sprintf("    %s --> %s: %s\n", safeFrom, sanitizeID(tr.Next), label))
		}
	}

	sb.WriteString(fmt.Sprintf("    %s --> [*]\n", sanitizeID(m.Accept)))
	sb.WriteString(fmt.Sprintf("    %s --> [*]\n", sanitizeID(m.Reject)))
	return sb.String()
}

func sortedReads(row map[machine.Symbol]machine.Transition) []machine.Symbol {
	reads := make([]machine.Symbol, 0, len(row))
	for s := range row {
		reads = append(reads, s)
	}
	for i := 1; i < len(reads); i++ {
		for j := i; j > 0 && reads[j] < reads[j-1]; j-- {
			reads[j], reads[j-1] = reads[j-1], reads[j]
		}
	}
	return reads
}

// symbolLabel renders a symbol for an edge label; Mermaid treats some
// characters specially, so non-alphanumerics become their names.
func symbolLabel(s machine.Symbol) string {
	switch s {
	case machine.Blank:
		return "␣"
	case '#':
		return "sep"
	case '>':
		return "lend"
	default:
		return string(byte(s))
	}
}

func sanitizeID(id string) string {
	var sb strings.Builder
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_':
			sb.WriteByte(c)
		default:
			sb.WriteByte('_')
		}
	}
	return sb.String()
}
