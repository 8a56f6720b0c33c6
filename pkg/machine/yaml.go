package machine

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ToYAML serializes the machine in the interchange format consumed by
// the external simulator. The layout is hand-emitted rather than
// produced by a YAML library: the consumer is byte-sensitive (flow
// lists, key order, the exact quoting rule below), and an encoder's
// own styling decisions must not leak into the output.
func ToYAML(m *Machine) string {
	var sb strings.Builder

	sb.WriteString("states: [")
	for i, state := range m.SortedStates() {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(escapeYAML(state))
	}
	sb.WriteString("]\n")

	sb.WriteString("input_alphabet: [")
	for i, s := range m.SortedInputAlphabet() {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(symbolString(s))
	}
	sb.WriteString("]\n")

	// Tape symbols beyond the input alphabet and the blank.
	extra := make([]Symbol, 0, len(m.TapeAlphabet))
	for _, s := range m.SortedTapeAlphabet() {
		if s != Blank && !m.InputAlphabet[s] {
			extra = append(extra, s)
		}
	}
	if len(extra) > 0 {
		sb.WriteString("tape_alphabet_extra: [")
		for i, s := range extra {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(symbolString(s))
		}
		sb.WriteString("]\n")
	}

	sb.WriteString("start_state: " + escapeYAML(m.Start) + "\n")
	sb.WriteString("accept_state: " + escapeYAML(m.Accept) + "\n")
	sb.WriteString("reject_state: " + escapeYAML(m.Reject) + "\n")

	// Accept and reject are halting sinks and are omitted from delta.
	sb.WriteString("\ndelta:\n")
	for _, state := range m.SortedStates() {
		if state == m.Accept || state == m.Reject {
			continue
		}
		row, ok := m.Delta[state]
		if !ok {
			continue
		}
		sb.WriteString("  " + escapeYAML(state) + ":\n")
		for _, read := range sortedSymbols(symbolKeys(row)) {
			tr := row[read]
			sb.WriteString(fmt.Sprintf("    %s: [%s, %s, %s]\n",
				symbolString(read), escapeYAML(tr.Next), symbolString(tr.Write), tr.Move))
		}
	}

	return sb.String()
}

func symbolKeys(row map[Symbol]Transition) map[Symbol]bool {
	keys := make(map[Symbol]bool, len(row))
	for s := range row {
		keys[s] = true
	}
	return keys
}

// symbolString renders a symbol for YAML output. The blank is written
// as a bare underscore; the wildcard is always quoted.
func symbolString(s Symbol) string {
	if s == Blank {
		return "_"
	}
	if s == Wildcard {
		return "'?'"
	}
	return escapeYAML(string(s))
}

// escapeYAML single-quotes scalars containing YAML-special characters.
func escapeYAML(s string) string {
	if strings.ContainsAny(s, ":#'\"[]{}!|>*&") {
		return "'" + s + "'"
	}
	return s
}

// yamlMachine mirrors the interchange document for decoding. Symbol
// lists and delta are kept as raw nodes: symbols like 1 or > would
// otherwise decode as non-string scalars.
type yamlMachine struct {
	States            []string  `yaml:"states"`
	InputAlphabet     yaml.Node `yaml:"input_alphabet"`
	TapeAlphabetExtra yaml.Node `yaml:"tape_alphabet_extra"`
	StartState        string    `yaml:"start_state"`
	AcceptState       string    `yaml:"accept_state"`
	RejectState       string    `yaml:"reject_state"`
	Delta             yaml.Node `yaml:"delta"`
}

// FromYAML parses a machine from its interchange document.
func FromYAML(data []byte) (*Machine, error) {
	var doc yamlMachine
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("machine: decode yaml: %w", err)
	}

	m := New()
	m.Start = doc.StartState
	m.Accept = doc.AcceptState
	m.Reject = doc.RejectState

	for _, s := range doc.States {
		m.States[s] = true
	}

	inputSyms, err := symbolList(&doc.InputAlphabet)
	if err != nil {
		return nil, fmt.Errorf("machine: input_alphabet: %w", err)
	}
	for _, s := range inputSyms {
		m.InputAlphabet[s] = true
	}

	extraSyms, err := symbolList(&doc.TapeAlphabetExtra)
	if err != nil {
		return nil, fmt.Errorf("machine: tape_alphabet_extra: %w", err)
	}
	for _, s := range extraSyms {
		m.TapeAlphabet[s] = true
	}

	if err := decodeDelta(m, &doc.Delta); err != nil {
		return nil, err
	}

	m.Finalize()
	return m, nil
}

// symbolList reads a sequence node of single-byte scalars.
func symbolList(node *yaml.Node) ([]Symbol, error) {
	if node.Kind == 0 || node.Tag == "!!null" {
		return nil, nil
	}
	if node.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("expected a sequence")
	}
	syms := make([]Symbol, 0, len(node.Content))
	for _, item := range node.Content {
		s, err := parseSymbol(item.Value)
		if err != nil {
			return nil, err
		}
		syms = append(syms, s)
	}
	return syms, nil
}

// decodeDelta walks the delta mapping: state -> read -> [next, write, dir].
func decodeDelta(m *Machine, node *yaml.Node) error {
	if node.Kind == 0 || node.Tag == "!!null" {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("machine: delta: expected a mapping")
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		state := node.Content[i].Value
		row := node.Content[i+1]
		if row.Kind != yaml.MappingNode {
			return fmt.Errorf("machine: delta %s: expected a mapping", state)
		}
		for j := 0; j+1 < len(row.Content); j += 2 {
			read, err := parseSymbol(row.Content[j].Value)
			if err != nil {
				return fmt.Errorf("machine: delta %s: %w", state, err)
			}
			entry := row.Content[j+1]
			if entry.Kind != yaml.SequenceNode || len(entry.Content) != 3 {
				return fmt.Errorf("machine: delta %s/%c: want [next, write, dir]", state, read)
			}
			next := entry.Content[0].Value
			write, err := parseSymbol(entry.Content[1].Value)
			if err != nil {
				return fmt.Errorf("machine: delta %s/%c: %w", state, read, err)
			}
			move, ok := ParseDirection(entry.Content[2].Value)
			if !ok {
				return fmt.Errorf("machine: delta %s/%c: bad direction %q", state, read, entry.Content[2].Value)
			}
			m.AddTransition(state, read, write, move, next)
		}
	}
	return nil
}

func parseSymbol(s string) (Symbol, error) {
	if len(s) != 1 {
		return 0, fmt.Errorf("symbol %q is not a single byte", s)
	}
	return Symbol(s[0]), nil
}
