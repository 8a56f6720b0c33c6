package machine

import "fmt"

// ValidationError describes a structural defect found by Validate. A
// failing validation on a finalized machine indicates a compiler bug
// rather than a user error.
type ValidationError struct {
	Element string // the offending state or symbol
	Reason  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("machine: %s: %s", e.Element, e.Reason)
}

// Validate checks the machine's structural invariants and returns a
// descriptive error for the first violation found. It is a pure
// predicate: the machine is never modified.
func (m *Machine) Validate() error {
	if !m.States[m.Start] {
		return &ValidationError{Element: m.Start, Reason: "start state not in state set"}
	}
	if !m.States[m.Accept] {
		return &ValidationError{Element: m.Accept, Reason: "accept state not in state set"}
	}
	if !m.States[m.Reject] {
		return &ValidationError{Element: m.Reject, Reason: "reject state not in state set"}
	}

	for _, state := range m.SortedStates() {
		row, ok := m.Delta[state]
		if !ok {
			continue
		}
		if state == m.Accept || state == m.Reject {
			if len(row) > 0 {
				return &ValidationError{Element: state, Reason: "halting sink has outgoing transitions"}
			}
			continue
		}
		for read, tr := range row {
			if read != Wildcard && !m.TapeAlphabet[read] {
				return &ValidationError{Element: string(read), Reason: "read symbol not in tape alphabet"}
			}
			if tr.Write != Wildcard && !m.TapeAlphabet[tr.Write] {
				return &ValidationError{Element: string(tr.Write), Reason: "write symbol not in tape alphabet"}
			}
			if !m.States[tr.Next] {
				return &ValidationError{Element: tr.Next, Reason: "transition targets unknown state"}
			}
		}
	}

	for state := range m.Delta {
		if !m.States[state] {
			return &ValidationError{Element: state, Reason: "delta references unknown state"}
		}
	}

	return nil
}
