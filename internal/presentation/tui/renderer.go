// Package tui renders run results for interactive terminals.
package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/spool/pkg/sim"
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a markdown renderer backed by glamour, detecting
// light or dark terminal backgrounds automatically.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
	)
	if err != nil {
		// Fall back to passing markdown through untouched.
		return func(markdown string) (string, error) {
			return markdown, nil
		}
	}
	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// ReportMarkdown formats a run result as a small markdown document for
// the renderer.
func ReportMarkdown(input string, res sim.Result) string {
	verdict := "REJECT"
	if res.Accepted {
		verdict = "ACCEPT"
	}
	if res.HitLimit {
		verdict = "STEP LIMIT EXCEEDED"
	}

	var sb strings.Builder
	sb.WriteString("# Run result\n\n")
	sb.WriteString(fmt.Sprintf("**%s** after %d steps\n\n", verdict, res.Steps))
	sb.WriteString(fmt.Sprintf("- input: `%q`\n", input))
	if res.FinalTape != "" {
		sb.WriteString(fmt.Sprintf("- final tape: `%s`\n", res.FinalTape))
	}
	return sb.String()
}
