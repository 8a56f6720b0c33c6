package tui

import (
	"os"
	"strings"

	"github.com/aretw0/spool/pkg/machine"
	"github.com/aretw0/spool/pkg/sim"
	"github.com/muesli/termenv"
)

// TapeLine renders one configuration as a single line with the cell
// under the head highlighted, for --trace output.
func TapeLine(cfg sim.Config) string {
	output := termenv.NewOutput(os.Stdout)
	return tapeLine(output, cfg)
}

func tapeLine(output *termenv.Output, cfg sim.Config) string {
	var sb strings.Builder
	sb.WriteString(cfg.State)
	sb.WriteString("  ")
	for i, cell := range cfg.Tape {
		text := string(byte(cell))
		if cell == machine.Blank {
			text = "_"
		}
		if i == cfg.Head {
			sb.WriteString(output.String(text).Reverse().Bold().String())
		} else {
			sb.WriteString(text)
		}
	}
	return sb.String()
}
