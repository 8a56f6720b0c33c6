package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/aretw0/spool"
	"github.com/aretw0/spool/internal/presentation/tui"
	"github.com/aretw0/spool/pkg/machine"
	"github.com/aretw0/spool/pkg/sim"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var runCmd = &cobra.Command{
	Use:   "run [source.spool]",
	Short: "Compile and run a program on an input",
	Long: `Compiles the program (or loads a machine with -m) and simulates it on
the given input string.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, _ := cmd.Flags().GetString("input")
		machineFile, _ := cmd.Flags().GetString("machine")
		limit, _ := cmd.Flags().GetInt("limit")
		trace, _ := cmd.Flags().GetBool("trace")
		logger := newLogger(cmd)

		m, err := loadOrCompile(cmd, args, machineFile)
		if err != nil {
			return err
		}
		logger.Debug("machine ready", "states", len(m.States))

		simulator := sim.New(m, sim.WithStepLimit(limit))
		if trace {
			simulator.Reset(input)
			for {
				fmt.Println(tui.TapeLine(simulator.Config()))
				if !simulator.Step() || simulator.Steps() >= limit {
					break
				}
			}
			fmt.Println(tui.TapeLine(simulator.Config()))
		}

		res := simulator.Run(input)

		// Pretty rendering only when stdout is a terminal.
		if term.IsTerminal(int(os.Stdout.Fd())) {
			render := tui.NewRenderer()
			out, rerr := render(tui.ReportMarkdown(input, res))
			if rerr == nil {
				fmt.Print(out)
				return nil
			}
		}
		printResult(input, res)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("input", "i", "", "Input string for the machine")
	runCmd.Flags().StringP("machine", "m", "", "Run a machine YAML file instead of compiling source")
	runCmd.Flags().Int("limit", sim.DefaultStepLimit, "Step budget for the run")
	runCmd.Flags().Bool("trace", false, "Print the tape configuration at every step")
	runCmd.Flags().Bool("no-opt", false, "Disable optimizer passes")
}

// loadOrCompile resolves the machine from either a YAML file or a
// source argument.
func loadOrCompile(cmd *cobra.Command, args []string, machineFile string) (*machine.Machine, error) {
	if machineFile != "" {
		data, err := os.ReadFile(machineFile)
		if err != nil {
			return nil, fmt.Errorf("cannot read machine: %w", err)
		}
		return machine.FromYAML(data)
	}
	if len(args) == 0 {
		return nil, errors.New("give a source file or -m machine.yaml")
	}
	source, err := readSource(args[0])
	if err != nil {
		return nil, err
	}
	noOpt, _ := cmd.Flags().GetBool("no-opt")
	return spool.Compile(source, spool.WithOptimize(!noOpt), spool.WithLogger(newLogger(cmd)))
}
