package main

import (
	"fmt"
	"os"

	"github.com/aretw0/spool"
	"github.com/aretw0/spool/internal/optimizer"
	"github.com/aretw0/spool/pkg/machine"
	"github.com/aretw0/spool/pkg/sim"
	"github.com/spf13/cobra"
)

var compileCmd = &cobra.Command{
	Use:   "compile <source.spool>",
	Short: "Compile a program to a Turing machine",
	Long:  `Compiles a decision-language program and emits the machine's YAML transition table.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		testInput, _ := cmd.Flags().GetString("test")
		noOpt, _ := cmd.Flags().GetBool("no-opt")
		precompute, _ := cmd.Flags().GetInt("precompute")
		logger := newLogger(cmd)

		source, err := readSource(args[0])
		if err != nil {
			return err
		}

		m, err := spool.Compile(source,
			spool.WithOptimize(!noOpt),
			spool.WithLogger(logger),
		)
		if err != nil {
			return err
		}

		if precompute > 0 {
			// The compiled machine is its own oracle for the fast path.
			oracle := func(input string) bool {
				return spool.RunMachine(m, input).Accepted
			}
			optimizer.AddPrecomputed(m, precompute, oracle)
			m.Finalize()
			if err := m.Validate(); err != nil {
				return fmt.Errorf("precompute broke the machine: %w", err)
			}
		}

		doc := machine.ToYAML(m)
		if output == "" {
			fmt.Print(doc)
		} else {
			if err := os.WriteFile(output, []byte(doc), 0o644); err != nil {
				return fmt.Errorf("cannot write %s: %w", output, err)
			}
			logger.Info("machine written",
				"path", output,
				"states", len(m.States),
				"transitions", m.TransitionCount(),
			)
		}

		if cmd.Flags().Changed("test") {
			res := sim.New(m).Run(testInput)
			printResult(testInput, res)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(compileCmd)

	compileCmd.Flags().StringP("output", "o", "", "Output YAML file (default: stdout)")
	compileCmd.Flags().StringP("test", "t", "", "Run the compiled machine on this input")
	compileCmd.Flags().Bool("no-opt", false, "Disable optimizer passes")
	compileCmd.Flags().Int("precompute", 0, "Precompute verdicts for inputs up to this length")
}

func printResult(input string, res sim.Result) {
	verdict := "REJECT"
	if res.Accepted {
		verdict = "ACCEPT"
	}
	fmt.Printf("Input: %q\n", input)
	fmt.Printf("Result: %s\n", verdict)
	fmt.Printf("Steps: %d\n", res.Steps)
	if res.FinalTape != "" {
		fmt.Printf("Final tape: %s\n", res.FinalTape)
	}
	if res.HitLimit {
		fmt.Println("WARNING: hit step limit")
	}
}
