package main

import (
	"fmt"
	"os"

	"github.com/aretw0/spool"
	"github.com/aretw0/spool/pkg/machine"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <source.spool | machine.yaml>",
	Short: "Check a program or machine for consistency",
	Long: `Compiles a program (or loads a machine YAML) and runs the structural
validator over the result.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runValidate(cmd, args[0]); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Machine is valid! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().Bool("yaml", false, "Treat the argument as a machine YAML file")
}

func runValidate(cmd *cobra.Command, path string) error {
	asYAML, _ := cmd.Flags().GetBool("yaml")

	if asYAML {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		m, err := machine.FromYAML(data)
		if err != nil {
			return err
		}
		return m.Validate()
	}

	source, err := readSource(path)
	if err != nil {
		return err
	}
	// Compile already validates the finalized machine.
	_, err = spool.Compile(source, spool.WithLogger(newLogger(cmd)))
	return err
}
