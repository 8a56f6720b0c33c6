package main

import (
	"fmt"

	"github.com/aretw0/spool"
	"github.com/aretw0/spool/internal/presentation/graph"
	"github.com/spf13/cobra"
)

// graphCmd exports the transition table as a Mermaid state diagram.
var graphCmd = &cobra.Command{
	Use:   "graph <source.spool>",
	Short: "Export the machine as a Mermaid state diagram",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := readSource(args[0])
		if err != nil {
			return err
		}
		m, err := spool.Compile(source, spool.WithLogger(newLogger(cmd)))
		if err != nil {
			return err
		}
		fmt.Print(graph.GenerateMermaid(m))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
