package main

import (
	mcpAdapter "github.com/aretw0/spool/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the compiler as MCP tools over stdio",
	Long: `Exposes compile_program and run_program as MCP tools so agent hosts
can drive the compiler.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		server := mcpAdapter.NewServer(newLogger(cmd))
		return server.ServeStdio()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
