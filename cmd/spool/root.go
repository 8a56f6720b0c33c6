package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/spool/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "spool",
	Short: "Spool compiles a small decision-language to Turing machines",
	Long: `Spool translates programs written in an imperative decision-language
into deterministic single-tape Turing machines, and simulates those
machines on concrete inputs.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	level, _ := cmd.Flags().GetString("log-level")
	return logging.New(logging.ParseLevel(level))
}

func readSource(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("cannot read source: %w", err)
	}
	return string(data), nil
}
