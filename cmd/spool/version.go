package main

import (
	"fmt"

	"github.com/aretw0/spool"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of spool",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("spool version %s\n", spool.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
