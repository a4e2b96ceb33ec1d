package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "mcpmuxd",
	Short: "mcpmux is a tool-discovery proxy for MCP servers",
	Long: "mcpmuxd multiplexes many upstream MCP servers behind a single namespace,\n" +
		"advertising search_tools/execute_tool alongside deferred upstream tools\n" +
		"when defer-loading is enabled, or in place of the full upstream tool list\n" +
		"under SEARCH_ONLY visibility, per namespace/endpoint policy.",
}

// Execute runs the root command, exiting the process on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
