// Package main provides the entry point for the databrook CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/databrook/databrook/cmd/databrook/commands"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "databrook",
		Short: "databrook - lazy dataset pipelines and workflow graphs",
		Long: `databrook builds and runs lazy dataset/operator pipelines and
declarative workflow graphs over the reference directory dataset format.

Commands:
  op    Run a single named operator over a directory dataset
  map   Apply a named sample mapper over a directory dataset
  wf    Run a declarative workflow graph document`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(commands.NewOpCommand())
	rootCmd.AddCommand(commands.NewMapCommand())
	rootCmd.AddCommand(commands.NewWfCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
