// Copyright (c) 2025 Gridmove
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for the gridmove CLI.
// It implements subcommands for configuring credentials, inspecting the
// source base, and running the migration, using the Cobra CLI framework.
// The package handles command parsing, execution, and provides a rich
// terminal UI with spinners and progress indicators.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	showVersion bool
)

// rootCmd represents the base command when called without any subcommands.
// It serves as the entry point for the gridmove CLI application.
var rootCmd = &cobra.Command{
	Use:           "gridmove",
	Short:         "Gridmove CLI for migrating Airtable bases into Grist documents",
	Long:          `Gridmove is a command-line tool that copies an Airtable base - table schemas and records - into a new Grist document over the two services' REST APIs.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			fmt.Printf("gridmove %s\n", Version)
			return nil
		}
		// If no flag is set, show help
		return cmd.Help()
	},
}

// Execute runs the CLI application.
// It executes the root command and handles any errors that occur during execution.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show CLI version information")
}
