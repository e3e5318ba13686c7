// Package main is the entry point for the gridmove CLI application.
// It migrates Airtable bases into Grist documents over the two services'
// REST APIs.
package main

import (
	"gridmove/cli/cmd"
)

// main is the entry point for the gridmove CLI application.
// It initializes and executes the command-line interface.
func main() {
	cmd.Execute()
}
