// Package main is the entry point for the driveplane CLI.
// The CLI is the operator terminal tool for interacting with the driveplane API.
package main

import (
	"os"

	"driveplane/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
