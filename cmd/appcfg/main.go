// Package main is the entry point for the appcfg CLI.
package main

import (
	"os"

	"github.com/thoreinstein/appcfg/cmd/appcfg/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(commands.HandleError(os.Stderr, err))
	}
}
