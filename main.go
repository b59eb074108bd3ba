// Package main is the entry point for the mark command.
package main

import (
	"os"

	"github.com/billie-coop/mark/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
