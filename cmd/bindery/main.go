// Package main is the entry point for the bindery CLI tool.
package main

import (
	"os"

	"github.com/bindery-dev/bindery/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
