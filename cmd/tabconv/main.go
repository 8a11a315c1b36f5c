// Package main is the entry point for the tabconv CLI.
package main

import (
	"os"

	"github.com/f3rmion/tabconv/cmd/tabconv/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
