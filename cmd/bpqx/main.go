// Package main provides the entry point for the BPQX CLI.
package main

import (
	"fmt"
	"os"

	"github.com/bpqx-io/bpqx/cmd/bpqx/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
