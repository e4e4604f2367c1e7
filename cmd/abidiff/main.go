// Command abidiff compares the public ABI of two binaries already loaded
// into internal/ir (SPEC_FULL.md §1's CLI front end). It wires
// internal/pairing, internal/propagate, internal/suppress and
// internal/redundancy into one run and hands the result to
// internal/reporter.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
