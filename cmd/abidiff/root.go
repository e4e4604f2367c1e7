package main

import "github.com/spf13/cobra"

var rootCmd = &cobra.Command{
	Use:   "abidiff",
	Short: "Compare the public ABI described by two corpus snapshots.",
	Long: `abidiff builds a diff graph between two corpus snapshots, applies
suppression rules and redundancy marking, and renders the surviving
changes as text, YAML or HTML.`,
}
