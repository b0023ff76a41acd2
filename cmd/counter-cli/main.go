// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// "counter-cli" initializes, increments and inspects the counter of a
// countervm node.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ava-labs/countervm/utils"
)

var rootCmd = &cobra.Command{
	Use:          "counter-cli",
	Short:        "CLI for the countervm counter program",
	Long:         `A CLI application for initializing, incrementing and reading the counter of a countervm node.`,
	SuggestFor:   []string{"counter-cli", "countercli"},
	SilenceUsage: true,
}

func init() {
	cobra.EnablePrefixMatching = true
	rootCmd.SilenceErrors = true
	rootCmd.PersistentFlags().StringP("output", "o", "text", "Output format (text or json)")
	rootCmd.PersistentFlags().String("endpoint", "", "Override the default endpoint")
	rootCmd.PersistentFlags().String("key", "", "Private ED25519 key as hex string")
	rootCmd.PersistentFlags().String("program-id", "", "Override the counter program ID")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		utils.Outf("{{red}}counter-cli exited with error:{{/}} %+v\n", err)
		os.Exit(1)
	}
	os.Exit(0)
}
