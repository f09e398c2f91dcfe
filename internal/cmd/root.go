// Package cmd holds the medpress CLI commands.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "medpress",
	Short: "Quality gate and generation pipeline for Greek medical articles",
	Long: `medpress scores LLM-generated Greek medical articles against a
deterministic quality gate, validates them against editorial rules, and
drives the research, generation, retry and publishing pipeline.

The gate is fully deterministic: the same article and target always
produce the same verdict, so retries and CI checks are reproducible.`,
}

func Execute() error {
	return rootCmd.Execute()
}
