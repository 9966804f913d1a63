// Package cmd implements the streamcore CLI: one capture session driven
// to completion per process invocation, per SPEC_FULL.md §5's "one
// dedicated goroutine per capture" — there is no background daemon or
// control-plane socket here, unlike the teacher's multi-task agent.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "streamcore",
	Short: "streamcore - heterogeneous-memory array runtime and packet-capture front end",
	Long: `streamcore provides the memory substrate and packet-capture ingest front for a
streaming signal-processing pipeline: a strided, multi-space array descriptor
and memory engine, and a format-polymorphic capture state machine that reads
timestamped packets from a UDP socket, raw socket, or file into a ring buffer.

This binary drives one capture session per invocation; it does not itself
schedule DSP kernels or own a network transport beyond the configured source.`,
	Version: "0.1.0",
}

// Execute runs the root command. Called once from main.main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml",
		"capture session config file path")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(formatsCmd)
}

func exitWithError(msg string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
	}
	os.Exit(1)
}
