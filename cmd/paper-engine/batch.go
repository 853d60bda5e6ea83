// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var batchCmd = &cobra.Command{
	Use:   "batch <files...>",
	Short: "Write a Chinese paper for each input file",
	Long: `Batch processes several drafts concurrently, at most generation.max_workers
at a time. Each input gets a Chinese paper without topic analysis or
references. PDF inputs are first drafted from their extracted text.

A line per input reports whether it was generated, degraded, or failed,
followed by a summary. The command exits non-zero when any input failed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().String("output-dir", "", "directory for the generated papers (default: next to each input)")

	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	outputDir, _ := cmd.Flags().GetString("output-dir")

	c := cfg
	if outputDir != "" {
		c.Generation.OutputDir = outputDir
	}

	g, closeFn, err := newGenerator(c, logger)
	if err != nil {
		return err
	}
	defer closeFn()

	ctx, stop := signalContext()
	defer stop()

	summary := g.GenerateBatch(ctx, args, cmd.OutOrStdout())
	if summary.HasFailures() {
		return fmt.Errorf("%d of %d inputs failed", summary.Failed, summary.Total())
	}
	return nil
}
