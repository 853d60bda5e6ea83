// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-engine/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded generation runs",
	Long: `History lists the papers generated so far, newest first, with where each
was written and whether it degraded. --export writes every run to
export.yaml or export.json in the store directory.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().Int("limit", 50, "maximum number of runs to list")
	historyCmd.Flags().Bool("json", false, "output runs as JSON")
	historyCmd.Flags().String("export", "", "export every run to the store directory: yaml or json")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	asJSON, _ := cmd.Flags().GetBool("json")
	export, _ := cmd.Flags().GetString("export")

	if cfg.Store.Disabled {
		return fmt.Errorf("history is disabled (store.disabled)")
	}
	st, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()

	switch strings.ToLower(export) {
	case "":
	case "yaml", "yml":
		path, err := st.ExportYAML(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", path)
		return nil
	case "json":
		path, err := st.ExportJSON(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", path)
		return nil
	default:
		return fmt.Errorf("unsupported export format %q: use yaml or json", export)
	}

	runs, err := st.ListRuns(ctx, limit)
	if err != nil {
		return err
	}
	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}
	printRuns(cmd.OutOrStdout(), runs)
	return nil
}

func printRuns(w io.Writer, runs []types.GenerationRun) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}
	fmt.Fprintf(w, "%-19s  %-4s  %-4s  %-8s  %s\n", "Finished", "Lang", "Refs", "Status", "Output")
	fmt.Fprintln(w, strings.Repeat("-", 90))
	for _, r := range runs {
		status := "ok"
		if r.Degraded {
			status = "degraded"
		}
		fmt.Fprintf(w, "%-19s  %-4s  %-4d  %-8s  %s\n",
			r.FinishedAt.Local().Format(time.DateTime), r.Language.Suffix(), r.ReferenceCount, status, r.OutputPath)
		if r.Error != "" {
			fmt.Fprintf(w, "%21s%s\n", "", r.Error)
		}
	}
}
