// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-engine/internal/format"
	"github.com/pdiddy/paper-engine/internal/paper"
	"github.com/pdiddy/paper-engine/internal/search"
	"github.com/pdiddy/paper-engine/pkg/types"
)

var formatCmd = &cobra.Command{
	Use:   "format <raw-file>",
	Short: "Clean a model reply and append its references",
	Long: `Format runs the AI-artifact removal pipeline over a raw model reply without
calling the model. Disclaimers, transitions, and markup are removed, paragraphs
and headers are laid out, citations are normalized, and references from an
optional query file are appended in the language's style.

The formatted text goes to stdout unless --output is given. --report prints
the outcome of each stage to stderr.`,
	Args: cobra.ExactArgs(1),
	RunE: runFormat,
}

func init() {
	formatCmd.Flags().String("lang", "en", "output language: en or cn")
	formatCmd.Flags().String("references", "", "query file whose results are appended as references")
	formatCmd.Flags().Bool("report", false, "print the per-stage report to stderr")
	formatCmd.Flags().String("output", "", "write the formatted text to this file instead of stdout")

	rootCmd.AddCommand(formatCmd)
}

func runFormat(cmd *cobra.Command, args []string) error {
	langFlag, _ := cmd.Flags().GetString("lang")
	refsPath, _ := cmd.Flags().GetString("references")
	showReport, _ := cmd.Flags().GetBool("report")
	outPath, _ := cmd.Flags().GetString("output")

	lang, err := types.ParseLanguage(langFlag)
	if err != nil {
		return err
	}
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	var refs []types.Reference
	if refsPath != "" {
		qf, err := search.ReadQueryFile(refsPath)
		if err != nil {
			return err
		}
		refs = qf.ReferenceList()
	}

	formatters, err := paper.NewFormatters(cfg.Format, logger)
	if err != nil {
		return fmt.Errorf("building formatters: %w", err)
	}
	out, rep := formatters[lang].FormatWithReport(string(raw), refs)

	if outPath != "" {
		if err := os.WriteFile(outPath, []byte(out), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", outPath, err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Formatted text written to %s\n", outPath)
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), out)
	}

	if showReport {
		printReport(cmd.ErrOrStderr(), rep)
	}
	return nil
}

// printReport writes one line per stage followed by the reference outcome.
func printReport(w io.Writer, rep format.Report) {
	fmt.Fprintf(w, "Language: %s\n", rep.Language)
	if rep.PipelineErr != nil {
		fmt.Fprintf(w, "Pipeline failed, raw text returned: %v\n", rep.PipelineErr)
	}
	for _, s := range rep.Stages {
		if s.Err != nil {
			fmt.Fprintf(w, "  %-22s failed: %v\n", s.Stage, s.Err)
			continue
		}
		fmt.Fprintf(w, "  %-22s ok\n", s.Stage)
	}
	fmt.Fprintf(w, "References rendered: %d\n", rep.ReferencesRendered)
	if rep.ReferenceErr != nil {
		fmt.Fprintf(w, "References stopped: %v\n", rep.ReferenceErr)
	}
}
