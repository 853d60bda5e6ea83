// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-engine/internal/paper"
	"github.com/pdiddy/paper-engine/internal/search"
	"github.com/pdiddy/paper-engine/pkg/types"
)

var generateCmd = &cobra.Command{
	Use:   "generate <input-file>",
	Short: "Write the English and Chinese papers for one draft",
	Long: `Generate reads a .txt, .md, or .pdf draft, infers its topic, searches for
references, and asks the model for an English and a Chinese paper. Each reply
is cleaned of AI-style artifacts, given a reference list, and written next to
the input as <base>_SCI_EN.txt and <base>_SCI_CN.txt.

Use --references to reuse a query file saved by "search --save" instead of
searching again, or --no-search to generate without references. When the model
fails for one language, the original text is written for it and the run is
reported as degraded.`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().String("references", "", "query file with saved search results to use instead of searching")
	generateCmd.Flags().Bool("no-search", false, "generate without references")
	generateCmd.Flags().String("output-dir", "", "directory for the generated papers (default: next to the input)")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	refsPath, _ := cmd.Flags().GetString("references")
	noSearch, _ := cmd.Flags().GetBool("no-search")
	outputDir, _ := cmd.Flags().GetString("output-dir")
	if refsPath != "" && noSearch {
		return fmt.Errorf("--references and --no-search are mutually exclusive")
	}

	c := cfg
	if outputDir != "" {
		c.Generation.OutputDir = outputDir
	}

	var refs []types.SearchResult
	switch {
	case noSearch:
		refs = []types.SearchResult{}
	case refsPath != "":
		qf, err := search.ReadQueryFile(refsPath)
		if err != nil {
			return err
		}
		refs = qf.Output().Results
		if refs == nil {
			refs = []types.SearchResult{}
		}
	}

	g, closeFn, err := newGenerator(c, logger)
	if err != nil {
		return err
	}
	defer closeFn()

	ctx, stop := signalContext()
	defer stop()

	res, err := g.GenerateWithReferences(ctx, args[0], refs)
	if err != nil {
		return err
	}
	printResult(cmd.OutOrStdout(), res)
	return nil
}

// printResult writes one line per language and the reference count.
func printResult(w io.Writer, res *paper.Result) {
	fmt.Fprintf(w, "Topic: %s\n", topicLine(res.Topic))
	fmt.Fprintf(w, "References: %d\n", len(res.References))
	for _, lang := range types.Languages {
		p, ok := res.Papers[lang]
		if !ok {
			continue
		}
		status := "ok"
		switch {
		case p.ModelErr != nil:
			status = fmt.Sprintf("degraded, original text kept: %v", p.ModelErr)
		case p.Report.Degraded():
			status = "degraded: " + describeDegraded(p)
		}
		fmt.Fprintf(w, "%s: %s (%s)\n", lang.Suffix(), p.OutputPath, status)
	}
}

func describeDegraded(p *paper.Paper) string {
	var parts []string
	if p.Report.PipelineErr != nil {
		parts = append(parts, "formatting skipped")
	}
	if names := p.Report.FailedStageNames(); len(names) > 0 {
		parts = append(parts, "failed stages "+strings.Join(names, ", "))
	}
	if p.Report.ReferenceErr != nil {
		parts = append(parts, "references truncated")
	}
	return strings.Join(parts, "; ")
}

func topicLine(info types.TopicInfo) string {
	var parts []string
	for _, lang := range types.Languages {
		if t := info.Topic[lang]; t != "" {
			parts = append(parts, t)
		}
	}
	if len(parts) == 0 {
		return "(none)"
	}
	return strings.Join(parts, " / ")
}
