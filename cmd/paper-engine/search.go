// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-engine/internal/search"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search academic sources for references",
	Long: `Search queries arXiv, OpenAlex, and the configured web search page for
references matching a topic. Results are deduplicated across sources and ranked
by relevance.

--save writes a query file that "generate --references" and
"format --references" can reuse. --listing writes the plain-text reference
listing that is embedded in the generation prompts.`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().String("query", "", "free-text topic")
	searchCmd.Flags().String("keywords", "", "additional keywords (comma-separated)")
	searchCmd.Flags().String("from", "", "publication date range start (YYYY-MM-DD)")
	searchCmd.Flags().String("to", "", "publication date range end (YYYY-MM-DD)")
	searchCmd.Flags().Int("max-results", 0, "maximum number of results to return (default: search.max_results)")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	searchCmd.Flags().Bool("csl", false, "output results as CSL-JSON")
	searchCmd.Flags().Bool("bibtex", false, "output results as BibTeX")
	searchCmd.Flags().Bool("recency-bias", false, "boost recently published references")
	searchCmd.Flags().String("save", "", "write the query and results to this YAML query file")
	searchCmd.Flags().String("listing", "", "write the plain-text reference listing to this file")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	text, _ := cmd.Flags().GetString("query")
	keywords, _ := cmd.Flags().GetString("keywords")
	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	maxResults, _ := cmd.Flags().GetInt("max-results")
	asJSON, _ := cmd.Flags().GetBool("json")
	asCSL, _ := cmd.Flags().GetBool("csl")
	asBibTeX, _ := cmd.Flags().GetBool("bibtex")
	recency, _ := cmd.Flags().GetBool("recency-bias")
	savePath, _ := cmd.Flags().GetString("save")
	listingPath, _ := cmd.Flags().GetString("listing")

	query := search.Query{FreeText: strings.TrimSpace(text)}
	for _, kw := range strings.Split(keywords, ",") {
		if kw = strings.TrimSpace(kw); kw != "" {
			query.Keywords = append(query.Keywords, kw)
		}
	}
	var err error
	if query.DateFrom, err = parseDate("from", from); err != nil {
		return err
	}
	if query.DateTo, err = parseDate("to", to); err != nil {
		return err
	}
	if query.IsEmpty() {
		return search.ErrEmptyQuery
	}

	sc := cfg.Search
	if maxResults > 0 {
		sc.MaxResults = maxResults
	}
	if recency && sc.RecencyBiasWindow == 0 {
		sc.RecencyBiasWindow = 2 * 365 * 24 * time.Hour
	}
	searcher, err := newSearcher(sc, recency, logger)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	out, err := searcher.Search(ctx, query)
	if err != nil {
		return err
	}

	if savePath != "" {
		if err := search.WriteQueryFile(savePath, query, sc, recency, out); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Query file written to %s\n", savePath)
	}
	if listingPath != "" {
		if err := search.SaveReferencesText(listingPath, out.Results); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Reference listing written to %s\n", listingPath)
	}

	w := cmd.OutOrStdout()
	switch {
	case asJSON:
		return search.FormatJSON(out, w)
	case asCSL:
		return search.FormatCSL(out, w)
	case asBibTeX:
		return search.FormatBibTeX(out, w)
	default:
		search.FormatTable(out, w)
		return nil
	}
}

func parseDate(flag, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s date %q: use YYYY-MM-DD", flag, s)
	}
	return t, nil
}
