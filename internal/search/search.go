// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search queries academic sources for references supporting a draft
// and returns unified, deduplicated, ranked results.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"

	"go.uber.org/zap"

	"github.com/pdiddy/paper-engine/pkg/types"
)

// ErrEmptyQuery is returned when a query has no searchable terms.
var ErrEmptyQuery = errors.New("query is empty: provide a topic or keywords")

// Backend searches a single source. Each backend (arXiv, OpenAlex, an HTML
// search page) implements this interface.
type Backend interface {
	Name() string
	Search(ctx context.Context, query Query, cfg types.SearchConfig) ([]types.SearchResult, error)
}

// Searcher runs a query to completion. Engine and Cache implement it.
type Searcher interface {
	Search(ctx context.Context, query Query) (SearchOutput, error)
}

// Query holds the search parameters.
type Query struct {
	FreeText string    `json:"free_text,omitempty" yaml:"free_text,omitempty"`
	Keywords []string  `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	DateFrom time.Time `json:"date_from,omitempty" yaml:"date_from,omitempty"`
	DateTo   time.Time `json:"date_to,omitempty" yaml:"date_to,omitempty"`
}

// IsEmpty reports whether the query contains no searchable terms.
func (q Query) IsEmpty() bool {
	return strings.TrimSpace(q.FreeText) == "" && len(q.Keywords) == 0
}

// Text returns the free text and keywords as one space-separated string.
func (q Query) Text() string {
	parts := append([]string{q.FreeText}, q.Keywords...)
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

// Key identifies the query for caching.
func (q Query) Key() string {
	var b strings.Builder
	b.WriteString(strings.ToLower(q.Text()))
	if !q.DateFrom.IsZero() {
		b.WriteString("|from:" + q.DateFrom.Format("2006-01-02"))
	}
	if !q.DateTo.IsZero() {
		b.WriteString("|to:" + q.DateTo.Format("2006-01-02"))
	}
	return b.String()
}

// maxQueryKeywords bounds how many extracted keywords join the query.
const maxQueryKeywords = 3

// BuildQuery turns an analyzed topic into a query: the topic followed by
// the configured suffix terms, plus the leading keywords. With no topic the
// first keyword stands in for it.
func BuildQuery(topic string, keywords []string, suffix []string) Query {
	topic = strings.TrimSpace(topic)
	kws := make([]string, 0, maxQueryKeywords)
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" || strings.EqualFold(kw, topic) {
			continue
		}
		if topic == "" {
			topic = kw
			continue
		}
		if len(kws) < maxQueryKeywords {
			kws = append(kws, kw)
		}
	}
	if topic == "" {
		return Query{}
	}
	return Query{
		FreeText: strings.Join(append([]string{topic}, suffix...), " "),
		Keywords: kws,
	}
}

// SearchOutput holds the results and dedup statistics.
type SearchOutput struct {
	Results       []types.SearchResult `json:"results" yaml:"results"`
	DupsRemoved   int                  `json:"dups_removed" yaml:"dups_removed"`
	BackendErrors []string             `json:"backend_errors,omitempty" yaml:"backend_errors,omitempty"`
}

// Engine fans a query out to its backends.
type Engine struct {
	Backends    []Backend
	Config      types.SearchConfig
	RecencyBias bool
	Logger      *zap.Logger
}

// Search fans out the query to all backends concurrently, deduplicates
// results, ranks them, and returns the top N. A failing backend is logged
// and recorded; the search fails only when every backend failed.
func (e *Engine) Search(ctx context.Context, query Query) (SearchOutput, error) {
	if query.IsEmpty() {
		return SearchOutput{}, ErrEmptyQuery
	}
	if len(e.Backends) == 0 {
		return SearchOutput{}, fmt.Errorf("no search backends configured")
	}
	logger := e.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := e.Config

	type backendResult struct {
		results []types.SearchResult
		err     error
		name    string
	}

	ch := make(chan backendResult, len(e.Backends))
	var wg sync.WaitGroup

	for i, b := range e.Backends {
		if i > 0 && cfg.InterBackendDelay > 0 {
			select {
			case <-ctx.Done():
				return SearchOutput{}, ctx.Err()
			case <-time.After(cfg.InterBackendDelay):
			}
		}
		wg.Add(1)
		go func(b Backend) {
			defer wg.Done()
			results, err := b.Search(ctx, query, cfg)
			ch <- backendResult{results: results, err: err, name: b.Name()}
		}(b)
	}

	go func() {
		wg.Wait()
		close(ch)
	}()

	var all []types.SearchResult
	var backendErrors []string
	for br := range ch {
		if br.err != nil {
			backendErrors = append(backendErrors, fmt.Sprintf("%s: %v", br.name, br.err))
			logger.Warn("search backend failed", zap.String("backend", br.name), zap.Error(br.err))
			continue
		}
		logger.Debug("search backend done", zap.String("backend", br.name), zap.Int("results", len(br.results)))
		all = append(all, br.results...)
	}
	sort.Strings(backendErrors)

	if len(backendErrors) == len(e.Backends) {
		return SearchOutput{BackendErrors: backendErrors},
			fmt.Errorf("all %d search backends failed: %s", len(e.Backends), strings.Join(backendErrors, "; "))
	}

	deduped, removed := deduplicate(all)

	if e.RecencyBias && cfg.RecencyBiasWindow > 0 {
		applyRecencyBias(deduped, cfg.RecencyBiasWindow)
	}

	sort.SliceStable(deduped, func(i, j int) bool {
		return deduped[i].RelevanceScore > deduped[j].RelevanceScore
	})

	if cfg.MaxResults > 0 && len(deduped) > cfg.MaxResults {
		deduped = deduped[:cfg.MaxResults]
	}

	logger.Info("search complete",
		zap.String("query", query.Text()),
		zap.Int("results", len(deduped)),
		zap.Int("duplicates", removed))

	return SearchOutput{
		Results:       deduped,
		DupsRemoved:   removed,
		BackendErrors: backendErrors,
	}, nil
}

// deduplicate merges results that share an identifier or normalized title.
func deduplicate(results []types.SearchResult) ([]types.SearchResult, int) {
	seen := make(map[string]int) // dedup key → index in deduped
	var deduped []types.SearchResult
	removed := 0

	for _, r := range results {
		key := dedupKey(r)
		if idx, ok := seen[key]; ok && key != "" {
			mergeInto(&deduped[idx], r)
			removed++
			continue
		}

		titleKey := "title:" + normalizeTitle(r.Title)
		if titleKey != "title:" {
			if idx, ok := seen[titleKey]; ok {
				mergeInto(&deduped[idx], r)
				removed++
				continue
			}
		}

		idx := len(deduped)
		deduped = append(deduped, r)
		if key != "" {
			seen[key] = idx
		}
		if titleKey != "title:" {
			seen[titleKey] = idx
		}
	}
	return deduped, removed
}

// dedupKey returns a key for identifier-based dedup (arXiv ID, DOI, or URL).
func dedupKey(r types.SearchResult) string {
	if r.Identifier != "" {
		return "id:" + strings.ToLower(r.Identifier)
	}
	return ""
}

// mergeInto fills empty fields of dst from src and keeps the higher score.
func mergeInto(dst *types.SearchResult, src types.SearchResult) {
	if dst.Title == "" && src.Title != "" {
		dst.Title = src.Title
	}
	if len(dst.Authors) == 0 && len(src.Authors) > 0 {
		dst.Authors = src.Authors
	}
	if dst.Content == "" && src.Content != "" {
		dst.Content = src.Content
	}
	if dst.Date.IsZero() && !src.Date.IsZero() {
		dst.Date = src.Date
	}
	if dst.URL == "" && src.URL != "" {
		dst.URL = src.URL
	}
	if dst.Identifier == "" && src.Identifier != "" {
		dst.Identifier = src.Identifier
	}
	// A named venue beats a backend fallback.
	if (dst.Source == "" || dst.Source == dst.Backend) && src.Source != "" && src.Source != src.Backend {
		dst.Source = src.Source
	}
	dst.IsPDF = dst.IsPDF || src.IsPDF
	if src.RelevanceScore > dst.RelevanceScore {
		dst.RelevanceScore = src.RelevanceScore
	}
	if src.Backend != "" && !strings.Contains(dst.Backend, src.Backend) {
		dst.Backend = dst.Backend + "," + src.Backend
	}
}

// normalizeTitle returns a lowercased, punctuation-stripped version of the title.
func normalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// applyRecencyBias boosts scores for references published within the window.
func applyRecencyBias(results []types.SearchResult, window time.Duration) {
	now := time.Now()
	for i := range results {
		if results[i].Date.IsZero() {
			continue
		}
		age := now.Sub(results[i].Date)
		if age <= window {
			boost := 0.2 * (1.0 - float64(age)/float64(window))
			results[i].RelevanceScore = math.Min(1.0, results[i].RelevanceScore+boost)
		}
	}
}

// positionScore gives results a relevance from 1.0 down to 0.1 by rank.
func positionScore(i, total int) float64 {
	if total > 1 {
		return 1.0 - float64(i)/float64(total-1)*0.9
	}
	return 1.0
}

// FormatTable writes results as a human-readable table to w.
func FormatTable(out SearchOutput, w io.Writer) {
	if len(out.Results) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-60s  %-20s  %-4s  %-6s  %s\n",
		"Rank", "Title", "Authors", "Year", "Score", "Source")
	fmt.Fprintln(w, strings.Repeat("-", 110))

	for i, r := range out.Results {
		fmt.Fprintf(w, "%-4d  %-60s  %-20s  %-4s  %-6.2f  %s\n",
			i+1, truncate(r.Title, 60), formatAuthors(r.Authors), r.Year(), r.RelevanceScore, r.Source)
	}

	fmt.Fprintf(w, "\n%d results", len(out.Results))
	if out.DupsRemoved > 0 {
		fmt.Fprintf(w, " (%d duplicates removed)", out.DupsRemoved)
	}
	fmt.Fprintln(w)
}

// FormatJSON writes results as indented JSON to w.
func FormatJSON(out SearchOutput, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out.Results)
}

func formatAuthors(authors []string) string {
	switch len(authors) {
	case 0:
		return ""
	case 1:
		return truncate(authors[0], 20)
	default:
		return truncate(authors[0], 14) + " et al."
	}
}

// truncate shortens s to at most limit runes.
func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-3]) + "..."
}
