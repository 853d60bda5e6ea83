// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/pdiddy/paper-engine/internal/httputil"
	"github.com/pdiddy/paper-engine/pkg/types"
)

// WebBackend scrapes an HTML search results page. Each element matched by
// the result selector is one card; its text lines are read as a title, a
// bracketed [YYYY-MM-DD] date, and source lines. A line containing "PDF"
// marks the card as a PDF and carries the title.
type WebBackend struct {
	Client *http.Client
	Logger *zap.Logger
	Page   types.WebSourceConfig
}

// Name returns the backend identifier.
func (b *WebBackend) Name() string { return "web" }

// Search fetches the configured page for the query and parses its cards.
func (b *WebBackend) Search(ctx context.Context, query Query, cfg types.SearchConfig) ([]types.SearchResult, error) {
	if b.Page.URLTemplate == "" || b.Page.ResultSelector == "" {
		return nil, fmt.Errorf("web backend needs a URL template and a result selector")
	}
	text := query.Text()
	if text == "" {
		return nil, fmt.Errorf("empty web query")
	}

	reqURL := strings.ReplaceAll(b.Page.URLTemplate, "{query}", url.QueryEscape(text))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, b.Client, req, cfg.MaxRetries, b.Logger)
	if err != nil {
		return nil, fmt.Errorf("web search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("web search returned HTTP %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing web search page: %w", err)
	}

	minLen := b.Page.MinCardLength
	if minLen <= 0 {
		minLen = 10
	}

	cards := doc.Find(b.Page.ResultSelector)
	total := cards.Length()
	var results []types.SearchResult
	cards.Each(func(i int, card *goquery.Selection) {
		lines := cardLines(card)
		r, ok := parseCard(lines, minLen)
		if !ok {
			return
		}
		r.Backend = b.Name()
		r.RelevanceScore = positionScore(i, total)
		if b.Page.LinkSelector != "" {
			if href, ok := card.Find(b.Page.LinkSelector).First().Attr("href"); ok {
				r.URL = resolveURL(req.URL, href)
				r.Identifier = r.URL
			}
		}
		results = append(results, r)
	})

	if b.Logger != nil {
		b.Logger.Debug("web cards parsed", zap.Int("cards", total), zap.Int("results", len(results)))
	}
	return results, nil
}

// cardLines returns the trimmed text of each leaf element in card, falling
// back to the card's own text split on newlines.
func cardLines(card *goquery.Selection) []string {
	var lines []string
	card.Find("*").Each(func(_ int, el *goquery.Selection) {
		if el.Children().Length() > 0 || el.Is("script, style") {
			return
		}
		if t := collapseSpace(el.Text()); t != "" {
			lines = append(lines, t)
		}
	})
	if len(lines) > 0 {
		return lines
	}
	for _, l := range strings.Split(card.Text(), "\n") {
		if t := collapseSpace(l); t != "" {
			lines = append(lines, t)
		}
	}
	return lines
}

var cardDatePattern = regexp.MustCompile(`\[([0-9]{4}-[0-9]{2}-[0-9]{2})\]`)

// parseCard reads one result card. Cards shorter than minLen or without a
// title are skipped.
func parseCard(lines []string, minLen int) (types.SearchResult, bool) {
	content := strings.Join(lines, "\n")
	if len([]rune(strings.TrimSpace(content))) < minLen {
		return types.SearchResult{}, false
	}

	var r types.SearchResult
	var source []string
	for _, line := range lines {
		switch {
		case strings.Contains(line, "PDF"):
			r.IsPDF = true
			r.Title = strings.TrimSpace(strings.ReplaceAll(line, "PDF", ""))
		case cardDatePattern.MatchString(line):
			m := cardDatePattern.FindStringSubmatch(line)
			if t, err := time.Parse("2006-01-02", m[1]); err == nil {
				r.Date = t
			}
		case line != "" && r.Title == "":
			r.Title = line
		case line != "":
			source = append(source, line)
		}
	}
	if r.Title == "" {
		return types.SearchResult{}, false
	}
	r.Source = strings.Join(source, " ")
	r.Content = content
	return r, true
}

func resolveURL(base *url.URL, href string) string {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return href
	}
	return base.ResolveReference(u).String()
}
