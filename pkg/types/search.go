// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the paper-engine pipeline:
// search results and references, topic analysis, generation runs, and the
// configuration of every stage.
package types

import (
	"strconv"
	"strings"
	"time"
)

// SearchResult represents a candidate reference returned by a search backend.
// Web backends fill Title, Source, Date, and Content; API backends also fill
// Authors, Identifier, and URL.
type SearchResult struct {
	// Identifier is the canonical ID from the source (arXiv ID, DOI, or URL).
	Identifier string `json:"identifier,omitempty" yaml:"identifier,omitempty"`

	// Title is the reference title as returned by the source.
	Title string `json:"title" yaml:"title"`

	// Authors lists the authors in source order.
	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`

	// Source names the venue or site the reference came from
	// (journal name, publisher line, or the backend name as a fallback).
	Source string `json:"source" yaml:"source"`

	// Backend identifies which backend found this result (e.g. "arxiv", "openalex", "web").
	Backend string `json:"backend" yaml:"backend"`

	// Date is the publication date, zero when unknown.
	Date time.Time `json:"date,omitempty" yaml:"date,omitempty"`

	// Content is the abstract or the raw text of the result card.
	Content string `json:"content,omitempty" yaml:"content,omitempty"`

	// URL links to the landing page or PDF.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// IsPDF reports whether the result card was marked as a PDF.
	IsPDF bool `json:"is_pdf,omitempty" yaml:"is_pdf,omitempty"`

	// RelevanceScore is a value between 0.0 and 1.0 indicating relevance to the query.
	RelevanceScore float64 `json:"relevance_score" yaml:"relevance_score"`
}

// Year returns the four-digit publication year, or "" when the date is unknown.
func (r SearchResult) Year() string {
	if r.Date.IsZero() {
		return ""
	}
	return strconv.Itoa(r.Date.Year())
}

// Reference converts the result into a renderable Reference. It reports
// false when the result lacks a field the reference list requires.
func (r SearchResult) Reference() (Reference, bool) {
	ref := Reference{
		Authors: r.Authors,
		Title:   strings.TrimSpace(r.Title),
		Year:    r.Year(),
		Source:  strings.TrimSpace(r.Source),
		URL:     r.URL,
	}
	if ref.Source == "" {
		ref.Source = r.Backend
	}
	return ref, ref.Validate() == nil
}

// References converts results into references, dropping incomplete ones.
// The relative order of the kept results is preserved.
func References(results []SearchResult) []Reference {
	refs := make([]Reference, 0, len(results))
	for _, r := range results {
		if ref, ok := r.Reference(); ok {
			refs = append(refs, ref)
		}
	}
	return refs
}
