// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-engine/pkg/types"
)

// QueryFile is a saved search. Besides the raw results it holds the
// references rendered from them, so a paper can be regenerated or
// reformatted without querying the sources again, and a user can edit the
// reference list by hand before reuse.
type QueryFile struct {
	Query SavedQuery `yaml:"query"`

	// References are the complete references, in result order.
	References []types.Reference `yaml:"references"`

	// Skipped lists the titles of results that lacked a required field.
	Skipped []string `yaml:"skipped,omitempty"`

	Results []types.SearchResult `yaml:"results,omitempty"`
	Search  SearchStats          `yaml:"search"`
}

// SavedQuery is a Query with dates written as YYYY-MM-DD.
type SavedQuery struct {
	Text     string   `yaml:"text,omitempty"`
	Keywords []string `yaml:"keywords,omitempty"`
	From     string   `yaml:"from,omitempty"`
	To       string   `yaml:"to,omitempty"`
}

// SearchStats records how the results were obtained.
type SearchStats struct {
	MaxResults    int       `yaml:"max_results"`
	RecencyBias   bool      `yaml:"recency_bias"`
	Duplicates    int       `yaml:"duplicates_removed"`
	BackendErrors []string  `yaml:"backend_errors,omitempty"`
	SavedAt       time.Time `yaml:"saved_at"`
}

const dateFmt = "2006-01-02"

// NewQueryFile captures a finished search.
func NewQueryFile(query Query, cfg types.SearchConfig, recencyBias bool, out SearchOutput) *QueryFile {
	qf := &QueryFile{
		Query:      SavedQuery{Text: query.FreeText, Keywords: query.Keywords},
		References: []types.Reference{},
		Results:    out.Results,
		Search: SearchStats{
			MaxResults:    cfg.MaxResults,
			RecencyBias:   recencyBias,
			Duplicates:    out.DupsRemoved,
			BackendErrors: out.BackendErrors,
			SavedAt:       time.Now().UTC(),
		},
	}
	if !query.DateFrom.IsZero() {
		qf.Query.From = query.DateFrom.Format(dateFmt)
	}
	if !query.DateTo.IsZero() {
		qf.Query.To = query.DateTo.Format(dateFmt)
	}
	for _, r := range out.Results {
		if ref, ok := r.Reference(); ok {
			qf.References = append(qf.References, ref)
		} else {
			qf.Skipped = append(qf.Skipped, r.Title)
		}
	}
	return qf
}

// Save writes the file as YAML, creating parent directories.
func (qf *QueryFile) Save(path string) error {
	data, err := yaml.Marshal(qf)
	if err != nil {
		return fmt.Errorf("marshaling query file: %w", err)
	}
	if err := ensureDir(path); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// WriteQueryFile saves a finished search to path.
func WriteQueryFile(path string, query Query, cfg types.SearchConfig, recencyBias bool, out SearchOutput) error {
	return NewQueryFile(query, cfg, recencyBias, out).Save(path)
}

// ReadQueryFile loads a saved search. Stored references must be complete;
// an edited file with a broken entry is rejected rather than rendered short.
func ReadQueryFile(path string) (*QueryFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading query file: %w", err)
	}
	var qf QueryFile
	if err := yaml.Unmarshal(data, &qf); err != nil {
		return nil, fmt.Errorf("parsing query file: %w", err)
	}
	for i, ref := range qf.References {
		if err := ref.Validate(); err != nil {
			return nil, fmt.Errorf("query file %s: reference %d: %w", path, i+1, err)
		}
	}
	return &qf, nil
}

// ReferenceList returns the stored references. A file without a
// references key falls back to rendering its results.
func (qf *QueryFile) ReferenceList() []types.Reference {
	if qf.References != nil {
		return qf.References
	}
	return types.References(qf.Results)
}

// Output rebuilds the search output stored in the file.
func (qf *QueryFile) Output() SearchOutput {
	return SearchOutput{
		Results:       qf.Results,
		DupsRemoved:   qf.Search.Duplicates,
		BackendErrors: qf.Search.BackendErrors,
	}
}

// SearchQuery parses the saved query back into a Query.
func (qf *QueryFile) SearchQuery() (Query, error) {
	q := Query{FreeText: qf.Query.Text, Keywords: qf.Query.Keywords}
	var err error
	if q.DateFrom, err = parseSavedDate("from", qf.Query.From); err != nil {
		return q, err
	}
	if q.DateTo, err = parseSavedDate("to", qf.Query.To); err != nil {
		return q, err
	}
	return q, nil
}

func parseSavedDate(field, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateFmt, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s date %q: %w", field, s, err)
	}
	return t, nil
}
