// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Language selects the output language of a generated paper.
type Language string

const (
	English Language = "en"
	Chinese Language = "cn"
)

// Languages lists every supported output language in generation order.
var Languages = []Language{English, Chinese}

// Suffix returns the upper-case tag used in output file names (EN, CN).
func (l Language) Suffix() string {
	return strings.ToUpper(string(l))
}

// ParseLanguage accepts "en"/"english" and "cn"/"zh"/"chinese" in any case.
func ParseLanguage(s string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "en", "english":
		return English, nil
	case "cn", "zh", "chinese":
		return Chinese, nil
	default:
		return "", fmt.Errorf("unsupported language %q: use en or cn", s)
	}
}

// Reference is one entry of the rendered reference list. References are
// never mutated after construction.
type Reference struct {
	// Authors lists author names in citation order.
	Authors []string `json:"authors" yaml:"authors"`

	// Title is the cited work's title.
	Title string `json:"title" yaml:"title"`

	// Year is the publication year as written in the citation.
	Year string `json:"year" yaml:"year"`

	// Source is the journal, conference, or site.
	Source string `json:"source" yaml:"source"`

	// URL is optional.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`
}

// ErrIncompleteReference is returned by Validate for a reference missing a required field.
var ErrIncompleteReference = errors.New("incomplete reference")

// Validate reports whether every required field is present.
func (r Reference) Validate() error {
	var missing []string
	if len(r.Authors) == 0 {
		missing = append(missing, "authors")
	}
	if strings.TrimSpace(r.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(r.Year) == "" {
		missing = append(missing, "year")
	}
	if strings.TrimSpace(r.Source) == "" {
		missing = append(missing, "source")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrIncompleteReference, strings.Join(missing, ", "))
	}
	return nil
}

// GenerationRun records one generated paper: which input produced it, where
// it was written, and how much of the pipeline degraded along the way.
type GenerationRun struct {
	ID             string    `json:"id" yaml:"id"`
	InputPath      string    `json:"input_path" yaml:"input_path"`
	OutputPath     string    `json:"output_path" yaml:"output_path"`
	Language       Language  `json:"language" yaml:"language"`
	Topic          string    `json:"topic" yaml:"topic"`
	ReferenceCount int       `json:"reference_count" yaml:"reference_count"`
	FailedStages   []string  `json:"failed_stages,omitempty" yaml:"failed_stages,omitempty"`
	Degraded       bool      `json:"degraded" yaml:"degraded"`
	Error          string    `json:"error,omitempty" yaml:"error,omitempty"`
	StartedAt      time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt     time.Time `json:"finished_at" yaml:"finished_at"`
}
