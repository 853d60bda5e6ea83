// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package format cleans generated paper text. A Formatter runs the raw text
// through an ordered pipeline driven by a LanguageProfile: it strips AI
// disclaimers, mechanical transitions, and markup, re-flows the body into
// indented paragraphs under section headers, normalizes citations and the
// title, and finally appends a rendered reference list.
//
// Formatting never fails. A stage that errors is skipped and its input is
// passed on; a failure outside the stages returns the raw text.
package format

import (
	"unicode/utf8"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/pdiddy/paper-engine/pkg/types"
)

// Report describes what happened during one formatting call.
type Report struct {
	Language types.Language `json:"language"`

	// Stages holds one result per executed stage, in order.
	Stages []StageResult `json:"-"`

	// PipelineErr is set when the raw text was returned unprocessed.
	PipelineErr error `json:"-"`

	// ReferencesRendered counts the references appended.
	ReferencesRendered int `json:"references_rendered"`

	// ReferenceErr is set when rendering stopped at an incomplete reference.
	ReferenceErr error `json:"-"`
}

// Failed returns the stages that failed and were skipped.
func (r Report) Failed() []StageResult {
	var out []StageResult
	for _, s := range r.Stages {
		if s.Err != nil {
			out = append(out, s)
		}
	}
	return out
}

// FailedStageNames returns the names of the failed stages, for persistence.
func (r Report) FailedStageNames() []string {
	var names []string
	for _, s := range r.Failed() {
		names = append(names, s.Stage)
	}
	return names
}

// Degraded reports whether any part of the call fell back to less-processed text.
func (r Report) Degraded() bool {
	return r.PipelineErr != nil || r.ReferenceErr != nil || len(r.Failed()) > 0
}

// Formatter applies a LanguageProfile. It holds no mutable state and is
// safe for concurrent use.
type Formatter struct {
	profile *LanguageProfile
	logger  *zap.Logger
	strict  bool
}

// Option configures a Formatter.
type Option func(*Formatter)

// WithLogger sets the logger used to report stage and rendering failures.
func WithLogger(l *zap.Logger) Option {
	return func(f *Formatter) {
		if l != nil {
			f.logger = l
		}
	}
}

// WithStrictHeaderCollapse selects standalone-line matching (true, the
// default) or raw token matching when collapsing duplicate references headers.
func WithStrictHeaderCollapse(strict bool) Option {
	return func(f *Formatter) { f.strict = strict }
}

// New returns a Formatter for profile.
func New(profile *LanguageProfile, opts ...Option) *Formatter {
	f := &Formatter{profile: profile, logger: zap.NewNop(), strict: true}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Profile returns the formatter's language profile.
func (f *Formatter) Profile() *LanguageProfile { return f.profile }

// Format returns the cleaned body of raw followed by the rendered references.
func (f *Formatter) Format(raw string, refs []types.Reference) string {
	out, _ := f.FormatWithReport(raw, refs)
	return out
}

// FormatWithReport is Format plus a report of every stage outcome.
func (f *Formatter) FormatWithReport(raw string, refs []types.Reference) (out string, rep Report) {
	defer func() {
		if r := recover(); r != nil {
			rep.PipelineErr = errors.Errorf("formatting panicked: %v", r)
			f.logger.Error("formatting failed, returning raw text", zap.Error(rep.PipelineErr))
			out = raw
		}
	}()

	body, rep, marks := f.formatBody(raw)
	if rep.PipelineErr != nil {
		return raw, rep
	}

	if f.strict {
		body = collapseMarked(body, f.profile.ReferencesHeader, marks)
	} else {
		body = CollapseReferencesHeader(body, f.profile.ReferencesHeader, false)
	}
	out, rep.ReferencesRendered, rep.ReferenceErr = appendReferences(body, f.profile, refs)
	if rep.ReferenceErr != nil {
		f.logger.Warn("reference rendering stopped",
			zap.String("language", string(f.profile.Language)),
			zap.Int("rendered", rep.ReferencesRendered),
			zap.Error(rep.ReferenceErr))
	}
	return out, rep
}

// FormatBody runs the stage pipeline only, without reference handling.
func (f *Formatter) FormatBody(raw string) (string, Report) {
	text, rep, _ := f.formatBody(raw)
	return text, rep
}

// formatBody runs the pipeline and also returns, for each occurrence of the
// references header, whether it stood on its own line before whitespace
// normalization joined the lines. Header tagging later makes every
// occurrence look standalone, so strict collapsing relies on these marks.
func (f *Formatter) formatBody(raw string) (string, Report, []bool) {
	if f.profile == nil {
		rep := Report{PipelineErr: errors.New("formatter has no language profile")}
		f.logger.Error("formatting failed, returning raw text", zap.Error(rep.PipelineErr))
		return raw, rep, nil
	}
	rep := Report{Language: f.profile.Language}
	if !utf8.ValidString(raw) {
		rep.PipelineErr = errors.New("input is not valid UTF-8")
		f.logger.Error("formatting failed, returning raw text", zap.Error(rep.PipelineErr))
		return raw, rep, nil
	}

	text := raw
	var marks []bool
	for _, s := range pipeline {
		if s.applies != nil && !s.applies(f.profile) {
			continue
		}
		if s.name == StageWhitespace {
			marks = standaloneHeaders(text, f.profile.ReferencesHeader)
		}
		res := s.run(f.profile, text)
		rep.Stages = append(rep.Stages, res)
		if res.Err != nil {
			f.logger.Warn("stage skipped",
				zap.String("stage", res.Stage),
				zap.String("language", string(f.profile.Language)),
				zap.Error(res.Err))
		}
		text = res.Text
	}
	return text, rep, marks
}
