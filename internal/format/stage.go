// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package format

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// Stage names, in pipeline order.
const (
	StageDisclaimers = "strip-disclaimers"
	StageTransitions = "strip-transitions"
	StageMarkup      = "strip-markup"
	StageWhitespace  = "normalize-whitespace"
	StageParagraphs  = "split-paragraphs"
	StageHeaders     = "tag-headers"
	StageIndent      = "indent"
	StageCitations   = "normalize-citations"
	StageTitle       = "normalize-title"
	StageSanitize    = "sanitize"
	StageTrim        = "trim"
)

// StageResult is the outcome of one stage. When Err is set, Text holds the
// stage input unchanged.
type StageResult struct {
	Stage string
	Text  string
	Err   error
}

type stage struct {
	name  string
	apply func(p *LanguageProfile, text string) (string, error)
	// applies reports whether the stage runs for p; nil means always.
	applies func(p *LanguageProfile) bool
}

var pipeline = []stage{
	{name: StageDisclaimers, apply: stripDisclaimers},
	{name: StageTransitions, apply: stripTransitions},
	{name: StageMarkup, apply: stripMarkup},
	{name: StageWhitespace, apply: normalizeWhitespace},
	{name: StageParagraphs, apply: splitParagraphs},
	{name: StageHeaders, apply: tagHeaders},
	{name: StageIndent, apply: indent},
	{name: StageCitations, apply: normalizeCitations},
	{name: StageTitle, apply: normalizeTitle},
	{name: StageSanitize, apply: sanitize, applies: func(p *LanguageProfile) bool { return p.AllowList != nil }},
	{name: StageTrim, apply: trim},
}

// run applies s to text, converting a panic into a stage failure.
func (s stage) run(p *LanguageProfile, text string) (res StageResult) {
	res = StageResult{Stage: s.name, Text: text}
	defer func() {
		if r := recover(); r != nil {
			res = StageResult{Stage: s.name, Text: text, Err: errors.Errorf("stage %s panicked: %v", s.name, r)}
		}
	}()
	out, err := s.apply(p, text)
	if err != nil {
		return StageResult{Stage: s.name, Text: text, Err: errors.Wrapf(err, "stage %s", s.name)}
	}
	res.Text = out
	return res
}

func stripDisclaimers(p *LanguageProfile, text string) (string, error) {
	for _, re := range p.Disclaimers {
		text = re.ReplaceAllLiteralString(text, "")
	}
	return text, nil
}

func stripTransitions(p *LanguageProfile, text string) (string, error) {
	for _, re := range p.Transitions {
		text = re.ReplaceAllLiteralString(text, "")
	}
	for _, phrase := range p.TransitionPhrases {
		text = strings.ReplaceAll(text, phrase, "")
	}
	return text, nil
}

// stripMarkup removes markers in a single pass. A marker formed by the
// removal itself is kept, so "a*__*b" becomes "a**b".
func stripMarkup(p *LanguageProfile, text string) (string, error) {
	if p.Markup == nil {
		return text, nil
	}
	return p.Markup.ReplaceAllLiteralString(text, ""), nil
}

var whitespaceRun = regexp.MustCompile(`[\s\v\p{Z}\x{85}\x{FEFF}]+`)

func normalizeWhitespace(_ *LanguageProfile, text string) (string, error) {
	return whitespaceRun.ReplaceAllLiteralString(text, " "), nil
}

func splitParagraphs(p *LanguageProfile, text string) (string, error) {
	if p.SentenceBreak.Pattern == nil {
		return text, nil
	}
	return p.SentenceBreak.Apply(text), nil
}

func tagHeaders(p *LanguageProfile, text string) (string, error) {
	for _, re := range p.HeaderPatterns {
		text = re.ReplaceAllString(text, "\n\n${0}\n")
	}
	return text, nil
}

const indentPrefix = "    "

func indent(p *LanguageProfile, text string) (string, error) {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			lines[i] = ""
		case p.containsHeader(line):
			lines[i] = trimmed
		default:
			lines[i] = indentPrefix + trimmed
		}
	}
	return strings.Join(lines, "\n"), nil
}

func (p *LanguageProfile) containsHeader(line string) bool {
	for _, h := range p.Headers {
		if strings.Contains(line, h) {
			return true
		}
	}
	return false
}

func normalizeCitations(p *LanguageProfile, text string) (string, error) {
	for _, rw := range p.Citations {
		text = rw.Apply(text)
	}
	return text, nil
}

// normalizeTitle rewrites a leading "<title header>[:]\n<line>\n\n" block
// as "<title header>\n<line>", upper-casing the line when the profile asks
// for it. Leading blank lines are skipped. Anything else passes through.
func normalizeTitle(p *LanguageProfile, text string) (string, error) {
	start := len(text) - len(strings.TrimLeft(text, "\n"))
	rest := text[start:]
	if !strings.HasPrefix(rest, p.TitleHeader) {
		return text, nil
	}
	rest = rest[len(p.TitleHeader):]
	rest = strings.TrimPrefix(strings.TrimPrefix(rest, ":"), "：")

	// Only whitespace may follow the header on its line.
	nl := strings.Index(rest, "\n")
	if nl < 0 || strings.TrimSpace(rest[:nl]) != "" {
		return text, nil
	}
	body := strings.TrimLeft(rest[nl+1:], " \t\r\n\v\f")
	end := strings.Index(body, "\n")
	if end <= 0 || !strings.HasPrefix(body[end:], "\n\n") {
		return text, nil
	}

	title := body[:end]
	if p.UpperTitle {
		title = strings.ToUpper(title)
	}
	return text[:start] + p.TitleHeader + "\n" + title + body[end:], nil
}

func sanitize(p *LanguageProfile, text string) (string, error) {
	return p.AllowList.ReplaceAllLiteralString(text, ""), nil
}

func trim(_ *LanguageProfile, text string) (string, error) {
	return strings.TrimSpace(text), nil
}
