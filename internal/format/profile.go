// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package format

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pkg/errors"

	"github.com/pdiddy/paper-engine/pkg/types"
)

// Rewrite is one ordered pattern substitution. Replacement uses
// regexp.Expand syntax ($1, ${1}).
type Rewrite struct {
	Pattern     *regexp.Regexp
	Replacement string
}

// Apply replaces every match of the pattern in s.
func (r Rewrite) Apply(s string) string {
	return r.Pattern.ReplaceAllString(s, r.Replacement)
}

// LanguageProfile holds the per-language rules driving the pipeline. A
// profile is built by NewProfile and never modified afterwards, so one
// value can be shared by any number of goroutines.
type LanguageProfile struct {
	Language types.Language

	// Disclaimers match AI-disclaimer clauses up to their terminator.
	Disclaimers []*regexp.Regexp

	// Transitions match mechanical transitions with their trailing comma
	// and whitespace (English).
	Transitions []*regexp.Regexp

	// TransitionPhrases are removed literally, comma included (Chinese).
	TransitionPhrases []string

	// Markup matches emphasis and heading markers.
	Markup *regexp.Regexp

	// SentenceBreak inserts a paragraph break after a sentence terminator.
	SentenceBreak Rewrite

	// Headers is the ordered list of section labels.
	Headers []string

	// HeaderPatterns are compiled from Headers; each match is tagged as a
	// standalone header line.
	HeaderPatterns []*regexp.Regexp

	TitleHeader      string
	ReferencesHeader string

	// Citations are applied in order.
	Citations []Rewrite

	// UpperTitle upper-cases the title line during title normalization.
	UpperTitle bool

	// AllowList matches every character that must be removed. Nil disables
	// the sanitization stage.
	AllowList *regexp.Regexp

	// RenderReference renders one reference line for the 1-based index.
	RenderReference func(index int, ref types.Reference) string
}

var englishDisclaimers = []string{
	`As an AI .*?,`,
	`I apologize,.*?\.`,
	`I cannot.*?\.`,
	`I do not have.*?\.`,
	`I'm sorry,.*?\.`,
	`I am not able to.*?\.`,
	`I must inform you.*?\.`,
	`Please note that.*?\.`,
	`It's important to note.*?\.`,
	`I would recommend.*?\.`,
	`I suggest.*?\.`,
	`In my opinion.*?\.`,
	`Based on my understanding.*?\.`,
	`From my perspective.*?\.`,
	`As far as I know.*?\.`,
	`To the best of my knowledge.*?\.`,
}

var englishTransitions = []string{
	"However", "Moreover", "Furthermore",
	"Therefore", "Thus", "Hence",
	"Consequently", "Nevertheless", "Nonetheless",
	"In addition", "Besides", "Meanwhile",
	"Subsequently", "As a result", "For instance",
	"For example", "In other words", "That is to say",
	"In conclusion", "To sum up", "Overall",
}

var englishHeaders = []string{
	"Title", "Abstract", "Introduction", "Methods",
	"Results", "Discussion", "Conclusion", "References",
}

var chineseDisclaimers = []string{
	`作为人工智能.*?，`,
	`我认为.*?。`,
	`我的理解是.*?。`,
	`我不能.*?。`,
	`我必须说明.*?。`,
	`请注意.*?。`,
	`需要说明的是.*?。`,
	`我建议.*?。`,
	`我的观点是.*?。`,
	`据我所知.*?。`,
	`本文.*?。`,
	`我们.*?。`,
}

var chineseTransitions = []string{
	"然而", "但是", "不过", "因此", "所以",
	"此外", "另外", "而且", "并且", "接着",
	"随后", "总之", "总而言之", "综上所述",
	"例如", "比如", "换句话说", "也就是说",
	"值得注意的是", "需要指出的是", "显然", "显而易见",
	"毫无疑问", "众所周知", "一般来说", "通常来说",
}

var chineseHeaders = []string{
	"标题", "摘要", "引言", "研究方法",
	"研究结果", "讨论", "结论", "参考文献",
}

var (
	markupPattern = regexp.MustCompile(`\*\*|##|__|#`)

	englishSentenceBreak = Rewrite{
		Pattern:     regexp.MustCompile(`([.!?])\s+([A-Z])`),
		Replacement: "${1}\n\n${2}",
	}
	chineseSentenceBreak = Rewrite{
		Pattern:     regexp.MustCompile(`([。！？])\s*([^，。！？、])`),
		Replacement: "${1}\n\n${2}",
	}

	englishCitations = []Rewrite{
		{Pattern: regexp.MustCompile(`\(([0-9]{4})\)`), Replacement: " [${1}]"},
		{Pattern: regexp.MustCompile(`et\s+al\.`), Replacement: "et al."},
	}
	chineseCitations = []Rewrite{
		{Pattern: regexp.MustCompile(`（([0-9]{4})）`), Replacement: "[${1}]"},
		{Pattern: regexp.MustCompile(`等人`), Replacement: ""},
		{Pattern: regexp.MustCompile(`等`), Replacement: ""},
	}

	chineseDisallowed = regexp.MustCompile(
		`[^\x{4e00}-\x{9fa5}a-zA-Z0-9，。！？、：；'"‘’“”（）【】《》\[\]\s.]`)
)

// NewProfile builds the profile for lang, extended by o. Extra disclaimers
// are regular expressions (compiled case-insensitive for English); extra
// transitions are literal phrases without the trailing comma. Replacement
// headers must still contain the title and references labels.
func NewProfile(lang types.Language, o types.ProfileOverrides) (*LanguageProfile, error) {
	switch lang {
	case types.English:
		return englishProfile(o)
	case types.Chinese:
		return chineseProfile(o)
	default:
		return nil, errors.Errorf("no profile for language %q", lang)
	}
}

// MustNewProfile is NewProfile with no overrides. It panics only if a
// built-in pattern fails to compile.
func MustNewProfile(lang types.Language) *LanguageProfile {
	p, err := NewProfile(lang, types.ProfileOverrides{})
	if err != nil {
		panic(err)
	}
	return p
}

// Profiles builds one profile per supported language from cfg.
func Profiles(cfg types.FormatConfig) (map[types.Language]*LanguageProfile, error) {
	out := make(map[types.Language]*LanguageProfile, len(types.Languages))
	for _, lang := range types.Languages {
		p, err := NewProfile(lang, cfg.Overrides(lang))
		if err != nil {
			return nil, err
		}
		out[lang] = p
	}
	return out, nil
}

func englishProfile(o types.ProfileOverrides) (*LanguageProfile, error) {
	p := &LanguageProfile{
		Language:         types.English,
		Markup:           markupPattern,
		SentenceBreak:    englishSentenceBreak,
		TitleHeader:      "Title",
		ReferencesHeader: "References",
		Citations:        englishCitations,
		UpperTitle:       true,
		RenderReference:  renderEnglish,
	}

	var err error
	if p.Disclaimers, err = compileAll(append(englishDisclaimers, o.Disclaimers...), "(?i)"); err != nil {
		return nil, err
	}
	for _, phrase := range append(englishTransitions, o.Transitions...) {
		re, err := regexp.Compile(`\b` + regexp.QuoteMeta(strings.TrimSuffix(phrase, ",")) + `,\s+`)
		if err != nil {
			return nil, errors.Wrapf(err, "transition %q", phrase)
		}
		p.Transitions = append(p.Transitions, re)
	}
	if err := p.setHeaders(pick(o.Headers, englishHeaders), ":?"); err != nil {
		return nil, err
	}
	return p, nil
}

func chineseProfile(o types.ProfileOverrides) (*LanguageProfile, error) {
	p := &LanguageProfile{
		Language:         types.Chinese,
		Markup:           markupPattern,
		SentenceBreak:    chineseSentenceBreak,
		TitleHeader:      "标题",
		ReferencesHeader: "参考文献",
		Citations:        chineseCitations,
		AllowList:        chineseDisallowed,
		RenderReference:  renderChinese,
	}

	var err error
	if p.Disclaimers, err = compileAll(append(chineseDisclaimers, o.Disclaimers...), ""); err != nil {
		return nil, err
	}
	for _, phrase := range append(chineseTransitions, o.Transitions...) {
		p.TransitionPhrases = append(p.TransitionPhrases, strings.TrimSuffix(phrase, "，")+"，")
	}
	if err := p.setHeaders(pick(o.Headers, chineseHeaders), "：?"); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *LanguageProfile) setHeaders(headers []string, suffix string) error {
	var hasTitle, hasRefs bool
	for _, h := range headers {
		if strings.TrimSpace(h) == "" {
			return errors.New("empty section header")
		}
		hasTitle = hasTitle || h == p.TitleHeader
		hasRefs = hasRefs || h == p.ReferencesHeader
		p.HeaderPatterns = append(p.HeaderPatterns, regexp.MustCompile(regexp.QuoteMeta(h)+suffix))
	}
	if !hasTitle || !hasRefs {
		return errors.Errorf("section headers must include %q and %q", p.TitleHeader, p.ReferencesHeader)
	}
	p.Headers = headers
	return nil
}

func compileAll(patterns []string, flags string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, pat := range patterns {
		re, err := regexp.Compile(flags + pat)
		if err != nil {
			return nil, errors.Wrapf(err, "disclaimer pattern %q", pat)
		}
		out = append(out, re)
	}
	return out, nil
}

func pick(override, builtin []string) []string {
	if len(override) > 0 {
		return append([]string(nil), override...)
	}
	return builtin
}

func renderEnglish(i int, ref types.Reference) string {
	line := fmt.Sprintf("[%d] %s. (%s). %s. %s.",
		i, strings.Join(ref.Authors, ", "), ref.Year, ref.Title, ref.Source)
	if ref.URL != "" {
		line += " Retrieved from " + ref.URL
	}
	return line
}

func renderChinese(i int, ref types.Reference) string {
	line := fmt.Sprintf("[%d] %s. %s[J]. %s, %s.",
		i, strings.Join(ref.Authors, "，"), ref.Title, ref.Source, ref.Year)
	if ref.URL != "" {
		line += " 来源：" + ref.URL
	}
	return line
}
