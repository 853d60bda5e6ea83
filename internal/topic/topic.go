// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package topic infers the topic and keywords of a draft in English and
// Chinese. English uses part-of-speech tagging from prose with snowball
// stemming to group word forms; Chinese uses character bigram frequency
// over ideograph runs.
package topic

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/width"

	"github.com/pdiddy/paper-engine/pkg/types"
)

// DefaultMaxKeywords is the number of keywords kept per language.
const DefaultMaxKeywords = 10

// Extractor infers topic information from raw text. Implementations never
// fail: on error they log and return empty entries.
type Extractor interface {
	Analyze(text string) types.TopicInfo
}

// Analyzer is the default Extractor.
type Analyzer struct {
	Logger      *zap.Logger
	MaxKeywords int
}

// New returns an Analyzer keeping DefaultMaxKeywords keywords.
func New(logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{Logger: logger, MaxKeywords: DefaultMaxKeywords}
}

var (
	urlPattern     = regexp.MustCompile(`https?://\S+`)
	symbolPattern  = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
	spacePattern   = regexp.MustCompile(`\s+`)
	cjkRunPattern  = regexp.MustCompile(`[\x{4e00}-\x{9fff}]+`)
	latinWordRegex = regexp.MustCompile(`[a-zA-Z]+`)
)

// Analyze implements Extractor.
func (a *Analyzer) Analyze(text string) (info types.TopicInfo) {
	info = types.NewTopicInfo()
	logger := a.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Error("topic analysis failed", zap.Error(fmt.Errorf("panic: %v", r)))
			info = types.NewTopicInfo()
		}
	}()

	limit := a.MaxKeywords
	if limit <= 0 {
		limit = DefaultMaxKeywords
	}

	runs, english := splitLanguages(preprocess(text))

	cnTopic, cnKeywords := analyzeChinese(runs, limit)
	info.Topic[types.Chinese] = cnTopic
	info.Keywords[types.Chinese] = cnKeywords

	enTopic, enKeywords, err := analyzeEnglish(english, limit)
	if err != nil {
		logger.Warn("english topic analysis failed", zap.Error(err))
	} else {
		info.Topic[types.English] = enTopic
		info.Keywords[types.English] = enKeywords
	}

	logger.Debug("topic analyzed",
		zap.String("topic_en", info.Topic[types.English]),
		zap.String("topic_cn", info.Topic[types.Chinese]),
		zap.Strings("keywords_en", info.Keywords[types.English]),
		zap.Strings("keywords_cn", info.Keywords[types.Chinese]))
	return info
}

// preprocess folds full-width forms, drops URLs and symbols, and collapses
// whitespace.
func preprocess(text string) string {
	text = width.Fold.String(text)
	text = urlPattern.ReplaceAllString(text, " ")
	text = symbolPattern.ReplaceAllString(text, " ")
	text = spacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// splitLanguages returns the ideograph runs and the Latin words joined by
// single spaces.
func splitLanguages(text string) ([]string, string) {
	runs := cjkRunPattern.FindAllString(text, -1)
	words := latinWordRegex.FindAllString(text, -1)
	return runs, strings.Join(words, " ")
}

// counter tallies terms and remembers first-seen order for stable ranking.
type counter struct {
	counts map[string]int
	order  []string
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(term string) {
	if _, ok := c.counts[term]; !ok {
		c.order = append(c.order, term)
	}
	c.counts[term]++
}

// top returns up to n terms by descending count; ties keep first-seen order.
func (c *counter) top(n int) []string {
	terms := append([]string(nil), c.order...)
	sort.SliceStable(terms, func(i, j int) bool {
		return c.counts[terms[i]] > c.counts[terms[j]]
	})
	if len(terms) > n {
		terms = terms[:n]
	}
	return terms
}
