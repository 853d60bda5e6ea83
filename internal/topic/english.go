// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package topic

import (
	"fmt"
	"strings"

	"github.com/jdkato/prose/v2"
	"github.com/kljensen/snowball"
)

var englishStopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {}, "on": {},
	"at": {}, "to": {}, "of": {}, "for": {}, "with": {}, "by": {}, "from": {}, "as": {},
	"is": {}, "are": {}, "was": {}, "were": {}, "be": {}, "this": {}, "that": {}, "these": {},
	"those": {}, "it": {}, "its": {}, "we": {}, "our": {}, "their": {}, "which": {}, "such": {},
	"other": {}, "new": {}, "many": {}, "more": {}, "most": {}, "use": {}, "used": {},
}

func isNounTag(tag string) bool { return strings.HasPrefix(tag, "NN") }

func isKeywordTag(tag string) bool { return isNounTag(tag) || strings.HasPrefix(tag, "JJ") }

// analyzeEnglish tags text with prose. Keywords are nouns and adjectives
// grouped by stem and named by their most frequent surface form. The topic
// is the most frequent multi-word noun phrase, falling back to the top keyword.
func analyzeEnglish(text string, limit int) (string, []string, error) {
	if strings.TrimSpace(text) == "" {
		return "", []string{}, nil
	}
	doc, err := prose.NewDocument(text,
		prose.WithExtraction(false),
		prose.WithSegmentation(false))
	if err != nil {
		return "", nil, fmt.Errorf("tagging english text: %w", err)
	}
	tokens := doc.Tokens()

	stems := newCounter()
	surfaces := make(map[string]*counter)
	phrases := newCounter()

	type tagged struct{ text, tag string }
	var run []tagged
	flush := func() {
		// A noun phrase is a run of adjectives and nouns ending in a noun.
		for len(run) > 0 && !isNounTag(run[len(run)-1].tag) {
			run = run[:len(run)-1]
		}
		if len(run) >= 2 {
			words := make([]string, len(run))
			for i, w := range run {
				words[i] = w.text
			}
			phrases.add(strings.Join(words, " "))
		}
		run = run[:0]
	}

	for _, tok := range tokens {
		word := strings.ToLower(tok.Text)
		if _, stop := englishStopwords[word]; stop || !isKeywordTag(tok.Tag) {
			flush()
			continue
		}
		run = append(run, tagged{text: word, tag: tok.Tag})
		if len(word) < 3 {
			continue
		}
		stem, err := snowball.Stem(word, "english", true)
		if err != nil {
			stem = word
		}
		stems.add(stem)
		if surfaces[stem] == nil {
			surfaces[stem] = newCounter()
		}
		surfaces[stem].add(word)
	}
	flush()

	keywords := make([]string, 0, limit)
	for _, stem := range stems.top(limit) {
		keywords = append(keywords, surfaces[stem].top(1)[0])
	}

	topic := ""
	if top := phrases.top(1); len(top) > 0 {
		topic = top[0]
	} else if len(keywords) > 0 {
		topic = keywords[0]
	}
	return topic, keywords, nil
}
