// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package topic

import "strings"

// chineseStopChars are function characters that disqualify a bigram.
const chineseStopChars = "的了和与及或而等中在是为对以于这其也有之被将把"

// analyzeChinese ranks character bigrams within each ideograph run. Runs
// never join across punctuation or Latin text. The topic is the top bigram.
func analyzeChinese(runs []string, limit int) (string, []string) {
	c := newCounter()
	for _, run := range runs {
		chars := []rune(run)
		for i := 0; i+1 < len(chars); i++ {
			if strings.ContainsRune(chineseStopChars, chars[i]) || strings.ContainsRune(chineseStopChars, chars[i+1]) {
				continue
			}
			c.add(string(chars[i : i+2]))
		}
	}
	keywords := c.top(limit)
	if len(keywords) == 0 {
		return "", []string{}
	}
	return keywords[0], keywords
}
