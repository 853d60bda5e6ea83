// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripDisclaimers(t *testing.T) {
	tests := []struct {
		name    string
		profile *LanguageProfile
		in      string
		want    string
	}{
		{"english clause up to period", en, "Please note that data vary. Data were collected.", " Data were collected."},
		{"english case-insensitive", en, "IN MY OPINION this works. Fine.", " Fine."},
		{"as an AI ends at comma", en, "As an AI model, the answer is yes.", " the answer is yes."},
		{"english no match", en, "Nothing to remove.", "Nothing to remove."},
		{"chinese clause up to full stop", cn, "据我所知这是对的。数据如下。", "数据如下。"},
		{"chinese AI clause ends at comma", cn, "作为人工智能助手，结果如下。", "结果如下。"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := stripDisclaimers(tt.profile, tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStripTransitions(t *testing.T) {
	got, err := stripTransitions(en, "However, the data. In addition,  more. Thus,x stays.")
	require.NoError(t, err)
	assert.Equal(t, "the data. more. Thus,x stays.", got)

	got, err = stripTransitions(en, "however, lower case stays.")
	require.NoError(t, err)
	assert.Equal(t, "however, lower case stays.", got)

	got, err = stripTransitions(cn, "然而，结果显著。综上所述，方法有效。然而结论不变。")
	require.NoError(t, err)
	assert.Equal(t, "结果显著。方法有效。然而结论不变。", got)
}

func TestStripMarkup(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"**bold** and __under__", "bold and under"},
		{"## Heading\n### Sub", " Heading\n Sub"},
		{"# Title **bold**", " Title bold"},
		{"plain text", "plain text"},
		{"a*__*b", "a**b"},
		{"_**_ nested", "__ nested"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := stripMarkup(en, tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			if !markupPattern.MatchString(got) {
				again, err := stripMarkup(en, got)
				require.NoError(t, err)
				assert.Equal(t, got, again)
			}
		})
	}
}

func TestNormalizeWhitespace(t *testing.T) {
	got, err := normalizeWhitespace(en, "a \t\n\n b　　c d")
	require.NoError(t, err)
	assert.Equal(t, "a b c d", got)
}

func TestSplitParagraphs(t *testing.T) {
	tests := []struct {
		name    string
		profile *LanguageProfile
		in      string
		want    string
	}{
		{"english capital after stop", en, "One. Two! Three? Four", "One.\n\nTwo!\n\nThree?\n\nFour"},
		{"english lower case kept", en, "e.g. values stay.", "e.g. values stay."},
		{"chinese", cn, "第一句。第二句！ 第三句", "第一句。\n\n第二句！\n\n第三句"},
		{"chinese punctuation follows", cn, "结束。。", "结束。。"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := splitParagraphs(tt.profile, tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTagHeaders(t *testing.T) {
	got, err := tagHeaders(en, "Abstract: short. Methods used")
	require.NoError(t, err)
	assert.Equal(t, "\n\nAbstract:\n short. \n\nMethods\n used", got)

	got, err = tagHeaders(cn, "摘要内容。引言部分")
	require.NoError(t, err)
	assert.Equal(t, "\n\n摘要\n内容。\n\n引言\n部分", got)

	got, err = tagHeaders(cn, "结论：效果显著。")
	require.NoError(t, err)
	assert.Equal(t, "\n\n结论：\n效果显著。", got)
}

func TestIndent(t *testing.T) {
	got, err := indent(en, "\n\nIntroduction\n body text \n   \nmore")
	require.NoError(t, err)
	assert.Equal(t, "\n\nIntroduction\n    body text\n\n    more", got)
}

func TestNormalizeCitations(t *testing.T) {
	tests := []struct {
		name    string
		profile *LanguageProfile
		in      string
		want    string
	}{
		{"year rewritten", en, "Smith (2023) found", "Smith  [2023] found"},
		{"short numeral untouched", en, "see (42) here", "see (42) here"},
		{"five digits untouched", en, "id (20231)", "id (20231)"},
		{"et al spacing", en, "Li et   al. showed", "Li et al. showed"},
		{"chinese year", cn, "王（2021）指出", "王[2021]指出"},
		{"chinese elision removed", cn, "李等人与张等提出", "李与张提出"},
		{"half-width parens untouched in chinese", cn, "(2021)", "(2021)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalizeCitations(tt.profile, tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		name    string
		profile *LanguageProfile
		in      string
		want    string
	}{
		{"english upper-cased", en, "\n\nTitle\n    A Study\n\nAbstract", "\n\nTitle\nA STUDY\n\nAbstract"},
		{"colon dropped", en, "Title:\n    A Study\n\nBody", "Title\nA STUDY\n\nBody"},
		{"no blank line after title line", en, "Title\n    A Study\n    more\n\n", "Title\n    A Study\n    more\n\n"},
		{"does not start with title", en, "Abstract\n    text\n\n", "Abstract\n    text\n\n"},
		{"text after header on same line", en, "Title words\n    A\n\n", "Title words\n    A\n\n"},
		{"chinese keeps case", cn, "标题\n    基于Deep学习\n\n摘要", "标题\n基于Deep学习\n\n摘要"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalizeTitle(tt.profile, tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSanitize_ChineseAllowList(t *testing.T) {
	in := "研究结果😀显示，数据é可靠。“引号”【注】《书名》[1] a-b_c: 100%"
	got, err := sanitize(cn, in)
	require.NoError(t, err)
	assert.Equal(t, "研究结果显示，数据可靠。“引号”【注】《书名》[1] abc 100", got)

	got, err = sanitize(cn, "‘单引号’与'直引号'及\"双引号\"")
	require.NoError(t, err)
	assert.Equal(t, "‘单引号’与'直引号'及\"双引号\"", got)
}

func TestStageRun_RecoversPanic(t *testing.T) {
	s := stage{name: "boom", apply: func(*LanguageProfile, string) (string, error) {
		panic("kaboom")
	}}
	res := s.run(en, "input")
	assert.Equal(t, "input", res.Text)
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "kaboom")
}
