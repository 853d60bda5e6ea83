// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package prompt builds the chat messages that ask a language model to turn
// a draft into an academic paper.
package prompt

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/paper-engine/internal/llm"
	"github.com/pdiddy/paper-engine/pkg/types"
)

// Input is what a generation prompt is built from.
type Input struct {
	// Text is the original draft.
	Text string
	// Topic is the inferred topic in the prompt's language.
	Topic string
	// Keywords are the inferred keywords in the prompt's language.
	Keywords []string
	// References is the plain-text reference listing, possibly empty.
	References string
}

var funcs = template.FuncMap{"join": strings.Join}

var englishTmpl = template.Must(template.New("en").Funcs(funcs).Parse(`Please write a high-quality academic paper in English based on the following information:

Original Text:
{{.Text}}

Main Topic:
{{.Topic}}

Keywords:
{{join .Keywords ", "}}

Relevant References:
{{.References}}

Requirements:
1. Follow standard academic paper structure (Introduction, Methods, Results, Discussion, Conclusion)
2. Incorporate insights from the provided references
3. Maintain academic writing style
4. Ensure logical flow and coherence
5. Include in-text citations
6. Avoid mechanical language and transition words
7. Focus on original analysis and insights`))

var chineseTmpl = template.Must(template.New("cn").Funcs(funcs).Parse(`请根据以下信息撰写一篇高质量的中文学术论文：

原始文本：
{{.Text}}

主题：
{{.Topic}}

关键词：
{{join .Keywords "、"}}

相关参考文献：
{{.References}}

要求：
1. 遵循标准学术论文结构（摘要、引言、研究方法、研究结果、讨论、结论）
2. 合理引用提供的参考文献，使用[年份]格式
3. 保持学术写作风格，避免口语化表达
4. 确保逻辑流畅和连贯性
5. 避免机械化用语和过渡词
6. 注重原创性分析和见解
7. 不要使用'我们'、'本文'等字眼
8. 不要在引用时使用'等'字
9. 每个段落要有明确的主题
10. 结论部分要简明扼要`))

// draftTmpl turns the text of a source document, typically a PDF, into a
// paper without topic analysis or references.
var draftTmpl = template.Must(template.New("draft").Parse(`请根据以下参考文献内容生成一篇学术论文：

参考文献内容：
{{.Text}}

要求：
1. 保持学术性和专业性
2. 避免明显的AI生成特征
3. 包含合适的引用
4. 遵循学术论文格式`))

// User renders the user prompt for lang.
func User(lang types.Language, in Input) (string, error) {
	var tmpl *template.Template
	switch lang {
	case types.English:
		tmpl = englishTmpl
	case types.Chinese:
		tmpl = chineseTmpl
	default:
		return "", fmt.Errorf("no prompt for language %q", lang)
	}
	return render(tmpl, in)
}

// System returns the system prompt for lang, or "" for an unknown language.
func System(lang types.Language) string {
	switch lang {
	case types.English:
		return systemEnglish
	case types.Chinese:
		return systemChinese
	}
	return ""
}

// Messages returns the system and user messages for one generation.
func Messages(lang types.Language, in Input) ([]llm.Message, error) {
	user, err := User(lang, in)
	if err != nil {
		return nil, err
	}
	return []llm.Message{
		{Role: llm.RoleSystem, Content: System(lang)},
		{Role: llm.RoleUser, Content: user},
	}, nil
}

// DraftMessages returns the single user message that asks for a paper
// written from a source document's text.
func DraftMessages(content string) ([]llm.Message, error) {
	user, err := render(draftTmpl, Input{Text: content})
	if err != nil {
		return nil, err
	}
	return []llm.Message{{Role: llm.RoleUser, Content: user}}, nil
}

func render(tmpl *template.Template, in Input) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, in); err != nil {
		return "", fmt.Errorf("rendering %s prompt: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
