// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-engine/pkg/types"
)

func TestAppendReferences(t *testing.T) {
	tests := []struct {
		name    string
		profile *LanguageProfile
		refs    []types.Reference
		want    string
	}{
		{
			name:    "english single reference",
			profile: en,
			refs:    []types.Reference{{Authors: []string{"Li, J."}, Title: "On X", Year: "2021", Source: "Journal Y"}},
			want:    "Body\n\nReferences\n\n[1] Li, J.. (2021). On X. Journal Y.\n\n",
		},
		{
			name:    "english with url",
			profile: en,
			refs:    []types.Reference{{Authors: []string{"A", "B"}, Title: "T", Year: "2020", Source: "S", URL: "http://u"}},
			want:    "Body\n\nReferences\n\n[1] A, B. (2020). T. S. Retrieved from http://u\n\n",
		},
		{
			name:    "chinese with url",
			profile: cn,
			refs: []types.Reference{
				{Authors: []string{"李明", "王芳"}, Title: "深度学习综述", Year: "2021", Source: "计算机学报", URL: "http://x"},
				{Authors: []string{"张三"}, Title: "医学影像", Year: "2022", Source: "中华医学杂志"},
			},
			want: "Body\n\n参考文献\n\n" +
				"[1] 李明，王芳. 深度学习综述[J]. 计算机学报, 2021. 来源：http://x\n\n" +
				"[2] 张三. 医学影像[J]. 中华医学杂志, 2022.\n\n",
		},
		{
			name:    "no references still adds header",
			profile: en,
			want:    "Body\n\nReferences\n\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AppendReferences("Body", tt.profile, tt.refs)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAppendReferences_InvalidStops(t *testing.T) {
	refs := []types.Reference{
		{Authors: []string{"A"}, Title: "T", Year: "2020", Source: "S"},
		{Authors: []string{"B"}, Title: "T2", Source: "S"},
	}
	got, err := AppendReferences("Body", en, refs)
	require.ErrorIs(t, err, types.ErrIncompleteReference)
	assert.Contains(t, err.Error(), "reference 2")
	assert.Equal(t, "Body\n\nReferences\n\n[1] A. (2020). T. S.\n\n", got)
}

func TestCollapseReferencesHeader(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		strict bool
		want   string
	}{
		{
			name:   "strict cuts before second standalone header",
			text:   "Body\n\nReferences\n    [1] a\n\nReferences\n    MARKER",
			strict: true,
			want:   "Body\n\nReferences\n    [1] a\n\n",
		},
		{
			name:   "strict ignores header word in prose",
			text:   "See References below.\nReferences\n    a\nMore References here.\nReferences:\nMARKER",
			strict: true,
			want:   "See References below.\nReferences\n    a\nMore References here.\n",
		},
		{
			name:   "strict single header unchanged",
			text:   "Body\nReferences\n    a",
			strict: true,
			want:   "Body\nReferences\n    a",
		},
		{
			name:   "token mode keeps first two parts",
			text:   "See References below.\nReferences\n    a\nReferences\nMARKER",
			strict: false,
			want:   "See References below.\n",
		},
		{
			name:   "token mode single occurrence unchanged",
			text:   "Body References a",
			strict: false,
			want:   "Body References a",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CollapseReferencesHeader(tt.text, "References", tt.strict)
			assert.Equal(t, tt.want, got)
			assert.NotContains(t, got, "MARKER")
		})
	}
}

func TestCollapseReferencesHeader_Chinese(t *testing.T) {
	text := "正文\n参考文献\n    [1] 甲\n参考文献：\n    MARKER"
	got := CollapseReferencesHeader(text, "参考文献", true)
	assert.Equal(t, "正文\n参考文献\n    [1] 甲\n", got)
}

func TestFormatter_TokenModeOption(t *testing.T) {
	f := New(en, WithStrictHeaderCollapse(false))
	out := f.Format("Body text. References one. References MARKER.", nil)
	assert.NotContains(t, out, "MARKER")
}

func TestCollapseMarked(t *testing.T) {
	text := "a References b References c References d"

	assert.Equal(t, "a References b References c ", collapseMarked(text, "References", []bool{false, true, true}))
	assert.Equal(t, text, collapseMarked(text, "References", []bool{false, true, false}))
	assert.Equal(t, text, collapseMarked(text, "References", []bool{true, true}), "mismatched marks leave text alone")
}

func TestStandaloneHeaders(t *testing.T) {
	text := "See References below.\n  References  \nReferences：\nReferences References\n"
	assert.Equal(t, []bool{false, true, true, false, false}, standaloneHeaders(text, "References"))
}
