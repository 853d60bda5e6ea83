// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-engine/pkg/types"
)

func sampleResults() []types.SearchResult {
	return []types.SearchResult{
		{
			Identifier: "10.1000/xyz",
			Title:      "Deep Learning for {CT} Imaging",
			Authors:    []string{"Alice Smith", "Bob Jones"},
			Source:     "Radiology",
			Backend:    "openalex",
			Date:       time.Date(2021, 5, 3, 0, 0, 0, 0, time.UTC),
			Content:    "An abstract.",
			URL:        "https://doi.org/10.1000/xyz",
		},
		{
			Title:   "医疗人工智能综述",
			Source:  "计算机学报",
			Backend: "web",
			Content: "医疗人工智能综述\n计算机学报",
		},
	}
}

func TestToCSLItem(t *testing.T) {
	items := []CSLItem{toCSLItem(sampleResults()[0]), toCSLItem(sampleResults()[1])}

	assert.Equal(t, "article-journal", items[0].Type)
	assert.Equal(t, "10.1000/xyz", items[0].DOI)
	assert.Equal(t, "Radiology", items[0].ContainerTitle)
	assert.Equal(t, "An abstract.", items[0].Abstract)
	assert.Equal(t, [][]int{{2021, 5, 3}}, items[0].Issued.DateParts)
	assert.Equal(t, []CSLName{{Given: "Alice", Family: "Smith"}, {Given: "Bob", Family: "Jones"}}, items[0].Author)

	assert.Equal(t, "webpage", items[1].Type)
	assert.Empty(t, items[1].DOI)
	assert.Nil(t, items[1].Issued)
}

func TestParseAuthorName(t *testing.T) {
	assert.Equal(t, CSLName{}, parseAuthorName("  "))
	assert.Equal(t, CSLName{Literal: "Plato"}, parseAuthorName("Plato"))
	assert.Equal(t, CSLName{Given: "Mary Ann", Family: "Evans"}, parseAuthorName("Mary Ann Evans"))
}

func TestFormatCSL(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatCSL(SearchOutput{Results: sampleResults()}, &buf))

	var items []CSLItem
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &items))
	require.Len(t, items, 2)
	assert.Equal(t, "Deep Learning for {CT} Imaging", items[0].Title)
	assert.Contains(t, buf.String(), "container-title: Radiology")
}

func TestFormatBibTeX(t *testing.T) {
	results := sampleResults()
	results = append(results, results[0], types.SearchResult{Title: "  "})

	var buf bytes.Buffer
	require.NoError(t, FormatBibTeX(SearchOutput{Results: results}, &buf))
	out := buf.String()

	assert.Contains(t, out, "@article{smith2021deep,\n")
	assert.Contains(t, out, "@article{smith2021deepa,\n")
	assert.Contains(t, out, `  title = {Deep Learning for \{CT\} Imaging},`)
	assert.Contains(t, out, "  author = {Alice Smith and Bob Jones},")
	assert.Contains(t, out, "  journal = {Radiology},")
	assert.Contains(t, out, "  doi = {10.1000/xyz},")
	assert.Contains(t, out, "  journal = {计算机学报},")
	assert.Equal(t, 3, strings.Count(out, "@article{"))
}

func TestBibKey(t *testing.T) {
	assert.Equal(t, "ref", bibKey(types.SearchResult{Title: "医疗"}))
	assert.Equal(t, "plato", bibKey(types.SearchResult{Authors: []string{"Plato"}, Title: "On it"}))
}

func TestQueryFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "query.yaml")
	q := Query{
		FreeText: "deep learning",
		Keywords: []string{"imaging"},
		DateFrom: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	out := SearchOutput{Results: sampleResults(), DupsRemoved: 3, BackendErrors: []string{"web: down"}}

	require.NoError(t, WriteQueryFile(path, q, testCfg(), true, out))

	qf, err := ReadQueryFile(path)
	require.NoError(t, err)
	assert.Equal(t, 20, qf.Search.MaxResults)
	assert.True(t, qf.Search.RecencyBias)
	assert.Equal(t, "2020-01-01", qf.Query.From)

	got, err := qf.SearchQuery()
	require.NoError(t, err)
	assert.Equal(t, q.FreeText, got.FreeText)
	assert.Equal(t, q.Keywords, got.Keywords)
	assert.True(t, q.DateFrom.Equal(got.DateFrom))
	assert.True(t, got.DateTo.IsZero())

	restored := qf.Output()
	assert.Equal(t, 3, restored.DupsRemoved)
	assert.Equal(t, []string{"web: down"}, restored.BackendErrors)
	require.Len(t, restored.Results, 2)
	assert.Equal(t, "Radiology", restored.Results[0].Source)
}

func TestNewQueryFile_RendersReferences(t *testing.T) {
	qf := NewQueryFile(Query{FreeText: "x"}, testCfg(), false, SearchOutput{Results: sampleResults()})

	assert.Equal(t, []types.Reference{{
		Authors: []string{"Alice Smith", "Bob Jones"},
		Title:   "Deep Learning for {CT} Imaging",
		Year:    "2021",
		Source:  "Radiology",
		URL:     "https://doi.org/10.1000/xyz",
	}}, qf.References)
	assert.Equal(t, []string{"医疗人工智能综述"}, qf.Skipped)
	assert.Equal(t, qf.References, qf.ReferenceList())

	empty := NewQueryFile(Query{FreeText: "x"}, testCfg(), false, SearchOutput{})
	assert.NotNil(t, empty.References)
	assert.Empty(t, empty.ReferenceList())
}

func TestReadQueryFile_EditedReferences(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		want    []types.Reference
		wantErr string
	}{
		{
			name: "references without results",
			yaml: `query:
  text: imaging
references:
  - authors: [Li Ming]
    title: Hand-picked survey
    year: "2019"
    source: Journal of Imaging
`,
			want: []types.Reference{{
				Authors: []string{"Li Ming"},
				Title:   "Hand-picked survey",
				Year:    "2019",
				Source:  "Journal of Imaging",
			}},
		},
		{
			name: "results without references key",
			yaml: `results:
  - title: Old entry
    authors: [Ann Lee]
    source: Nature
    date: 2018-02-01T00:00:00Z
`,
			want: []types.Reference{{
				Authors: []string{"Ann Lee"},
				Title:   "Old entry",
				Year:    "2018",
				Source:  "Nature",
			}},
		},
		{
			name: "incomplete reference rejected",
			yaml: `references:
  - authors: [Li Ming]
    title: Survey
    year: "2019"
    source: Journal
  - title: No authors
    year: "2020"
    source: Journal
`,
			wantErr: "reference 2",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "query.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o644))

			qf, err := ReadQueryFile(path)
			if tt.wantErr != "" {
				require.ErrorIs(t, err, types.ErrIncompleteReference)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, qf.ReferenceList())
		})
	}
}

func TestQueryFileSearchQueryInvalidDate(t *testing.T) {
	qf := &QueryFile{Query: SavedQuery{To: "yesterday"}}
	_, err := qf.SearchQuery()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid to date")
}

func TestReadQueryFileErrors(t *testing.T) {
	_, err := ReadQueryFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("query: [unclosed"), 0o644))
	_, err = ReadQueryFile(bad)
	assert.Error(t, err)
}

func TestWriteReferencesText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReferencesText(sampleResults(), &buf))

	rule := strings.Repeat("-", 80)
	want := "# 参考文献列表\n\n" +
		"## 文献 1\n" +
		"标题: Deep Learning for {CT} Imaging\n" +
		"日期: 2021-05-03\n" +
		"来源: Radiology\n" +
		"链接: https://doi.org/10.1000/xyz\n" +
		"内容:\nAn abstract.\n" +
		"\n" + rule + "\n\n" +
		"## 文献 2\n" +
		"标题: 医疗人工智能综述\n" +
		"来源: 计算机学报\n" +
		"内容:\n医疗人工智能综述\n计算机学报\n" +
		"\n" + rule + "\n\n"
	assert.Equal(t, want, buf.String())
}

func TestSaveReferencesText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output", "references.txt")
	require.NoError(t, SaveReferencesText(path, sampleResults()[:1]))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# 参考文献列表\n\n## 文献 1\n"))
}

func TestReferencesTextEmpty(t *testing.T) {
	assert.Equal(t, "# 参考文献列表\n\n", ReferencesText(nil))
}
