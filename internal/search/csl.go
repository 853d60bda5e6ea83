package search

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-engine/pkg/types"
)

// CSLItem represents a bibliographic entry in CSL (Citation Style Language)
// format. The field names and structure follow the CSL-JSON/CSL-YAML schema
// so that output is consumable by Pandoc and reference managers.
type CSLItem struct {
	ID             string    `yaml:"id"`
	Type           string    `yaml:"type"`
	Title          string    `yaml:"title"`
	Author         []CSLName `yaml:"author,omitempty"`
	ContainerTitle string    `yaml:"container-title,omitempty"`
	Abstract       string    `yaml:"abstract,omitempty"`
	Issued         *CSLDate  `yaml:"issued,omitempty"`
	DOI            string    `yaml:"DOI,omitempty"`
	URL            string    `yaml:"URL,omitempty"`
}

// CSLName represents a person's name in CSL format.
type CSLName struct {
	Family  string `yaml:"family,omitempty"`
	Given   string `yaml:"given,omitempty"`
	Literal string `yaml:"literal,omitempty"`
}

// CSLDate represents a date in CSL format using date-parts.
type CSLDate struct {
	DateParts [][]int `yaml:"date-parts"`
}

// FormatCSL writes search results as a CSL-YAML list to w.
func FormatCSL(out SearchOutput, w io.Writer) error {
	items := make([]CSLItem, len(out.Results))
	for i, r := range out.Results {
		items[i] = toCSLItem(r)
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(items)
}

// toCSLItem converts a SearchResult to a CSLItem.
func toCSLItem(r types.SearchResult) CSLItem {
	item := CSLItem{
		ID:             r.Identifier,
		Type:           "article-journal",
		Title:          r.Title,
		ContainerTitle: r.Source,
		Abstract:       r.Content,
		URL:            r.URL,
	}
	if r.Backend == "web" {
		item.Type = "webpage"
	}

	for _, a := range r.Authors {
		item.Author = append(item.Author, parseAuthorName(a))
	}

	if !r.Date.IsZero() {
		item.Issued = &CSLDate{
			DateParts: [][]int{{r.Date.Year(), int(r.Date.Month()), r.Date.Day()}},
		}
	}

	// Set DOI if the identifier looks like one.
	if strings.HasPrefix(r.Identifier, "10.") {
		item.DOI = r.Identifier
	}

	return item
}

// parseAuthorName splits a full name string into CSL family/given parts.
// It splits on the last space: everything before is given, the last token
// is family. Single-token names use the literal field.
func parseAuthorName(name string) CSLName {
	name = strings.TrimSpace(name)
	if name == "" {
		return CSLName{}
	}
	idx := strings.LastIndex(name, " ")
	if idx < 0 {
		return CSLName{Literal: name}
	}
	return CSLName{
		Given:  name[:idx],
		Family: name[idx+1:],
	}
}

// FormatBibTeX writes search results as BibTeX @article entries to w.
// Results without a title are skipped.
func FormatBibTeX(out SearchOutput, w io.Writer) error {
	used := make(map[string]int)
	for _, r := range out.Results {
		if strings.TrimSpace(r.Title) == "" {
			continue
		}
		key := bibKey(r)
		used[key]++
		if n := used[key]; n > 1 {
			key = fmt.Sprintf("%s%c", key, 'a'+n-2)
		}

		var b strings.Builder
		fmt.Fprintf(&b, "@article{%s,\n", key)
		writeBibField(&b, "title", r.Title)
		if len(r.Authors) > 0 {
			writeBibField(&b, "author", strings.Join(r.Authors, " and "))
		}
		writeBibField(&b, "journal", r.Source)
		writeBibField(&b, "year", r.Year())
		if strings.HasPrefix(r.Identifier, "10.") {
			writeBibField(&b, "doi", r.Identifier)
		}
		writeBibField(&b, "url", r.URL)
		b.WriteString("}\n\n")
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
	}
	return nil
}

func writeBibField(b *strings.Builder, name, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	value = strings.NewReplacer("{", `\{`, "}", `\}`).Replace(value)
	fmt.Fprintf(b, "  %s = {%s},\n", name, value)
}

// bibKey builds a citation key from the first author's family name, the
// year, and the first title word, e.g. "smith2023deep".
func bibKey(r types.SearchResult) string {
	var family string
	if len(r.Authors) > 0 {
		n := parseAuthorName(r.Authors[0])
		family = n.Family
		if family == "" {
			family = n.Literal
		}
	}
	var firstWord string
	for _, f := range strings.Fields(r.Title) {
		if w := keyPart(f); len(w) > 3 {
			firstWord = w
			break
		}
	}
	key := keyPart(family) + r.Year() + firstWord
	if key == "" {
		return "ref"
	}
	return key
}

func keyPart(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
