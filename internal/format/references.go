// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package format

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/pdiddy/paper-engine/pkg/types"
)

// CollapseReferencesHeader drops a second references section emitted by the
// model. The text is cut just before the second occurrence of header, so
// everything up to and including the first section survives.
//
// In strict mode only a line consisting of the header, optionally followed
// by a colon, counts as an occurrence; the word in running prose is left
// alone. Otherwise any occurrence of the header token counts.
func CollapseReferencesHeader(text, header string, strict bool) string {
	if header == "" {
		return text
	}
	if !strict {
		parts := strings.SplitN(text, header, 3)
		if len(parts) < 3 {
			return text
		}
		return parts[0] + header + parts[1]
	}

	return collapseMarked(text, header, standaloneHeaders(text, header))
}

// standaloneHeaders reports, for each occurrence of header in text in
// order, whether it is the only content of its line.
func standaloneHeaders(text, header string) []bool {
	if header == "" {
		return nil
	}
	var marks []bool
	for _, line := range strings.SplitAfter(text, "\n") {
		n := strings.Count(line, header)
		own := n == 1 && isHeaderLine(line, header)
		for range n {
			marks = append(marks, own)
		}
	}
	return marks
}

// collapseMarked cuts text just before the second occurrence of header
// whose mark is set. Occurrences pair with marks by order; when the counts
// disagree the text is returned unchanged.
func collapseMarked(text, header string, marks []bool) string {
	if header == "" || strings.Count(text, header) != len(marks) {
		return text
	}
	seen := false
	offset := 0
	for _, own := range marks {
		pos := offset + strings.Index(text[offset:], header)
		if own {
			if seen {
				return text[:pos]
			}
			seen = true
		}
		offset = pos + len(header)
	}
	return text
}

func isHeaderLine(line, header string) bool {
	l := strings.TrimSpace(line)
	return l == header || l == header+":" || l == header+"："
}

// AppendReferences appends the references section for p to text. Rendering
// stops at the first reference that fails validation; the text accumulated
// up to that point is returned together with the error.
func AppendReferences(text string, p *LanguageProfile, refs []types.Reference) (string, error) {
	out, _, err := appendReferences(text, p, refs)
	return out, err
}

func appendReferences(text string, p *LanguageProfile, refs []types.Reference) (string, int, error) {
	var b strings.Builder
	b.WriteString(text)
	b.WriteString("\n\n" + p.ReferencesHeader + "\n\n")
	for i, ref := range refs {
		if err := ref.Validate(); err != nil {
			return b.String(), i, errors.Wrapf(err, "reference %d", i+1)
		}
		b.WriteString(p.RenderReference(i+1, ref))
		b.WriteString("\n\n")
	}
	return b.String(), len(refs), nil
}
