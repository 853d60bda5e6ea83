// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package document

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"
)

// TextReader reads UTF-8 text and Markdown files as-is, minus a leading BOM.
type TextReader struct{}

// Read implements Reader.
func (TextReader) Read(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("reading %s: file is not valid UTF-8", path)
	}
	return &Document{
		Path:    path,
		Content: strings.TrimPrefix(string(data), "\ufeff"),
		Pages:   1,
	}, nil
}
