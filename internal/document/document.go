// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package document reads draft inputs into plain text with pluggable
// backends: PDF via ledongthuc/pdf and plain text or Markdown from disk.
package document

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// ErrUnsupportedFormat is returned for an input extension no backend handles.
var ErrUnsupportedFormat = errors.New("unsupported input format")

// Document is the text content of one input file.
type Document struct {
	Path     string            `json:"path"`
	Content  string            `json:"content"`
	Pages    int               `json:"pages"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Reader extracts the text of a file. Different backends (PDF, plain text)
// implement this interface.
type Reader interface {
	Read(path string) (*Document, error)
}

// ExtensionReader dispatches to a backend by file extension.
type ExtensionReader struct {
	backends map[string]Reader
}

// NewReader returns a Reader handling .pdf, .txt, .md, and .markdown files.
func NewReader(logger *zap.Logger) *ExtensionReader {
	text := TextReader{}
	return &ExtensionReader{backends: map[string]Reader{
		".pdf":      &PDFReader{Logger: logger},
		".txt":      text,
		".md":       text,
		".markdown": text,
	}}
}

// Supports reports whether path has an extension with a backend.
func (r *ExtensionReader) Supports(path string) bool {
	_, ok := r.backends[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Read implements Reader.
func (r *ExtensionReader) Read(path string) (*Document, error) {
	ext := strings.ToLower(filepath.Ext(path))
	backend, ok := r.backends[ext]
	if !ok {
		return nil, fmt.Errorf("%s: %w %q", path, ErrUnsupportedFormat, ext)
	}
	return backend.Read(path)
}

// Open reads path with the default backends.
func Open(path string) (*Document, error) {
	return NewReader(nil).Read(path)
}
