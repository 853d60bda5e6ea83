// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package document

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

// pdfInfoKeys are the document information entries copied into Metadata.
var pdfInfoKeys = []string{"Title", "Author", "Subject", "Keywords", "Creator", "Producer"}

// PDFReader extracts plain text page by page. Pages that are null or fail
// to decode are skipped.
type PDFReader struct {
	Logger *zap.Logger
}

// Read implements Reader.
func (p *PDFReader) Read(path string) (*Document, error) {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening PDF %s: %w", path, err)
	}
	defer f.Close()

	var b strings.Builder
	total := r.NumPage()
	for n := 1; n <= total; n++ {
		page := r.Page(n)
		if page.V.IsNull() {
			logger.Warn("skipping null page", zap.String("path", path), zap.Int("page", n))
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			logger.Warn("failed to extract page text",
				zap.String("path", path), zap.Int("page", n), zap.Error(err))
			continue
		}
		b.WriteString(text)
	}

	meta := make(map[string]string)
	info := r.Trailer().Key("Info")
	for _, k := range pdfInfoKeys {
		if v := strings.TrimSpace(info.Key(k).Text()); v != "" {
			meta[k] = v
		}
	}

	logger.Debug("PDF text extracted",
		zap.String("path", path),
		zap.Int("pages", total),
		zap.Int("characters", b.Len()))

	return &Document{Path: path, Content: b.String(), Pages: total, Metadata: meta}, nil
}
