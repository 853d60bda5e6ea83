// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/paper-engine/pkg/types"
)

// listingRule separates entries in a reference listing.
var listingRule = strings.Repeat("-", 80)

// ReferencesText renders results as a numbered plain-text listing, one
// block per result with its title, date, source, and content. The listing
// is saved alongside generated papers and embedded in generation prompts.
func ReferencesText(results []types.SearchResult) string {
	var b strings.Builder
	b.WriteString("# 参考文献列表\n\n")
	for i, r := range results {
		fmt.Fprintf(&b, "## 文献 %d\n", i+1)
		fmt.Fprintf(&b, "标题: %s\n", r.Title)
		if !r.Date.IsZero() {
			fmt.Fprintf(&b, "日期: %s\n", r.Date.Format(dateFmt))
		}
		fmt.Fprintf(&b, "来源: %s\n", r.Source)
		if r.URL != "" {
			fmt.Fprintf(&b, "链接: %s\n", r.URL)
		}
		fmt.Fprintf(&b, "内容:\n%s\n", r.Content)
		b.WriteString("\n" + listingRule + "\n\n")
	}
	return b.String()
}

// WriteReferencesText writes the listing for results to w.
func WriteReferencesText(results []types.SearchResult, w io.Writer) error {
	_, err := io.WriteString(w, ReferencesText(results))
	return err
}

// SaveReferencesText writes the listing to path, creating parent directories.
func SaveReferencesText(path string, results []types.SearchResult) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(ReferencesText(results)), 0o644); err != nil {
		return fmt.Errorf("writing reference listing: %w", err)
	}
	return nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}
	return nil
}
