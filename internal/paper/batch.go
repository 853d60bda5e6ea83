// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package paper

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/pdiddy/paper-engine/internal/llm"
	"github.com/pdiddy/paper-engine/internal/prompt"
	"github.com/pdiddy/paper-engine/pkg/types"
)

// BatchSummary holds the outcome of a batch run.
type BatchSummary struct {
	Generated int
	Degraded  int
	Failed    int
	Papers    []*Paper
}

// Total returns the number of inputs processed.
func (s BatchSummary) Total() int {
	return s.Generated + s.Degraded + s.Failed
}

// HasFailures reports whether any input failed.
func (s BatchSummary) HasFailures() bool {
	return s.Failed > 0
}

// GenerateBatch writes a Chinese paper for each input without topic
// analysis or references. PDF inputs are drafted from their extracted text
// and fail when the model fails; text inputs fall back to the original
// text. At most max_workers inputs run at once. Per-input status lines are
// printed to w.
func (g *Generator) GenerateBatch(ctx context.Context, paths []string, w io.Writer) BatchSummary {
	workers := g.Config.Generation.MaxWorkers
	if workers < 1 {
		workers = 1
	}
	sem := semaphore.NewWeighted(int64(workers))

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		summary BatchSummary
	)
	report := func(path string, p *Paper, err error) {
		mu.Lock()
		defer mu.Unlock()
		switch {
		case err != nil:
			fmt.Fprintf(w, "failed:    %s (%v)\n", path, err)
			summary.Failed++
		case p.Degraded():
			fmt.Fprintf(w, "degraded:  %s -> %s\n", path, p.OutputPath)
			summary.Degraded++
			summary.Papers = append(summary.Papers, p)
		default:
			fmt.Fprintf(w, "generated: %s -> %s\n", path, p.OutputPath)
			summary.Generated++
			summary.Papers = append(summary.Papers, p)
		}
	}

	for _, path := range paths {
		if err := sem.Acquire(ctx, 1); err != nil {
			report(path, nil, err)
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)
			p, err := g.generateOne(ctx, path)
			report(path, p, err)
		}()
	}
	wg.Wait()

	fmt.Fprintf(w, "\nBatch summary: %d generated, %d degraded, %d failed (total: %d)\n",
		summary.Generated, summary.Degraded, summary.Failed, summary.Total())
	return summary
}

func (g *Generator) generateOne(ctx context.Context, path string) (*Paper, error) {
	started := time.Now()
	logger := g.logger().With(zap.String("input", path))
	if g.Model == nil {
		return nil, fmt.Errorf("no language model configured")
	}

	doc, err := g.Reader.Read(path)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}

	var msgs []llm.Message
	isPDF := strings.EqualFold(filepath.Ext(path), ".pdf")
	if isPDF {
		msgs, err = prompt.DraftMessages(doc.Content)
	} else {
		msgs, err = prompt.Messages(types.Chinese, prompt.Input{Text: doc.Content})
	}
	if err != nil {
		return nil, err
	}

	// A PDF's extracted text is not a usable paper on its own, so PDF
	// inputs get no fallback.
	p, err := g.produce(ctx, path, types.Chinese, msgs, doc.Content, nil, !isPDF, logger)
	if err != nil {
		return nil, err
	}
	g.record(ctx, p, path, "", started, logger)
	return p, nil
}
