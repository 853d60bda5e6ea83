// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/pdiddy/paper-engine/internal/document"
	"github.com/pdiddy/paper-engine/internal/llm"
	"github.com/pdiddy/paper-engine/internal/paper"
	"github.com/pdiddy/paper-engine/internal/search"
	"github.com/pdiddy/paper-engine/internal/store"
	"github.com/pdiddy/paper-engine/internal/topic"
	"github.com/pdiddy/paper-engine/pkg/types"
)

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// newBackends returns the search backends enabled in c.
func newBackends(c types.SearchConfig, l *zap.Logger) []search.Backend {
	client := &http.Client{Timeout: c.Timeout}
	var backends []search.Backend
	if c.EnableArxiv {
		backends = append(backends, &search.ArxivBackend{Client: client, Logger: l})
	}
	if c.EnableOpenAlex {
		backends = append(backends, &search.OpenAlexBackend{Client: client, Logger: l, Email: c.OpenAlexEmail})
	}
	if c.Web.URLTemplate != "" {
		backends = append(backends, &search.WebBackend{Client: client, Logger: l, Page: c.Web})
	}
	return backends
}

// newSearcher builds the cached multi-backend searcher.
func newSearcher(c types.SearchConfig, recencyBias bool, l *zap.Logger) (search.Searcher, error) {
	backends := newBackends(c, l)
	if len(backends) == 0 {
		return nil, fmt.Errorf("no search backends enabled: set search.enable_arxiv, search.enable_openalex, or search.web.url_template")
	}
	engine := &search.Engine{
		Backends:    backends,
		Config:      c,
		RecencyBias: recencyBias,
		Logger:      l,
	}
	return search.NewCache(engine, c.CacheSize, l)
}

// openStore opens the history database, or returns nil when history is
// disabled.
func openStore(c types.PipelineConfig, l *zap.Logger) (*store.Store, error) {
	if c.Store.Disabled {
		return nil, nil
	}
	return store.Open(c.Store, l)
}

// newGenerator wires every pipeline stage from c. The returned func closes
// the history database.
func newGenerator(c types.PipelineConfig, l *zap.Logger) (*paper.Generator, func(), error) {
	if err := c.ValidateGeneration(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	model, err := llm.New(c.Generation.AIConfig, l)
	if err != nil {
		return nil, nil, err
	}
	formatters, err := paper.NewFormatters(c.Format, l)
	if err != nil {
		return nil, nil, fmt.Errorf("building formatters: %w", err)
	}

	g := &paper.Generator{
		Reader:     document.NewReader(l),
		Topics:     topic.New(l),
		Model:      model,
		Formatters: formatters,
		Logger:     l,
		Config:     c,
	}
	searcher, err := newSearcher(c.Search, c.Search.RecencyBiasWindow > 0, l)
	if err != nil {
		l.Warn("reference search disabled", zap.Error(err))
	} else {
		g.Searcher = searcher
	}

	closeFn := func() {}
	st, err := openStore(c, l)
	if err != nil {
		l.Warn("history disabled", zap.Error(err))
	} else if st != nil {
		g.History = st
		closeFn = func() {
			if err := st.Close(); err != nil {
				l.Warn("closing history", zap.Error(err))
			}
		}
	}
	return g, closeFn, nil
}
