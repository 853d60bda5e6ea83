// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package paper turns a draft into formatted English and Chinese papers:
// it reads the input, infers its topic, gathers references, asks a
// language model for each language, and cleans the replies.
package paper

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/paper-engine/internal/document"
	"github.com/pdiddy/paper-engine/internal/format"
	"github.com/pdiddy/paper-engine/internal/llm"
	"github.com/pdiddy/paper-engine/internal/prompt"
	"github.com/pdiddy/paper-engine/internal/search"
	"github.com/pdiddy/paper-engine/internal/topic"
	"github.com/pdiddy/paper-engine/pkg/types"
)

// History records runs and caches searches across process runs.
// *store.Store implements it.
type History interface {
	RecordRun(ctx context.Context, run types.GenerationRun) (string, error)
	SaveSearch(ctx context.Context, key string, results []types.SearchResult) error
	LoadSearch(ctx context.Context, key string, maxAge time.Duration) ([]types.SearchResult, bool, error)
}

// Generator wires the pipeline stages together. Searcher and History are
// optional.
type Generator struct {
	Reader     document.Reader
	Topics     topic.Extractor
	Searcher   search.Searcher
	Model      llm.Model
	Formatters map[types.Language]*format.Formatter
	History    History
	Logger     *zap.Logger
	Config     types.PipelineConfig
}

// Paper is the outcome for one language.
type Paper struct {
	Language   types.Language `json:"language"`
	OutputPath string         `json:"output_path"`
	Text       string         `json:"-"`
	Report     format.Report  `json:"report"`
	// ModelErr is set when the model failed and the original text was written.
	ModelErr error  `json:"-"`
	RunID    string `json:"run_id,omitempty"`
}

// Degraded reports whether the paper fell back to less-processed text.
func (p *Paper) Degraded() bool {
	return p.ModelErr != nil || p.Report.Degraded()
}

// Result is the outcome of one Generate call.
type Result struct {
	InputPath  string                    `json:"input_path"`
	Topic      types.TopicInfo           `json:"topic"`
	References []types.SearchResult      `json:"references"`
	Papers     map[types.Language]*Paper `json:"papers"`
}

// Degraded reports whether any language degraded.
func (r *Result) Degraded() bool {
	for _, p := range r.Papers {
		if p.Degraded() {
			return true
		}
	}
	return false
}

// NewFormatters builds one Formatter per language from cfg.
func NewFormatters(cfg types.FormatConfig, logger *zap.Logger) (map[types.Language]*format.Formatter, error) {
	profiles, err := format.Profiles(cfg)
	if err != nil {
		return nil, err
	}
	out := make(map[types.Language]*format.Formatter, len(profiles))
	for lang, p := range profiles {
		out[lang] = format.New(p,
			format.WithLogger(logger),
			format.WithStrictHeaderCollapse(cfg.StrictHeaderCollapse))
	}
	return out, nil
}

// OutputPath returns where the paper for lang is written:
// <base>_SCI_<EN|CN>.txt next to the input, or inside dir when dir is set.
func OutputPath(input string, lang types.Language, dir string) string {
	name := strings.TrimSuffix(input, filepath.Ext(input)) + "_SCI_" + lang.Suffix() + ".txt"
	if dir != "" {
		return filepath.Join(dir, filepath.Base(name))
	}
	return name
}

// Generate searches for references and writes both papers for inputPath.
func (g *Generator) Generate(ctx context.Context, inputPath string) (*Result, error) {
	return g.GenerateWithReferences(ctx, inputPath, nil)
}

// GenerateWithReferences writes both papers using refs instead of a
// search. A nil refs searches; an empty, non-nil refs uses no references.
func (g *Generator) GenerateWithReferences(ctx context.Context, inputPath string, refs []types.SearchResult) (*Result, error) {
	started := time.Now()
	logger := g.logger().With(zap.String("input", inputPath))
	if g.Model == nil {
		return nil, fmt.Errorf("no language model configured")
	}

	doc, err := g.Reader.Read(inputPath)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	logger.Info("input read", zap.Int("chars", len([]rune(doc.Content))), zap.Int("pages", doc.Pages))

	res := &Result{InputPath: inputPath, Papers: make(map[types.Language]*Paper, len(types.Languages))}
	res.Topic = g.Topics.Analyze(doc.Content)
	logger.Info("topic analyzed",
		zap.String("topic_en", res.Topic.Topic[types.English]),
		zap.String("topic_cn", res.Topic.Topic[types.Chinese]))

	if refs == nil {
		refs = g.search(ctx, res.Topic, logger)
	}
	res.References = refs

	if path := g.Config.Search.ReferencesFile; path != "" {
		if err := search.SaveReferencesText(path, refs); err != nil {
			logger.Warn("saving reference listing failed", zap.Error(err))
		}
	}

	listing := search.ReferencesText(refs)
	rendered := types.References(refs)

	var mu sync.Mutex
	eg, egCtx := errgroup.WithContext(ctx)
	for _, lang := range types.Languages {
		eg.Go(func() error {
			in := prompt.Input{
				Text:       doc.Content,
				Topic:      res.Topic.Topic[lang],
				Keywords:   res.Topic.Keywords[lang],
				References: listing,
			}
			msgs, err := prompt.Messages(lang, in)
			if err != nil {
				return err
			}
			p, err := g.produce(egCtx, inputPath, lang, msgs, doc.Content, rendered, true, logger)
			if err != nil {
				return err
			}
			g.record(egCtx, p, inputPath, res.Topic.Topic[lang], started, logger)
			mu.Lock()
			res.Papers[lang] = p
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return res, err
	}
	return res, nil
}

// produce asks the model for one paper, formats it, and writes it. With
// fallback set a model failure degrades to the original text; otherwise it
// is returned like cancellation and write failures.
func (g *Generator) produce(ctx context.Context, input string, lang types.Language, msgs []llm.Message, original string, refs []types.Reference, fallback bool, logger *zap.Logger) (*Paper, error) {
	logger = logger.With(zap.String("language", string(lang)))
	p := &Paper{Language: lang, OutputPath: OutputPath(input, lang, g.Config.Generation.OutputDir)}

	reply, err := g.Model.Complete(ctx, msgs)
	switch {
	case ctx.Err() != nil:
		return nil, ctx.Err()
	case err != nil && !fallback:
		return nil, fmt.Errorf("generating %s paper: %w", lang, err)
	case err != nil:
		logger.Error("generation failed, keeping original text", zap.Error(err))
		p.ModelErr = err
		p.Text = original
	default:
		f, ok := g.Formatters[lang]
		if !ok {
			return nil, fmt.Errorf("no formatter for language %q", lang)
		}
		p.Text, p.Report = f.FormatWithReport(reply, refs)
	}

	if err := writeFile(p.OutputPath, p.Text); err != nil {
		return nil, err
	}
	logger.Info("paper written",
		zap.String("path", p.OutputPath),
		zap.Int("references", p.Report.ReferencesRendered),
		zap.Bool("degraded", p.Degraded()))
	return p, nil
}

// search looks up references for info, consulting History first. Failures
// are logged and yield no references.
func (g *Generator) search(ctx context.Context, info types.TopicInfo, logger *zap.Logger) []types.SearchResult {
	if g.Searcher == nil {
		return []types.SearchResult{}
	}
	q := search.BuildQuery(info.Topic[types.English], info.Keywords[types.English], g.Config.Search.QuerySuffix)
	if q.IsEmpty() {
		q = search.BuildQuery(info.Topic[types.Chinese], info.Keywords[types.Chinese], nil)
	}
	if q.IsEmpty() {
		logger.Warn("no topic to search for")
		return []types.SearchResult{}
	}

	if g.History != nil {
		cached, ok, err := g.History.LoadSearch(ctx, q.Key(), g.Config.Store.SearchCacheTTL)
		if err != nil {
			logger.Warn("loading cached search failed", zap.Error(err))
		}
		if ok {
			logger.Info("using stored search", zap.String("query", q.Text()), zap.Int("results", len(cached)))
			return cached
		}
	}

	out, err := g.Searcher.Search(ctx, q)
	if err != nil {
		logger.Warn("reference search failed", zap.String("query", q.Text()), zap.Error(err))
		return []types.SearchResult{}
	}
	if g.History != nil {
		if err := g.History.SaveSearch(ctx, q.Key(), out.Results); err != nil {
			logger.Warn("saving search failed", zap.Error(err))
		}
	}
	return out.Results
}

func (g *Generator) record(ctx context.Context, p *Paper, input, topicText string, started time.Time, logger *zap.Logger) {
	if g.History == nil {
		return
	}
	run := types.GenerationRun{
		InputPath:      input,
		OutputPath:     p.OutputPath,
		Language:       p.Language,
		Topic:          topicText,
		ReferenceCount: p.Report.ReferencesRendered,
		FailedStages:   p.Report.FailedStageNames(),
		Degraded:       p.Degraded(),
		StartedAt:      started,
		FinishedAt:     time.Now(),
	}
	if p.ModelErr != nil {
		run.Error = p.ModelErr.Error()
	}
	id, err := g.History.RecordRun(ctx, run)
	if err != nil {
		logger.Warn("recording run failed", zap.Error(err))
		return
	}
	p.RunID = id
	logger.Debug("run recorded", zap.String("run", id))
}

func (g *Generator) logger() *zap.Logger {
	if g.Logger == nil {
		return zap.NewNop()
	}
	return g.Logger
}

func writeFile(path, text string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
