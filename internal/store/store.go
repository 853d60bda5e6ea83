// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists generation history and search results in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/pdiddy/paper-engine/pkg/types"
)

const dbFile = "paper-engine.db"

// timeLayout has a fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// defaultListLimit bounds ListRuns when no limit is given.
const defaultListLimit = 50

// Store manages the history database.
type Store struct {
	db     *sql.DB
	dir    string
	logger *zap.Logger
}

// Open opens or creates dir/paper-engine.db and its schema.
func Open(cfg types.StoreConfig, logger *zap.Logger) (*Store, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("store directory is required")
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	dbPath := filepath.Join(cfg.Dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, dir: cfg.Dir, logger: logger}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	logger.Debug("store opened", zap.String("path", dbPath))
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Dir returns the directory holding the database and exports.
func (s *Store) Dir() string { return s.dir }

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			input_path TEXT NOT NULL,
			output_path TEXT,
			language TEXT NOT NULL,
			topic TEXT,
			reference_count INTEGER,
			failed_stages TEXT,
			degraded INTEGER NOT NULL DEFAULT 0,
			error TEXT,
			started_at TEXT NOT NULL,
			finished_at TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at)`,
		`CREATE TABLE IF NOT EXISTS searches (
			query_key TEXT PRIMARY KEY,
			results TEXT NOT NULL,
			saved_at TEXT NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// RecordRun stores one generation run and returns its ID. A run without an
// ID gets a new random one.
func (s *Store) RecordRun(ctx context.Context, run types.GenerationRun) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	stages, err := json.Marshal(run.FailedStages)
	if err != nil {
		return "", fmt.Errorf("marshaling failed stages: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, input_path, output_path, language, topic, reference_count,
			failed_stages, degraded, error, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			output_path=excluded.output_path, topic=excluded.topic,
			reference_count=excluded.reference_count, failed_stages=excluded.failed_stages,
			degraded=excluded.degraded, error=excluded.error, finished_at=excluded.finished_at`,
		run.ID, run.InputPath, run.OutputPath, string(run.Language), run.Topic, run.ReferenceCount,
		string(stages), run.Degraded, run.Error,
		formatTime(run.StartedAt), formatTime(run.FinishedAt),
	)
	if err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}
	return run.ID, nil
}

// ListRuns returns the most recent runs, newest first. A limit of zero or
// less returns up to 50 runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]types.GenerationRun, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, input_path, output_path, language, topic, reference_count,
			failed_stages, degraded, error, started_at, finished_at
		 FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []types.GenerationRun
	for rows.Next() {
		var (
			run                            types.GenerationRun
			output, topic, stages, errText sql.NullString
			lang, started                  string
			finished                       sql.NullString
			refs                           sql.NullInt64
		)
		if err := rows.Scan(&run.ID, &run.InputPath, &output, &lang, &topic, &refs,
			&stages, &run.Degraded, &errText, &started, &finished); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		run.OutputPath = output.String
		run.Language = types.Language(lang)
		run.Topic = topic.String
		run.ReferenceCount = int(refs.Int64)
		run.Error = errText.String
		run.StartedAt = parseTime(started)
		run.FinishedAt = parseTime(finished.String)
		if stages.String != "" {
			if err := json.Unmarshal([]byte(stages.String), &run.FailedStages); err != nil {
				s.logger.Warn("bad failed_stages column", zap.String("run", run.ID), zap.Error(err))
			}
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// SaveSearch stores results under key, replacing any earlier entry.
func (s *Store) SaveSearch(ctx context.Context, key string, results []types.SearchResult) error {
	data, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("marshaling results: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO searches (query_key, results, saved_at) VALUES (?, ?, ?)
		 ON CONFLICT(query_key) DO UPDATE SET results=excluded.results, saved_at=excluded.saved_at`,
		key, string(data), formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("saving search: %w", err)
	}
	return nil
}

// LoadSearch returns the results saved under key when they are younger
// than maxAge. A maxAge of zero or less accepts any age. The boolean
// reports whether a usable entry was found.
func (s *Store) LoadSearch(ctx context.Context, key string, maxAge time.Duration) ([]types.SearchResult, bool, error) {
	var data, savedAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT results, saved_at FROM searches WHERE query_key = ?`, key,
	).Scan(&data, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("loading search: %w", err)
	}
	if maxAge > 0 && time.Since(parseTime(savedAt)) > maxAge {
		return nil, false, nil
	}

	var results []types.SearchResult
	if err := json.Unmarshal([]byte(data), &results); err != nil {
		return nil, false, fmt.Errorf("parsing saved search: %w", err)
	}
	return results, true, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
