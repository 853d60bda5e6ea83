// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-engine/pkg/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(types.StoreConfig{Dir: filepath.Join(t.TempDir(), "data")}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenCreatesDatabase(t *testing.T) {
	s := testStore(t)
	_, err := os.Stat(filepath.Join(s.Dir(), dbFile))
	assert.NoError(t, err)

	// Reopening an existing database keeps the schema.
	s2, err := Open(types.StoreConfig{Dir: s.Dir()}, nil)
	require.NoError(t, err)
	s2.Close()
}

func TestOpenRequiresDir(t *testing.T) {
	_, err := Open(types.StoreConfig{}, nil)
	assert.Error(t, err)
}

func TestRecordAndListRuns(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	id1, err := s.RecordRun(ctx, types.GenerationRun{
		InputPath:      "draft.txt",
		OutputPath:     "draft_SCI_EN.txt",
		Language:       types.English,
		Topic:          "deep learning",
		ReferenceCount: 4,
		StartedAt:      base,
		FinishedAt:     base.Add(time.Minute),
	})
	require.NoError(t, err)
	assert.Len(t, id1, 36)

	id2, err := s.RecordRun(ctx, types.GenerationRun{
		ID:           "fixed-id",
		InputPath:    "draft.txt",
		OutputPath:   "draft_SCI_CN.txt",
		Language:     types.Chinese,
		FailedStages: []string{"normalize-title"},
		Degraded:     true,
		Error:        "model unavailable",
		StartedAt:    base.Add(time.Second),
	})
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", id2)

	runs, err := s.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, "fixed-id", runs[0].ID)
	assert.Equal(t, types.Chinese, runs[0].Language)
	assert.Equal(t, []string{"normalize-title"}, runs[0].FailedStages)
	assert.True(t, runs[0].Degraded)
	assert.Equal(t, "model unavailable", runs[0].Error)
	assert.True(t, runs[0].FinishedAt.IsZero())

	assert.Equal(t, id1, runs[1].ID)
	assert.Equal(t, 4, runs[1].ReferenceCount)
	assert.Equal(t, "deep learning", runs[1].Topic)
	assert.True(t, base.Equal(runs[1].StartedAt))
	assert.True(t, base.Add(time.Minute).Equal(runs[1].FinishedAt))
	assert.False(t, runs[1].Degraded)

	limited, err := s.ListRuns(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestRecordRunUpdatesExisting(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	run := types.GenerationRun{ID: "r1", InputPath: "a.txt", Language: types.English}
	_, err := s.RecordRun(ctx, run)
	require.NoError(t, err)

	run.OutputPath = "a_SCI_EN.txt"
	run.FinishedAt = time.Now()
	_, err = s.RecordRun(ctx, run)
	require.NoError(t, err)

	runs, err := s.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "a_SCI_EN.txt", runs[0].OutputPath)
	assert.False(t, runs[0].FinishedAt.IsZero())
}

func TestSaveAndLoadSearch(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	_, ok, err := s.LoadSearch(ctx, "missing", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)

	results := []types.SearchResult{{
		Title:   "Deep Learning",
		Authors: []string{"A. Smith"},
		Source:  "Nature",
		Backend: "openalex",
		Date:    time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
	}}
	require.NoError(t, s.SaveSearch(ctx, "deep learning", results))

	got, ok, err := s.LoadSearch(ctx, "deep learning", time.Hour)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "Nature", got[0].Source)
	assert.Equal(t, "2020", got[0].Year())

	// Entries older than maxAge are ignored.
	_, err = s.db.Exec(`UPDATE searches SET saved_at = ?`, formatTime(time.Now().Add(-48*time.Hour)))
	require.NoError(t, err)
	_, ok, err = s.LoadSearch(ctx, "deep learning", 24*time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = s.LoadSearch(ctx, "deep learning", 0)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestExport(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	_, err := s.RecordRun(ctx, types.GenerationRun{ID: "r1", InputPath: "a.txt", Language: types.English, Topic: "ai"})
	require.NoError(t, err)

	yamlPath, err := s.ExportYAML(ctx)
	require.NoError(t, err)
	data, err := os.ReadFile(yamlPath)
	require.NoError(t, err)
	var fromYAML []types.GenerationRun
	require.NoError(t, yaml.Unmarshal(data, &fromYAML))
	require.Len(t, fromYAML, 1)
	assert.Equal(t, "ai", fromYAML[0].Topic)

	jsonPath, err := s.ExportJSON(ctx)
	require.NoError(t, err)
	data, err = os.ReadFile(jsonPath)
	require.NoError(t, err)
	var fromJSON []types.GenerationRun
	require.NoError(t, json.Unmarshal(data, &fromJSON))
	require.Len(t, fromJSON, 1)
	assert.Equal(t, "r1", fromJSON[0].ID)
}

func TestTimeRoundTrip(t *testing.T) {
	assert.Equal(t, "", formatTime(time.Time{}))
	assert.True(t, parseTime("").IsZero())
	assert.True(t, parseTime("garbage").IsZero())

	ts := time.Date(2026, 1, 2, 3, 4, 5, 600, time.UTC)
	assert.True(t, ts.Equal(parseTime(formatTime(ts))))
	assert.Less(t, formatTime(ts), formatTime(ts.Add(time.Nanosecond*400)))
}
