package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTest(t *testing.T) *SQLite {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "nested", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteSearch(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	require.NoError(t, s.Upsert(ctx, []Snippet{
		{Source: "a.txt", Ordinal: 0, Text: "waking state", Embedding: []float32{1, 0, 0}},
		{Source: "a.txt", Ordinal: 1, Text: "dream state", Embedding: []float32{0, 1, 0}},
		{Source: "b.txt", Ordinal: 0, Text: "deep sleep", Embedding: []float32{0.9, 0.1, 0}},
	}))

	hits, err := s.Search(ctx, []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "waking state", hits[0].Text)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-9)
	assert.Equal(t, "deep sleep", hits[1].Text)

	ok, err := s.HasSource(ctx, "a.txt")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.HasSource(ctx, "c.txt")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteUpsertReplaces(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	require.NoError(t, s.Upsert(ctx, []Snippet{{Source: "a", Ordinal: 0, Text: "old", Embedding: []float32{1, 0}}}))
	require.NoError(t, s.Upsert(ctx, []Snippet{{Source: "a", Ordinal: 0, Text: "new", Embedding: []float32{0, 1}}}))

	hits, err := s.Search(ctx, []float32{0, 1}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "new", hits[0].Text)
}

func TestSQLiteReopenKeepsSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "re.db")
	s, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = OpenSQLite(path)
	require.NoError(t, err)
	defer s.Close()

	v, err := userVersion(s.db)
	require.NoError(t, err)
	assert.Equal(t, CurrentSchemaVersion, v)
}

func TestRunLog(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	base := time.UnixMilli(1_700_000_000_000)
	require.NoError(t, s.RecordRun(ctx, RunRecord{ID: "01A", VideoID: "lec1", StartedAt: base, FinishedAt: base.Add(time.Minute), Slides: 4, Failed: 1, Status: "ok"}))
	require.NoError(t, s.RecordRun(ctx, RunRecord{ID: "01B", VideoID: "lec2", StartedAt: base.Add(time.Hour), FinishedAt: base.Add(2 * time.Hour), Status: "failed", Error: "no usable slides"}))

	all, err := s.Runs(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "01B", all[0].ID)
	assert.Equal(t, "no usable slides", all[0].Error)

	one, err := s.Runs(ctx, "lec1", 10)
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, 4, one[0].Slides)
	assert.Equal(t, 1, one[0].Failed)
	assert.True(t, one[0].StartedAt.Equal(base))
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, Cosine([]float32{1, 2}, []float32{2, 4}), 1e-9)
	assert.InDelta(t, 0.0, Cosine([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.Zero(t, Cosine([]float32{1}, []float32{1, 2}))
	assert.Zero(t, Cosine([]float32{0, 0}, []float32{1, 2}))
}
