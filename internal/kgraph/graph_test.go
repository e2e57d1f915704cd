package kgraph

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nguyentantai21042004/slide-flow/internal/logger"
	"github.com/nguyentantai21042004/slide-flow/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// keywordEmbedder maps text onto counts of a few marker words.
type keywordEmbedder struct {
	err   error
	calls int
	delay time.Duration
}

var markers = []string{"alpha", "beta", "gamma"}

func (e *keywordEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	e.calls++
	if e.delay > 0 {
		select {
		case <-time.After(e.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v := make([]float32, len(markers)+1)
		for j, m := range markers {
			v[j] = float32(strings.Count(strings.ToLower(t), m))
		}
		v[len(markers)] = 0.01
		out[i] = v
	}
	return out, nil
}

func newTestGraph(t *testing.T, emb Embedder, opts Options) (Graph, *store.SQLite) {
	t.Helper()
	idx, err := store.OpenSQLite(filepath.Join(t.TempDir(), "kg.db"))
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	return New(emb, idx, opts, logger.NewWithWriter(io.Discard, "debug", "text")), idx
}

const transcript = `Alpha is the waking state where the senses point outward and alpha dominates.

short line

Beta describes the dreaming state, a beta world built from impressions of the day.

Gamma is deep sleep without dreams, the gamma state that has no objects at all.`

func TestIndexAndContext(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lec1.txt"), []byte(transcript), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte(transcript), 0644))

	emb := &keywordEmbedder{}
	g, _ := newTestGraph(t, emb, Options{TopK: 1})

	n, err := g.IndexTranscripts(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = g.IndexTranscripts(ctx, dir)
	require.NoError(t, err)
	assert.Zero(t, n, "already indexed files are skipped")

	got := g.Context(ctx, "tell me about beta dreams")
	assert.Equal(t, "Related Context: Beta describes the dreaming state, a beta world built from impressions of the day.", got)

	hits, err := g.Search(ctx, "gamma", 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, "lec1.txt", hits[0].Source)
	assert.Contains(t, hits[0].Text, "Gamma is deep sleep")
}

func TestContextDegradesToEmpty(t *testing.T) {
	ctx := context.Background()

	t.Run("empty index", func(t *testing.T) {
		g, _ := newTestGraph(t, &keywordEmbedder{}, Options{})
		assert.Empty(t, g.Context(ctx, "alpha"))
	})

	t.Run("embedder failure", func(t *testing.T) {
		g, idx := newTestGraph(t, &keywordEmbedder{err: errors.New("ollama down")}, Options{})
		require.NoError(t, idx.Upsert(ctx, []store.Snippet{{Source: "s", Text: "alpha", Embedding: []float32{1, 0, 0, 0}}}))
		assert.Empty(t, g.Context(ctx, "alpha"))
	})

	t.Run("timeout", func(t *testing.T) {
		g, _ := newTestGraph(t, &keywordEmbedder{delay: time.Second}, Options{Timeout: 20 * time.Millisecond})
		start := time.Now()
		assert.Empty(t, g.Context(ctx, "alpha"))
		assert.Less(t, time.Since(start), 500*time.Millisecond)
	})

	t.Run("blank query", func(t *testing.T) {
		emb := &keywordEmbedder{}
		g, _ := newTestGraph(t, emb, Options{})
		assert.Empty(t, g.Context(ctx, "   "))
		assert.Zero(t, emb.calls)
	})

	t.Run("noop", func(t *testing.T) {
		assert.Empty(t, Noop().Context(ctx, "alpha"))
	})
}

func TestIndexTextWithoutParagraphs(t *testing.T) {
	ctx := context.Background()
	g, _ := newTestGraph(t, &keywordEmbedder{}, Options{ChunkWords: 10, MinSnippet: 10})

	text := strings.Repeat("alpha beta gamma delta epsilon ", 5)
	n, err := g.IndexText(ctx, "flat.txt", text)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "héll", truncateRunes("héllo", 4))
	assert.Equal(t, "abc", truncateRunes("abc", 10))
}
