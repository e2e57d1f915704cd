package kgraph

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nguyentantai21042004/slide-flow/internal/chunker"
	"github.com/nguyentantai21042004/slide-flow/internal/store"
)

// ErrIndexEmpty is returned by Search when nothing has been indexed yet.
var ErrIndexEmpty = errors.New("transcript index is empty")

const (
	contextPrefix = "Related Context: "
	embedBatch    = 32
)

func (noopRetriever) Context(context.Context, string) string { return "" }

// Context embeds the first QueryChars characters of query and returns the top hits, one
// "Related Context: <text>" line each. Errors and timeouts degrade to "".
func (g *implGraph) Context(ctx context.Context, query string) string {
	query = truncateRunes(strings.TrimSpace(query), g.opts.QueryChars)
	if query == "" {
		return ""
	}

	ctx, cancel := context.WithTimeout(ctx, g.opts.Timeout)
	defer cancel()

	hits, err := g.Search(ctx, query, g.opts.TopK)
	if err != nil {
		if !errors.Is(err, ErrIndexEmpty) {
			g.logger.Warn(ctx, "Failed to get related context: %v", err)
		}
		return ""
	}

	lines := make([]string, 0, len(hits))
	for _, h := range hits {
		if text := strings.TrimSpace(h.Text); text != "" {
			lines = append(lines, contextPrefix+text)
		}
	}
	return strings.Join(lines, "\n")
}

func (g *implGraph) Search(ctx context.Context, query string, k int) ([]store.Hit, error) {
	if k <= 0 {
		k = g.opts.TopK
	}

	vecs, err := g.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("embed query: got %d vectors", len(vecs))
	}

	hits, err := g.index.Search(ctx, vecs[0], k)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	if len(hits) == 0 {
		return nil, ErrIndexEmpty
	}
	return hits, nil
}

// IndexTranscripts indexes every .txt file in dir that is not indexed yet and returns the
// number of snippets added.
func (g *implGraph) IndexTranscripts(ctx context.Context, dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read transcripts dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".txt") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	total := 0
	for _, name := range files {
		indexed, err := g.index.HasSource(ctx, name)
		if err != nil {
			return total, err
		}
		if indexed {
			g.logger.Debug(ctx, "Already indexed: %s", name)
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return total, fmt.Errorf("read %s: %w", name, err)
		}

		n, err := g.IndexText(ctx, name, string(data))
		if err != nil {
			return total, fmt.Errorf("index %s: %w", name, err)
		}
		g.logger.Info(ctx, "Indexed %s (%d snippets)", name, n)
		total += n
	}

	return total, nil
}

// IndexText splits text into snippets, embeds them and stores them under source.
func (g *implGraph) IndexText(ctx context.Context, source, text string) (int, error) {
	parts := g.snippets(text)
	if len(parts) == 0 {
		return 0, nil
	}

	for start := 0; start < len(parts); start += embedBatch {
		end := min(start+embedBatch, len(parts))
		vecs, err := g.embedder.Embed(ctx, parts[start:end])
		if err != nil {
			return start, err
		}

		batch := make([]store.Snippet, 0, end-start)
		for i, v := range vecs {
			batch = append(batch, store.Snippet{
				Source:    source,
				Ordinal:   start + i,
				Text:      parts[start+i],
				Embedding: v,
			})
		}
		if err := g.index.Upsert(ctx, batch); err != nil {
			return start, err
		}
	}

	return len(parts), nil
}

// snippets splits on blank lines, or into word chunks when the text has no paragraphs,
// and drops pieces shorter than MinSnippet characters.
func (g *implGraph) snippets(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var raw []string
	if strings.Contains(text, "\n\n") {
		raw = strings.Split(text, "\n\n")
	} else {
		for _, c := range chunker.Split("", text, g.opts.ChunkWords) {
			raw = append(raw, c.Text)
		}
	}

	var out []string
	for _, p := range raw {
		p = chunker.Clean(p)
		if len(p) < g.opts.MinSnippet {
			continue
		}
		out = append(out, p)
	}
	return out
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
