package kgraph

import (
	"context"

	"github.com/nguyentantai21042004/slide-flow/internal/store"
)

// Embedder turns texts into vectors, one per input, in order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Retriever supplies related context for a chunk. It never fails: any problem yields "".
type Retriever interface {
	Context(ctx context.Context, query string) string
}

// Searcher answers free-text queries against the transcript index.
type Searcher interface {
	Search(ctx context.Context, query string, k int) ([]store.Hit, error)
}

// Indexer embeds transcripts into the index.
type Indexer interface {
	IndexTranscripts(ctx context.Context, dir string) (int, error)
	IndexText(ctx context.Context, source, text string) (int, error)
}

// Graph is the transcript knowledge index: retrieval, search and indexing over one store.
type Graph interface {
	Retriever
	Searcher
	Indexer
}
