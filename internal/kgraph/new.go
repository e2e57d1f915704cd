package kgraph

import (
	"time"

	"github.com/nguyentantai21042004/slide-flow/internal/logger"
	"github.com/nguyentantai21042004/slide-flow/internal/store"
)

// Options tunes retrieval and indexing.
type Options struct {
	TopK       int
	QueryChars int
	MinSnippet int
	Timeout    time.Duration
	// ChunkWords splits transcripts that have no blank-line paragraphs.
	ChunkWords int
}

type implGraph struct {
	embedder Embedder
	index    store.Index
	opts     Options
	logger   logger.Logger
}

// New returns a Graph over index.
func New(embedder Embedder, index store.Index, opts Options, log logger.Logger) Graph {
	if opts.TopK <= 0 {
		opts.TopK = 3
	}
	if opts.QueryChars <= 0 {
		opts.QueryChars = 100
	}
	if opts.MinSnippet <= 0 {
		opts.MinSnippet = 50
	}
	if opts.ChunkWords <= 0 {
		opts.ChunkWords = 120
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &implGraph{
		embedder: embedder,
		index:    index,
		opts:     opts,
		logger:   log,
	}
}

type noopRetriever struct{}

// Noop returns a Retriever that never supplies context.
func Noop() Retriever { return noopRetriever{} }
