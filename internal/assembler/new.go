package assembler

import (
	"github.com/nguyentantai21042004/slide-flow/internal/kgraph"
	"github.com/nguyentantai21042004/slide-flow/internal/llm"
	"github.com/nguyentantai21042004/slide-flow/internal/logger"
)

type implAssembler struct {
	client     llm.Client
	retriever  kgraph.Retriever
	wordTarget int
	logger     logger.Logger
}

// New creates an Assembler. A nil retriever disables related context.
func New(client llm.Client, retriever kgraph.Retriever, wordTarget int, log logger.Logger) Assembler {
	if retriever == nil {
		retriever = kgraph.Noop()
	}
	return &implAssembler{
		client:     client,
		retriever:  retriever,
		wordTarget: wordTarget,
		logger:     log,
	}
}
