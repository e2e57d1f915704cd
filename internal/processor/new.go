package processor

import (
	"github.com/nguyentantai21042004/slide-flow/internal/assembler"
	"github.com/nguyentantai21042004/slide-flow/internal/config"
	"github.com/nguyentantai21042004/slide-flow/internal/kgraph"
	"github.com/nguyentantai21042004/slide-flow/internal/logger"
	"github.com/nguyentantai21042004/slide-flow/internal/media"
	"github.com/nguyentantai21042004/slide-flow/internal/render"
	"github.com/nguyentantai21042004/slide-flow/internal/store"
)

// Deps are the collaborators a Processor drives. Indexer and Runs may be nil.
type Deps struct {
	Media     media.Media
	Assembler assembler.Assembler
	Renderer  render.Renderer
	Indexer   kgraph.Indexer
	Runs      store.RunLog
}

type implProcessor struct {
	cfg    *config.Config
	deps   Deps
	logger logger.Logger
}

// New creates a new Processor instance
func New(cfg *config.Config, deps Deps, log logger.Logger) Processor {
	return &implProcessor{
		cfg:    cfg,
		deps:   deps,
		logger: log,
	}
}
