package media

import (
	"github.com/nguyentantai21042004/slide-flow/internal/config"
	"github.com/nguyentantai21042004/slide-flow/internal/logger"
	"github.com/nguyentantai21042004/slide-flow/pkg/executor"
)

type implMedia struct {
	cfg      *config.Config
	executor executor.Executor
	logger   logger.Logger
}

// New creates a Media instance
func New(cfg *config.Config, exec executor.Executor, log logger.Logger) Media {
	return &implMedia{
		cfg:      cfg,
		executor: exec,
		logger:   log,
	}
}
