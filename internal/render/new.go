package render

import (
	"github.com/nguyentantai21042004/slide-flow/internal/logger"
)

// Options selects themes and which extra formats to write besides HTML.
type Options struct {
	RevealTheme  string
	MermaidTheme string
	Docx         bool
	JSON         bool
}

type implRenderer struct {
	opts   Options
	logger logger.Logger
}

// New creates a Renderer. HTML is always written.
func New(opts Options, log logger.Logger) Renderer {
	if opts.RevealTheme == "" {
		opts.RevealTheme = "black"
	}
	if opts.MermaidTheme == "" {
		opts.MermaidTheme = "default"
	}
	return &implRenderer{
		opts:   opts,
		logger: log,
	}
}
