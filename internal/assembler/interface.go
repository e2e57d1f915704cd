package assembler

import (
	"context"

	"github.com/nguyentantai21042004/slide-flow/internal/models"
)

// Input is everything known about one video before synthesis.
type Input struct {
	VideoID    string
	Title      string
	Transcript string
	Captions   []models.CaptionSegment
	Frames     []models.FrameSample
}

// ChunkReport is the synthesis outcome of one chunk.
type ChunkReport struct {
	Index  int
	Status models.ChunkStatus
	Model  string
	Calls  int
	Err    string
}

// Report summarises a run over one video.
type Report struct {
	Chunks    []ChunkReport
	Succeeded int
	Failed    int
}

// Assembler turns a transcript into an ordered slide deck.
type Assembler interface {
	Assemble(ctx context.Context, in Input) (models.SlideDeck, Report, error)
}
