package assembler

import (
	"context"
	"errors"
	"fmt"

	"github.com/nguyentantai21042004/slide-flow/internal/align"
	"github.com/nguyentantai21042004/slide-flow/internal/chunker"
	"github.com/nguyentantai21042004/slide-flow/internal/diagram"
	"github.com/nguyentantai21042004/slide-flow/internal/logger"
	"github.com/nguyentantai21042004/slide-flow/internal/models"
	"github.com/nguyentantai21042004/slide-flow/internal/prompt"
)

// ErrNoUsableSlides is returned when every chunk of a video failed or produced nothing.
var ErrNoUsableSlides = errors.New("no usable slides")

// Assemble processes chunks strictly in order. A chunk whose generation fails still gets a
// record, with empty fields and StatusFailed, so slide positions match chunk indexes.
// The deck is returned even when ErrNoUsableSlides is reported.
func (a *implAssembler) Assemble(ctx context.Context, in Input) (models.SlideDeck, Report, error) {
	chunks := chunker.Split(in.VideoID, in.Transcript, a.wordTarget)

	deck := models.SlideDeck{
		VideoID: in.VideoID,
		Title:   in.Title,
		Slides:  make([]models.SlideRecord, 0, len(chunks)),
	}
	report := Report{Chunks: make([]ChunkReport, 0, len(chunks))}

	a.logger.Info(ctx, "Generating slides for %s: %d chunks", in.VideoID, len(chunks))

	for _, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return deck, report, err
		}

		chunkCtx := logger.WithFields(ctx, "video", in.VideoID, "chunk", chunk.Index)
		rec, cr := a.slide(chunkCtx, chunk, len(chunks), in)

		deck.Slides = append(deck.Slides, rec)
		report.Chunks = append(report.Chunks, cr)
		if cr.Status == models.StatusOK {
			report.Succeeded++
		} else {
			report.Failed++
		}
	}

	if !deck.HasContent() {
		a.logger.Error(ctx, "No slides generated for %s (%d chunks failed)", in.VideoID, report.Failed)
		return deck, report, fmt.Errorf("%s: %w", in.VideoID, ErrNoUsableSlides)
	}

	a.logger.Info(ctx, "Slides for %s: %d ok, %d failed", in.VideoID, report.Succeeded, report.Failed)
	return deck, report, nil
}

func (a *implAssembler) slide(ctx context.Context, chunk models.TranscriptChunk, total int, in Input) (models.SlideRecord, ChunkReport) {
	a.logger.Info(ctx, "Processing chunk %d/%d", chunk.Index+1, total)

	text := prompt.Build(prompt.Input{
		Chunk:   chunk,
		Total:   total,
		Context: a.retriever.Context(ctx, chunk.Text),
	})

	res, err := a.client.Generate(ctx, text)
	if err != nil {
		a.logger.Error(ctx, "All models failed for chunk %d: %v", chunk.Index, err)
		rec := models.SlideRecord{
			ChunkIndex: chunk.Index,
			VideoID:    chunk.VideoID,
			Fields:     models.SlideFields{Bullets: []string{}, DiagramType: models.DiagramNone},
			Status:     models.StatusFailed,
		}
		return rec, ChunkReport{Index: chunk.Index, Status: models.StatusFailed, Err: err.Error()}
	}

	rec := models.SlideRecord{
		ChunkIndex: chunk.Index,
		VideoID:    chunk.VideoID,
		Fields:     res.Fields,
		Status:     models.StatusOK,
		Model:      res.Model,
	}

	if res.Fields.DiagramType != models.DiagramNone {
		rec.Diagram = diagram.Normalize(res.Fields.DiagramType, res.Fields.DiagramText)
		if rec.Diagram == nil {
			a.logger.Warn(ctx, "Empty %s diagram for chunk %d, skipping diagram", res.Fields.DiagramType, chunk.Index)
		}
	}

	rec.Timestamp = align.ChunkStart(chunk.Text, in.Captions)
	rec.Frame = align.NearestFrame(rec.Timestamp, in.Frames)

	return rec, ChunkReport{
		Index:  chunk.Index,
		Status: models.StatusOK,
		Model:  res.Model,
		Calls:  res.Calls,
	}
}
