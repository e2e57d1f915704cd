package processor

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nguyentantai21042004/slide-flow/internal/assembler"
	"github.com/nguyentantai21042004/slide-flow/internal/chunker"
	"github.com/nguyentantai21042004/slide-flow/internal/logger"
	"github.com/nguyentantai21042004/slide-flow/internal/media"
	"github.com/nguyentantai21042004/slide-flow/internal/models"
	"github.com/nguyentantai21042004/slide-flow/internal/render"
	"github.com/nguyentantai21042004/slide-flow/internal/store"
	"github.com/oklog/ulid/v2"
)

// Process orchestrates the entire video processing pipeline
func (p *implProcessor) Process(ctx context.Context, videoPath string) error {
	startTime := time.Now()
	videoID := VideoID(videoPath)
	runID := ulid.MustNew(ulid.Timestamp(startTime), ulid.Monotonic(rand.Reader, 0)).String()
	ctx = logger.WithFields(ctx, "video", videoID, "run", runID)

	htmlPath := render.HTMLPath(p.cfg.Paths.Output, videoID)
	if _, err := os.Stat(htmlPath); err == nil {
		p.logger.Info(ctx, "Slides already exist, skipping: %s", htmlPath)
		return nil
	}

	p.logger.Info(ctx, "========================================")
	p.logger.Info(ctx, "Starting video processing: %s", videoPath)
	p.logger.Info(ctx, "========================================")

	deck, report, err := p.build(ctx, videoPath, videoID)
	run := store.RunRecord{
		ID:         runID,
		VideoID:    videoID,
		StartedAt:  startTime,
		FinishedAt: time.Now(),
		Slides:     len(deck.Slides),
		Failed:     report.Failed,
		Status:     "ok",
	}
	if err != nil {
		run.Status = "failed"
		run.Error = err.Error()
		p.recordRun(ctx, run)
		return err
	}

	written, err := p.deps.Renderer.Render(ctx, deck, p.cfg.Paths.Output)
	if err != nil {
		run.Status = "failed"
		run.Error = err.Error()
		p.recordRun(ctx, run)
		return fmt.Errorf("render: %w", err)
	}
	run.FinishedAt = time.Now()
	p.recordRun(ctx, run)

	if p.cfg.Paths.ArchiveInput {
		if err := p.moveToArchived(ctx, videoPath); err != nil {
			p.logger.Warn(ctx, "Failed to move original to archived folder: %v", err)
		}
	}

	duration := time.Since(startTime)
	p.logger.Info(ctx, "========================================")
	p.logger.Info(ctx, "Processing completed successfully!")
	for _, w := range written {
		p.logger.Info(ctx, "Output: %s", w)
	}
	p.logger.Info(ctx, "Slides: %d (%d failed chunks)", len(deck.Slides), report.Failed)
	p.logger.Info(ctx, "Processing time: %s", duration)
	p.logger.Info(ctx, "========================================")

	return nil
}

func (p *implProcessor) build(ctx context.Context, videoPath, videoID string) (models.SlideDeck, assembler.Report, error) {
	// Step 1: Transcript and captions, extracting audio only when needed
	transcript, err := p.transcript(ctx, videoPath, videoID)
	if err != nil {
		return models.SlideDeck{}, assembler.Report{}, err
	}

	raw, err := os.ReadFile(transcript.TextPath)
	if err != nil {
		return models.SlideDeck{}, assembler.Report{}, fmt.Errorf("read transcript: %w", err)
	}
	text := chunker.Clean(string(raw))

	captions, err := media.ParseCaptionsFile(transcript.CaptionPath)
	if err != nil {
		p.logger.Warn(ctx, "Captions unavailable, timestamps fall back to 0: %v", err)
	}

	// Step 2: Scene-change frames
	frames, err := p.deps.Media.ExtractFrames(ctx, videoPath, videoID)
	if err != nil {
		p.logger.Warn(ctx, "Frame extraction failed, slides will have no screenshots: %v", err)
		frames = nil
	}

	// Step 3: Make this transcript available as related context
	if p.deps.Indexer != nil && p.cfg.Context.Enabled {
		if n, err := p.deps.Indexer.IndexText(ctx, filepath.Base(transcript.TextPath), string(raw)); err != nil {
			p.logger.Warn(ctx, "Failed to index transcript: %v", err)
		} else {
			p.logger.Debug(ctx, "Indexed %d transcript snippets", n)
		}
	}

	// Step 4: Slides
	deck, report, err := p.deps.Assembler.Assemble(ctx, assembler.Input{
		VideoID:    videoID,
		Title:      "Lecture " + videoID,
		Transcript: text,
		Captions:   captions,
		Frames:     frames,
	})
	if err != nil {
		return deck, report, fmt.Errorf("assemble: %w", err)
	}
	return deck, report, nil
}

func (p *implProcessor) transcript(ctx context.Context, videoPath, videoID string) (media.Transcript, error) {
	if t, ok := p.deps.Media.CachedTranscript(videoID); ok {
		p.logger.Info(ctx, "Transcript already exists: %s", t.TextPath)
		return t, nil
	}

	audioPath, err := p.deps.Media.ExtractAudio(ctx, videoPath)
	if err != nil {
		return media.Transcript{}, fmt.Errorf("extract audio: %w", err)
	}

	t, err := p.deps.Media.Transcribe(ctx, audioPath, videoID)
	if err != nil {
		return media.Transcript{}, fmt.Errorf("transcribe: %w", err)
	}

	if !p.cfg.Paths.KeepAudio {
		p.cleanupTempFile(ctx, audioPath)
	}
	return t, nil
}

func (p *implProcessor) recordRun(ctx context.Context, run store.RunRecord) {
	if p.deps.Runs == nil {
		return
	}
	if err := p.deps.Runs.RecordRun(ctx, run); err != nil {
		p.logger.Warn(ctx, "Failed to record run %s: %v", run.ID, err)
	}
}

// VideoID derives the deck identifier from a video file name.
func VideoID(videoPath string) string {
	base := filepath.Base(videoPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// IsNoUsableSlides reports whether err means the video produced no content.
func IsNoUsableSlides(err error) bool {
	return errors.Is(err, assembler.ErrNoUsableSlides)
}
