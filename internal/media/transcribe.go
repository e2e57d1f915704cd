package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

func (m *implMedia) transcriptPaths(videoID string) (string, Transcript) {
	// whisper appends .txt / .vtt to the prefix
	prefix := filepath.Join(m.cfg.Paths.Transcripts(), videoID)
	return prefix, Transcript{
		TextPath:    prefix + ".txt",
		CaptionPath: prefix + ".vtt",
	}
}

func (m *implMedia) CachedTranscript(videoID string) (Transcript, bool) {
	_, out := m.transcriptPaths(videoID)
	return out, fileExists(out.TextPath) && fileExists(out.CaptionPath)
}

// Transcribe runs whisper once and returns the plain-text transcript and WebVTT captions
// it wrote under the transcripts directory.
func (m *implMedia) Transcribe(ctx context.Context, audioPath, videoID string) (Transcript, error) {
	dir := m.cfg.Paths.Transcripts()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return Transcript{}, fmt.Errorf("create transcripts dir: %w", err)
	}

	outputPrefix, out := m.transcriptPaths(videoID)
	if _, ok := m.CachedTranscript(videoID); ok {
		m.logger.Info(ctx, "Transcript already exists: %s", out.TextPath)
		return out, nil
	}

	m.logger.Info(ctx, "Starting transcription with %d threads: %s", m.cfg.Whisper.Threads, audioPath)

	// -l: force language (prevents hallucination)
	// -bo 5: best of 5 candidates
	args := []string{
		"-m", m.cfg.Whisper.ModelPath,
		"-f", audioPath,
		"-otxt",
		"-ovtt",
		"-l", m.cfg.Whisper.Language,
		"-t", strconv.Itoa(m.cfg.Whisper.Threads),
		"-bo", "5",
		"--output-file", outputPrefix,
	}
	if m.cfg.Whisper.Prompt != "" {
		args = append(args, "--prompt", m.cfg.Whisper.Prompt)
	}
	if !m.cfg.Whisper.UseGPU {
		args = append(args, "-ng")
	}

	if _, err := m.executor.Execute(ctx, m.cfg.Whisper.BinaryPath, args...); err != nil {
		return Transcript{}, fmt.Errorf("whisper transcribe: %w", err)
	}

	for _, p := range []string{out.TextPath, out.CaptionPath} {
		if !fileExists(p) {
			return Transcript{}, fmt.Errorf("whisper finished but %s is missing", p)
		}
	}

	m.logger.Info(ctx, "Transcription completed: %s", out.TextPath)
	return out, nil
}
