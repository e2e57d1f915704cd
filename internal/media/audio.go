package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ExtractAudio converts the video's soundtrack to 16kHz mono WAV for whisper.
func (m *implMedia) ExtractAudio(ctx context.Context, videoPath string) (string, error) {
	dir := m.cfg.Paths.Audio()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create audio dir: %w", err)
	}
	audioPath := filepath.Join(dir, stem(videoPath)+".wav")

	if fileExists(audioPath) {
		m.logger.Info(ctx, "Audio already extracted: %s", audioPath)
		return audioPath, nil
	}

	m.logger.Info(ctx, "Extracting audio: %s", videoPath)

	// -vn: no video, -ac 1: mono, -c:a pcm_s16le: uncompressed 16-bit
	args := []string{
		"-i", videoPath,
		"-vn",
		"-ar", strconv.Itoa(m.cfg.FFmpeg.SampleRate),
		"-ac", "1",
		"-c:a", "pcm_s16le",
		"-threads", "0",
		"-y",
		audioPath,
	}

	if _, err := m.executor.Execute(ctx, m.cfg.FFmpeg.BinaryPath, args...); err != nil {
		os.Remove(audioPath)
		return "", fmt.Errorf("ffmpeg extract audio: %w", err)
	}

	m.logger.Info(ctx, "Audio extracted successfully: %s", audioPath)
	return audioPath, nil
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir() && info.Size() > 0
}
