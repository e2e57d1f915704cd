package media

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/nguyentantai21042004/slide-flow/internal/models"
)

const frameIndexFile = "frames.json"

var rePTSTime = regexp.MustCompile(`pts_time:(\d+(?:\.\d+)?)`)

// ExtractFrames captures a still at every scene change. The frame index is cached as
// frames.json in the video's frame directory.
func (m *implMedia) ExtractFrames(ctx context.Context, videoPath, videoID string) ([]models.FrameSample, error) {
	outDir := filepath.Join(m.cfg.Paths.Frames(), videoID)
	indexPath := filepath.Join(outDir, frameIndexFile)

	if frames, err := readFrameIndex(indexPath); err == nil {
		m.logger.Info(ctx, "Frames already extracted: %d frames in %s", len(frames), outDir)
		return frames, nil
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("create frames dir: %w", err)
	}

	m.logger.Info(ctx, "Extracting frames (scene threshold %.2f): %s", m.cfg.FFmpeg.SceneThreshold, videoPath)

	args := []string{
		"-y",
		"-i", videoPath,
		"-vf", fmt.Sprintf("select='gt(scene,%g)',showinfo", m.cfg.FFmpeg.SceneThreshold),
		"-vsync", "vfr",
		filepath.Join(outDir, "f_%04d.jpg"),
	}

	stderr, err := m.executor.ExecuteStderr(ctx, m.cfg.FFmpeg.BinaryPath, args...)
	if err != nil {
		return nil, fmt.Errorf("ffmpeg extract frames: %w", err)
	}

	files, err := filepath.Glob(filepath.Join(outDir, "f_*.jpg"))
	if err != nil {
		return nil, fmt.Errorf("list frames: %w", err)
	}
	sort.Strings(files)

	frames := pairFrames(files, parsePTSTimes(stderr))
	if err := writeFrameIndex(indexPath, frames); err != nil {
		m.logger.Warn(ctx, "Failed to write frame index %s: %v", indexPath, err)
	}

	m.logger.Info(ctx, "Extracted %d frames for %s", len(frames), videoID)
	return frames, nil
}

func parsePTSTimes(stderr string) []float64 {
	var times []float64
	for _, m := range rePTSTime.FindAllStringSubmatch(stderr, -1) {
		t, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		times = append(times, t)
	}
	return times
}

// pairFrames matches sorted files to showinfo times in order. Files without a time are
// dropped so the sequence stays non-decreasing.
func pairFrames(files []string, times []float64) []models.FrameSample {
	n := min(len(files), len(times))
	frames := make([]models.FrameSample, 0, n)
	for i := range n {
		frames = append(frames, models.FrameSample{Time: times[i], Path: files[i]})
	}
	sort.SliceStable(frames, func(a, b int) bool { return frames[a].Time < frames[b].Time })
	return frames
}

func readFrameIndex(path string) ([]models.FrameSample, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var frames []models.FrameSample
	if err := json.Unmarshal(data, &frames); err != nil {
		return nil, err
	}
	return frames, nil
}

func writeFrameIndex(path string, frames []models.FrameSample) error {
	data, err := json.MarshalIndent(frames, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
