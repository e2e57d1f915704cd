package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

var supportedFormats = []string{".mp4", ".mov", ".avi", ".mkv", ".webm", ".m4v", ".flv"}

// IsVideoFile checks if the file has a supported video extension
func IsVideoFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range supportedFormats {
		if ext == format {
			return true
		}
	}
	return false
}

// DiscoverVideos lists the supported videos directly inside dir, sorted by name.
func DiscoverVideos(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if IsVideoFile(e.Name()) {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}

	sort.Strings(files)
	return files, nil
}

// ProcessAll processes videos concurrently, at most Performance.MaxConcurrent at a time.
// Decks never share files, so videos are independent.
func (p *implProcessor) ProcessAll(ctx context.Context, videoPaths []string) (int, error) {
	if len(videoPaths) == 0 {
		p.logger.Info(ctx, "No videos to process")
		return 0, nil
	}

	p.logger.Info(ctx, "Found %d videos to process", len(videoPaths))

	var failed atomic.Int32
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Performance.MaxConcurrent)

	for i, path := range videoPaths {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			p.logger.Info(gctx, "[%d/%d] %s", i+1, len(videoPaths), filepath.Base(path))
			if err := p.Process(gctx, path); err != nil {
				failed.Add(1)
				p.logger.Error(gctx, "Failed to process %s: %v", path, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return int(failed.Load()), fmt.Errorf("batch interrupted: %w", err)
	}

	p.logger.Info(ctx, "Batch complete: %d ok, %d failed", len(videoPaths)-int(failed.Load()), failed.Load())
	return int(failed.Load()), nil
}
