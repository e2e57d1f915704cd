package render

import (
	"context"
	"fmt"
	"os"

	"github.com/nguyentantai21042004/slide-flow/internal/models"
)

// Render writes HTML, then the optional JSON and docx artifacts.
func (r *implRenderer) Render(ctx context.Context, deck models.SlideDeck, outDir string) ([]string, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	htmlPath := HTMLPath(outDir, deck.VideoID)
	if err := r.writeHTML(deck, outDir, htmlPath); err != nil {
		return nil, fmt.Errorf("write html: %w", err)
	}
	written := []string{htmlPath}
	r.logger.Info(ctx, "Slides written: %s", htmlPath)

	if r.opts.JSON {
		p := JSONPath(outDir, deck.VideoID)
		if err := writeJSON(deck, p); err != nil {
			return written, fmt.Errorf("write json: %w", err)
		}
		written = append(written, p)
	}

	if r.opts.Docx {
		p := DocxPath(outDir, deck.VideoID)
		if err := writeDocx(deck, p); err != nil {
			return written, fmt.Errorf("write docx: %w", err)
		}
		written = append(written, p)
		r.logger.Info(ctx, "Handout written: %s", p)
	}

	return written, nil
}
