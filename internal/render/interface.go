package render

import (
	"context"

	"github.com/nguyentantai21042004/slide-flow/internal/models"
)

// Renderer serializes a deck into browsable documents under outDir and returns their paths.
type Renderer interface {
	Render(ctx context.Context, deck models.SlideDeck, outDir string) ([]string, error)
}
