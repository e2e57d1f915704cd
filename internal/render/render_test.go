package render

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/nguyentantai21042004/slide-flow/internal/logger"
	"github.com/nguyentantai21042004/slide-flow/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDeck(outDir string) models.SlideDeck {
	return models.SlideDeck{
		VideoID: "dQw4w9WgXcQ",
		Slides: []models.SlideRecord{
			{
				ChunkIndex: 0,
				VideoID:    "dQw4w9WgXcQ",
				Status:     models.StatusOK,
				Fields: models.SlideFields{
					Title:   "Four States",
					Bullets: []string{"**Waking** state", "Dream <b>state</b>"},
					Notes:   "The *first* state.",
				},
				Diagram:   &models.DiagramSpec{Type: models.DiagramFlowchart, Text: "flowchart TD\n  A-->B"},
				Timestamp: 75.6,
				Frame:     &models.FrameSample{Time: 70, Path: filepath.Join(outDir, "..", "frames", "f_0002.jpg")},
			},
			{ChunkIndex: 1, VideoID: "dQw4w9WgXcQ", Status: models.StatusFailed, Fields: models.SlideFields{Bullets: []string{}}},
		},
	}
}

func TestRenderHTML(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "slides")
	r := New(Options{JSON: true}, logger.NewWithWriter(io.Discard, "info", "text"))

	paths, err := r.Render(context.Background(), sampleDeck(outDir), outDir)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, filepath.Join(outDir, "dqw4w9wgxcq.html"), paths[0])

	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	html := string(data)

	assert.Contains(t, html, "<title>Lecture dQw4w9WgXcQ</title>")
	assert.Contains(t, html, "theme/black.css")
	assert.Contains(t, html, `theme: "default"`)
	assert.Contains(t, html, "<h2>Four States</h2>")
	assert.Contains(t, html, "<li><strong>Waking</strong> state</li>")
	assert.NotContains(t, html, "<b>state</b>")
	assert.Contains(t, html, `<aside class="notes"><p>The <em>first</em> state.</p>`)
	assert.Contains(t, html, "https://youtu.be/dQw4w9WgXcQ?t=75")
	assert.Contains(t, html, "View at 1:15")
	assert.Contains(t, html, `<img src="../frames/f_0002.jpg"`)
	assert.Contains(t, html, "flowchart TD\n  A--&gt;B")
	assert.Contains(t, html, "Chunk 2: no slide generated")
	assert.Contains(t, html, "No diagram")

	deck, err := ReadDeck(paths[1])
	require.NoError(t, err)
	require.Len(t, deck.Slides, 2)
	assert.Equal(t, "Four States", deck.Slides[0].Fields.Title)
	assert.Equal(t, models.StatusFailed, deck.Slides[1].Status)
}

func TestRenderDocx(t *testing.T) {
	outDir := t.TempDir()
	r := New(Options{Docx: true}, logger.NewWithWriter(io.Discard, "info", "text"))

	paths, err := r.Render(context.Background(), sampleDeck(outDir), outDir)
	require.NoError(t, err)
	require.Len(t, paths, 2)

	info, err := os.Stat(paths[1])
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
	assert.Equal(t, ".docx", filepath.Ext(paths[1]))
}

func TestYouTubeLink(t *testing.T) {
	assert.Equal(t, "https://youtu.be/abcdefghijk?t=12", youTubeLink("abcdefghijk", 12.9))
	assert.Empty(t, youTubeLink("lecture-01", 12))
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "0:00", formatClock(0))
	assert.Equal(t, "1:05", formatClock(65.4))
	assert.Equal(t, "1:01:01", formatClock(3661))
	assert.Equal(t, "0:00", formatClock(-3))
}

func TestDeckBaseName(t *testing.T) {
	assert.Equal(t, "lecture-01-intro", DeckBaseName("Lecture 01 Intro"))
	assert.Equal(t, "deck", DeckBaseName("???"))
}
