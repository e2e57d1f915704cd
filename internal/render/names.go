package render

import (
	"path/filepath"

	"github.com/gosimple/slug"
)

// DeckBaseName is the file stem used for every artifact of a video's deck.
func DeckBaseName(videoID string) string {
	s := slug.Make(videoID)
	if s == "" {
		return "deck"
	}
	return s
}

// HTMLPath is where the reveal.js deck for videoID is written.
func HTMLPath(outDir, videoID string) string {
	return filepath.Join(outDir, DeckBaseName(videoID)+".html")
}

// JSONPath is where the deck JSON for videoID is written.
func JSONPath(outDir, videoID string) string {
	return filepath.Join(outDir, DeckBaseName(videoID)+".json")
}

// DocxPath is where the handout for videoID is written.
func DocxPath(outDir, videoID string) string {
	return filepath.Join(outDir, DeckBaseName(videoID)+".docx")
}
