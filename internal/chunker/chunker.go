package chunker

import (
	"strings"

	"github.com/nguyentantai21042004/slide-flow/internal/models"
)

// DefaultTarget is the word count used when the configured target is not positive.
const DefaultTarget = 450

var typographic = strings.NewReplacer(
	"’", "'",
	"‘", "'",
	"“", `"`,
	"”", `"`,
)

// Clean folds typographic quotes to ASCII and collapses whitespace runs to single spaces.
func Clean(text string) string {
	return strings.Join(strings.Fields(typographic.Replace(text)), " ")
}

// Split cuts text into chunks of exactly target words; only the last chunk may be shorter.
// Empty text yields no chunks.
func Split(videoID, text string, target int) []models.TranscriptChunk {
	if target <= 0 {
		target = DefaultTarget
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	chunks := make([]models.TranscriptChunk, 0, (len(words)+target-1)/target)
	for start := 0; start < len(words); start += target {
		end := min(start+target, len(words))
		chunks = append(chunks, models.TranscriptChunk{
			Index:   len(chunks),
			Text:    strings.Join(words[start:end], " "),
			VideoID: videoID,
		})
	}

	return chunks
}
