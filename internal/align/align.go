package align

import (
	"strings"

	"github.com/nguyentantai21042004/slide-flow/internal/models"
)

// AnchorWords is how many leading chunk words form the search anchor.
const AnchorWords = 5

// ChunkStart approximates when a chunk begins being spoken. The anchor is the chunk's first
// words, lowercased. The first caption containing the anchor supplies the time. Failing that,
// the first caption whose words are a leading run of the anchor's words is used, since a cue
// is often shorter than the anchor. Without a match the first caption's start is used, or
// zero when there are no captions.
func ChunkStart(chunkText string, captions []models.CaptionSegment) float64 {
	if len(captions) == 0 {
		return 0
	}

	words := strings.Fields(strings.ToLower(chunkText))
	if len(words) > AnchorWords {
		words = words[:AnchorWords]
	}
	if len(words) == 0 {
		return captions[0].Start
	}
	anchor := strings.Join(words, " ")

	for _, c := range captions {
		if strings.Contains(normalize(c.Text), anchor) {
			return c.Start
		}
	}

	for _, c := range captions {
		if leadingWords(words, strings.Fields(strings.ToLower(c.Text))) {
			return c.Start
		}
	}

	return captions[0].Start
}

// leadingWords reports whether prefix is a non-empty leading run of words.
func leadingWords(words, prefix []string) bool {
	if len(prefix) == 0 || len(prefix) > len(words) {
		return false
	}
	for i, w := range prefix {
		if words[i] != w {
			return false
		}
	}
	return true
}

// NearestFrame returns the latest frame captured at or before t. When every frame is later
// than t the first frame is returned; nil when there are no frames.
func NearestFrame(t float64, frames []models.FrameSample) *models.FrameSample {
	if len(frames) == 0 {
		return nil
	}

	best := -1
	for i, f := range frames {
		if f.Time > t {
			break
		}
		best = i
	}

	if best < 0 {
		best = 0
	}
	f := frames[best]
	return &f
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
