package media

import (
	"context"

	"github.com/nguyentantai21042004/slide-flow/internal/models"
)

// Transcript points at the artifacts whisper produced for one video.
type Transcript struct {
	TextPath    string
	CaptionPath string
}

// Media wraps the external tools that turn a video into pipeline inputs. Every step skips
// work whose output already exists.
type Media interface {
	// CachedTranscript reports a transcript produced by an earlier run.
	CachedTranscript(videoID string) (Transcript, bool)
	ExtractAudio(ctx context.Context, videoPath string) (string, error)
	Transcribe(ctx context.Context, audioPath, videoID string) (Transcript, error)
	ExtractFrames(ctx context.Context, videoPath, videoID string) ([]models.FrameSample, error)
}
