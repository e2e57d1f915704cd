package processor

import "context"

// Processor turns lecture videos into slide decks.
type Processor interface {
	// Process builds the deck for one video. It is a no-op when the deck already exists.
	Process(ctx context.Context, videoPath string) error
	// ProcessAll runs Process over many videos with bounded parallelism and returns how
	// many failed. One video's failure never stops the others.
	ProcessAll(ctx context.Context, videoPaths []string) (int, error)
}
