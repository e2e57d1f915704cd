package queue

import (
	"context"
	"time"
)

// Job asks a worker to build the deck for one video.
type Job struct {
	ID         string    `json:"id"`
	VideoPath  string    `json:"video_path"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// Handler processes one job.
type Handler func(ctx context.Context, videoPath string) error

// Queue is a shared list of pending videos. A video path is accepted once until Forget is called.
type Queue interface {
	// Enqueue adds videoPath and reports false when it was already queued.
	Enqueue(ctx context.Context, videoPath string) (bool, error)
	// Forget allows videoPath to be queued again.
	Forget(ctx context.Context, videoPath string) error
	Len(ctx context.Context) (int64, error)
	// Work pops jobs and runs handler on up to concurrency of them at once until ctx ends.
	Work(ctx context.Context, concurrency int, handler Handler) error
	Close() error
}
