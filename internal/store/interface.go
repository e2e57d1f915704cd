package store

import (
	"context"
	"time"
)

// Snippet is one embedded passage of a transcript.
type Snippet struct {
	Source    string
	Ordinal   int
	Text      string
	Embedding []float32
}

// Hit is a search result with its cosine similarity to the query.
type Hit struct {
	Source  string  `json:"source"`
	Ordinal int     `json:"ordinal"`
	Text    string  `json:"text"`
	Score   float64 `json:"score"`
}

// Index stores snippet embeddings and answers nearest-neighbour queries.
type Index interface {
	Upsert(ctx context.Context, snippets []Snippet) error
	Search(ctx context.Context, query []float32, k int) ([]Hit, error)
	HasSource(ctx context.Context, source string) (bool, error)
	Close() error
}

// RunRecord is one processed video.
type RunRecord struct {
	ID         string    `json:"id"`
	VideoID    string    `json:"video_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Slides     int       `json:"slides"`
	Failed     int       `json:"failed"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
}

// RunLog persists the outcome of each processed video.
type RunLog interface {
	RecordRun(ctx context.Context, r RunRecord) error
	Runs(ctx context.Context, videoID string, limit int) ([]RunRecord, error)
}
