package llm

import (
	"context"

	"github.com/nguyentantai21042004/slide-flow/internal/models"
)

// Request is one generation call against one model.
type Request struct {
	Model       string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// Generator performs a single generation call and returns the assembled text.
// An empty result is reported as ErrEmptyResponse.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Result is the outcome of a successful slide generation.
type Result struct {
	Fields  models.SlideFields
	Model   string
	Attempt int
	Calls   int
	Raw     string
}

// Client generates slide fields from a prompt, trying each configured model in order.
type Client interface {
	Generate(ctx context.Context, prompt string) (Result, error)
}
