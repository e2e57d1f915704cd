package llm

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyResponse = errors.New("empty response from model")
	ErrExhausted     = errors.New("all models exhausted")
	ErrNoModels      = errors.New("no models configured")
)

// AttemptKind separates call failures from unusable output. Both are retried the same way.
type AttemptKind string

const (
	KindTransport  AttemptKind = "transport"
	KindExtraction AttemptKind = "extraction"
)

// AttemptError describes one failed attempt.
type AttemptError struct {
	Model   string
	Attempt int
	Kind    AttemptKind
	Err     error
}

func (e *AttemptError) Error() string {
	return fmt.Sprintf("%s attempt %d (%s): %v", e.Model, e.Attempt, e.Kind, e.Err)
}

func (e *AttemptError) Unwrap() error { return e.Err }
