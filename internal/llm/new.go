package llm

import (
	"context"
	"sync"
	"time"

	"github.com/nguyentantai21042004/slide-flow/internal/logger"
)

// Options configures the fallback policy.
type Options struct {
	Models      []string
	Attempts    int
	Timeout     time.Duration
	Backoff     time.Duration
	RateLimit   time.Duration
	MaxTokens   int
	Temperature float64
}

type implClient struct {
	gen    Generator
	opts   Options
	logger logger.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error

	// mu guards lastCall; one Client is shared by videos processed in parallel.
	mu       sync.Mutex
	lastCall time.Time
}

// New creates a Client that validates every attempt by extracting slide fields from it.
func New(gen Generator, opts Options, log logger.Logger) Client {
	if opts.Attempts <= 0 {
		opts.Attempts = 2
	}
	return &implClient{
		gen:    gen,
		opts:   opts,
		logger: log,
		now:    time.Now,
		sleep:  sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
