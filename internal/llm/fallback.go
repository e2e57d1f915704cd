package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nguyentantai21042004/slide-flow/internal/extract"
)

type state int

const (
	stateTryModel state = iota
	stateTryAttempt
	stateNextAttempt
	stateNextModel
	stateSuccess
	stateExhausted
)

func (s state) String() string {
	switch s {
	case stateTryModel:
		return "try_model"
	case stateTryAttempt:
		return "try_attempt"
	case stateNextAttempt:
		return "next_attempt"
	case stateNextModel:
		return "next_model"
	case stateSuccess:
		return "success"
	case stateExhausted:
		return "exhausted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// machine holds the position in the model x attempt grid.
type machine struct {
	models   []string
	attempts int

	state   state
	model   int
	attempt int
	calls   int
	last    error
}

// advance moves to the next state after an attempt outcome. ok means the attempt produced
// usable fields.
func (m *machine) advance(ok bool) {
	switch {
	case ok:
		m.state = stateSuccess
	case m.attempt+1 < m.attempts:
		m.state = stateNextAttempt
	case m.model+1 < len(m.models):
		m.state = stateNextModel
	default:
		m.state = stateExhausted
	}
}

// Generate runs the fallback state machine:
//
//	TryModel -> TryAttempt -> Success | NextAttempt | NextModel | Exhausted
//
// Each model gets up to Attempts calls. The first attempt whose text yields slide fields ends
// the run. Transport and extraction failures are handled identically.
func (c *implClient) Generate(ctx context.Context, prompt string) (Result, error) {
	m := &machine{models: c.opts.Models, attempts: c.opts.Attempts}
	if len(m.models) == 0 {
		return Result{}, ErrNoModels
	}

	var res Result
	m.state = stateTryModel
	for {
		switch m.state {
		case stateTryModel:
			m.attempt = 0
			c.logger.Info(ctx, "Trying model: %s", m.models[m.model])
			m.state = stateTryAttempt

		case stateTryAttempt:
			if err := ctx.Err(); err != nil {
				return Result{}, err
			}
			model := m.models[m.model]
			m.calls++
			raw, err := c.attempt(ctx, model, prompt)
			if err != nil {
				m.last = &AttemptError{Model: model, Attempt: m.attempt + 1, Kind: KindTransport, Err: err}
				c.logger.Warn(ctx, "Generation call failed for model %s (attempt %d): %v", model, m.attempt+1, err)
				m.advance(false)
				continue
			}

			fields, err := extract.Fields(raw)
			if err != nil {
				m.last = &AttemptError{Model: model, Attempt: m.attempt + 1, Kind: KindExtraction, Err: err}
				c.logger.Warn(ctx, "JSON parse failed for model %s (attempt %d): %v", model, m.attempt+1, err)
				m.advance(false)
				continue
			}

			res = Result{Fields: fields, Model: model, Attempt: m.attempt + 1, Raw: raw}
			m.advance(true)

		case stateNextAttempt:
			if err := c.sleep(ctx, c.opts.Backoff); err != nil {
				return Result{}, err
			}
			m.attempt++
			m.state = stateTryAttempt

		case stateNextModel:
			if err := c.sleep(ctx, c.opts.Backoff); err != nil {
				return Result{}, err
			}
			m.model++
			m.state = stateTryModel

		case stateSuccess:
			res.Calls = m.calls
			c.logger.Debug(ctx, "Model %s succeeded after %d call(s)", res.Model, res.Calls)
			return res, nil

		case stateExhausted:
			return Result{}, fmt.Errorf("%w after %d calls: %w", ErrExhausted, m.calls, m.last)

		default:
			return Result{}, errors.New("llm: invalid fallback state " + m.state.String())
		}
	}
}

// attempt makes one rate-limited, time-bounded generation call.
func (c *implClient) attempt(ctx context.Context, model, prompt string) (string, error) {
	if wait := c.reserve(); wait > 0 {
		if err := c.sleep(ctx, wait); err != nil {
			return "", err
		}
	}

	callCtx := ctx
	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}

	return c.gen.Generate(callCtx, Request{
		Model:       model,
		Prompt:      prompt,
		MaxTokens:   c.opts.MaxTokens,
		Temperature: c.opts.Temperature,
	})
}

// reserve claims the next call start allowed by the rate limit and returns how long to wait
// for it. Concurrent callers get distinct starts spaced by at least RateLimit.
func (c *implClient) reserve() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	start := now
	if c.opts.RateLimit > 0 && !c.lastCall.IsZero() {
		if next := c.lastCall.Add(c.opts.RateLimit); next.After(now) {
			start = next
		}
	}
	c.lastCall = start
	return start.Sub(now)
}
