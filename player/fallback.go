package player

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arflix-cli/arflix/log"
	"github.com/arflix-cli/arflix/selector"
	"github.com/arflix-cli/arflix/source"
)

var (
	// ErrExhausted is returned when no ranked candidate could be started.
	ErrExhausted = errors.New("no compatible source could be played")
	// ErrPlaceholder marks a source shorter than the configured placeholder duration.
	ErrPlaceholder = errors.New("source is a placeholder")
	// ErrLoadTimeout is returned when a source does not become ready within the load timeout.
	ErrLoadTimeout = errors.New("source did not become ready in time")
)

// PlayRanked starts the first candidate of ranked that loads, in order. Each attempt is bounded by
// the configured load timeout. Selection is never re-run: only the given alternatives are tried.
// If the started source fails later, playback moves on to the candidates after it.
// EventSource announces each replacement and an EventError wrapping ErrExhausted ends the session.
func (c *Core) PlayRanked(ctx context.Context, ranked []selector.Classified) (*selector.Classified, error) {
	c.disarm()

	i, err := c.playFrom(ctx, ranked)
	if err != nil {
		return nil, err
	}

	c.arm(ctx, ranked[i+1:])
	return &ranked[i], nil
}

// playFrom returns the index of the first candidate of ranked that started.
func (c *Core) playFrom(ctx context.Context, ranked []selector.Classified) (int, error) {
	var errs []error

	for i := range ranked {
		choice := &ranked[i]

		err := c.attempt(ctx, choice.Candidate)
		if err == nil {
			return i, nil
		}

		if ctx.Err() != nil || errors.Is(err, ErrDestroyed) {
			return 0, err
		}

		log.WithFields(log.Fields{
			"candidate": choice.Candidate.String(),
			"attempt":   i + 1,
			"remaining": len(ranked) - i - 1,
		}).Warnf("falling back to the next source: %v", err)
		errs = append(errs, fmt.Errorf("%s: %w", choice.Candidate, err))
	}

	if len(errs) == 0 {
		return 0, ErrExhausted
	}
	return 0, fmt.Errorf("%w: %w", ErrExhausted, errors.Join(errs...))
}

// fallback holds the candidates left behind the playing source.
type fallback struct {
	ctx  context.Context
	gen  int64
	rest []selector.Classified
}

// arm watches the active engine for errors once its source has started.
func (c *Core) arm(ctx context.Context, rest []selector.Classified) {
	c.mu.Lock()
	f := &fallback{ctx: ctx, gen: c.gen.Load(), rest: rest}
	c.armed = f
	e := c.engine
	c.mu.Unlock()

	// the engine may have failed before the watch was set
	if e.State().Phase == PhaseErrored {
		c.failed(f.gen, errors.New("source failed after it started"))
	}
}

func (c *Core) disarm() {
	c.mu.Lock()
	c.armed = nil
	c.mu.Unlock()
}

// failed starts the fallback armed for the engine of gen, at most once.
func (c *Core) failed(gen int64, cause error) {
	c.mu.Lock()
	f := c.armed
	if f == nil || f.gen != gen || c.destroyed {
		c.mu.Unlock()
		return
	}
	c.armed = nil
	c.resuming.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.resuming.Done()
		c.resume(f, cause)
	}()
}

func (c *Core) resume(f *fallback, cause error) {
	if f.ctx.Err() != nil {
		return
	}

	log.WithFields(log.Fields{
		"remaining": len(f.rest),
	}).Warnf("source failed during playback: %v", cause)

	i, err := c.playFrom(f.ctx, f.rest)
	if err != nil {
		if f.ctx.Err() != nil || errors.Is(err, ErrDestroyed) {
			return
		}
		c.emit(Event{Type: EventError, Err: fmt.Errorf("%w after playback failed: %w", err, cause)})
		return
	}

	choice := &f.rest[i]
	c.arm(f.ctx, f.rest[i+1:])
	c.emit(Event{Type: EventSource, Source: choice})
}

func (c *Core) attempt(ctx context.Context, cand *source.Candidate) error {
	cfg := c.config()

	e, err := c.prepare()
	if err != nil {
		return err
	}

	loadCtx, cancel := ctx, context.CancelFunc(func() {})
	if cfg.LoadTimeout > 0 {
		loadCtx, cancel = context.WithTimeout(ctx, cfg.LoadTimeout)
	}
	defer cancel()

	if err := e.Load(loadCtx, cand); err != nil {
		if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w after %s", ErrLoadTimeout, cfg.LoadTimeout)
		}
		return err
	}

	if placeholder(e.State(), cfg.PlaceholderDuration) {
		return fmt.Errorf("%w: %.0fs long", ErrPlaceholder, e.State().Duration)
	}

	return c.start(e)
}

// placeholder reports whether a source with a known duration is shorter than limit.
func placeholder(s State, limit time.Duration) bool {
	return limit > 0 && s.Duration > 0 && s.Duration < limit.Seconds()
}
