package subtitle

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/exp/slices"
)

// Clock reports the current playback position.
type Clock interface {
	Position() time.Duration
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Duration

func (f ClockFunc) Position() time.Duration { return f() }

// WallClock measures the time elapsed since start. It serves engines that expose no position.
func WallClock(start time.Time) ClockFunc {
	return func() time.Duration {
		return time.Since(start)
	}
}

// DefaultInterval is the polling interval used when a Driver has none.
const DefaultInterval = 100 * time.Millisecond

// Driver pushes the cues active at the clock position into an overlay.
type Driver struct {
	Timeline *Timeline
	Renderer Renderer
	Overlay  Overlay
	Clock    Clock
	Interval time.Duration

	mu    sync.Mutex
	shown []string
}

// Tick updates the overlay for position at. The overlay is only touched when the text changes.
func (d *Driver) Tick(at time.Duration) {
	var lines []string
	for _, c := range d.Timeline.Active(at) {
		lines = append(lines, strings.Split(d.Renderer.Render(c), "\n")...)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if slices.Equal(lines, d.shown) {
		return
	}
	d.shown = lines

	if len(lines) == 0 {
		d.Overlay.Clear()
		return
	}
	d.Overlay.Show(lines)
}

// Reset clears the overlay and forgets what was shown.
func (d *Driver) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.shown = nil
	d.Overlay.Clear()
}

// Run polls the clock until ctx is done, then clears the overlay.
func (d *Driver) Run(ctx context.Context) error {
	interval := d.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	defer d.Reset()

	d.Tick(d.Clock.Position())
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			d.Tick(d.Clock.Position())
		}
	}
}
