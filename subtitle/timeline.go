package subtitle

import (
	"cmp"
	"sync"
	"time"

	"golang.org/x/exp/slices"
)

// Timeline holds the parsed cues of one track sorted by start, plus a manual offset.
// Changing the offset never re-parses or re-fetches.
type Timeline struct {
	mu     sync.RWMutex
	cues   []Cue
	offset time.Duration
}

// NewTimeline copies and sorts cues by start time. Cues with equal starts keep their order.
func NewTimeline(cues []Cue, offset time.Duration) *Timeline {
	sorted := slices.Clone(cues)
	slices.SortStableFunc(sorted, func(a, b Cue) int {
		return cmp.Compare(a.Start, b.Start)
	})

	return &Timeline{cues: sorted, offset: offset}
}

// Offset returns the current shift applied to every cue.
func (t *Timeline) Offset() time.Duration {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.offset
}

// SetOffset shifts every cue by offset. Positive values delay the subtitles.
func (t *Timeline) SetOffset(offset time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.offset = offset
}

// Len returns the number of cues.
func (t *Timeline) Len() int {
	return len(t.cues)
}

// Active returns the cues with start+offset <= at < end+offset, in start order.
func (t *Timeline) Active(at time.Duration) []Cue {
	offset := t.Offset()

	var active []Cue
	for _, c := range t.cues {
		if c.Start+offset > at {
			break
		}
		if c.Contains(at, offset) {
			active = append(active, c)
		}
	}
	return active
}
