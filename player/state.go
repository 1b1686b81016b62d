package player

import (
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// Phase is the lifecycle position of an engine.
type Phase string

const (
	PhaseConstructed Phase = "constructed"
	PhaseLoading     Phase = "loading"
	PhaseReady       Phase = "ready"
	PhasePlaying     Phase = "playing"
	PhasePaused      Phase = "paused"
	PhaseEnded       Phase = "ended"
	PhaseErrored     Phase = "errored"
	PhaseDestroyed   Phase = "destroyed"
)

// transitions lists the phases reachable from each phase, besides errored and destroyed.
var transitions = map[Phase][]Phase{
	PhaseConstructed: {PhaseLoading},
	PhaseLoading:     {PhaseLoading, PhaseReady},
	PhaseReady:       {PhaseLoading, PhasePlaying, PhasePaused, PhaseEnded},
	PhasePlaying:     {PhaseLoading, PhasePaused, PhaseEnded},
	PhasePaused:      {PhaseLoading, PhasePlaying, PhaseEnded},
	PhaseEnded:       {PhaseLoading, PhasePlaying, PhasePaused},
	PhaseErrored:     {PhaseLoading},
}

// CanTransition reports whether an engine in phase p may move to next.
// Errored is reachable from every live phase; destroyed from every phase and is terminal.
func (p Phase) CanTransition(next Phase) bool {
	switch {
	case p == PhaseDestroyed:
		return false
	case next == PhaseDestroyed, next == PhaseErrored:
		return true
	default:
		return lo.Contains(transitions[p], next)
	}
}

// Loaded reports whether a source is ready for playback controls.
func (p Phase) Loaded() bool {
	return lo.Contains([]Phase{PhaseReady, PhasePlaying, PhasePaused, PhaseEnded}, p)
}

// State is a snapshot of an engine. Engines own it; callers only read copies.
type State struct {
	Phase       Phase   `json:"phase"`
	Playing     bool    `json:"playing"`
	CurrentTime float64 `json:"currentTime"`
	Duration    float64 `json:"duration"`
	// Volume is in the range 0..1.
	Volume float64 `json:"volume"`
	Muted  bool    `json:"muted"`
	// Buffered is the fraction of the duration available ahead of decoding, 0..1.
	Buffered float64 `json:"buffered"`

	Quality mo.Option[Quality]    `json:"quality"`
	Audio   mo.Option[AudioTrack] `json:"audio"`
	Text    mo.Option[TextTrack]  `json:"text"`
}

// Progress returns the played fraction, or 0 when the duration is unknown.
func (s State) Progress() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return min(s.CurrentTime/s.Duration, 1)
}
