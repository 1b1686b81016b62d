package player

import (
	"github.com/arflix-cli/arflix/subtitle"
)

// Mirror copies the cues of an embedded subtitle track into an overlay.
// Cue events already carry the engine's subtitle delay, so lines are shown as received.
// The overlay is cleared when the track changes or the engine is destroyed.
func Mirror(e Engine, overlay subtitle.Overlay) ListenerID {
	return e.On(func(ev Event) {
		switch ev.Type {
		case EventCue:
			if len(ev.Cue) == 0 {
				overlay.Clear()
				return
			}
			overlay.Show(ev.Cue)
		case EventTextChanged, EventLoadStart:
			overlay.Clear()
		case EventStateChanged:
			if ev.State.Phase == PhaseDestroyed || ev.State.Phase == PhaseEnded {
				overlay.Clear()
			}
		}
	})
}
