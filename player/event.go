package player

import (
	"fmt"

	"github.com/arflix-cli/arflix/selector"
	"github.com/samber/mo"
)

// EventType tags an Event.
type EventType string

const (
	EventLoadStart      EventType = "loadstart"
	EventReady          EventType = "ready"
	EventCanPlay        EventType = "canplay"
	EventError          EventType = "error"
	EventTracks         EventType = "tracks"
	EventTime           EventType = "time"
	EventBuffer         EventType = "buffer"
	EventQualityChanged EventType = "qualityChanged"
	EventAudioChanged   EventType = "audioChanged"
	EventTextChanged    EventType = "textChanged"
	EventStateChanged   EventType = "stateChanged"
	EventEnded          EventType = "ended"
	EventSeeking        EventType = "seeking"
	EventSeeked         EventType = "seeked"
	// EventCue carries the lines of the active embedded subtitle cue.
	EventCue EventType = "cue"
	// EventSource announces the candidate that replaced a source failing during playback.
	EventSource EventType = "source"
)

// Event is one notification from an engine. Only the fields of its Type are set.
type Event struct {
	Type EventType `json:"type"`

	// Err is set for EventError.
	Err error `json:"-"`
	// Tracks is set for EventTracks.
	Tracks Tracks `json:"tracks,omitempty"`
	// Time and Duration are set for EventTime, in seconds.
	Time     float64 `json:"time,omitempty"`
	Duration float64 `json:"duration,omitempty"`
	// Buffered is set for EventBuffer, 0..1.
	Buffered float64 `json:"buffered,omitempty"`

	Quality mo.Option[Quality]    `json:"quality"`
	Audio   mo.Option[AudioTrack] `json:"audio"`
	Text    mo.Option[TextTrack]  `json:"text"`

	// State is set for EventStateChanged.
	State State `json:"state"`
	// Cue is set for EventCue, empty when no cue is active.
	Cue []string `json:"cue,omitempty"`
	// Source is set for EventSource.
	Source *selector.Classified `json:"source,omitempty"`
}

func (e Event) String() string {
	switch e.Type {
	case EventError:
		return fmt.Sprintf("%s: %v", e.Type, e.Err)
	case EventTime:
		return fmt.Sprintf("%s %.1f/%.1f", e.Type, e.Time, e.Duration)
	case EventBuffer:
		return fmt.Sprintf("%s %.0f%%", e.Type, e.Buffered*100)
	case EventStateChanged:
		return fmt.Sprintf("%s %s", e.Type, e.State.Phase)
	case EventSource:
		if e.Source != nil && e.Source.Candidate != nil {
			return fmt.Sprintf("%s %s", e.Type, e.Source.Candidate)
		}
		return string(e.Type)
	default:
		return string(e.Type)
	}
}

// Periodic reports whether the event is a progress notification, dropped once the engine is destroyed.
func (e Event) Periodic() bool {
	return e.Type == EventTime || e.Type == EventBuffer
}
