// Package player drives playback through one contract across heterogeneous external media engines.
//
// Each Engine wraps one host's decoder (mpv, IINA, an Android intent, the browser) and translates
// its native notifications into Event values. Core picks the engine for the host, applies the
// startup policy and re-broadcasts engine events unchanged.
package player

import (
	"context"
	"errors"
	"fmt"

	"github.com/arflix-cli/arflix/capability"
	"github.com/arflix-cli/arflix/source"
	"github.com/arflix-cli/arflix/subtitle"
	"github.com/samber/mo"
)

var (
	// ErrUnsupported is returned by controls the engine cannot perform.
	ErrUnsupported = errors.New("not supported by this engine")
	// ErrDestroyed is returned by every operation after Destroy, except State.
	ErrDestroyed = errors.New("engine destroyed")
	// ErrNotLoaded is returned by controls that need a loaded source.
	ErrNotLoaded = errors.New("no source loaded")
	// ErrEngineExited is reported when the engine process ends on its own.
	ErrEngineExited = errors.New("engine process exited")
)

// TextOff disables every text track when passed to SetText.
const TextOff = ""

// Quality is one selectable video rendition.
type Quality struct {
	ID        string `json:"id"`
	Height    int    `json:"height"`
	Width     int    `json:"width"`
	Bandwidth int    `json:"bandwidth"`
	Codec     string `json:"codec"`
	Label     string `json:"label"`
}

func (q Quality) String() string {
	if q.Label != "" {
		return q.Label
	}
	if q.Height > 0 {
		return fmt.Sprintf("%dp", q.Height)
	}
	return q.ID
}

// AudioTrack is one selectable audio stream.
type AudioTrack struct {
	ID       string `json:"id"`
	Lang     string `json:"lang"`
	Channels int    `json:"channels"`
	Codec    string `json:"codec"`
	Label    string `json:"label"`
	Embedded bool   `json:"embedded"`
}

// TextKind distinguishes regular subtitles from captions and forced tracks.
type TextKind string

const (
	TextSubtitles TextKind = "subtitles"
	TextCaptions  TextKind = "captions"
	TextForced    TextKind = "forced"
)

// TextTrack is one selectable subtitle track, embedded in the container or attached externally.
type TextTrack struct {
	ID       string          `json:"id"`
	Lang     string          `json:"lang"`
	Kind     TextKind        `json:"kind"`
	Format   subtitle.Format `json:"format"`
	Label    string          `json:"label"`
	Embedded bool            `json:"embedded"`
}

// Tracks groups every enumerable track of a loaded source.
type Tracks struct {
	Qualities []Quality    `json:"qualities"`
	Audio     []AudioTrack `json:"audio"`
	Text      []TextTrack  `json:"text"`
}

// Engine is the contract every playback adapter implements.
//
// Operations after Destroy return ErrDestroyed. State never fails and keeps
// returning the last snapshot after Destroy.
type Engine interface {
	Load(ctx context.Context, c *source.Candidate) error
	Play() error
	Pause() error
	Seek(seconds float64) error
	SetVolume(v float64) error
	SetMuted(muted bool) error

	Qualities() []Quality
	SetQuality(id string) error
	// SetQualityMax selects the rendition with the greatest height, then bandwidth.
	SetQualityMax() error

	AudioTracks() []AudioTrack
	SetAudio(id string) error

	TextTracks() []TextTrack
	// SetText shows exactly the track with id, or none for TextOff.
	SetText(id string) error
	AttachExternalSubtitle(ctx context.Context, url string, format subtitle.Format, lang, label string) (TextTrack, error)

	On(l Listener) ListenerID
	Off(id ListenerID)

	Destroy() error
	State() State
	Kind() capability.Platform
}

// Configurable engines accept config updates after construction.
// Updates apply to the next relevant operation.
type Configurable interface {
	UpdateConfig(cfg Config)
}

// highest returns the quality with the greatest height, then bandwidth.
func highest(qualities []Quality) mo.Option[Quality] {
	if len(qualities) == 0 {
		return mo.None[Quality]()
	}

	best := qualities[0]
	for _, q := range qualities[1:] {
		if q.Height > best.Height || (q.Height == best.Height && q.Bandwidth > best.Bandwidth) {
			best = q
		}
	}
	return mo.Some(best)
}
