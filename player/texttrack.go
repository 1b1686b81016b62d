package player

import (
	"context"
	"fmt"
	"path"
	"strconv"
	"sync"
	"time"

	"github.com/arflix-cli/arflix/log"
	"github.com/arflix-cli/arflix/subtitle"
	"github.com/samber/lo"
)

type attachedText struct {
	track    TextTrack
	timeline *subtitle.Timeline
	renderer subtitle.Renderer
}

// externalText drives attached subtitle files from a clock, for engines without native subtitle support.
// At most one track is showing.
type externalText struct {
	fetcher *subtitle.Fetcher
	overlay subtitle.Overlay
	clock   subtitle.Clock

	mu      sync.Mutex
	tracks  []*attachedText
	offset  time.Duration
	seq     int
	showing string
	cancel  context.CancelFunc
	done    chan struct{}
}

func newExternalText(fetcher *subtitle.Fetcher, overlay subtitle.Overlay, clock subtitle.Clock, offset time.Duration) *externalText {
	if overlay == nil {
		overlay = subtitle.OverlayFunc(func([]string) {})
	}
	return &externalText{
		fetcher: fetcher,
		overlay: overlay,
		clock:   clock,
		offset:  offset,
	}
}

func (x *externalText) attach(ctx context.Context, rawURL string, format subtitle.Format, lang, label string) (TextTrack, error) {
	if format == "" {
		f, err := subtitle.FormatOf(rawURL)
		if err != nil {
			return TextTrack{}, err
		}
		format = f
	}

	cues, err := x.fetcher.Load(ctx, rawURL, format)
	if err != nil {
		return TextTrack{}, fmt.Errorf("load subtitle: %w", err)
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	x.seq++
	track := TextTrack{
		ID:     "external-" + strconv.Itoa(x.seq),
		Lang:   lang,
		Kind:   TextSubtitles,
		Format: format,
		Label:  lo.CoalesceOrEmpty(label, lang, path.Base(rawURL)),
	}
	x.tracks = append(x.tracks, &attachedText{
		track:    track,
		timeline: subtitle.NewTimeline(cues, x.offset),
		renderer: subtitle.For(format),
	})

	log.Infof("attached %s subtitle %q with %d cues", format, track.Label, len(cues))
	return track, nil
}

func (x *externalText) list() []TextTrack {
	x.mu.Lock()
	defer x.mu.Unlock()
	return lo.Map(x.tracks, func(a *attachedText, _ int) TextTrack { return a.track })
}

// show stops the current track before starting id. TextOff only stops.
func (x *externalText) show(id string) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	var next *attachedText
	if id != TextOff {
		t, ok := lo.Find(x.tracks, func(a *attachedText) bool { return a.track.ID == id })
		if !ok {
			return fmt.Errorf("unknown text track %q", id)
		}
		next = t
	}

	x.stopLocked()
	if next == nil {
		return nil
	}

	driver := &subtitle.Driver{
		Timeline: next.timeline,
		Renderer: next.renderer,
		Overlay:  x.overlay,
		Clock:    x.clock,
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = driver.Run(ctx)
	}()

	x.showing = id
	x.cancel = cancel
	x.done = done
	return nil
}

func (x *externalText) stopLocked() {
	if x.cancel == nil {
		return
	}
	x.cancel()
	<-x.done
	x.cancel = nil
	x.done = nil
	x.showing = TextOff
}

// setOffset shifts every attached track without re-parsing.
func (x *externalText) setOffset(offset time.Duration) {
	x.mu.Lock()
	defer x.mu.Unlock()

	x.offset = offset
	for _, t := range x.tracks {
		t.timeline.SetOffset(offset)
	}
}

// close stops the showing track and forgets every attached one.
func (x *externalText) close() {
	x.mu.Lock()
	defer x.mu.Unlock()

	x.stopLocked()
	x.tracks = nil
}
