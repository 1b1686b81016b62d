package tui

import (
	"errors"
	"fmt"
	"time"

	"github.com/arflix-cli/arflix/internal/ui"
	"github.com/arflix-cli/arflix/log"
	"github.com/arflix-cli/arflix/player"
	"github.com/arflix-cli/arflix/selector"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/mo"
)

const (
	seekStep   = 10.0
	volumeStep = 0.05
	offsetStep = 100 * time.Millisecond
)

// playbackStartedMsg reports the candidate that is playing and the subtitles that failed to attach.
type playbackStartedMsg struct {
	choice   *selector.Classified
	warnings []string
}

func (b *statefulBubble) play() tea.Cmd {
	return func() tea.Msg {
		log.Infof("starting playback of %d ranked sources", len(b.ranked))

		choice, err := b.controller.PlayRanked(b.ctx, b.ranked)
		if err != nil {
			return err
		}

		return playbackStartedMsg{choice: choice, warnings: b.attachSubtitles()}
	}
}

// replaced re-attaches the subtitles once a failing source has been replaced by choice.
func (b *statefulBubble) replaced(choice *selector.Classified) tea.Cmd {
	return func() tea.Msg {
		log.Infof("source replaced by %s", choice.Candidate)
		return playbackStartedMsg{choice: choice, warnings: b.attachSubtitles()}
	}
}

// attachSubtitles adds the external subtitles to the playing source and returns a warning per failure.
func (b *statefulBubble) attachSubtitles() []string {
	var warnings []string
	for _, s := range b.subtitles {
		if _, err := b.controller.AttachExternalSubtitle(b.ctx, s.URL, s.Format, s.Lang, s.Label); err != nil {
			log.Warnf("attach subtitle %s: %s", s.URL, err)
			warnings = append(warnings, fmt.Sprintf("Subtitle %s: %s", s.URL, err))
		}
	}
	return warnings
}

func (b *statefulBubble) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		select {
		case ev := <-b.events:
			return ev
		case <-b.done:
			return nil
		}
	}
}

// control runs fn off the UI loop and reports its failure as a notification.
func (b *statefulBubble) control(what string, fn func() error) tea.Cmd {
	return func() tea.Msg {
		err := fn()
		switch {
		case err == nil:
			return nil
		case errors.Is(err, player.ErrUnsupported):
			return fmt.Sprintf("%s is not supported by the %s engine", what, b.controller.Kind())
		default:
			log.Warnf("%s: %s", what, err)
			return fmt.Sprintf("%s failed: %s", what, err)
		}
	}
}

func (b *statefulBubble) togglePlay() tea.Cmd {
	if b.status.Playing {
		return b.control("Pause", b.controller.Pause)
	}
	return b.control("Play", b.controller.Play)
}

func (b *statefulBubble) seekBy(delta float64) tea.Cmd {
	target := max(b.status.CurrentTime+delta, 0)
	if b.status.Duration > 0 {
		target = min(target, b.status.Duration)
	}
	return b.control("Seek", func() error { return b.controller.Seek(target) })
}

func (b *statefulBubble) volumeBy(delta float64) tea.Cmd {
	volume := min(max(b.status.Volume+delta, 0), 1)
	b.status.Volume = volume
	return b.control("Volume", func() error { return b.controller.SetVolume(volume) })
}

func (b *statefulBubble) toggleMute() tea.Cmd {
	muted := !b.status.Muted
	b.status.Muted = muted
	return b.control("Mute", func() error { return b.controller.SetMuted(muted) })
}

func (b *statefulBubble) replay() tea.Cmd {
	return b.control("Replay", func() error {
		if err := b.controller.Seek(0); err != nil {
			return err
		}
		return b.controller.Play()
	})
}

// shiftSubtitles moves subtitles by delta and reports the resulting offset.
func (b *statefulBubble) shiftSubtitles(delta time.Duration) tea.Cmd {
	offset := b.controller.Config().SubtitleOffset + delta
	b.controller.UpdateConfig(player.ConfigUpdate{SubtitleOffset: mo.Some(offset)})
	return ui.Notify(fmt.Sprintf("Subtitle offset %+.1fs", offset.Seconds()))
}

// openTracks fills the track list with the tracks of kind, marking the active one.
func (b *statefulBubble) openTracks(kind trackKind) tea.Cmd {
	var items []list.Item

	switch kind {
	case qualityTracks:
		active, _ := b.status.Quality.Get()
		for _, q := range b.controller.Qualities() {
			items = append(items, &listItem{internal: q, active: q.ID == active.ID && b.status.Quality.IsPresent()})
		}
	case audioTracks:
		active, _ := b.status.Audio.Get()
		for _, a := range b.controller.AudioTracks() {
			items = append(items, &listItem{internal: a, active: a.ID == active.ID && b.status.Audio.IsPresent()})
		}
	case textTracks:
		active, ok := b.status.Text.Get()
		items = append(items, &listItem{internal: textOff{}, active: !ok})
		for _, t := range b.controller.TextTracks() {
			items = append(items, &listItem{internal: t, active: ok && t.ID == active.ID})
		}
	}

	if len(items) == 0 {
		return ui.Notify(fmt.Sprintf("No %s tracks", kind))
	}

	b.tracks = kind
	b.tracksC.Title = kind.String()
	cmd := b.tracksC.SetItems(items)
	b.tracksC.ResetSelected()
	b.newState(tracksState)
	return cmd
}

func (b *statefulBubble) selectTrack() tea.Cmd {
	item, ok := b.tracksC.SelectedItem().(*listItem)
	if !ok {
		return nil
	}

	id := item.id()
	b.previousState()

	switch b.tracks {
	case qualityTracks:
		return b.control("Quality", func() error { return b.controller.SetQuality(id) })
	case audioTracks:
		return b.control("Audio", func() error { return b.controller.SetAudio(id) })
	default:
		return b.control("Subtitles", func() error { return b.controller.SetText(id) })
	}
}

// handleEvent folds an engine event into the view state and returns a notification, if any.
func (b *statefulBubble) handleEvent(ev player.Event) tea.Cmd {
	notify := func(format string, args ...any) tea.Cmd {
		return ui.Notify(fmt.Sprintf(format, args...))
	}

	switch ev.Type {
	case player.EventLoadStart:
		b.cue = nil
		b.progressStatus = "Loading source"
	case player.EventError:
		switch {
		case ev.Err == nil:
		case errors.Is(ev.Err, player.ErrExhausted):
			b.cue = nil
			b.raiseError(ev.Err)
		default:
			b.progressStatus = "Trying the next source"
			return notify("Engine error: %s", ev.Err)
		}
	case player.EventSource:
		if ev.Source != nil {
			return b.replaced(ev.Source)
		}
	case player.EventTime:
		b.status.CurrentTime = ev.Time
		if ev.Duration > 0 {
			b.status.Duration = ev.Duration
		}
	case player.EventBuffer:
		b.status.Buffered = ev.Buffered
	case player.EventStateChanged:
		b.status = ev.State
		switch ev.State.Phase {
		case player.PhaseEnded:
			b.cue = nil
			b.newState(endedState)
		case player.PhasePlaying, player.PhasePaused:
			if b.state == endedState {
				b.previousState()
			}
		}
	case player.EventQualityChanged:
		b.status.Quality = ev.Quality
		if q, ok := ev.Quality.Get(); ok {
			return notify("Quality %s", q)
		}
	case player.EventAudioChanged:
		b.status.Audio = ev.Audio
		if a, ok := ev.Audio.Get(); ok {
			return notify("Audio %s", (&listItem{internal: a}).Title())
		}
	case player.EventTextChanged:
		b.status.Text = ev.Text
		b.cue = nil
		if t, ok := ev.Text.Get(); ok {
			return notify("Subtitles %s", (&listItem{internal: t}).Title())
		}
		return notify("Subtitles off")
	case player.EventCue:
		b.cue = ev.Cue
	}

	return nil
}
