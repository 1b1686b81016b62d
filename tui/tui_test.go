package tui

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/arflix-cli/arflix/capability"
	"github.com/arflix-cli/arflix/player"
	"github.com/arflix-cli/arflix/selector"
	"github.com/arflix-cli/arflix/source"
	"github.com/arflix-cli/arflix/subtitle"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
)

// stubController records the calls the view makes.
type stubController struct {
	mu       sync.Mutex
	calls    []string
	cfg      player.Config
	listener player.Listener
	removed  bool

	playErr   error
	attachErr error
	pauseErr  error
	texts     []player.TextTrack
	qualities []player.Quality
}

var _ Controller = (*stubController)(nil)

func (s *stubController) record(call string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call)
}

func (s *stubController) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *stubController) PlayRanked(_ context.Context, ranked []selector.Classified) (*selector.Classified, error) {
	s.record("PlayRanked")
	if s.playErr != nil {
		return nil, s.playErr
	}
	return &ranked[0], nil
}

func (s *stubController) UpdateConfig(u player.ConfigUpdate) { s.cfg = s.cfg.Apply(u) }
func (s *stubController) Config() player.Config              { return s.cfg }

func (s *stubController) Load(context.Context, *source.Candidate) error { return nil }
func (s *stubController) Play() error                                   { s.record("Play"); return nil }
func (s *stubController) Pause() error                                  { s.record("Pause"); return s.pauseErr }
func (s *stubController) Seek(float64) error                            { s.record("Seek"); return nil }
func (s *stubController) SetVolume(float64) error                       { s.record("SetVolume"); return nil }
func (s *stubController) SetMuted(bool) error                           { s.record("SetMuted"); return nil }
func (s *stubController) Qualities() []player.Quality                   { return s.qualities }
func (s *stubController) SetQuality(id string) error                    { s.record("SetQuality " + id); return nil }
func (s *stubController) SetQualityMax() error                          { return player.ErrUnsupported }
func (s *stubController) AudioTracks() []player.AudioTrack              { return nil }
func (s *stubController) SetAudio(id string) error                      { s.record("SetAudio " + id); return nil }
func (s *stubController) TextTracks() []player.TextTrack                { return s.texts }
func (s *stubController) SetText(id string) error                       { s.record("SetText " + id); return nil }

func (s *stubController) AttachExternalSubtitle(_ context.Context, url string, format subtitle.Format, lang, label string) (player.TextTrack, error) {
	s.record("Attach " + url)
	return player.TextTrack{ID: url, Lang: lang, Label: label, Format: format}, s.attachErr
}

func (s *stubController) On(l player.Listener) player.ListenerID {
	s.listener = l
	return "stub"
}

func (s *stubController) Off(player.ListenerID) { s.removed = true }
func (s *stubController) Destroy() error        { return nil }
func (s *stubController) Kind() capability.Platform {
	return capability.Desktop
}

func (s *stubController) State() player.State {
	return player.State{Phase: player.PhaseConstructed, Volume: 1}
}

func runes(k string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func newTestBubble(c *stubController, subs ...Subtitle) *statefulBubble {
	b := newBubble(context.Background(), &Options{
		Controller: c,
		Ranked: []selector.Classified{
			{Candidate: &source.Candidate{URL: "https://cdn/a.m3u8", Title: "Movie"}},
		},
		Subtitles: subs,
		Cues:      true,
	})
	b.resize(120, 40)
	return b
}

func TestPlay(t *testing.T) {
	Convey("Given a bubble with an external subtitle", t, func() {
		c := &stubController{cfg: player.DefaultConfig(), attachErr: errors.New("404")}
		b := newTestBubble(c, Subtitle{URL: "https://subs/en.vtt", Format: subtitle.VTT, Lang: "en"})
		Reset(b.stop)

		So(c.listener, ShouldNotBeNil)
		So(b.state, ShouldEqual, loadingState)

		Convey("Starting playback reports the choice and failed subtitles", func() {
			msg := b.play()()
			started, ok := msg.(playbackStartedMsg)
			So(ok, ShouldBeTrue)
			So(started.choice.Candidate.Title, ShouldEqual, "Movie")
			So(started.warnings, ShouldHaveLength, 1)
			So(c.Calls(), ShouldResemble, []string{"PlayRanked", "Attach https://subs/en.vtt"})

			Convey("And the view switches to playing", func() {
				b.Update(started)
				So(b.state, ShouldEqual, playingState)
				So(b.View(), ShouldContainSubstring, "Movie")
			})
		})

		Convey("A failed start is shown as an error", func() {
			c.playErr = errors.New("all candidates failed")
			msg := b.play()()
			b.Update(msg)
			So(b.state, ShouldEqual, errorState)
			So(b.lastError, ShouldEqual, c.playErr)
			So(b.View(), ShouldContainSubstring, "all candidates failed")
		})
	})
}

func TestEvents(t *testing.T) {
	Convey("Given a playing bubble", t, func() {
		c := &stubController{cfg: player.DefaultConfig()}
		b := newTestBubble(c)
		Reset(b.stop)
		b.Update(playbackStartedMsg{choice: &b.ranked[0]})

		Convey("Time events update the progress", func() {
			b.handleEvent(player.Event{Type: player.EventTime, Time: 65, Duration: 3600})
			So(b.status.CurrentTime, ShouldEqual, 65)
			So(b.status.Duration, ShouldEqual, 3600)
			So(b.View(), ShouldContainSubstring, "1:05 / 1:00:00")
		})

		Convey("Ending switches to the ended view and playing returns", func() {
			b.handleEvent(player.Event{Type: player.EventStateChanged, State: player.State{Phase: player.PhaseEnded}})
			So(b.state, ShouldEqual, endedState)

			b.handleEvent(player.Event{Type: player.EventStateChanged, State: player.State{Phase: player.PhasePlaying, Playing: true}})
			So(b.state, ShouldEqual, playingState)
		})

		Convey("A replacement source is announced and gets the subtitles again", func() {
			b.subtitles = []Subtitle{{URL: "https://subs/en.vtt", Format: subtitle.VTT, Lang: "en"}}
			spare := &selector.Classified{Candidate: &source.Candidate{URL: "https://cdn/b.m3u8", Title: "Movie Spare"}}

			cmd := b.handleEvent(player.Event{Type: player.EventSource, Source: spare})
			So(cmd, ShouldNotBeNil)
			msg := cmd()
			So(msg, ShouldHaveSameTypeAs, playbackStartedMsg{})
			So(c.Calls(), ShouldContain, "Attach https://subs/en.vtt")

			b.Update(msg)
			So(b.choice, ShouldEqual, spare)
			So(b.View(), ShouldContainSubstring, "Movie Spare")
		})

		Convey("Running out of sources shows the error view", func() {
			err := fmt.Errorf("%w after playback failed: stream interrupted", player.ErrExhausted)
			b.handleEvent(player.Event{Type: player.EventError, Err: err})
			So(b.state, ShouldEqual, errorState)
			So(b.lastError, ShouldEqual, err)
		})

		Convey("A recoverable engine error only notifies", func() {
			So(b.handleEvent(player.Event{Type: player.EventError, Err: errors.New("stream interrupted")}), ShouldNotBeNil)
			So(b.state, ShouldEqual, playingState)
			So(b.progressStatus, ShouldEqual, "Trying the next source")
		})

		Convey("Cues are shown while a text track is active", func() {
			b.handleEvent(player.Event{Type: player.EventCue, Cue: []string{"Hello there"}})
			So(b.View(), ShouldContainSubstring, "Hello there")

			So(b.handleEvent(player.Event{Type: player.EventTextChanged}), ShouldNotBeNil)
			So(b.cue, ShouldBeEmpty)
		})

		Convey("Events are forwarded through the buffer", func() {
			c.listener(player.Event{Type: player.EventLoadStart})
			msg := b.waitForEvent()()
			So(msg.(player.Event).Type, ShouldEqual, player.EventLoadStart)
		})

		Convey("Progress events are dropped once the buffer is full", func() {
			for i := 0; i < eventBuffer+10; i++ {
				b.forward(player.Event{Type: player.EventTime})
			}
			So(len(b.events), ShouldEqual, eventBuffer)
		})

		Convey("Stopping releases blocked senders and unsubscribes", func() {
			for i := 0; i < eventBuffer; i++ {
				b.forward(player.Event{Type: player.EventTime})
			}

			sent := make(chan struct{})
			go func() {
				b.forward(player.Event{Type: player.EventEnded})
				close(sent)
			}()

			b.stop()
			b.stop()
			select {
			case <-sent:
			case <-time.After(time.Second):
				t.Fatal("forward did not return after stop")
			}
			So(c.removed, ShouldBeTrue)
		})
	})
}

func TestControls(t *testing.T) {
	Convey("Given a playing bubble", t, func() {
		c := &stubController{
			cfg: player.DefaultConfig(),
			texts: []player.TextTrack{
				{ID: "1", Lang: "en", Label: "English"},
				{ID: "2", Lang: "fr"},
			},
		}
		b := newTestBubble(c)
		Reset(b.stop)
		b.Update(playbackStartedMsg{choice: &b.ranked[0]})
		b.status.Playing = true
		b.status.Duration = 100
		b.status.CurrentTime = 95

		Convey("Space pauses", func() {
			So(b.updatePlaying(tea.KeyMsg{Type: tea.KeySpace})(), ShouldBeNil)
			So(c.Calls(), ShouldContain, "Pause")
		})

		Convey("A control failure becomes a notification", func() {
			c.pauseErr = errors.New("socket closed")
			msg := b.updatePlaying(runes("p"))()
			So(msg, ShouldEqual, "Pause failed: socket closed")
		})

		Convey("Unsupported controls name the engine", func() {
			msg := b.updatePlaying(runes("V"))()
			So(msg, ShouldEqual, "Best quality is not supported by the desktop engine")
		})

		Convey("Seeking is clamped to the duration", func() {
			b.seekBy(seekStep)()
			So(c.Calls(), ShouldContain, "Seek")
		})

		Convey("Subtitle offset moves in steps", func() {
			b.updatePlaying(runes("]"))
			b.updatePlaying(runes("]"))
			b.updatePlaying(runes("["))
			So(c.cfg.SubtitleOffset, ShouldEqual, 100*time.Millisecond)
		})

		Convey("The subtitle list offers off and every track", func() {
			b.status.Text = mo.Some(c.texts[0])
			b.updatePlaying(runes("s"))
			So(b.state, ShouldEqual, tracksState)
			So(b.tracksC.Items(), ShouldHaveLength, 3)
			So(b.tracksC.Items()[1].(*listItem).active, ShouldBeTrue)

			Convey("Selecting a track applies it and goes back", func() {
				b.tracksC.Select(2)
				cmd := b.updateTracks(tea.KeyMsg{Type: tea.KeyEnter})
				So(cmd(), ShouldBeNil)
				So(c.Calls(), ShouldContain, "SetText 2")
				So(b.state, ShouldEqual, playingState)
			})

			Convey("Selecting off disables subtitles", func() {
				b.tracksC.Select(0)
				b.updateTracks(tea.KeyMsg{Type: tea.KeyEnter})()
				So(c.Calls(), ShouldContain, "SetText "+player.TextOff)
			})

			Convey("Escape goes back without changes", func() {
				b.updateTracks(tea.KeyMsg{Type: tea.KeyEsc})
				So(b.state, ShouldEqual, playingState)
			})
		})

		Convey("An empty quality list is reported instead of opened", func() {
			msg := b.updatePlaying(runes("v"))()
			So(msg, ShouldEqual, "No Quality tracks")
			So(b.state, ShouldEqual, playingState)
		})
	})
}

func TestClock(t *testing.T) {
	Convey("Clock formats seconds", t, func() {
		So(clock(0), ShouldEqual, "0:00")
		So(clock(59.9), ShouldEqual, "0:59")
		So(clock(61), ShouldEqual, "1:01")
		So(clock(3725), ShouldEqual, "1:02:05")
	})
}
