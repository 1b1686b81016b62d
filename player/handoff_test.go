package player

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/arflix-cli/arflix/capability"
	"github.com/arflix-cli/arflix/network"
	"github.com/arflix-cli/arflix/source"
	"github.com/arflix-cli/arflix/subtitle"
	. "github.com/smartystreets/goconvey/convey"
)

// subtitleServer serves one long cue per path and counts the requests per path.
type subtitleServer struct {
	*httptest.Server

	mu   sync.Mutex
	hits map[string]int
}

func newSubtitleServer(cues map[string]string) *subtitleServer {
	s := &subtitleServer{hits: make(map[string]int)}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[r.URL.Path]++
		s.mu.Unlock()

		text, ok := cues[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("1\n00:00:00,000 --> 01:00:00,000\n" + text + "\n"))
	}))
	return s
}

func (s *subtitleServer) requests(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

func TestHandoff(t *testing.T) {
	Convey("Given a handoff engine with an injected launcher", t, func() {
		srv := newSubtitleServer(map[string]string{
			"/en.srt": "Hello",
			"/fr.srt": "Bonjour",
		})

		var (
			launchMu sync.Mutex
			launched []string
			launchOK atomic.Bool
		)
		launchOK.Store(true)
		launch := func(_ context.Context, c *source.Candidate, target string) error {
			launchMu.Lock()
			defer launchMu.Unlock()
			if !launchOK.Load() {
				return errors.New("no handler for video/*")
			}
			launched = append(launched, target)
			return nil
		}

		overlay := &screen{}
		fetcher := &subtitle.Fetcher{Client: srv.Client(), Lifetime: time.Hour, Dir: t.TempDir()}
		h := newHandoff(capability.Android, launch, DefaultConfig(), Options{Fetcher: fetcher, Overlay: overlay})

		Reset(func() {
			_ = h.Destroy()
			srv.Close()
		})

		r := record(h)
		c := source.New("https://cdn.example/movie.mp4", "Movie")

		Convey("Loading should hand the target over and synthesize the lifecycle", func() {
			So(h.Load(context.Background(), c), ShouldBeNil)

			launchMu.Lock()
			So(launched, ShouldResemble, []string{c.URL})
			launchMu.Unlock()

			So(h.State().Phase, ShouldEqual, PhaseReady)
			So(waitFor(r.has(EventCanPlay)), ShouldBeTrue)

			types := r.types()
			ready := slices.Index(types, EventReady)
			So(ready, ShouldBeGreaterThan, slices.Index(types, EventLoadStart))
			So(types[ready:ready+3], ShouldResemble, []EventType{EventReady, EventTracks, EventCanPlay})

			So(h.Play(), ShouldBeNil)
			So(h.State().Phase, ShouldEqual, PhasePlaying)
		})

		Convey("Controls the external application owns should be unsupported", func() {
			So(h.Load(context.Background(), c), ShouldBeNil)

			So(h.Pause(), ShouldEqual, ErrUnsupported)
			So(h.Seek(30), ShouldEqual, ErrUnsupported)
			So(h.SetVolume(0.5), ShouldEqual, ErrUnsupported)
			So(h.SetMuted(true), ShouldEqual, ErrUnsupported)
			So(h.SetQuality("1080"), ShouldEqual, ErrUnsupported)
			So(h.SetQualityMax(), ShouldEqual, ErrUnsupported)
			So(h.SetAudio("1"), ShouldEqual, ErrUnsupported)
			So(h.Qualities(), ShouldBeEmpty)
			So(h.AudioTracks(), ShouldBeEmpty)

			So(h.Destroy(), ShouldBeNil)
			So(h.Pause(), ShouldEqual, ErrDestroyed)
			So(h.Play(), ShouldEqual, ErrDestroyed)
		})

		Convey("A launcher failure should fail the load", func() {
			launchOK.Store(false)

			err := h.Load(context.Background(), c)
			So(err, ShouldNotBeNil)
			So(h.State().Phase, ShouldEqual, PhaseErrored)
			So(waitFor(r.has(EventError)), ShouldBeTrue)
			So(r.types(), ShouldNotContain, EventReady)
		})

		Convey("Once loaded with two attached subtitles", func() {
			So(h.Load(context.Background(), c), ShouldBeNil)

			en, err := h.AttachExternalSubtitle(context.Background(), srv.URL+"/en.srt", subtitle.SRT, "en", "")
			So(err, ShouldBeNil)
			fr, err := h.AttachExternalSubtitle(context.Background(), srv.URL+"/fr.srt", "", "fr", "Français")
			So(err, ShouldBeNil)

			So(h.TextTracks(), ShouldHaveLength, 2)
			So(fr.Format, ShouldEqual, subtitle.SRT)
			So(fr.Label, ShouldEqual, "Français")

			Convey("Only the selected track should reach the overlay", func() {
				So(h.SetText(en.ID), ShouldBeNil)
				So(waitFor(overlay.shows("Hello")), ShouldBeTrue)

				So(h.SetText(fr.ID), ShouldBeNil)
				So(waitFor(overlay.shows("Bonjour")), ShouldBeTrue)

				overlay.mu.Lock()
				switched := len(overlay.frames)
				overlay.mu.Unlock()

				time.Sleep(5 * subtitle.DefaultInterval)

				overlay.mu.Lock()
				after := slices.Clone(overlay.frames[switched:])
				overlay.mu.Unlock()
				for _, frame := range after {
					So(slices.Equal(frame, []string{"Hello"}), ShouldBeFalse)
				}
				So(overlay.showing(), ShouldResemble, []string{"Bonjour"})

				text, ok := h.State().Text.Get()
				So(ok, ShouldBeTrue)
				So(text.ID, ShouldEqual, fr.ID)
			})

			Convey("Turning subtitles off should clear the overlay", func() {
				So(h.SetText(en.ID), ShouldBeNil)
				So(waitFor(overlay.shows("Hello")), ShouldBeTrue)

				So(h.SetText(TextOff), ShouldBeNil)
				So(overlay.showing(), ShouldBeNil)
				So(h.State().Text.IsPresent(), ShouldBeFalse)
			})

			Convey("Changing the offset should shift cues without fetching again", func() {
				So(h.SetText(en.ID), ShouldBeNil)
				So(waitFor(overlay.shows("Hello")), ShouldBeTrue)

				cfg := DefaultConfig()
				cfg.SubtitleOffset = 2 * time.Hour
				h.UpdateConfig(cfg)
				So(waitFor(overlay.shows()), ShouldBeTrue)

				cfg.SubtitleOffset = 0
				h.UpdateConfig(cfg)
				So(waitFor(overlay.shows("Hello")), ShouldBeTrue)

				So(srv.requests("/en.srt"), ShouldEqual, 1)
			})

			Convey("A subtitle that cannot be fetched should only fail its own attach", func() {
				So(h.Play(), ShouldBeNil)
				So(waitFor(func() bool {
					return slices.ContainsFunc(r.all(), func(ev Event) bool {
						return ev.Type == EventStateChanged && ev.State.Phase == PhasePlaying
					})
				}), ShouldBeTrue)
				before := len(r.all())

				_, err := h.AttachExternalSubtitle(context.Background(), srv.URL+"/missing.srt", subtitle.SRT, "de", "")
				var status *network.StatusError
				So(errors.As(err, &status), ShouldBeTrue)
				So(status.Status, ShouldEqual, http.StatusNotFound)

				So(h.State().Phase, ShouldEqual, PhasePlaying)
				So(h.TextTracks(), ShouldHaveLength, 2)

				time.Sleep(20 * time.Millisecond)
				for _, ev := range r.all()[before:] {
					So(ev.Type, ShouldNotEqual, EventError)
					So(ev.Type, ShouldNotEqual, EventStateChanged)
				}
			})

			Convey("Destroy should stop the showing track", func() {
				So(h.SetText(en.ID), ShouldBeNil)
				So(waitFor(overlay.shows("Hello")), ShouldBeTrue)

				So(h.Destroy(), ShouldBeNil)
				So(overlay.showing(), ShouldBeNil)
				So(h.TextTracks(), ShouldBeEmpty)
			})
		})
	})
}

func TestMirror(t *testing.T) {
	Convey("Given an engine mirrored into an overlay", t, func() {
		f := &fakeFactory{journal: &journal{}, behaviors: map[string]behavior{"good": {duration: 60}}}
		e, _ := f.build(DefaultConfig(), Options{})
		engine := e.(*fakeEngine)
		Reset(func() { _ = engine.Destroy() })

		overlay := &screen{}
		id := Mirror(engine, overlay)
		So(engine.Load(context.Background(), source.New("good", "good")), ShouldBeNil)

		Convey("Cues should be shown and cleared as they change", func() {
			engine.emit(Event{Type: EventCue, Cue: []string{"Hello", "there"}})
			So(waitFor(overlay.shows("Hello", "there")), ShouldBeTrue)

			engine.emit(Event{Type: EventCue})
			So(waitFor(overlay.shows()), ShouldBeTrue)
		})

		Convey("Switching tracks should clear the last cue", func() {
			engine.emit(Event{Type: EventCue, Cue: []string{"Hello"}})
			So(waitFor(overlay.shows("Hello")), ShouldBeTrue)

			engine.emit(Event{Type: EventTextChanged})
			So(waitFor(overlay.shows()), ShouldBeTrue)
		})

		Convey("Destroying the engine should clear the overlay", func() {
			engine.emit(Event{Type: EventCue, Cue: []string{"Hello"}})
			So(waitFor(overlay.shows("Hello")), ShouldBeTrue)

			So(engine.Destroy(), ShouldBeNil)
			So(waitFor(overlay.shows()), ShouldBeTrue)
		})

		Convey("Removing the mirror should leave the overlay alone", func() {
			engine.Off(id)
			engine.emit(Event{Type: EventCue, Cue: []string{"Hello"}})
			time.Sleep(20 * time.Millisecond)
			So(overlay.showing(), ShouldBeNil)
		})
	})
}
