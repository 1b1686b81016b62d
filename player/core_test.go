package player

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/arflix-cli/arflix/capability"
	"github.com/arflix-cli/arflix/selector"
	"github.com/arflix-cli/arflix/source"
	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
)

var ladder = []Quality{
	{ID: "480", Height: 480, Bandwidth: 1_000_000},
	{ID: "720", Height: 720, Bandwidth: 2_500_000},
	{ID: "1080", Height: 1080, Bandwidth: 5_000_000},
}

func newTestCore(cfg Config, behaviors map[string]behavior) (*Core, *fakeFactory) {
	f := &fakeFactory{journal: &journal{}, behaviors: behaviors}
	c, err := newCore(capability.Desktop, f.build, cfg, Options{})
	So(err, ShouldBeNil)
	return c, f
}

func TestCore(t *testing.T) {
	Convey("Given a core with prefer highest and autoplay", t, func() {
		cfg := DefaultConfig()
		cfg.PreferHighestOnStart = true
		cfg.AutoPlay = true

		c, f := newTestCore(cfg, map[string]behavior{
			"https://cdn/a.m3u8": {qualities: ladder, duration: 3600},
			"https://cdn/b.mp4":  {duration: 1200},
		})
		Reset(func() { _ = c.Destroy() })

		Convey("Exactly one engine should be built at construction", func() {
			So(f.built(), ShouldHaveLength, 1)
			So(c.State().Phase, ShouldEqual, PhaseConstructed)
		})

		Convey("Loading a three rung ladder should select 1080p before autoplay", func() {
			So(c.Load(context.Background(), source.New("https://cdn/a.m3u8", "A")), ShouldBeNil)

			j := f.journal
			So(j.index("quality-max"), ShouldBeGreaterThan, j.index("load:https://cdn/a.m3u8"))
			So(j.index("quality:1080"), ShouldBeGreaterThan, j.index("quality-max"))
			So(j.index("play"), ShouldBeGreaterThan, j.index("quality:1080"))

			q, ok := c.State().Quality.Get()
			So(ok, ShouldBeTrue)
			So(q.Height, ShouldEqual, 1080)
			So(c.State().Phase, ShouldEqual, PhasePlaying)
		})

		Convey("Sources without qualities should skip the quality step", func() {
			So(c.Load(context.Background(), source.New("https://cdn/b.mp4", "B")), ShouldBeNil)
			So(f.journal.index("quality-max"), ShouldEqual, -1)
			So(f.journal.index("play"), ShouldBeGreaterThan, -1)
		})

		Convey("Engine events should reach core listeners unchanged and in order", func() {
			r := record(c)
			direct := record(f.built()[0])

			So(c.Load(context.Background(), source.New("https://cdn/a.m3u8", "A")), ShouldBeNil)
			So(waitFor(r.has(EventQualityChanged)), ShouldBeTrue)
			So(waitFor(func() bool { return len(r.types()) == len(direct.types()) && len(direct.types()) >= 7 }), ShouldBeTrue)

			So(r.types(), ShouldResemble, direct.types())
			So(r.types()[:5], ShouldResemble, []EventType{
				EventStateChanged,
				EventLoadStart,
				EventStateChanged,
				EventReady,
				EventTracks,
			})
		})

		Convey("Tracks should never be reported before ready", func() {
			r := record(c)
			So(c.Load(context.Background(), source.New("https://cdn/a.m3u8", "A")), ShouldBeNil)
			So(waitFor(r.has(EventTracks)), ShouldBeTrue)

			types := r.types()
			ready := -1
			for i, typ := range types {
				if typ == EventReady && ready < 0 {
					ready = i
				}
				if typ == EventTracks {
					So(ready, ShouldBeGreaterThan, -1)
					So(i, ShouldBeGreaterThan, ready)
				}
			}
		})

		Convey("Replacing the source should destroy the previous engine first", func() {
			So(c.Load(context.Background(), source.New("https://cdn/a.m3u8", "A")), ShouldBeNil)
			So(c.Load(context.Background(), source.New("https://cdn/b.mp4", "B")), ShouldBeNil)

			engines := f.built()
			So(engines, ShouldHaveLength, 2)
			So(engines[0].State().Phase, ShouldEqual, PhaseDestroyed)

			j := f.journal
			So(j.index("destroy"), ShouldBeLessThan, j.index("load:https://cdn/b.mp4"))
		})

		Convey("Destroy followed by State should not fail nor resume progress events", func() {
			So(c.Load(context.Background(), source.New("https://cdn/a.m3u8", "A")), ShouldBeNil)
			e := f.built()[0]
			r := record(e)

			e.tick(1)
			So(waitFor(r.has(EventTime)), ShouldBeTrue)

			So(c.Destroy(), ShouldBeNil)
			So(c.Destroy(), ShouldBeNil)
			e.tick(2)

			So(c.State().Phase, ShouldEqual, PhaseDestroyed)
			So(c.State().CurrentTime, ShouldEqual, 1)

			So(waitFor(func() bool {
				select {
				case <-e.drained():
					return true
				default:
					return false
				}
			}), ShouldBeTrue)

			events := r.all()
			last := events[len(events)-1]
			So(last.Type, ShouldEqual, EventStateChanged)
			So(last.State.Phase, ShouldEqual, PhaseDestroyed)
			for _, ev := range events {
				So(ev.Time, ShouldNotEqual, 2)
			}

			So(c.Play(), ShouldEqual, ErrDestroyed)
			So(c.Load(context.Background(), source.New("https://cdn/b.mp4", "B")), ShouldEqual, ErrDestroyed)
		})

		Convey("Config updates should apply volume immediately", func() {
			So(c.Load(context.Background(), source.New("https://cdn/b.mp4", "B")), ShouldBeNil)
			c.UpdateConfig(ConfigUpdate{Volume: mo.Some(0.25)})

			So(c.Config().Volume, ShouldEqual, 0.25)
			So(c.State().Volume, ShouldEqual, 0.25)
			So(c.Config().AutoPlay, ShouldBeTrue)
		})
	})

	Convey("Given preferred languages", t, func() {
		cfg := DefaultConfig()
		cfg.AutoPlay = false
		cfg.PreferredAudioLang = "ja"
		cfg.PreferredTextLang = "en"

		c, f := newTestCore(cfg, map[string]behavior{
			"https://cdn/a.mkv": {
				audio: []AudioTrack{{ID: "1", Lang: "eng"}, {ID: "2", Lang: "jpn"}},
				text:  []TextTrack{{ID: "3", Lang: "spa"}, {ID: "4", Label: "English (SDH)"}},
			},
		})
		Reset(func() { _ = c.Destroy() })

		Convey("Tracks matching them should be selected and playback should not start", func() {
			So(c.Load(context.Background(), source.New("https://cdn/a.mkv", "A")), ShouldBeNil)
			So(f.journal.index("audio:2"), ShouldBeGreaterThan, -1)
			So(f.journal.index("text:4"), ShouldBeGreaterThan, -1)
			So(f.journal.index("play"), ShouldEqual, -1)
			So(c.State().Phase, ShouldEqual, PhaseReady)
		})
	})

	Convey("Unknown platforms should be rejected", t, func() {
		_, err := NewCore(capability.Platform("toaster"), DefaultConfig(), Options{})
		So(err, ShouldNotBeNil)
	})
}

func ranked(urls ...string) []selector.Classified {
	out := make([]selector.Classified, len(urls))
	for i, u := range urls {
		c := source.New(u, u)
		c.Index = i
		out[i] = selector.Classified{Candidate: c}
	}
	return out
}

func TestPlayRanked(t *testing.T) {
	Convey("Given ranked candidates with failing alternatives", t, func() {
		cfg := DefaultConfig()
		cfg.LoadTimeout = 50 * time.Millisecond
		cfg.PlaceholderDuration = time.Minute

		c, f := newTestCore(cfg, map[string]behavior{
			"broken":      {err: errors.New("403 forbidden")},
			"stuck":       {block: true},
			"placeholder": {duration: 5},
			"good":        {duration: 3600, qualities: ladder},
			"spare":       {duration: 3600},
		})
		Reset(func() { _ = c.Destroy() })

		Convey("The first candidate that loads should be played", func() {
			choice, err := c.PlayRanked(context.Background(), ranked("broken", "stuck", "placeholder", "good"))
			So(err, ShouldBeNil)
			So(choice.Candidate.URL, ShouldEqual, "good")
			So(c.State().Phase, ShouldEqual, PhasePlaying)

			// one engine per attempt, each destroyed before the next
			So(f.built(), ShouldHaveLength, 4)
			for _, e := range f.built()[:3] {
				So(e.State().Phase, ShouldEqual, PhaseDestroyed)
			}
		})

		Convey("A stuck load should time out instead of blocking", func() {
			start := time.Now()
			_, err := c.PlayRanked(context.Background(), ranked("stuck"))
			So(errors.Is(err, ErrExhausted), ShouldBeTrue)
			So(errors.Is(err, ErrLoadTimeout), ShouldBeTrue)
			So(time.Since(start), ShouldBeLessThan, time.Second)
		})

		Convey("Short sources should be skipped as placeholders", func() {
			_, err := c.PlayRanked(context.Background(), ranked("placeholder"))
			So(errors.Is(err, ErrPlaceholder), ShouldBeTrue)
		})

		Convey("Exhausting every alternative should be reported, not thrown", func() {
			choice, err := c.PlayRanked(context.Background(), ranked("broken", "placeholder"))
			So(choice, ShouldBeNil)
			So(errors.Is(err, ErrExhausted), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "403 forbidden")
		})

		Convey("An empty list should be exhausted immediately", func() {
			_, err := c.PlayRanked(context.Background(), nil)
			So(err, ShouldEqual, ErrExhausted)
			So(f.built(), ShouldHaveLength, 1)
		})

		Convey("A source failing during playback should hand over to the next one", func() {
			r := record(c)
			choice, err := c.PlayRanked(context.Background(), ranked("good", "broken", "spare"))
			So(err, ShouldBeNil)
			So(choice.Candidate.URL, ShouldEqual, "good")

			engines := f.built()
			engines[len(engines)-1].crash(errors.New("stream interrupted"))

			So(waitFor(r.has(EventSource)), ShouldBeTrue)
			for _, ev := range r.all() {
				if ev.Type == EventSource {
					So(ev.Source.Candidate.URL, ShouldEqual, "spare")
				}
			}
			So(c.State().Phase, ShouldEqual, PhasePlaying)

			j := f.journal
			So(j.index("crash"), ShouldBeLessThan, j.index("load:broken"))
			So(j.index("load:broken"), ShouldBeLessThan, j.index("load:spare"))
			So(r.errored(ErrExhausted)(), ShouldBeFalse)
		})

		Convey("A failure with no source left should end the session", func() {
			r := record(c)
			_, err := c.PlayRanked(context.Background(), ranked("broken", "good"))
			So(err, ShouldBeNil)

			engines := f.built()
			engines[len(engines)-1].crash(errors.New("stream interrupted"))

			So(waitFor(r.errored(ErrExhausted)), ShouldBeTrue)
			So(r.has(EventSource)(), ShouldBeFalse)
			So(c.State().Phase, ShouldEqual, PhaseErrored)
		})

		Convey("A replaced source should not fall back on the old one's errors", func() {
			r := record(c)
			_, err := c.PlayRanked(context.Background(), ranked("good", "spare"))
			So(err, ShouldBeNil)
			first := f.built()[len(f.built())-1]

			So(c.Load(context.Background(), source.New("spare", "spare")), ShouldBeNil)
			first.crash(errors.New("late failure"))

			time.Sleep(20 * time.Millisecond)
			So(r.has(EventSource)(), ShouldBeFalse)
			So(f.built(), ShouldHaveLength, 2)
		})

		Convey("A cancelled context should stop the fallback", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := c.PlayRanked(ctx, ranked("stuck", "good"))
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}
