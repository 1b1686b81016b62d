package selector

import (
	"math"
	"slices"
	"testing"

	"github.com/arflix-cli/arflix/capability"
	"github.com/arflix-cli/arflix/classify"
	"github.com/arflix-cli/arflix/source"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

func newSelector() *Selector {
	return &Selector{Classifier: &classify.Classifier{Rules: classify.DefaultRules, Weights: classify.DefaultWeights()}}
}

func candidates(titles ...string) []*source.Candidate {
	return lo.Map(titles, func(title string, i int) *source.Candidate {
		c := source.New("https://cdn.example.com/stream/"+title, title)
		c.Index = i
		return c
	})
}

func TestSelectBest(t *testing.T) {
	s := newSelector()

	Convey("Given restrictive capabilities", t, func() {
		caps := capability.Capabilities{
			Platform:     capability.Web,
			Containers:   []string{"mp4", "m3u8"},
			AudioAllowed: []string{"aac"},
			AudioDenied:  []string{"eac3", "dts"},
		}

		Convey("A compatible 1080p source should beat an incompatible 2160p one", func() {
			best, ok := s.SelectBest(candidates("Movie.1080p.x264.AAC", "Movie.2160p.x265.DTS"), caps)
			So(ok, ShouldBeTrue)
			So(best.Candidate.Title, ShouldEqual, "Movie.1080p.x264.AAC")
			So(best.Playable, ShouldBeTrue)
		})

		Convey("No candidate should be selected when none is playable", func() {
			best, ok := s.SelectBest(candidates("Movie.2160p.x265.DTS", "Movie.1080p.EAC3"), caps)
			So(ok, ShouldBeFalse)
			So(best, ShouldBeNil)
		})

		Convey("An empty list should select nothing", func() {
			_, ok := s.SelectBest(nil, caps)
			So(ok, ShouldBeFalse)
		})
	})

	Convey("A cam release should rank below a clean one", t, func() {
		caps := capability.Baseline(capability.Desktop)
		ranked := s.Rank(candidates("Movie.CAM.x264.AAC", "Movie.1080p.x264.AAC"), caps)
		So(ranked, ShouldHaveLength, 2)
		So(ranked[0].Candidate.Title, ShouldEqual, "Movie.1080p.x264.AAC")
	})

	Convey("The selection should never be unplayable", t, func() {
		caps := capability.Baseline(capability.Web)
		pool := candidates(
			"Movie.2160p.x265.TrueHD",
			"Movie.1080p.x264.DTS",
			"Movie.720p.x264.AAC",
			"Movie.480p.x264",
			"Movie.mkv.1080p",
		)
		for i := range pool {
			best, ok := s.SelectBest(pool[i:], caps)
			playable := lo.SomeBy(s.ClassifyAll(pool[i:], caps), func(c Classified) bool {
				return c.Playable
			})
			So(ok, ShouldEqual, playable)
			if ok {
				So(best.Playable, ShouldBeTrue)
			}
		}
	})
}

func TestLowSignal(t *testing.T) {
	s := newSelector()
	caps := capability.Baseline(capability.Desktop)

	Convey("Trailers should be dropped when real sources exist", t, func() {
		best, ok := s.SelectBest(candidates("Movie.Official.Trailer.2160p", "Movie.720p.x264"), caps)
		So(ok, ShouldBeTrue)
		So(best.Candidate.Title, ShouldEqual, "Movie.720p.x264")
	})

	Convey("Trailers should be kept when nothing else is playable", t, func() {
		best, ok := s.SelectBest(candidates("Movie.Sample.720p", "Movie.Teaser.1080p"), caps)
		So(ok, ShouldBeTrue)
		So(best.Candidate.Title, ShouldEqual, "Movie.Teaser.1080p")
	})

	Convey("LowSignal should not match words that merely contain the markers", t, func() {
		So(LowSignal("Movie.Preview.1080p"), ShouldBeTrue)
		So(LowSignal("The.Trailers.Park.Boys"), ShouldBeTrue)
		So(LowSignal("Sampler.Of.Stories"), ShouldBeFalse)
	})
}

func TestLegacyAudio(t *testing.T) {
	s := newSelector()

	Convey("Given a native platform allowing passthrough audio", t, func() {
		caps := capability.Baseline(capability.Android)

		Convey("Sources confirmed by the legacy audio check should be preferred", func() {
			ranked := s.Rank(candidates("Movie.2160p.x265.DTS", "Movie.720p.x264.AAC"), caps)
			So(ranked, ShouldHaveLength, 2)
			So(ranked[0].Candidate.Title, ShouldEqual, "Movie.720p.x264.AAC")
			So(ranked[1].Candidate.Title, ShouldEqual, "Movie.2160p.x265.DTS")
		})

		Convey("The full playable set should be used when no source passes", func() {
			best, ok := s.SelectBest(candidates("Movie.1080p.x265.DTS", "Movie.2160p.x265.TrueHD"), caps)
			So(ok, ShouldBeTrue)
			So(best.Candidate.Title, ShouldEqual, "Movie.2160p.x265.TrueHD")
		})
	})

	Convey("LegacyAudioCheck should let unknown codecs through", t, func() {
		So(LegacyAudioCheck("", capability.Web), ShouldBeTrue)
		So(LegacyAudioCheck("aac", capability.Web), ShouldBeTrue)
		So(LegacyAudioCheck("ac3", capability.Web), ShouldBeFalse)
		So(LegacyAudioCheck("truehd", capability.Desktop), ShouldBeTrue)
	})
}

func TestDeterminism(t *testing.T) {
	s := newSelector()
	caps := capability.Baseline(capability.Desktop)

	Convey("Equal scores should keep the first seen candidate first", t, func() {
		pool := candidates("Movie.1080p.x264.AAC.A", "Movie.1080p.x264.AAC.B", "Movie.1080p.x264.AAC.C")
		ranked := s.Rank(pool, caps)
		So(lo.Map(ranked, func(c Classified, _ int) int { return c.Candidate.Index }), ShouldResemble, []int{0, 1, 2})
	})

	Convey("ClassifyAll should preserve input order", t, func() {
		pool := candidates("Movie.480p", "Movie.2160p", "Movie.720p")
		classified := s.ClassifyAll(pool, caps)
		So(lo.Map(classified, func(c Classified, _ int) int { return c.Resolution }), ShouldResemble, []int{480, 2160, 720})
	})

	Convey("Ranking should be repeatable", t, func() {
		pool := candidates("Movie.720p.x264.AAC", "Movie.1080p.HEVC.Opus", "Movie.CAM.x264", "Movie.480p")
		first := s.Rank(pool, caps)
		second := s.Rank(pool, caps)
		So(second, ShouldResemble, first)
	})
}

func TestByScore(t *testing.T) {
	Convey("Scores far apart should still order best first", t, func() {
		high := Classified{Classification: classify.Classification{Score: math.MaxInt}}
		low := Classified{Classification: classify.Classification{Score: math.MinInt + 1}}

		So(ByScore(high, low), ShouldBeLessThan, 0)
		So(ByScore(low, high), ShouldBeGreaterThan, 0)
		So(ByScore(low, low), ShouldEqual, 0)

		pool := []Classified{low, high, {Classification: classify.Classification{Score: -5}}}
		slices.SortStableFunc(pool, ByScore)
		So(lo.Map(pool, func(c Classified, _ int) int { return c.Score }), ShouldResemble, []int{math.MaxInt, -5, math.MinInt + 1})
	})
}
