package classify

import (
	"testing"

	"github.com/arflix-cli/arflix/capability"
	"github.com/arflix-cli/arflix/key"
	"github.com/arflix-cli/arflix/source"
	"github.com/google/go-cmp/cmp"
	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func candidate(title string) *source.Candidate {
	return source.New("https://cdn.example.com/stream/42", title)
}

func TestDetection(t *testing.T) {
	cl := &Classifier{Rules: DefaultRules, Weights: DefaultWeights()}
	caps := capability.Baseline(capability.Desktop)

	Convey("Given release-style titles", t, func() {
		Convey("Specific audio tokens should win over generic ones", func() {
			So(cl.Classify(candidate("Movie.2160p.WEB-DL.DDP5.1.Atmos.H.265"), caps).AudioCodec, ShouldEqual, "eac3")
			So(cl.Classify(candidate("Movie.1080p.BluRay.TrueHD.7.1.x264"), caps).AudioCodec, ShouldEqual, "truehd")
			So(cl.Classify(candidate("Movie.1080p.BluRay.DTS-HD.MA.5.1.x264"), caps).AudioCodec, ShouldEqual, "dts")
			So(cl.Classify(candidate("Movie.720p.HDTV.DD5.1.x264"), caps).AudioCodec, ShouldEqual, "ac3")
			So(cl.Classify(candidate("Movie.720p.WEB.AAC2.0.x264"), caps).AudioCodec, ShouldEqual, "aac")
		})

		Convey("Video codecs should be canonicalized", func() {
			So(cl.Classify(candidate("Movie.1080p.x265"), caps).VideoCodec, ShouldEqual, "hevc")
			So(cl.Classify(candidate("Movie.1080p.H.264"), caps).VideoCodec, ShouldEqual, "h264")
			So(cl.Classify(candidate("Movie 1080p AV1 Opus"), caps).VideoCodec, ShouldEqual, "av1")
		})

		Convey("Named HDR formats should be detected as a unit", func() {
			c := cl.Classify(candidate("Movie.2160p.Dolby.Vision.HDR10.x265"), caps)
			So(c.HDR, ShouldBeTrue)
			So(c.HDRFormat, ShouldEqual, "dolby vision")
			So(cl.Classify(candidate("Movie.2160p.HDR10+.x265"), caps).HDRFormat, ShouldEqual, "hdr10+")
			So(cl.Classify(candidate("Movie.2160p.HDR.x265"), caps).HDRFormat, ShouldEqual, "hdr")
		})

		Convey("Containers should be read from the URL", func() {
			c := cl.Classify(source.New("https://cdn.example.com/hls/master.m3u8?token=1", "Movie"), caps)
			So(c.Container, ShouldEqual, "m3u8")
			c = cl.Classify(source.New("https://cdn.example.com/files/movie.mkv", "Movie"), caps)
			So(c.Container, ShouldEqual, "mkv")
		})

		Convey("Resolution buckets should be detected", func() {
			So(cl.Classify(candidate("Movie.4K.x265"), caps).Resolution, ShouldEqual, 2160)
			So(cl.Classify(candidate("Movie.1080p"), caps).Resolution, ShouldEqual, 1080)
			So(cl.Classify(candidate("Movie"), caps).Resolution, ShouldEqual, 0)
		})
	})

	Convey("Given declared hints", t, func() {
		c := candidate("Movie")
		c.Codec = mo.Some("HEVC")
		c.Quality = mo.Some("720")
		c.HDR = mo.Some(true)
		c.Kind = source.KindHLS

		Convey("Hints should fill attributes the text did not reveal", func() {
			got := cl.Classify(c, caps)
			So(got.VideoCodec, ShouldEqual, "hevc")
			So(got.Resolution, ShouldEqual, 720)
			So(got.HDR, ShouldBeTrue)
			So(got.Container, ShouldEqual, "m3u8")
		})

		Convey("Text detection should take precedence over hints", func() {
			c.Title = "Movie.1080p.x264"
			got := cl.Classify(c, caps)
			So(got.VideoCodec, ShouldEqual, "h264")
			So(got.Resolution, ShouldEqual, 1080)
		})
	})
}

func TestPlayability(t *testing.T) {
	cl := &Classifier{Rules: DefaultRules, Weights: DefaultWeights()}
	web := capability.Baseline(capability.Web)

	Convey("Given browser capabilities", t, func() {
		Convey("A denied audio codec should be unplayable with a matching reason", func() {
			for _, title := range []string{"Movie.1080p.x264.DTS", "Movie.1080p.x264.EAC3", "Movie.1080p.x264.TrueHD"} {
				got := cl.Classify(candidate(title), web)
				So(got.Playable, ShouldBeFalse)
				So(got.Reasons, ShouldHaveLength, 1)
				So(got.Reasons[0], ShouldContainSubstring, got.AudioCodec)
				So(got.Reasons[0], ShouldContainSubstring, "blocked")
			}
		})

		Convey("A title without codec tokens should be playable", func() {
			got := cl.Classify(candidate("Some Movie"), web)
			So(got.Playable, ShouldBeTrue)
			So(got.Reasons, ShouldBeEmpty)
			So(got.Reasons, ShouldNotBeNil)
			So(got.AudioCodec, ShouldBeEmpty)
			So(got.VideoCodec, ShouldBeEmpty)
		})

		Convey("Every simultaneous failure should be reported", func() {
			c := source.New("https://cdn.example.com/movie.mkv", "Movie.2160p.x265.DTS")
			got := cl.Classify(c, web)
			So(got.Playable, ShouldBeFalse)
			So(got.Reasons, ShouldHaveLength, 3)
		})

		Convey("A non web-safe wrapper should fail even when containers are not restricted", func() {
			caps := web.Clone()
			caps.Containers = []string{capability.Wildcard}
			got := cl.Classify(source.New("https://cdn.example.com/movie.mkv", "Movie"), caps)
			So(got.Playable, ShouldBeFalse)
			So(got.Reasons[0], ShouldContainSubstring, "web-safe")
		})
	})

	Convey("Given desktop capabilities, mkv with DTS should be playable", t, func() {
		got := cl.Classify(source.New("https://cdn.example.com/movie.mkv", "Movie.2160p.x265.DTS"), capability.Baseline(capability.Desktop))
		So(got.Playable, ShouldBeTrue)
	})

	Convey("A malformed candidate should be unplayable without panicking", t, func() {
		So(func() { cl.Classify(nil, web) }, ShouldNotPanic)
		got := cl.Classify(nil, web)
		So(got.Playable, ShouldBeFalse)
		So(got.Reasons, ShouldNotBeEmpty)

		got = cl.Classify(source.New("  ", "Movie"), web)
		So(got.Playable, ShouldBeFalse)
	})
}

func TestScore(t *testing.T) {
	cl := &Classifier{Rules: DefaultRules, Weights: DefaultWeights()}
	caps := capability.Baseline(capability.Android)

	Convey("Classification should be idempotent", t, func() {
		c := source.New("https://cdn.example.com/movie.mp4", "Movie.2160p.HDR10.x265.DDP5.1")
		first := cl.Classify(c, caps)
		second := cl.Classify(c, caps)
		So(cmp.Diff(first, second), ShouldBeEmpty)
	})

	Convey("Score should be monotonic in resolution", t, func() {
		for _, codec := range []string{"x264.AAC", "x265.DTS", "", "AV1.Opus"} {
			low := cl.Classify(candidate("Movie.480p."+codec), caps)
			mid := cl.Classify(candidate("Movie.720p."+codec), caps)
			high := cl.Classify(candidate("Movie.1080p."+codec), caps)
			So(high.Score, ShouldBeGreaterThanOrEqualTo, mid.Score)
			So(mid.Score, ShouldBeGreaterThanOrEqualTo, low.Score)
		}
	})

	Convey("Resolution above the host maximum should not earn extra score", t, func() {
		capped := caps.Clone()
		capped.MaxHeight = 1080
		uhd := cl.Classify(candidate("Movie.2160p.x264.AAC"), capped)
		fhd := cl.Classify(candidate("Movie.1080p.x264.AAC"), capped)
		So(uhd.Score, ShouldEqual, fhd.Score)
	})

	Convey("A cam release should rank strictly lower", t, func() {
		cam := cl.Classify(candidate("Movie.CAM.x264.AAC"), caps)
		clean := cl.Classify(candidate("Movie.1080p.x264.AAC"), caps)
		So(cam.Playable, ShouldBeTrue)
		So(cam.Flags, ShouldContain, "cam")
		So(clean.Score, ShouldBeGreaterThan, cam.Score)
	})

	Convey("Embedded advertisements should be penalized", t, func() {
		ads := cl.Classify(candidate("Movie.1080p.x264.AAC.With.Ads"), caps)
		clean := cl.Classify(candidate("Movie.1080p.x264.AAC"), caps)
		So(clean.Score-ads.Score, ShouldEqual, -DefaultWeights().AdsPenalty)
	})

	Convey("Container support should outweigh resolution", t, func() {
		web := capability.Baseline(capability.Web)
		mp4 := cl.Classify(source.New("https://cdn.example.com/a.mp4", "Movie.720p"), web)
		mkv := cl.Classify(source.New("https://cdn.example.com/a.mkv", "Movie.1080p"), web)
		So(mp4.Score, ShouldBeGreaterThan, mkv.Score)
	})

	Convey("Simple audio codecs should be preferred", t, func() {
		aac := cl.Classify(candidate("Movie.1080p.x264.AAC"), caps)
		dts := cl.Classify(candidate("Movie.1080p.x264.DTS"), caps)
		So(aac.Score, ShouldBeGreaterThan, dts.Score)
	})

	Convey("Seeds should separate otherwise equal candidates without beating resolution", t, func() {
		seeded := candidate("Movie.720p.x264.AAC")
		seeded.Seeds = mo.Some(5000)
		bare := candidate("Movie.720p.x264.AAC")
		better := candidate("Movie.1080p.x264.AAC")

		So(cl.Classify(seeded, caps).Score, ShouldBeGreaterThan, cl.Classify(bare, caps).Score)
		So(cl.Classify(better, caps).Score, ShouldBeGreaterThan, cl.Classify(seeded, caps).Score)
	})
}

func TestWeightsFromConfig(t *testing.T) {
	Convey("Given configured weights", t, func() {
		Reset(viper.Reset)

		Convey("Unset keys keep the built-in magnitudes", func() {
			So(cmp.Diff(WeightsFromConfig(), DefaultWeights()), ShouldBeEmpty)
		})

		Convey("Every magnitude can be tuned", func() {
			viper.Set(key.WeightAudioDefault, 3)
			viper.Set(key.WeightHDRUnsupported, -900)
			viper.Set(key.WeightSeedBonusCap, 40)
			viper.Set(key.WeightAudioPreference, []string{"opus=60", "DTS = 1"})
			viper.Set(key.WeightContainerPreference, []string{"mkv=5"})

			w := WeightsFromConfig()
			So(w.AudioDefault, ShouldEqual, 3)
			So(w.HDRUnsupported, ShouldEqual, -900)
			So(w.SeedBonusCap, ShouldEqual, 40)
			So(w.AudioPreference["opus"], ShouldEqual, 60)
			So(w.AudioPreference["dts"], ShouldEqual, 1)
			So(w.AudioPreference["aac"], ShouldEqual, 50)
			So(w.ContainerPreference["mkv"], ShouldEqual, 5)
			So(w.ContainerPreference["m3u8"], ShouldEqual, 20)
		})

		Convey("Malformed preference entries are skipped", func() {
			viper.Set(key.WeightAudioPreference, []string{"opus", "=4", "flac=lots", "mp3=1"})

			w := WeightsFromConfig()
			So(w.AudioPreference, ShouldNotContainKey, "")
			So(w.AudioPreference["opus"], ShouldEqual, 40)
			So(w.AudioPreference["flac"], ShouldEqual, 30)
			So(w.AudioPreference["mp3"], ShouldEqual, 1)
		})

		Convey("Tuned preferences change the ranking", func() {
			viper.Set(key.WeightAudioPreference, []string{"dts=500"})
			cl := &Classifier{Rules: DefaultRules, Weights: WeightsFromConfig()}
			caps := capability.Baseline(capability.Android)

			aac := cl.Classify(candidate("Movie.1080p.x264.AAC"), caps)
			dts := cl.Classify(candidate("Movie.1080p.x264.DTS"), caps)
			So(dts.Score, ShouldBeGreaterThan, aac.Score)
		})
	})
}
