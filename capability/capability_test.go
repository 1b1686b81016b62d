package capability

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/arflix-cli/arflix/key"
	"github.com/shirou/gopsutil/v4/host"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func TestIsSupported(t *testing.T) {
	Convey("Given browser capabilities", t, func() {
		caps := Baseline(Web)

		Convey("Allowed tokens should match case-insensitively", func() {
			So(IsSupported("AAC", caps, KindAudio), ShouldBeTrue)
			So(IsSupported("mp4", caps, KindContainer), ShouldBeTrue)
		})

		Convey("Denied tokens should be unsupported", func() {
			So(IsSupported("dts", caps, KindAudio), ShouldBeFalse)
			So(IsSupported("eac3", caps, KindAudio), ShouldBeFalse)
			So(IsDenied("truehd", caps, KindAudio), ShouldBeTrue)
		})

		Convey("Tokens outside the allow-list should be unsupported", func() {
			So(IsSupported("mkv", caps, KindContainer), ShouldBeFalse)
			So(IsSupported("hevc", caps, KindVideo), ShouldBeFalse)
			So(IsDenied("hevc", caps, KindVideo), ShouldBeFalse)
		})

		Convey("An empty token should not count as unsupported", func() {
			So(IsSupported("", caps, KindAudio), ShouldBeTrue)
		})
	})

	Convey("Given desktop capabilities", t, func() {
		caps := Baseline(Desktop)

		Convey("The wildcard should allow anything", func() {
			So(IsSupported("truehd", caps, KindAudio), ShouldBeTrue)
			So(IsSupported("mkv", caps, KindContainer), ShouldBeTrue)
		})

		Convey("A deny entry should still win over the wildcard", func() {
			caps.AudioDenied = []string{"dts"}
			So(IsSupported("dts", caps, KindAudio), ShouldBeFalse)
			So(IsSupported("aac", caps, KindAudio), ShouldBeTrue)
		})
	})

	Convey("Deny should take precedence over allow for the same token", t, func() {
		caps := Capabilities{AudioAllowed: []string{"aac", "dts"}, AudioDenied: []string{"DTS"}}
		So(IsSupported("dts", caps, KindAudio), ShouldBeFalse)
	})
}

func TestCanonicalize(t *testing.T) {
	Convey("Canonicalize should lowercase, trim and dedupe", t, func() {
		So(Canonicalize([]string{" AAC", "aac", "", "Opus "}), ShouldResemble, []string{"aac", "opus"})
	})
}

func TestRefine(t *testing.T) {
	Convey("Given a desktop baseline", t, func() {
		base := Baseline(Desktop)
		ctx := context.Background()

		Convey("Failing and panicking probes should fall through to a lower height", func() {
			var tried []int
			prober := ProberFunc(func(_ context.Context, s Sample) (bool, error) {
				if s.HDR {
					return false, errors.New("no hdr output")
				}
				tried = append(tried, s.Height)
				switch s.Height {
				case 2160:
					return false, errors.New("decoder missing")
				case 1440:
					panic("driver crashed")
				default:
					return true, nil
				}
			})

			caps := Refine(ctx, base, prober)
			So(caps.MaxHeight, ShouldEqual, 1080)
			So(caps.SupportsHDR, ShouldBeFalse)
			So(tried, ShouldResemble, []int{2160, 1440, 1080})
		})

		Convey("A prober rejecting everything should keep the baseline height", func() {
			caps := Refine(ctx, base, ProberFunc(func(context.Context, Sample) (bool, error) {
				return false, nil
			}))
			So(caps.MaxHeight, ShouldEqual, base.MaxHeight)
		})

		Convey("No prober should keep the baseline untouched", func() {
			So(Refine(ctx, base, nil), ShouldResemble, base)
		})
	})
}

func TestMPVProber(t *testing.T) {
	Convey("Given an mpv build with h264 and hevc decoders", t, func() {
		calls := 0
		prober := &MPVProber{Path: "mpv", run: func(_ context.Context, _ string, args ...string) ([]byte, error) {
			calls++
			if args[len(args)-1] == "--vd=help" {
				return []byte("Video decoders:\n    lavc:h264 - H.264\n    lavc:hevc - HEVC\n"), nil
			}
			return []byte("Available video outputs:\n  gpu\n"), nil
		}}

		Convey("Known decoders should be supported", func() {
			ok, err := prober.Probe(context.Background(), Sample{Codec: "hevc", Height: 2160})
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
		})

		Convey("Missing decoders should be unsupported", func() {
			ok, err := prober.Probe(context.Background(), Sample{Codec: "av1", Height: 2160})
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
		})

		Convey("HDR should require gpu-next", func() {
			ok, _ := prober.Probe(context.Background(), Sample{Codec: "hevc", Height: 2160, HDR: true})
			So(ok, ShouldBeFalse)
		})

		Convey("mpv should only be invoked once per list", func() {
			_, _ = prober.Probe(context.Background(), Sample{Codec: "h264", Height: 1080})
			_, _ = prober.Probe(context.Background(), Sample{Codec: "h264", Height: 720})
			So(calls, ShouldEqual, 2)
		})
	})

	Convey("A missing mpv binary should surface as a probe error", t, func() {
		prober := &MPVProber{Path: "mpv", run: func(context.Context, string, ...string) ([]byte, error) {
			return nil, errors.New("executable file not found")
		}}
		ok, err := prober.Probe(context.Background(), Sample{Codec: "h264", Height: 1080})
		So(ok, ShouldBeFalse)
		So(err, ShouldNotBeNil)
	})
}

func TestDetect(t *testing.T) {
	Convey("Given explicit options", t, func() {
		Convey("Web should skip probing", func() {
			probed := false
			caps := Detect(context.Background(), Options{
				Platform: Web,
				Prober: ProberFunc(func(context.Context, Sample) (bool, error) {
					probed = true
					return true, nil
				}),
			})
			So(probed, ShouldBeFalse)
			So(caps.MaxHeight, ShouldEqual, 1080)
		})

		Convey("Overrides should replace allow-lists, extend deny-lists and cap height", func() {
			caps := Detect(context.Background(), Options{
				Platform: Android,
				Override: Override{
					MaxHeight:    720,
					Containers:   []string{"MP4", "m3u8"},
					AudioAllowed: []string{"aac"},
					AudioDenied:  []string{"eac3", "DTS"},
				},
			})
			So(caps.Containers, ShouldResemble, []string{"mp4", "m3u8"})
			So(caps.AudioAllowed, ShouldResemble, []string{"aac"})
			So(caps.AudioDenied, ShouldResemble, []string{"eac3", "dts"})
			So(caps.MaxHeight, ShouldEqual, 720)
		})
	})

	Convey("DetectPlatform should honor the environment override", t, func() {
		So(os.Setenv(EnvPlatform, "Android"), ShouldBeNil)
		defer os.Unsetenv(EnvPlatform)
		So(DetectPlatform(), ShouldEqual, Android)
	})

	Convey("DetectPlatform should read the host platform", t, func() {
		original := hostInfo
		defer func() { hostInfo = original }()
		hostInfo = func() (*host.InfoStat, error) {
			return &host.InfoStat{Platform: "android"}, nil
		}

		p := DetectPlatform()
		So(p, ShouldBeIn, []Platform{Android, Apple})
	})
}

func TestGet(t *testing.T) {
	Convey("Get should memoize one immutable snapshot", t, func() {
		viper.Set(key.CapabilityProbe, false)
		viper.Set(key.PlatformOverride, "web")

		first := Get()
		first.AudioAllowed[0] = "mutated"
		viper.Set(key.PlatformOverride, "desktop")
		second := Get()

		So(second.Platform, ShouldEqual, Web)
		So(second.AudioAllowed[0], ShouldEqual, "aac")
	})
}
