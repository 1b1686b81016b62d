package capability

import (
	"context"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/arflix-cli/arflix/constant"
	"github.com/arflix-cli/arflix/key"
	"github.com/arflix-cli/arflix/log"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/spf13/viper"
)

// EnvPlatform forces the detected platform, ahead of any configuration.
const EnvPlatform = "ARFLIX_PLATFORM"

const probeTimeout = 5 * time.Second

// Override holds user adjustments applied on top of the platform baseline.
type Override struct {
	MaxHeight    int
	Containers   []string
	AudioAllowed []string
	AudioDenied  []string
	VideoAllowed []string
	VideoDenied  []string
}

// Options controls a capability detection run.
type Options struct {
	// Platform skips environment detection when set.
	Platform Platform
	// Prober refines MaxHeight and SupportsHDR. Nil keeps the baseline.
	Prober   Prober
	Override Override
}

var (
	once sync.Once
	memo Capabilities
)

// Get returns the capabilities of this host. The first call detects them; later calls
// return the same snapshot for the rest of the process.
func Get() Capabilities {
	once.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
		defer cancel()

		memo = Detect(ctx, FromConfig())
		log.WithFields(log.Fields{
			"platform":  memo.Platform,
			"maxHeight": memo.MaxHeight,
			"hdr":       memo.SupportsHDR,
		}).Infof("device capabilities detected")
	})
	return memo.Clone()
}

// FromConfig builds detection options from the configuration registry.
func FromConfig() Options {
	var opts Options

	if raw := viper.GetString(key.PlatformOverride); raw != "" {
		if p, err := ParsePlatform(raw); err == nil {
			opts.Platform = p
		} else {
			log.Warnf("ignoring %s: %v", key.PlatformOverride, err)
		}
	}

	if viper.GetBool(key.CapabilityProbe) {
		opts.Prober = NewMPVProber(viper.GetString(key.PlayerMPVPath))
	}

	opts.Override = Override{
		MaxHeight:    viper.GetInt(key.CapabilityMaxHeight),
		Containers:   viper.GetStringSlice(key.CapabilityContainers),
		AudioAllowed: viper.GetStringSlice(key.CapabilityAudioAllow),
		AudioDenied:  viper.GetStringSlice(key.CapabilityAudioDeny),
		VideoAllowed: viper.GetStringSlice(key.CapabilityVideoAllow),
		VideoDenied:  viper.GetStringSlice(key.CapabilityVideoDeny),
	}
	return opts
}

// Detect computes capabilities without memoization.
func Detect(ctx context.Context, opts Options) Capabilities {
	platform := opts.Platform
	if platform == "" {
		platform = DetectPlatform()
	}

	caps := Baseline(platform)
	if platform != Web {
		caps = Refine(ctx, caps, opts.Prober)
	}
	return apply(caps, opts.Override)
}

func apply(caps Capabilities, o Override) Capabilities {
	if list := Canonicalize(o.Containers); len(list) > 0 {
		caps.Containers = list
	}
	if list := Canonicalize(o.AudioAllowed); len(list) > 0 {
		caps.AudioAllowed = list
	}
	if list := Canonicalize(o.VideoAllowed); len(list) > 0 {
		caps.VideoAllowed = list
	}
	caps.AudioDenied = Canonicalize(append(caps.AudioDenied, o.AudioDenied...))
	caps.VideoDenied = Canonicalize(append(caps.VideoDenied, o.VideoDenied...))

	if o.MaxHeight > 0 && o.MaxHeight < caps.MaxHeight {
		caps.MaxHeight = o.MaxHeight
	}
	return caps
}

// hostInfo is swapped in tests.
var hostInfo = host.Info

// DetectPlatform classifies the host from environment signals.
func DetectPlatform() Platform {
	if raw, ok := os.LookupEnv(EnvPlatform); ok {
		if p, err := ParsePlatform(raw); err == nil {
			return p
		}
	}

	switch runtime.GOOS {
	case constant.Android:
		return Android
	case constant.Darwin, "ios":
		return Apple
	case "js", "wasip1":
		return Web
	}

	if _, ok := os.LookupEnv("TERMUX_VERSION"); ok {
		return Android
	}

	if info, err := hostInfo(); err == nil && strings.EqualFold(info.Platform, "android") {
		return Android
	}

	return Desktop
}
