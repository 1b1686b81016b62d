package classify

import (
	"strconv"
	"strings"

	"github.com/arflix-cli/arflix/key"
	"github.com/arflix-cli/arflix/log"
	"github.com/spf13/viper"
)

// Weights are the score magnitudes. Only relative ordering matters:
// container support outweighs codec support, which outweighs codec preference,
// and resolution differences outweigh codec preference differences.
type Weights struct {
	ContainerSupported   int
	ContainerUnsupported int
	// AudioPreference grades supported audio codecs; simple, universally decodable codecs rank highest.
	AudioPreference  map[string]int
	AudioDefault     int
	AudioUnsupported int
	VideoSupported   int
	VideoUnsupported int
	// ContainerPreference favors streaming-friendly containers on top of plain support.
	ContainerPreference map[string]int
	// ResolutionMultiplier scales height/10 into the resolution bonus.
	ResolutionMultiplier int
	// HDRUnsupported applies when an HDR stream meets a host without HDR output.
	HDRUnsupported int
	CamPenalty     int
	AdsPenalty     int
	// SeedBonusCap bounds the torrent health bonus so it only separates near-equal candidates.
	SeedBonusCap int
}

// DefaultWeights returns the built-in magnitudes.
func DefaultWeights() Weights {
	return Weights{
		ContainerSupported:   100,
		ContainerUnsupported: -1000,
		AudioPreference: map[string]int{
			"aac":    50,
			"mp3":    45,
			"opus":   40,
			"vorbis": 35,
			"flac":   30,
			"pcm":    25,
			"alac":   25,
			"ac3":    20,
			"eac3":   15,
			"dts":    10,
			"truehd": 5,
		},
		AudioDefault:     10,
		AudioUnsupported: -500,
		VideoSupported:   30,
		VideoUnsupported: -500,
		ContainerPreference: map[string]int{
			"m3u8": 20,
			"mp4":  15,
			"mpd":  10,
			"webm": 10,
		},
		ResolutionMultiplier: 5,
		HDRUnsupported:       -50,
		CamPenalty:           -5000,
		AdsPenalty:           -2000,
		SeedBonusCap:         10,
	}
}

// WeightsFromConfig overlays the configured magnitudes on the defaults.
func WeightsFromConfig() Weights {
	w := DefaultWeights()
	set := func(k string, dst *int) {
		if viper.IsSet(k) {
			*dst = viper.GetInt(k)
		}
	}

	set(key.WeightContainerSupported, &w.ContainerSupported)
	set(key.WeightContainerUnsupported, &w.ContainerUnsupported)
	set(key.WeightAudioUnsupported, &w.AudioUnsupported)
	set(key.WeightVideoSupported, &w.VideoSupported)
	set(key.WeightVideoUnsupported, &w.VideoUnsupported)
	set(key.WeightResolutionMultiplier, &w.ResolutionMultiplier)
	set(key.WeightCamPenalty, &w.CamPenalty)
	set(key.WeightAdsPenalty, &w.AdsPenalty)
	set(key.WeightAudioDefault, &w.AudioDefault)
	set(key.WeightHDRUnsupported, &w.HDRUnsupported)
	set(key.WeightSeedBonusCap, &w.SeedBonusCap)

	overlayPreferences(w.AudioPreference, viper.GetStringSlice(key.WeightAudioPreference))
	overlayPreferences(w.ContainerPreference, viper.GetStringSlice(key.WeightContainerPreference))
	return w
}

// overlayPreferences applies name=score entries to prefs. Malformed entries are skipped.
func overlayPreferences(prefs map[string]int, entries []string) {
	for _, entry := range entries {
		name, value, ok := strings.Cut(entry, "=")
		name = strings.ToLower(strings.TrimSpace(name))
		score, err := strconv.Atoi(strings.TrimSpace(value))
		if !ok || name == "" || err != nil {
			log.Warnf("ignoring weight %q, expected name=score", entry)
			continue
		}
		prefs[name] = score
	}
}
