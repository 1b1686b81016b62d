// Package classify derives a scored compatibility verdict for a stream candidate against the host capabilities.
//
// Classification is a pure function of the candidate and the capabilities. Detection is driven by
// ordered rule tables (see Rules) and scoring by configurable magnitudes (see Weights).
package classify

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/arflix-cli/arflix/capability"
	"github.com/arflix-cli/arflix/source"
	"github.com/samber/lo"
)

// Classification is the derived verdict for one candidate.
// Playable is true exactly when Reasons is empty.
type Classification struct {
	Container  string   `json:"container,omitempty"`
	AudioCodec string   `json:"audioCodec,omitempty"`
	VideoCodec string   `json:"videoCodec,omitempty"`
	Resolution int      `json:"resolution"`
	HDR        bool     `json:"hdr"`
	HDRFormat  string   `json:"hdrFormat,omitempty"`
	Score      int      `json:"score"`
	Playable   bool     `json:"playable"`
	Reasons    []string `json:"reasons"`
	// Flags names the quality markers that lowered the score.
	Flags []string `json:"flags,omitempty"`
}

// nonWebSafe containers are wrappers a restrictive platform cannot demux.
var nonWebSafe = []string{"mkv", "avi", "wmv", "flv", "ts", "mov"}

// Classifier applies a set of rules and weights.
type Classifier struct {
	Rules   Rules
	Weights Weights
}

// New returns a classifier with the default rules and the configured weights.
func New() *Classifier {
	return &Classifier{Rules: DefaultRules, Weights: WeightsFromConfig()}
}

// Classify classifies c with the default rules and the configured weights.
func Classify(c *source.Candidate, caps capability.Capabilities) Classification {
	return New().Classify(c, caps)
}

// Classify never panics: a malformed candidate yields an unplayable classification with a reason.
func (cl *Classifier) Classify(c *source.Candidate, caps capability.Capabilities) (out Classification) {
	out.Reasons = []string{}

	defer func() {
		if r := recover(); r != nil {
			out = Classification{Reasons: []string{fmt.Sprintf("unparseable candidate: %v", r)}}
		}
		out.Playable = len(out.Reasons) == 0
	}()

	if c == nil || strings.TrimSpace(c.URL) == "" {
		out.Reasons = append(out.Reasons, source.ErrNoURL.Error())
		return out
	}

	text := strings.ToLower(c.URL + " " + c.Title)
	title := strings.ToLower(c.Title)

	out.AudioCodec = cl.Rules.Audio.Detect(text)
	out.VideoCodec = cl.Rules.Video.Detect(text)
	out.Container = cl.Rules.Container.Detect(text)
	out.Resolution = height(cl.Rules.Resolution.Detect(text))
	out.HDRFormat = cl.Rules.HDR.Detect(text)
	out.HDR = out.HDRFormat != ""

	cl.applyHints(c, &out)

	out.Flags = lo.Compact([]string{cl.Rules.Cam.Detect(title), cl.Rules.Ads.Detect(title)})
	out.Score = cl.score(c, caps, &out)
	out.Reasons = incompatibilities(caps, out)
	return out
}

var digits = regexp.MustCompile(`\d{3,4}`)

// applyHints fills attributes the text did not reveal from the candidate's declared hints.
func (cl *Classifier) applyHints(c *source.Candidate, out *Classification) {
	if codec, ok := c.Codec.Get(); ok {
		codec = strings.ToLower(codec)
		if out.VideoCodec == "" {
			out.VideoCodec = cl.Rules.Video.Detect(codec)
		}
		if out.AudioCodec == "" {
			out.AudioCodec = cl.Rules.Audio.Detect(codec)
		}
	}

	if quality, ok := c.Quality.Get(); ok && out.Resolution == 0 {
		quality = strings.ToLower(quality)
		out.Resolution = height(cl.Rules.Resolution.Detect(quality))
		if out.Resolution == 0 {
			if n, err := strconv.Atoi(digits.FindString(quality)); err == nil {
				out.Resolution = n
			}
		}
	}

	if hdr, ok := c.HDR.Get(); ok && hdr && !out.HDR {
		out.HDR = true
		out.HDRFormat = "hdr"
	}

	if out.Container == "" {
		switch c.Kind {
		case source.KindHLS:
			out.Container = "m3u8"
		case source.KindDASH:
			out.Container = "mpd"
		}
	}
}

func (cl *Classifier) score(c *source.Candidate, caps capability.Capabilities, out *Classification) int {
	w := cl.Weights
	score := 0

	if out.Container != "" {
		if capability.IsSupported(out.Container, caps, capability.KindContainer) {
			score += w.ContainerSupported + w.ContainerPreference[out.Container]
		} else {
			score += w.ContainerUnsupported
		}
	}

	if out.AudioCodec != "" {
		if capability.IsSupported(out.AudioCodec, caps, capability.KindAudio) {
			pref, ok := w.AudioPreference[out.AudioCodec]
			if !ok {
				pref = w.AudioDefault
			}
			score += pref
		} else {
			score += w.AudioUnsupported
		}
	}

	if out.VideoCodec != "" {
		if capability.IsSupported(out.VideoCodec, caps, capability.KindVideo) {
			score += w.VideoSupported
		} else {
			score += w.VideoUnsupported
		}
	}

	h := out.Resolution
	if caps.MaxHeight > 0 && h > caps.MaxHeight {
		h = caps.MaxHeight
	}
	score += h * w.ResolutionMultiplier / 10

	if out.HDR && !caps.SupportsHDR {
		score += w.HDRUnsupported
	}

	title := strings.ToLower(c.Title)
	if cl.Rules.Cam.Any(title) {
		score += w.CamPenalty
	}
	if cl.Rules.Ads.Any(title) {
		score += w.AdsPenalty
	}

	if seeds, ok := c.Seeds.Get(); ok && seeds > 0 {
		score += min(seeds, w.SeedBonusCap)
	}

	return score
}

func incompatibilities(caps capability.Capabilities, out Classification) []string {
	reasons := []string{}
	platform := caps.Platform
	if platform == "" {
		platform = "this device"
	}

	if out.Container != "" {
		switch {
		case !capability.IsSupported(out.Container, caps, capability.KindContainer):
			reasons = append(reasons, fmt.Sprintf("container %s is not supported on %s", out.Container, platform))
		case caps.Platform.Restrictive() && lo.Contains(nonWebSafe, out.Container):
			reasons = append(reasons, fmt.Sprintf("container %s is not web-safe on %s", out.Container, platform))
		}
	}

	if out.AudioCodec != "" && !capability.IsSupported(out.AudioCodec, caps, capability.KindAudio) {
		verb := "is not supported"
		if capability.IsDenied(out.AudioCodec, caps, capability.KindAudio) {
			verb = "is blocked"
		}
		reasons = append(reasons, fmt.Sprintf("audio codec %s %s on %s", out.AudioCodec, verb, platform))
	}

	if out.VideoCodec != "" && !capability.IsSupported(out.VideoCodec, caps, capability.KindVideo) {
		verb := "is not supported"
		if capability.IsDenied(out.VideoCodec, caps, capability.KindVideo) {
			verb = "is blocked"
		}
		reasons = append(reasons, fmt.Sprintf("video codec %s %s on %s", out.VideoCodec, verb, platform))
	}

	return reasons
}
