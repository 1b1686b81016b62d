package capability

import (
	"context"
	"fmt"

	"github.com/arflix-cli/arflix/log"
)

// Sample is a representative decode configuration offered to a Prober.
type Sample struct {
	Codec  string
	Height int
	HDR    bool
}

func (s Sample) String() string {
	if s.HDR {
		return fmt.Sprintf("%s %dp HDR", s.Codec, s.Height)
	}
	return fmt.Sprintf("%s %dp", s.Codec, s.Height)
}

// Prober answers whether the host can decode a sample configuration.
type Prober interface {
	Probe(ctx context.Context, sample Sample) (bool, error)
}

// ProberFunc adapts a function to the Prober interface.
type ProberFunc func(ctx context.Context, sample Sample) (bool, error)

func (f ProberFunc) Probe(ctx context.Context, sample Sample) (bool, error) {
	return f(ctx, sample)
}

// probeHeights are tried from the top; the first supported one becomes MaxHeight.
var probeHeights = []int{2160, 1440, 1080, 720, 480}

func sampleFor(height int) Sample {
	if height > 1080 {
		return Sample{Codec: "hevc", Height: height}
	}
	return Sample{Codec: "h264", Height: height}
}

// Refine adjusts MaxHeight and SupportsHDR by probing. It never fails:
// probe errors and panics count as unsupported and the next lower height is tried.
// When no height is confirmed the baseline value is kept.
func Refine(ctx context.Context, caps Capabilities, prober Prober) Capabilities {
	if prober == nil {
		return caps
	}

	for _, height := range probeHeights {
		if ctx.Err() != nil {
			return caps
		}
		if safeProbe(ctx, prober, sampleFor(height)) {
			caps.MaxHeight = height
			break
		}
	}

	if ctx.Err() == nil {
		caps.SupportsHDR = safeProbe(ctx, prober, Sample{Codec: "hevc", Height: caps.MaxHeight, HDR: true})
	}

	return caps
}

func safeProbe(ctx context.Context, prober Prober, sample Sample) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Warnf("capability probe for %s panicked: %v", sample, r)
			ok = false
		}
	}()

	supported, err := prober.Probe(ctx, sample)
	if err != nil {
		log.Debugf("capability probe for %s failed: %v", sample, err)
		return false
	}
	return supported
}
