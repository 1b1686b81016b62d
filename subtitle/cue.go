// Package subtitle parses, times and renders subtitle cues for display next to an external engine.
//
// Parsing happens once per track. Timing is handled by Timeline, display by an Overlay,
// and Driver ties them to the playback clock.
package subtitle

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/samber/mo"
)

// Format is a subtitle file format.
type Format string

const (
	SRT Format = "srt"
	VTT Format = "vtt"
	ASS Format = "ass"
)

// Formats lists every supported format.
func Formats() []Format {
	return []Format{SRT, VTT, ASS}
}

// ParseFormat converts a format name or a file extension. "ssa" is accepted as ASS.
func ParseFormat(s string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".") {
	case "srt", "subrip":
		return SRT, nil
	case "vtt", "webvtt":
		return VTT, nil
	case "ass", "ssa":
		return ASS, nil
	default:
		return "", fmt.Errorf("unsupported subtitle format %q", s)
	}
}

// FormatOf guesses the format from the extension of a URL or path.
func FormatOf(rawURL string) (Format, error) {
	p := rawURL
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	return ParseFormat(path.Ext(p))
}

// Extension returns the file extension for f, including the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// Alignment uses numpad positions: 1 is bottom left, 5 is middle center, 9 is top right.
type Alignment int

const (
	BottomLeft Alignment = iota + 1
	BottomCenter
	BottomRight
	MiddleLeft
	MiddleCenter
	MiddleRight
	TopLeft
	TopCenter
	TopRight
)

// Top reports whether the alignment anchors the cue to the top of the frame.
func (a Alignment) Top() bool {
	return a >= TopLeft
}

// Point is a script-space position.
type Point struct {
	X, Y float64
}

// Style is the presentation of a cue after override tags have been applied.
type Style struct {
	Bold      bool
	Italic    bool
	Underline bool
	// Color is a "#rrggbb" string, empty for the overlay default.
	Color     string
	Alignment Alignment
	Position  mo.Option[Point]
}

// Cue is a timed block of subtitle text with markup removed.
type Cue struct {
	Start time.Duration
	End   time.Duration
	Lines []string
	Style Style
}

// Text returns the cue lines joined by newlines.
func (c Cue) Text() string {
	return strings.Join(c.Lines, "\n")
}

// Contains reports whether t falls inside the cue shifted by offset.
func (c Cue) Contains(t, offset time.Duration) bool {
	return c.Start+offset <= t && t < c.End+offset
}
