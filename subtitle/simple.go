package subtitle

import (
	"fmt"
	"html"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
)

// Simple parses SRT and WebVTT.
//
// Blocks are a timing line followed by text lines. Missing blank-line terminators,
// the WEBVTT header, NOTE and STYLE blocks and cue settings are tolerated.
// Inline markup is stripped; whole-cue italics, bold, underline and font color are kept as Style.
type Simple struct{}

var (
	markup     = regexp.MustCompile(`<[^>\n]*>|\{\\[^}]*\}`)
	fontColor  = regexp.MustCompile(`(?i)<font[^>]*color\s*=\s*["']?#?([0-9a-f]{6})`)
	alignTag   = regexp.MustCompile(`\{\\an([1-9])\}`)
	cueIndexRe = regexp.MustCompile(`^\d+$`)
)

func (Simple) Parse(r io.Reader) ([]Cue, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}

	var (
		cues    []Cue
		current *Cue
		raw     []string
	)

	flush := func() {
		if current != nil && len(raw) > 0 {
			if cue, ok := finish(*current, raw); ok {
				cues = append(cues, cue)
			}
		}
		current, raw = nil, nil
	}

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		nextIsTiming := i+1 < len(lines) && strings.Contains(lines[i+1], "-->")

		switch {
		case strings.Contains(trimmed, "-->"):
			flush()
			start, end, err := parseRange(trimmed)
			if err != nil {
				// the block is dropped, its text lines are skipped until the next timing line
				continue
			}
			current = &Cue{Start: start, End: end}
		case trimmed == "":
			flush()
		case current == nil:
			// header, identifier, NOTE or STYLE content
		case nextIsTiming && (cueIndexRe.MatchString(trimmed) || len(raw) > 0):
			// identifier of the next cue without a separating blank line
			flush()
		default:
			raw = append(raw, trimmed)
		}
	}
	flush()

	if len(cues) == 0 && !recognized(lines) {
		return nil, fmt.Errorf("no cues found")
	}

	return cues, nil
}

func (Simple) Render(c Cue) string {
	return paint(c)
}

// recognized reports whether lines are empty, start with a WEBVTT header or hold a timing line.
func recognized(lines []string) bool {
	if len(lines) == 0 || strings.HasPrefix(strings.TrimSpace(lines[0]), "WEBVTT") {
		return true
	}
	return lo.SomeBy(lines, func(l string) bool {
		return strings.Contains(l, "-->")
	})
}

func parseRange(line string) (start, end time.Duration, err error) {
	from, to, _ := strings.Cut(line, "-->")

	start, err = parseClock(from)
	if err != nil {
		return
	}

	// VTT cue settings follow the end timestamp
	fields := strings.Fields(to)
	if len(fields) == 0 {
		return 0, 0, fmt.Errorf("missing end timestamp in %q", line)
	}

	end, err = parseClock(fields[0])
	if err != nil {
		return
	}

	if end < start {
		return 0, 0, fmt.Errorf("cue ends before it starts: %q", line)
	}

	return
}

func finish(cue Cue, raw []string) (Cue, bool) {
	joined := strings.ToLower(strings.Join(raw, "\n"))

	cue.Style = Style{
		Bold:      strings.Contains(joined, "<b>") || strings.Contains(joined, `{\b1}`),
		Italic:    strings.Contains(joined, "<i>") || strings.Contains(joined, `{\i1}`),
		Underline: strings.Contains(joined, "<u>") || strings.Contains(joined, `{\u1}`),
		Alignment: BottomCenter,
	}

	if m := fontColor.FindStringSubmatch(joined); m != nil {
		cue.Style.Color = "#" + m[1]
	}

	if m := alignTag.FindStringSubmatch(joined); m != nil {
		n, _ := strconv.Atoi(m[1])
		cue.Style.Alignment = Alignment(n)
	}

	for _, line := range raw {
		line = strings.TrimSpace(html.UnescapeString(markup.ReplaceAllString(line, "")))
		if line != "" {
			cue.Lines = append(cue.Lines, line)
		}
	}

	return cue, len(cue.Lines) > 0
}
