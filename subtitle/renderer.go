package subtitle

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/arflix-cli/arflix/style"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"
)

// Renderer parses one subtitle format into cues and renders cues for the overlay.
type Renderer interface {
	Parse(r io.Reader) ([]Cue, error)
	Render(c Cue) string
}

// For returns the renderer for the declared format. Unknown formats get the simple renderer.
func For(f Format) Renderer {
	if f == ASS {
		return Styled{}
	}
	return Simple{}
}

// Parse decodes data with the renderer for f.
func Parse(f Format, data []byte) ([]Cue, error) {
	cues, err := For(f).Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", f, err)
	}
	return cues, nil
}

// paint renders every cue line with the cue style.
func paint(c Cue) string {
	if st := c.Style; !st.Bold && !st.Italic && !st.Underline && st.Color == "" {
		return c.Text()
	}

	s := style.New().
		Bold(c.Style.Bold).
		Italic(c.Style.Italic).
		Underline(c.Style.Underline)

	if c.Style.Color != "" {
		s = s.Foreground(lipgloss.Color(c.Style.Color))
	}

	return strings.Join(lo.Map(c.Lines, func(line string, _ int) string {
		return s.Render(line)
	}), "\n")
}

// readLines splits r into lines without line terminators or a leading byte order mark.
func readLines(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), "\r"))
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(lines) > 0 {
		lines[0] = strings.TrimPrefix(lines[0], "\ufeff")
	}

	return lines, nil
}

// parseClock reads "hh:mm:ss.fff", "mm:ss.fff" and "h:mm:ss.cc" timestamps.
// A comma is accepted as the fraction separator.
func parseClock(s string) (time.Duration, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	clock, frac, _ := strings.Cut(s, ".")

	parts := strings.Split(clock, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid timestamp %q", s)
	}

	var total time.Duration
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid timestamp %q", s)
		}
		total = total*60 + time.Duration(n)*time.Second
	}

	if frac != "" {
		// fraction digits beyond milliseconds carry no display meaning
		frac = (frac + "000")[:3]
		ms, err := strconv.Atoi(frac)
		if err != nil {
			return 0, fmt.Errorf("invalid timestamp %q", s)
		}
		total += time.Duration(ms) * time.Millisecond
	}

	return total, nil
}
