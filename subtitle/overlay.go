package subtitle

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/exp/slices"
	"golang.org/x/term"
)

// Overlay displays rendered cue text on top of, or next to, the playing video.
type Overlay interface {
	Show(lines []string)
	Clear()
}

// OverlayFunc adapts a function to Overlay. A nil slice means clear.
type OverlayFunc func(lines []string)

func (f OverlayFunc) Show(lines []string) { f(lines) }
func (f OverlayFunc) Clear()              { f(nil) }

const defaultWidth = 80

// WriterOverlay prints cue text to a writer, wrapped to the terminal width.
// Repeated Show calls with the same lines print once.
type WriterOverlay struct {
	mu    sync.Mutex
	w     io.Writer
	width func() int
	last  []string
}

// NewWriterOverlay returns an overlay writing to w. When w is a terminal its width is
// read on every Show; otherwise lines wrap at 80 columns.
func NewWriterOverlay(w io.Writer) *WriterOverlay {
	o := &WriterOverlay{w: w, width: func() int { return defaultWidth }}

	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		o.width = func() int {
			width, _, err := term.GetSize(int(f.Fd()))
			if err != nil || width <= 0 {
				return defaultWidth
			}
			return width
		}
	}

	return o
}

func (o *WriterOverlay) Show(lines []string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if slices.Equal(o.last, lines) {
		return
	}
	o.last = slices.Clone(lines)

	width := o.width()
	wrapped := make([]string, 0, len(lines))
	for _, line := range lines {
		wrapped = append(wrapped, wordwrap.String(line, width))
	}

	_, _ = fmt.Fprintln(o.w, strings.Join(wrapped, "\n"))
}

func (o *WriterOverlay) Clear() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.last = nil
}
