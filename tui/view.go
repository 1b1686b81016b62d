package tui

import (
	"fmt"
	"strings"

	"github.com/arflix-cli/arflix/color"
	"github.com/arflix-cli/arflix/icon"
	"github.com/arflix-cli/arflix/player"
	"github.com/arflix-cli/arflix/style"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wrap"
	"github.com/samber/lo"
)

var (
	listExtraPaddingStyle = lipgloss.NewStyle().Padding(1, 2, 1, 0)
	paddingStyle          = lipgloss.NewStyle().Padding(1, 2)
)

func (b *statefulBubble) View() string {
	var output string

	switch b.state {
	case loadingState:
		output = b.viewLoading()
	case playingState:
		output = b.viewPlaying()
	case tracksState:
		output = b.viewTracks()
	case endedState:
		output = b.viewEnded()
	case errorState:
		output = b.viewError()
	default:
		output = "Unknown state"
	}

	return b.notifier.View(output)
}

func (b *statefulBubble) viewLoading() string {
	return b.renderLines(
		true,
		[]string{
			style.Title("Loading"),
			"",
			b.spinnerC.View() + " " + b.progressStatus,
		},
	)
}

func (b *statefulBubble) viewPlaying() string {
	lines := []string{
		style.Title("Now Playing"),
		"",
		style.Truncate(b.width)(fmt.Sprintf("%s %s", b.phaseIcon(), style.Fg(color.Purple)(b.title()))),
		style.Truncate(b.width)(style.Faint(b.details())),
		"",
		b.progressC.ViewAs(b.status.Progress()) + " " + clock(b.status.CurrentTime) + " / " + clock(b.status.Duration),
		style.Truncate(b.width)(b.tracksLine()),
	}

	if b.cues && len(b.cue) > 0 {
		lines = append(lines, "")
		for _, line := range b.cue {
			lines = append(lines, style.Truncate(b.width)(style.Italic(line)))
		}
	}

	return b.renderLines(true, lines)
}

func (b *statefulBubble) viewTracks() string {
	return listExtraPaddingStyle.Render(b.tracksC.View())
}

func (b *statefulBubble) viewEnded() string {
	return b.renderLines(
		true,
		[]string{
			style.Title("Finished"),
			"",
			style.Truncate(b.width)(fmt.Sprintf("%s %s", icon.Get(icon.Ended), style.Fg(color.Purple)(b.title()))),
		},
	)
}

func (b *statefulBubble) viewError() string {
	errorStyle := style.New().Foreground(style.HiRed).Bold(true)
	errorBody := errorStyle.Render(fmt.Sprintf("Playback failed: %v", b.lastError))
	errorMsg := wrap.String(errorBody, b.width)
	return b.renderLines(
		true,
		append([]string{
			style.ErrorTitle("Error"),
			"",
			icon.Get(icon.Fail) + " No source could be played:",
			"",
		},
			errorMsg,
		),
	)
}

func (b *statefulBubble) title() string {
	if b.choice == nil || b.choice.Candidate == nil {
		return "Unknown"
	}
	return b.choice.Candidate.DisplayTitle()
}

func (b *statefulBubble) phaseIcon() string {
	switch b.status.Phase {
	case player.PhasePaused:
		return style.Fg(style.PausedColor)(icon.Get(icon.Pause))
	case player.PhaseEnded:
		return style.Fg(style.EndedColor)(icon.Get(icon.Ended))
	case player.PhaseLoading:
		return b.spinnerC.View()
	default:
		return style.Fg(style.PlayingColor)(icon.Get(icon.Play))
	}
}

// details summarizes the playing candidate and the engine that plays it.
func (b *statefulBubble) details() string {
	parts := []string{string(b.controller.Kind())}
	if b.choice != nil {
		c := b.choice.Classification
		parts = append(parts, c.Container, c.VideoCodec, c.AudioCodec)
		if c.Resolution > 0 {
			parts = append(parts, fmt.Sprintf("%dp", c.Resolution))
		}
		if c.HDR {
			parts = append(parts, lo.CoalesceOrEmpty(c.HDRFormat, "HDR"))
		}
	}

	volume := fmt.Sprintf("vol %d%%", int(b.status.Volume*100+0.5))
	if b.status.Muted {
		volume = "muted"
	}
	parts = append(parts, volume)

	return strings.Join(lo.Compact(parts), " · ")
}

func (b *statefulBubble) tracksLine() string {
	var parts []string

	if q, ok := b.status.Quality.Get(); ok {
		parts = append(parts, icon.Get(icon.Quality)+" "+q.String())
	}
	if a, ok := b.status.Audio.Get(); ok {
		parts = append(parts, icon.Get(icon.Audio)+" "+(&listItem{internal: a}).Title())
	}
	if t, ok := b.status.Text.Get(); ok {
		parts = append(parts, icon.Get(icon.Subtitle)+" "+(&listItem{internal: t}).Title())
	}
	if b.status.Buffered > 0 {
		parts = append(parts, fmt.Sprintf("buffered %.0f%%", b.status.Buffered*100))
	}

	return strings.Join(parts, "   ")
}

// clock formats seconds as m:ss or h:mm:ss.
func clock(seconds float64) string {
	if seconds <= 0 {
		return "0:00"
	}

	total := int(seconds)
	h, m, s := total/3600, total/60%60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

func (b *statefulBubble) renderLines(addHelp bool, lines []string) string {
	h := len(lines)
	l := strings.Join(lines, "\n")
	if addHelp {
		if b.height > h {
			l += strings.Repeat("\n", b.height-h)
		}
		l += b.helpC.View(b.keymap)
	}

	return paddingStyle.Render(l)
}
