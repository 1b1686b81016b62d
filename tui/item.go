package tui

import (
	"fmt"
	"strings"

	"github.com/arflix-cli/arflix/icon"
	"github.com/arflix-cli/arflix/player"
	"github.com/arflix-cli/arflix/style"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"
)

// textOff is the list entry that disables subtitles.
type textOff struct{}

// listItem implements the list.Item interface, wrapping engine tracks for display.
type listItem struct {
	internal any
	active   bool
}

func (t *listItem) id() string {
	switch e := t.internal.(type) {
	case player.Quality:
		return e.ID
	case player.AudioTrack:
		return e.ID
	case player.TextTrack:
		return e.ID
	default:
		return player.TextOff
	}
}

func (t *listItem) Title() (title string) {
	switch e := t.internal.(type) {
	case player.Quality:
		title = e.String()
	case player.AudioTrack:
		title = lo.CoalesceOrEmpty(e.Label, e.Lang, "Track "+e.ID)
	case player.TextTrack:
		title = lo.CoalesceOrEmpty(e.Label, e.Lang, "Track "+e.ID)
	case textOff:
		title = "Off"
	}

	if t.active {
		title = fmt.Sprintf("%s %s", title, lipgloss.NewStyle().Bold(true).Foreground(style.AccentColor).Render(icon.Get(icon.Playable)))
	}
	return
}

func (t *listItem) Description() string {
	var parts []string

	switch e := t.internal.(type) {
	case player.Quality:
		if e.Bandwidth > 0 {
			parts = append(parts, fmt.Sprintf("%.1f Mbps", float64(e.Bandwidth)/1e6))
		}
		parts = append(parts, e.Codec)
	case player.AudioTrack:
		parts = append(parts, e.Lang, e.Codec)
		if e.Channels > 0 {
			parts = append(parts, fmt.Sprintf("%d ch", e.Channels))
		}
	case player.TextTrack:
		parts = append(parts, e.Lang, string(e.Kind), string(e.Format))
		if !e.Embedded {
			parts = append(parts, "external")
		}
	case textOff:
		parts = append(parts, "hide subtitles")
	}

	return style.Faint(strings.Join(lo.Compact(parts), " · "))
}

func (t *listItem) FilterValue() string {
	return t.Title()
}
