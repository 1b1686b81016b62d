// Package tui provides the playback status view: it starts the ranked candidates and maps keys to engine controls.
package tui

import (
	"context"

	"github.com/arflix-cli/arflix/player"
	"github.com/arflix-cli/arflix/selector"
	"github.com/arflix-cli/arflix/subtitle"
	tea "github.com/charmbracelet/bubbletea"
)

// Controller is the playback session driven by the view.
type Controller interface {
	player.Engine
	PlayRanked(ctx context.Context, ranked []selector.Classified) (*selector.Classified, error)
	UpdateConfig(u player.ConfigUpdate)
	Config() player.Config
}

var _ Controller = (*player.Core)(nil)

// Subtitle is an external subtitle attached once playback has started.
type Subtitle struct {
	URL    string
	Format subtitle.Format
	Lang   string
	Label  string
}

// Options encapsulates the runtime configuration for the terminal user interface.
type Options struct {
	Controller Controller
	Ranked     []selector.Classified
	Subtitles  []Subtitle
	// Cues shows subtitle cue text under the status.
	Cues bool
}

// Run starts playback of the ranked candidates and blocks until the user quits.
// It returns the playback error when no candidate could be started.
func Run(ctx context.Context, options *Options) error {
	bubble := newBubble(ctx, options)
	defer bubble.stop()

	if _, err := tea.NewProgram(bubble, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return err
	}

	if bubble.choice == nil {
		return bubble.lastError
	}
	return nil
}
