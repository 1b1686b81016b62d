package style

import "github.com/charmbracelet/lipgloss"

// Surface colors of the status view.
var (
	Base = lipgloss.Color("#1e1e2e")
	Text = lipgloss.Color("#cdd6f4")

	Mauve = lipgloss.Color("#cba6f7")
	Red   = lipgloss.Color("#f38ba8")
	Peach = lipgloss.Color("#fab387")
	Green = lipgloss.Color("#a6e3a1")
	Sky   = lipgloss.Color("#89dceb")
	Gray  = lipgloss.Color("#6c7086")
)

// Semantic colors.
var (
	AccentColor = Mauve
	HiRed       = Red

	PlayingColor = Green
	PausedColor  = Peach
	LoadingColor = Sky
	EndedColor   = Gray
)
