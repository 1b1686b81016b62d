package tui

import (
	"context"
	"sync"
	"time"

	"github.com/arflix-cli/arflix/internal/ui"
	"github.com/arflix-cli/arflix/player"
	"github.com/arflix-cli/arflix/selector"
	"github.com/arflix-cli/arflix/style"
	"github.com/arflix-cli/arflix/util"
	"github.com/charmbracelet/bubbles/help"
	bubblesKey "github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// eventBuffer bounds the engine events waiting for the UI loop. Progress events beyond it are dropped.
const eventBuffer = 64

// statefulBubble encapsulates the playback view state and its component models.
type statefulBubble struct {
	state         state
	statesHistory util.Stack[state]
	keymap        *statefulKeymap

	spinnerC  spinner.Model
	progressC progress.Model
	tracksC   list.Model
	helpC     help.Model

	ctx        context.Context
	controller Controller
	ranked     []selector.Classified
	subtitles  []Subtitle
	cues       bool

	events   chan player.Event
	done     chan struct{}
	stopOnce sync.Once
	listener player.ListenerID

	choice         *selector.Classified
	status         player.State
	cue            []string
	tracks         trackKind
	progressStatus string
	lastError      error

	width, height int
	notifier      *ui.Model
}

func (b *statefulBubble) raiseError(err error) {
	b.lastError = err
	b.newState(errorState)
}

func (b *statefulBubble) setState(s state) {
	b.state = s
	b.keymap.setState(s)
}

// newState transitions to s, recording the previous state unless it was transient.
func (b *statefulBubble) newState(s state) {
	if b.state == s {
		return
	}

	if b.state != loadingState {
		b.statesHistory.Push(b.state)
	}

	b.setState(s)
}

func (b *statefulBubble) previousState() {
	if b.statesHistory.Len() > 0 {
		b.setState(b.statesHistory.Pop())
	}
}

func (b *statefulBubble) resize(width, height int) {
	x, y := paddingStyle.GetFrameSize()
	xx, yy := listExtraPaddingStyle.GetFrameSize()

	listWidth := width - xx
	listHeight := height - yy

	b.tracksC.SetSize(listWidth, listHeight)
	b.tracksC.Help.Width = listWidth

	b.progressC.Width = listWidth - 20
	b.helpC.Width = listWidth

	b.width = width - x
	b.height = height - y
}

// forward runs on the engine dispatch goroutine and hands events to the UI loop.
func (b *statefulBubble) forward(ev player.Event) {
	if ev.Periodic() {
		select {
		case b.events <- ev:
		default:
		}
		return
	}

	select {
	case b.events <- ev:
	case <-b.done:
	}
}

// stop detaches from the controller. Safe to call more than once.
func (b *statefulBubble) stop() {
	b.stopOnce.Do(func() {
		close(b.done)
		b.controller.Off(b.listener)
	})
}

func (b *statefulBubble) Init() tea.Cmd {
	return tea.Batch(b.spinnerC.Tick, b.play(), b.waitForEvent())
}

func newBubble(ctx context.Context, options *Options) *statefulBubble {
	keymap := newStatefulKeymap()
	bubble := &statefulBubble{
		statesHistory: util.Stack[state]{},
		keymap:        keymap,

		ctx:        ctx,
		controller: options.Controller,
		ranked:     options.Ranked,
		subtitles:  options.Subtitles,
		cues:       options.Cues,

		events: make(chan player.Event, eventBuffer),
		done:   make(chan struct{}),

		status:   options.Controller.State(),
		notifier: &ui.Model{},
	}

	bubble.helpC = help.New()

	bubble.spinnerC = spinner.New()
	bubble.spinnerC.Spinner = spinner.Dot
	bubble.spinnerC.Style = style.New().Foreground(style.LoadingColor)

	bubble.progressC = progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = lipgloss.NewStyle().
		Border(lipgloss.ThickBorder(), false, false, false, true).
		BorderForeground(style.AccentColor).
		Foreground(style.AccentColor).
		Padding(0, 0, 0, 1)
	delegate.Styles.NormalTitle = delegate.Styles.NormalTitle.Foreground(lipgloss.Color("7"))
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedTitle

	bubble.tracksC = list.New([]list.Item{}, delegate, 0, 0)
	bubble.tracksC.KeyMap = keymap.forList()
	bubble.tracksC.AdditionalShortHelpKeys = keymap.ShortHelp
	bubble.tracksC.AdditionalFullHelpKeys = func() []bubblesKey.Binding {
		return keymap.FullHelp()[0]
	}
	bubble.tracksC.Styles.Title = lipgloss.NewStyle().Foreground(style.Base).Background(style.Peach).Padding(0, 1)
	bubble.tracksC.Styles.NoItems = paddingStyle
	bubble.tracksC.StatusMessageLifetime = time.Hour * 999
	bubble.tracksC.SetShowPagination(false)
	bubble.tracksC.SetShowStatusBar(false)
	bubble.tracksC.SetFilteringEnabled(false)

	bubble.progressStatus = "Resolving the best source"
	bubble.listener = options.Controller.On(bubble.forward)

	if w, h, err := util.TerminalSize(); err == nil {
		bubble.resize(w, h)
	}

	return bubble
}
