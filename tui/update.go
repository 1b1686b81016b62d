package tui

import (
	"fmt"

	"github.com/arflix-cli/arflix/internal/ui"
	"github.com/arflix-cli/arflix/player"
	bubblesKey "github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

func (b *statefulBubble) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if uiCmd := b.notifier.Update(msg); uiCmd != nil {
		cmds = append(cmds, uiCmd)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.resize(msg.Width, msg.Height)
	case spinner.TickMsg:
		var cmd tea.Cmd
		b.spinnerC, cmd = b.spinnerC.Update(msg)
		return b, tea.Batch(append(cmds, cmd)...)
	case player.Event:
		cmds = append(cmds, b.handleEvent(msg), b.waitForEvent())
		return b, tea.Batch(cmds...)
	case playbackStartedMsg:
		b.choice = msg.choice
		b.newState(playingState)
		cmds = append(cmds, ui.Notify(fmt.Sprintf("Playing %s", msg.choice.Candidate.DisplayTitle())))
		for _, w := range msg.warnings {
			cmds = append(cmds, ui.Notify(w))
		}
		return b, tea.Batch(cmds...)
	case error:
		b.raiseError(msg)
		return b, tea.Batch(cmds...)
	case tea.KeyMsg:
		if bubblesKey.Matches(msg, b.keymap.forceQuit) {
			return b, tea.Quit
		}
	}

	var cmd tea.Cmd
	switch b.state {
	case playingState:
		cmd = b.updatePlaying(msg)
	case tracksState:
		cmd = b.updateTracks(msg)
	case endedState:
		cmd = b.updateEnded(msg)
	case errorState:
		cmd = b.updateError(msg)
	}

	return b, tea.Batch(append(cmds, cmd)...)
}

func (b *statefulBubble) updatePlaying(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}

	switch {
	case bubblesKey.Matches(keyMsg, b.keymap.quit):
		return tea.Quit
	case bubblesKey.Matches(keyMsg, b.keymap.playPause):
		return b.togglePlay()
	case bubblesKey.Matches(keyMsg, b.keymap.seekForward):
		return b.seekBy(seekStep)
	case bubblesKey.Matches(keyMsg, b.keymap.seekBackward):
		return b.seekBy(-seekStep)
	case bubblesKey.Matches(keyMsg, b.keymap.volumeUp):
		return b.volumeBy(volumeStep)
	case bubblesKey.Matches(keyMsg, b.keymap.volumeDown):
		return b.volumeBy(-volumeStep)
	case bubblesKey.Matches(keyMsg, b.keymap.mute):
		return b.toggleMute()
	case bubblesKey.Matches(keyMsg, b.keymap.quality):
		return b.openTracks(qualityTracks)
	case bubblesKey.Matches(keyMsg, b.keymap.qualityMax):
		return b.control("Best quality", b.controller.SetQualityMax)
	case bubblesKey.Matches(keyMsg, b.keymap.audio):
		return b.openTracks(audioTracks)
	case bubblesKey.Matches(keyMsg, b.keymap.subtitles):
		return b.openTracks(textTracks)
	case bubblesKey.Matches(keyMsg, b.keymap.delaySubtitles):
		return b.shiftSubtitles(offsetStep)
	case bubblesKey.Matches(keyMsg, b.keymap.advanceSubtitles):
		return b.shiftSubtitles(-offsetStep)
	case bubblesKey.Matches(keyMsg, b.keymap.showHelp):
		b.helpC.ShowAll = !b.helpC.ShowAll
	}

	return nil
}

func (b *statefulBubble) updateTracks(msg tea.Msg) tea.Cmd {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case bubblesKey.Matches(keyMsg, b.keymap.back):
			b.previousState()
			return nil
		case bubblesKey.Matches(keyMsg, b.keymap.confirm):
			return b.selectTrack()
		}
	}

	var cmd tea.Cmd
	b.tracksC, cmd = b.tracksC.Update(msg)
	return cmd
}

func (b *statefulBubble) updateEnded(msg tea.Msg) tea.Cmd {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case bubblesKey.Matches(keyMsg, b.keymap.quit):
			return tea.Quit
		case bubblesKey.Matches(keyMsg, b.keymap.replay):
			return b.replay()
		}
	}
	return nil
}

func (b *statefulBubble) updateError(msg tea.Msg) tea.Cmd {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && bubblesKey.Matches(keyMsg, b.keymap.quit, b.keymap.back) {
		return tea.Quit
	}
	return nil
}
