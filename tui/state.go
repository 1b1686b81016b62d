package tui

type state int

const (
	loadingState state = iota
	playingState
	tracksState
	endedState
	errorState
)

// trackKind is the track list shown in tracksState.
type trackKind int

const (
	qualityTracks trackKind = iota
	audioTracks
	textTracks
)

func (k trackKind) String() string {
	switch k {
	case qualityTracks:
		return "Quality"
	case audioTracks:
		return "Audio"
	default:
		return "Subtitles"
	}
}
