package capability

// Passthrough-only audio codecs. General purpose software decoders in browsers reject them.
var passthroughAudio = []string{"eac3", "ac3", "dts", "truehd"}

var baselines = map[Platform]Capabilities{
	Web: {
		Platform:     Web,
		MaxHeight:    1080,
		Containers:   []string{"mp4", "m4v", "webm", "m3u8", "mpd"},
		AudioAllowed: []string{"aac", "mp3", "opus", "vorbis", "flac"},
		AudioDenied:  passthroughAudio,
		VideoAllowed: []string{"h264", "vp8", "vp9", "av1"},
		SupportsHLS:  true,
		SupportsDASH: true,
	},
	Android: {
		Platform:     Android,
		MaxHeight:    2160,
		SupportsHDR:  true,
		Containers:   []string{"mp4", "m4v", "webm", "m3u8", "mpd", "mkv", "ts", "mov"},
		AudioAllowed: []string{"aac", "mp3", "opus", "vorbis", "flac", "pcm", "eac3", "ac3", "dts", "truehd"},
		VideoAllowed: []string{"h264", "hevc", "vp8", "vp9", "av1", "mpeg2"},
		SupportsHLS:  true,
		SupportsDASH: true,
	},
	Apple: {
		Platform:     Apple,
		MaxHeight:    2160,
		SupportsHDR:  true,
		Containers:   []string{"mp4", "m4v", "mov", "m3u8", "mkv", "ts", "webm"},
		AudioAllowed: []string{"aac", "mp3", "opus", "flac", "pcm", "alac", "eac3", "ac3", "dts", "truehd"},
		VideoAllowed: []string{"h264", "hevc", "vp9", "av1"},
		SupportsHLS:  true,
	},
	Desktop: {
		Platform:     Desktop,
		MaxHeight:    1080,
		Containers:   []string{Wildcard},
		AudioAllowed: []string{Wildcard},
		VideoAllowed: []string{Wildcard},
		SupportsHLS:  true,
		SupportsDASH: true,
	},
}

// Baseline returns the static capability table for p. Unknown platforms get the desktop table.
func Baseline(p Platform) Capabilities {
	base, ok := baselines[p]
	if !ok {
		base = baselines[Desktop]
	}
	return base.Clone()
}

// legacyAudio is the second, independent audio safety list consulted by source selection.
// It reflects what the host decodes in practice, regardless of configured allow-lists.
var legacyAudio = map[Platform][]string{
	Web:     {"aac", "mp3", "opus", "vorbis", "flac", "pcm"},
	Android: {"aac", "mp3", "opus", "vorbis", "flac", "pcm", "ac3", "eac3"},
	Apple:   {"aac", "mp3", "opus", "flac", "pcm", "alac", "ac3", "eac3"},
	Desktop: {Wildcard},
}

// LegacyAudio returns the practical audio decode list for p.
func LegacyAudio(p Platform) []string {
	return append([]string(nil), legacyAudio[p]...)
}
