package classify

import (
	"regexp"
	"strconv"
)

// Rule maps a pattern found in the search text to a canonical token.
type Rule struct {
	Token   string
	Pattern *regexp.Regexp
}

// Match reports whether the rule matches text.
func (r Rule) Match(text string) bool {
	return r.Pattern.MatchString(text)
}

// Table is an ordered list of rules. The first matching rule wins,
// so more specific tokens must come before generic ones.
type Table []Rule

// Detect returns the token of the first matching rule, or "".
func (t Table) Detect(text string) string {
	for _, r := range t {
		if r.Match(text) {
			return r.Token
		}
	}
	return ""
}

// Any reports whether any rule matches text.
func (t Table) Any(text string) bool {
	return t.Detect(text) != ""
}

// word builds a pattern for alternatives delimited by non-alphanumerics (release naming separators).
func word(alternatives string) *regexp.Regexp {
	return regexp.MustCompile(`(?:^|[^a-z0-9])(?:` + alternatives + `)(?:$|[^a-z0-9])`)
}

// prefix is like word but allows trailing digits, as in "aac2.0" or "ddp5.1".
func prefix(alternatives string) *regexp.Regexp {
	return regexp.MustCompile(`(?:^|[^a-z0-9])(?:` + alternatives + `)(?:$|[^a-z])`)
}

// extension matches a file extension at the end of a path or before a query string.
func extension(alternatives string) *regexp.Regexp {
	return regexp.MustCompile(`\.(?:` + alternatives + `)(?:$|[?#&])`)
}

// Rules holds every detection table used by the classifier.
type Rules struct {
	Audio      Table
	Video      Table
	Container  Table
	Resolution Table
	// HDR tables check named formats as a unit before the bare marker.
	HDR Table
	Cam Table
	Ads Table
}

// DefaultRules are tuned for scene release naming and CDN URLs.
var DefaultRules = Rules{
	Audio: Table{
		{"truehd", prefix(`true-?hd`)},
		{"dts", prefix(`dts(?:-?hd|-?x|-?ma|-?es)?`)},
		{"eac3", prefix(`e-?ac-?3|ddp|dd\+|dolby[ ._-]?digital[ ._-]?plus`)},
		{"ac3", prefix(`ac-?3|dd|dolby[ ._-]?digital`)},
		{"flac", prefix(`flac`)},
		{"alac", prefix(`alac`)},
		{"pcm", prefix(`l?pcm`)},
		{"opus", prefix(`opus`)},
		{"vorbis", prefix(`vorbis|ogg`)},
		{"mp3", prefix(`mp3`)},
		{"aac", prefix(`(?:he-?)?aac`)},
	},
	Video: Table{
		{"av1", word(`av1`)},
		{"hevc", word(`hevc|[xh][ .]?265|h265`)},
		{"h264", word(`avc|[xh][ .]?264|h264`)},
		{"vp9", word(`vp9`)},
		{"vp8", word(`vp8`)},
		{"mpeg2", word(`mpeg-?2`)},
		{"mpeg4", word(`xvid|divx|mpeg-?4`)},
	},
	Container: Table{
		{"m3u8", regexp.MustCompile(`\.m3u8(?:$|[?#&])|(?:^|[^a-z0-9])hls(?:$|[^a-z0-9])`)},
		{"mpd", regexp.MustCompile(`\.mpd(?:$|[?#&])|(?:^|[^a-z0-9])dash(?:$|[^a-z0-9])`)},
		{"mkv", regexp.MustCompile(`\.mkv(?:$|[?#&])|(?:^|[^a-z0-9])(?:mkv|matroska)(?:$|[^a-z0-9])`)},
		{"mp4", regexp.MustCompile(`\.(?:mp4|m4v)(?:$|[?#&])|(?:^|[^a-z0-9])(?:mp4|m4v)(?:$|[^a-z0-9])`)},
		{"webm", word(`webm`)},
		{"avi", word(`avi`)},
		{"mov", extension(`mov`)},
		{"wmv", word(`wmv`)},
		{"flv", word(`flv`)},
		{"ts", extension(`ts|m2ts`)},
	},
	Resolution: Table{
		{"2160", word(`2160p|4k|uhd`)},
		{"1440", word(`1440p`)},
		{"1080", word(`1080[pi]|fhd|full[ ._-]?hd`)},
		{"720", word(`720p`)},
		{"576", word(`576[pi]`)},
		{"480", word(`480p|dvdrip|sd`)},
		{"360", word(`360p`)},
		{"240", word(`240p`)},
	},
	HDR: Table{
		{"dolby vision", word(`dolby[ ._-]?vision|dovi|dv`)},
		{"hdr10+", regexp.MustCompile(`(?:^|[^a-z0-9])hdr10(?:\+|plus)`)},
		{"hdr10", word(`hdr10`)},
		{"hlg", word(`hlg`)},
		{"hdr", word(`hdr`)},
	},
	Cam: Table{
		{"cam", word(`cam|camrip|hdcam|cam-?rip`)},
		{"telesync", word(`ts|hdts|telesync|pdvd`)},
		{"telecine", word(`tc|telecine`)},
		{"screener", word(`scr|screener|dvdscr|bdscr`)},
	},
	Ads: Table{
		{"ads", word(`hc|korsub|ads|adverts?|ad[ ._-]?supported|sponsored|with[ ._-]?ads`)},
		{"watermark", word(`watermark(?:ed)?`)},
	},
}

// height converts a resolution token to pixels. Unknown tokens are 0.
func height(token string) int {
	h, err := strconv.Atoi(token)
	if err != nil {
		return 0
	}
	return h
}
