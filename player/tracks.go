package player

import (
	"encoding/json"
	"regexp"
	"strconv"

	"github.com/arflix-cli/arflix/subtitle"
	"github.com/samber/mo"
)

// mpvTrack is one entry of mpv's track-list property.
type mpvTrack struct {
	ID               int    `json:"id"`
	Type             string `json:"type"`
	Title            string `json:"title"`
	Lang             string `json:"lang"`
	Codec            string `json:"codec"`
	Forced           bool   `json:"forced"`
	HearingImpaired  bool   `json:"hearing-impaired"`
	External         bool   `json:"external"`
	ExternalFilename string `json:"external-filename"`
	Selected         bool   `json:"selected"`
	AlbumArt         bool   `json:"albumart"`
	Image            bool   `json:"image"`
	Width            int    `json:"demux-w"`
	Height           int    `json:"demux-h"`
	Channels         int    `json:"demux-channel-count"`
	Bitrate          int    `json:"demux-bitrate"`
	HLSBitrate       int    `json:"hls-bitrate"`
}

var captionsTitle = regexp.MustCompile(`(?i)\b(sdh|cc|hearing[ -]impaired)\b`)

// selection holds the tracks mpv currently has selected.
type selection struct {
	Quality mo.Option[Quality]
	Audio   mo.Option[AudioTrack]
	Text    mo.Option[TextTrack]
}

func parseTrackList(data json.RawMessage) ([]mpvTrack, error) {
	var list []mpvTrack
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// convertTracks maps mpv's track list to engine tracks. Cover art and bitmap subtitles without a known format are kept out.
func convertTracks(list []mpvTrack) (Tracks, selection) {
	var (
		tracks Tracks
		sel    selection
	)

	for _, t := range list {
		id := strconv.Itoa(t.ID)

		switch t.Type {
		case "video":
			if t.AlbumArt || t.Image {
				continue
			}
			q := Quality{
				ID:        id,
				Height:    t.Height,
				Width:     t.Width,
				Bandwidth: t.HLSBitrate,
				Codec:     t.Codec,
				Label:     t.Title,
			}
			if q.Bandwidth == 0 {
				q.Bandwidth = t.Bitrate
			}
			tracks.Qualities = append(tracks.Qualities, q)
			if t.Selected {
				sel.Quality = mo.Some(q)
			}
		case "audio":
			a := AudioTrack{
				ID:       id,
				Lang:     t.Lang,
				Channels: t.Channels,
				Codec:    t.Codec,
				Label:    t.Title,
				Embedded: !t.External,
			}
			tracks.Audio = append(tracks.Audio, a)
			if t.Selected {
				sel.Audio = mo.Some(a)
			}
		case "sub":
			format, err := subtitle.ParseFormat(t.Codec)
			if err != nil {
				format = ""
			}
			s := TextTrack{
				ID:       id,
				Lang:     t.Lang,
				Kind:     textKind(t),
				Format:   format,
				Label:    t.Title,
				Embedded: !t.External,
			}
			tracks.Text = append(tracks.Text, s)
			if t.Selected {
				sel.Text = mo.Some(s)
			}
		}
	}

	return tracks, sel
}

func textKind(t mpvTrack) TextKind {
	switch {
	case t.Forced:
		return TextForced
	case t.HearingImpaired, captionsTitle.MatchString(t.Title):
		return TextCaptions
	default:
		return TextSubtitles
	}
}
