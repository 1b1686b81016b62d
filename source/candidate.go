package source

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/mo"
)

// ErrNoURL is returned for candidates that cannot be opened because their URL is empty.
var ErrNoURL = errors.New("candidate has no url")

// Kind is the declared delivery format of a candidate.
type Kind string

const (
	KindHLS         Kind = "hls"
	KindDASH        Kind = "dash"
	KindProgressive Kind = "progressive"
	KindUnknown     Kind = "unknown"
)

// ParseKind maps loose declarations ("m3u8", "mpd", "file") to a Kind. Anything else is KindUnknown.
func ParseKind(s string) Kind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hls", "m3u8", "segmented":
		return KindHLS
	case "dash", "mpd", "manifest":
		return KindDASH
	case "progressive", "file", "mp4", "direct":
		return KindProgressive
	default:
		return KindUnknown
	}
}

// Candidate is one possible media source for a title. Only URL and Title are guaranteed;
// every optional field defaults to None and must not be assumed present.
type Candidate struct {
	URL   string
	Title string
	Kind  Kind

	Quality mo.Option[string]
	Codec   mo.Option[string]
	HDR     mo.Option[bool]

	// Torrent-origin metadata.
	SizeBytes mo.Option[int64]
	Seeds     mo.Option[int]
	Peers     mo.Option[int]

	// Headers are sent by the engine when opening URL.
	Headers map[string]string
	// Index is the position in the resolver output.
	Index int
}

// New returns a candidate with only the guaranteed fields set.
func New(url, title string) *Candidate {
	return &Candidate{URL: url, Title: title, Kind: KindUnknown}
}

func (c *Candidate) String() string {
	if c.Title != "" {
		return c.Title
	}
	return c.URL
}

// DisplayTitle renders the title with the declared quality, when present.
func (c *Candidate) DisplayTitle() string {
	if q, ok := c.Quality.Get(); ok && q != "" && !strings.Contains(strings.ToLower(c.Title), strings.ToLower(q)) {
		return fmt.Sprintf("%s [%s]", c.String(), q)
	}
	return c.String()
}

type wireCandidate struct {
	URL       string            `json:"url" jsonschema:"description=Playable URL of the stream."`
	Title     string            `json:"title" jsonschema:"description=Display title, usually the release name."`
	Kind      string            `json:"kind,omitempty" jsonschema:"enum=hls,enum=dash,enum=progressive,enum=unknown"`
	Quality   *string           `json:"quality,omitempty" jsonschema:"description=Declared quality label, e.g. 1080p."`
	Codec     *string           `json:"codec,omitempty" jsonschema:"description=Declared codec hint."`
	HDR       *bool             `json:"hdr,omitempty"`
	SizeBytes *int64            `json:"sizeBytes,omitempty"`
	Seeds     *int              `json:"seeds,omitempty"`
	Peers     *int              `json:"peers,omitempty"`
	Headers   map[string]string `json:"headers,omitempty" jsonschema:"description=Request headers the engine sends when opening the URL."`
}

// JSONSchemaAlias describes candidates by their wire shape.
func (Candidate) JSONSchemaAlias() any {
	return wireCandidate{}
}

func fromPtr[T any](p *T) mo.Option[T] {
	if p == nil {
		return mo.None[T]()
	}
	return mo.Some(*p)
}

func toPtr[T any](o mo.Option[T]) *T {
	if v, ok := o.Get(); ok {
		return &v
	}
	return nil
}

// UnmarshalJSON decodes the external candidate shape; absent fields become None.
func (c *Candidate) UnmarshalJSON(data []byte) error {
	var w wireCandidate
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.URL == "" {
		return fmt.Errorf("candidate %q: url is required", w.Title)
	}

	*c = Candidate{
		URL:       w.URL,
		Title:     w.Title,
		Kind:      ParseKind(w.Kind),
		Quality:   fromPtr(w.Quality),
		Codec:     fromPtr(w.Codec),
		HDR:       fromPtr(w.HDR),
		SizeBytes: fromPtr(w.SizeBytes),
		Seeds:     fromPtr(w.Seeds),
		Peers:     fromPtr(w.Peers),
		Headers:   w.Headers,
	}
	return nil
}

// MarshalJSON encodes the external candidate shape, omitting None fields.
func (c Candidate) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireCandidate{
		URL:       c.URL,
		Title:     c.Title,
		Kind:      string(c.Kind),
		Quality:   toPtr(c.Quality),
		Codec:     toPtr(c.Codec),
		HDR:       toPtr(c.HDR),
		SizeBytes: toPtr(c.SizeBytes),
		Seeds:     toPtr(c.Seeds),
		Peers:     toPtr(c.Peers),
		Headers:   c.Headers,
	})
}
