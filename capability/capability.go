// Package capability determines which containers and codecs the current host can decode.
//
// The matrix is computed once per process by Get and never changes afterwards.
// Classification consumes it through IsSupported.
package capability

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Platform is the host environment class a baseline capability table is chosen for.
type Platform string

const (
	Web     Platform = "web"
	Android Platform = "android"
	Apple   Platform = "apple"
	Desktop Platform = "desktop"
)

// Platforms lists every known platform.
func Platforms() []Platform {
	return []Platform{Web, Android, Apple, Desktop}
}

// ParsePlatform converts a case-insensitive platform name.
func ParsePlatform(s string) (Platform, error) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	if lo.Contains(Platforms(), p) {
		return p, nil
	}
	return "", fmt.Errorf("unknown platform %q", s)
}

// Restrictive reports whether the platform only plays web-safe wrappers.
func (p Platform) Restrictive() bool {
	return p == Web
}

// Kind selects which allow/deny lists a token is checked against.
type Kind int

const (
	KindContainer Kind = iota
	KindAudio
	KindVideo
)

func (k Kind) String() string {
	switch k {
	case KindContainer:
		return "container"
	case KindAudio:
		return "audio"
	case KindVideo:
		return "video"
	default:
		return "unknown"
	}
}

// Wildcard in an allow-list permits every token.
const Wildcard = "*"

// Capabilities is the decode support matrix of the host.
type Capabilities struct {
	Platform     Platform `json:"platform" jsonschema:"enum=web,enum=android,enum=apple,enum=desktop"`
	MaxHeight    int      `json:"maxHeight"`
	SupportsHDR  bool     `json:"supportsHDR"`
	Containers   []string `json:"containers"`
	AudioAllowed []string `json:"audioAllowed"`
	AudioDenied  []string `json:"audioDenied"`
	VideoAllowed []string `json:"videoAllowed"`
	VideoDenied  []string `json:"videoDenied"`
	SupportsHLS  bool     `json:"supportsHLS"`
	SupportsDASH bool     `json:"supportsDASH"`
}

// Clone returns a deep copy so callers cannot mutate a shared snapshot.
func (c Capabilities) Clone() Capabilities {
	c.Containers = append([]string(nil), c.Containers...)
	c.AudioAllowed = append([]string(nil), c.AudioAllowed...)
	c.AudioDenied = append([]string(nil), c.AudioDenied...)
	c.VideoAllowed = append([]string(nil), c.VideoAllowed...)
	c.VideoDenied = append([]string(nil), c.VideoDenied...)
	return c
}

func (c Capabilities) lists(kind Kind) (allow, deny []string) {
	switch kind {
	case KindContainer:
		return c.Containers, nil
	case KindAudio:
		return c.AudioAllowed, c.AudioDenied
	case KindVideo:
		return c.VideoAllowed, c.VideoDenied
	default:
		return nil, nil
	}
}

// Allowed returns the allow-list for kind.
func (c Capabilities) Allowed(kind Kind) []string {
	allow, _ := c.lists(kind)
	return allow
}

// Denied returns the deny-list for kind.
func (c Capabilities) Denied(kind Kind) []string {
	_, deny := c.lists(kind)
	return deny
}

// IsSupported matches token case-insensitively against the lists for kind.
// A deny entry contained in the token wins over everything, including the wildcard.
// An empty allow-list declares no restriction.
func IsSupported(token string, caps Capabilities, kind Kind) bool {
	token = strings.ToLower(strings.TrimSpace(token))
	if token == "" {
		return true
	}

	allow, deny := caps.lists(kind)
	for _, d := range deny {
		if d = strings.ToLower(d); d != "" && strings.Contains(token, d) {
			return false
		}
	}

	if len(allow) == 0 {
		return true
	}

	for _, a := range allow {
		a = strings.ToLower(a)
		if a == Wildcard {
			return true
		}
		if a != "" && strings.Contains(token, a) {
			return true
		}
	}
	return false
}

// IsDenied reports whether token hits the deny-list for kind.
func IsDenied(token string, caps Capabilities, kind Kind) bool {
	token = strings.ToLower(strings.TrimSpace(token))
	if token == "" {
		return false
	}
	return lo.SomeBy(caps.Denied(kind), func(d string) bool {
		d = strings.ToLower(d)
		return d != "" && strings.Contains(token, d)
	})
}

// Canonicalize lowercases, trims and dedupes a token list, dropping empties. Order is preserved.
func Canonicalize(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || lo.Contains(out, t) {
			continue
		}
		out = append(out, t)
	}
	return out
}
