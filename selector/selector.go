// Package selector ranks classified stream candidates and picks the one to play.
package selector

import (
	"cmp"
	"regexp"
	"strings"

	"github.com/arflix-cli/arflix/capability"
	"github.com/arflix-cli/arflix/classify"
	"github.com/arflix-cli/arflix/log"
	"github.com/arflix-cli/arflix/source"
	"github.com/samber/lo"
	"golang.org/x/exp/slices"
)

// Classified pairs a candidate with its classification.
type Classified struct {
	Candidate *source.Candidate `json:"candidate"`
	classify.Classification
}

// lowSignal matches titles of trailers, samples, previews and teasers.
var lowSignal = regexp.MustCompile(`(?i)(?:^|[^a-z0-9])(?:trailers?|samples?|previews?|teasers?)(?:$|[^a-z0-9])`)

// LowSignal reports whether title names a trailer, sample, preview or teaser.
func LowSignal(title string) bool {
	return lowSignal.MatchString(title)
}

// LegacyAudioCheck is the second audio check, independent of the classifier's allow-lists.
// Unknown codecs pass.
func LegacyAudioCheck(codec string, platform capability.Platform) bool {
	codec = strings.ToLower(codec)
	if codec == "" {
		return true
	}

	return lo.SomeBy(capability.LegacyAudio(platform), func(safe string) bool {
		return safe == capability.Wildcard || strings.Contains(codec, safe)
	})
}

// Selector classifies and ranks candidates with a given classifier.
type Selector struct {
	Classifier *classify.Classifier
}

// New returns a selector using the default classifier.
func New() *Selector {
	return &Selector{Classifier: classify.New()}
}

// ClassifyAll classifies every candidate, preserving input order.
func ClassifyAll(cands []*source.Candidate, caps capability.Capabilities) []Classified {
	return New().ClassifyAll(cands, caps)
}

// Rank returns every playable candidate, best first.
func Rank(cands []*source.Candidate, caps capability.Capabilities) []Classified {
	return New().Rank(cands, caps)
}

// SelectBest returns the best playable candidate, or false when none is playable.
func SelectBest(cands []*source.Candidate, caps capability.Capabilities) (*Classified, bool) {
	return New().SelectBest(cands, caps)
}

func (s *Selector) ClassifyAll(cands []*source.Candidate, caps capability.Capabilities) []Classified {
	classified := make([]Classified, len(cands))
	for i, c := range cands {
		classified[i] = Classified{
			Candidate:      c,
			Classification: s.Classifier.Classify(c, caps),
		}
	}

	return classified
}

// Rank orders the playable candidates. The preferred subset comes first, sorted by score,
// followed by the remaining playable candidates, also sorted by score.
// Equal scores keep their input order.
//
// The preferred subset drops low-signal titles unless nothing would remain, then keeps
// candidates whose audio passes LegacyAudioCheck unless nothing would remain.
func (s *Selector) Rank(cands []*source.Candidate, caps capability.Capabilities) []Classified {
	playable := lo.Filter(s.ClassifyAll(cands, caps), func(c Classified, _ int) bool {
		return c.Playable
	})

	if len(playable) == 0 {
		return nil
	}

	preferred := playable

	if filtered := lo.Reject(preferred, func(c Classified, _ int) bool {
		return c.Candidate != nil && LowSignal(c.Candidate.Title)
	}); len(filtered) > 0 {
		preferred = filtered
	}

	if filtered := lo.Filter(preferred, func(c Classified, _ int) bool {
		return LegacyAudioCheck(c.AudioCodec, caps.Platform)
	}); len(filtered) > 0 {
		preferred = filtered
	}

	rest := lo.Reject(playable, func(c Classified, _ int) bool {
		return lo.ContainsBy(preferred, func(p Classified) bool {
			return p.Candidate == c.Candidate
		})
	})

	// fresh slices, the sort must not reorder the caller's view
	preferred = slices.Clone(preferred)
	slices.SortStableFunc(preferred, ByScore)
	slices.SortStableFunc(rest, ByScore)

	return append(preferred, rest...)
}

// ByScore orders classified candidates best first.
func ByScore(a, b Classified) int {
	return cmp.Compare(b.Score, a.Score)
}

func (s *Selector) SelectBest(cands []*source.Candidate, caps capability.Capabilities) (*Classified, bool) {
	ranked := s.Rank(cands, caps)
	if len(ranked) == 0 {
		log.Infof("no compatible source among %d candidates", len(cands))
		return nil, false
	}

	best := ranked[0]
	log.WithFields(log.Fields{
		"title":  best.Candidate.Title,
		"score":  best.Score,
		"ranked": len(ranked),
	}).Infof("selected source")

	return &best, true
}
