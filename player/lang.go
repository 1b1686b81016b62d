package player

import (
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// matchLanguage returns the index of the entry that best fits preferred.
// Language tags are matched first ("en" fits "eng" and "en-US"); labels are searched for
// the English language name when no tag is a confident match.
func matchLanguage(preferred string, langs, labels []string) (int, bool) {
	preferred = strings.TrimSpace(preferred)
	if preferred == "" {
		return 0, false
	}

	want, err := language.Parse(preferred)
	if err == nil {
		var (
			tags  []language.Tag
			index []int
		)
		for i, l := range langs {
			if tag, err := language.Parse(l); err == nil && l != "" {
				tags = append(tags, tag)
				index = append(index, i)
			}
		}

		if len(tags) > 0 {
			_, i, confidence := language.NewMatcher(tags).Match(want)
			if confidence >= language.High {
				return index[i], true
			}
		}
	}

	name := preferred
	if err == nil {
		if n := display.English.Languages().Name(want); n != "" {
			name = n
		}
	}

	for i, label := range labels {
		if label != "" && fuzzy.MatchFold(name, label) {
			return i, true
		}
	}
	return 0, false
}
