package version

import (
	"fmt"
	"slices"
	"strings"
)

// Compare orders two major.minor.patch versions, with or without a "v" prefix.
// It returns 1 if a is newer than b, -1 if older and 0 if equal.
func Compare(a, b string) (int, error) {
	av, err := parse(a)
	if err != nil {
		return 0, err
	}

	bv, err := parse(b)
	if err != nil {
		return 0, err
	}

	return slices.Compare(av[:], bv[:]), nil
}

func parse(s string) (v [3]int, err error) {
	_, err = fmt.Sscanf(strings.TrimPrefix(s, "v"), "%d.%d.%d", &v[0], &v[1], &v[2])
	if err != nil {
		err = fmt.Errorf("invalid version %q: %w", s, err)
	}
	return
}
