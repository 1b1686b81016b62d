// Package util holds small helpers shared by the commands, the resolvers and the status view.
package util

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/arflix-cli/arflix/filesystem"
	"golang.org/x/exp/constraints"
	"golang.org/x/term"
)

var (
	unsafeFilenameChars = regexp.MustCompile(`[\\/<>:;"'|?!*{}#%&^+,~\s]`)
	repeatedUnderscores = regexp.MustCompile(`__+`)
	edgeSeparators      = regexp.MustCompile(`^[_\-.]+|[_\-.]+$`)
)

// SanitizeFilename turns a resolver name into something every filesystem accepts.
func SanitizeFilename(name string) string {
	name = unsafeFilenameChars.ReplaceAllString(name, "_")
	name = repeatedUnderscores.ReplaceAllString(name, "_")
	return edgeSeparators.ReplaceAllString(name, "")
}

// Quantify formats count with the matching noun, e.g. "1 resolver" or "3 resolvers".
func Quantify(count int, singular, plural string) string {
	noun := plural
	if count == 1 {
		noun = singular
	}
	return fmt.Sprintf("%d %s", count, noun)
}

// Capitalize upper-cases the first byte of s. Only meant for ASCII labels.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// TerminalSize reports the size of the terminal attached to stdout.
func TerminalSize() (width, height int, err error) {
	return term.GetSize(int(os.Stdout.Fd()))
}

// FileStem is the base name of path without its last extension.
func FileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ReGroups maps the named groups of pattern to what they matched in s.
// The map is empty when nothing matches.
func ReGroups(pattern *regexp.Regexp, s string) map[string]string {
	groups := make(map[string]string)

	match := pattern.FindStringSubmatch(s)
	if match == nil {
		return groups
	}

	for i, name := range pattern.SubexpNames() {
		if name != "" && i < len(match) {
			groups[name] = match[i]
		}
	}
	return groups
}

// PrintErasable writes msg on the current line of stdout. Calling the returned func blanks it again.
func PrintErasable(msg string) (erase func()) {
	fmt.Fprintf(os.Stdout, "\r%s", msg)
	return func() {
		fmt.Fprintf(os.Stdout, "\r%s\r", strings.Repeat(" ", len(msg)))
	}
}

// Max returns the largest of values, or the zero value when there are none.
func Max[T constraints.Ordered](values ...T) T {
	var largest T
	for i, v := range values {
		if i == 0 || v > largest {
			largest = v
		}
	}
	return largest
}

// Delete removes path, recursing into directories.
func Delete(path string) error {
	fs := filesystem.API()

	info, err := fs.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fs.RemoveAll(path)
	}
	return fs.Remove(path)
}
