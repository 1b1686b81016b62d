package subtitle

import (
	"cmp"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/samber/mo"
	"golang.org/x/exp/slices"
)

// Styled parses Advanced SubStation Alpha (and legacy SSA) scripts.
//
// Styles come from the [V4+ Styles] section and are referenced by events. Override blocks
// placed before the first visible text set the cue style; positioning tags apply anywhere.
// Drawing commands are dropped.
type Styled struct{}

var defaultEventFormat = []string{"layer", "start", "end", "style", "name", "marginl", "marginr", "marginv", "effect", "text"}

var (
	overrideBlock = regexp.MustCompile(`\{[^}]*\}`)
	boolTag       = regexp.MustCompile(`^([biu])(\d+)$`)
	colorTag      = regexp.MustCompile(`^1?c&?[hH]?([0-9a-fA-F]{1,8})&?$`)
	posTag        = regexp.MustCompile(`^pos\(\s*(-?[\d.]+)\s*,\s*(-?[\d.]+)\s*\)$`)
	alignNumpad   = regexp.MustCompile(`^an([1-9])$`)
	alignLegacy   = regexp.MustCompile(`^a(\d{1,2})$`)
	drawingTag    = regexp.MustCompile(`^p(\d+)$`)
)

func (Styled) Parse(r io.Reader) ([]Cue, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}

	var (
		section      string
		legacy       bool
		styleFormat  []string
		eventFormat  = defaultEventFormat
		styles       = map[string]Style{}
		cues         []Cue
		sawEvents    bool
		malformedErr error
	)

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = strings.ToLower(line)
			legacy = section == "[v4 styles]"
			sawEvents = sawEvents || section == "[events]"
			continue
		}

		field, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)

		switch section {
		case "[v4+ styles]", "[v4 styles]":
			switch field {
			case "Format":
				styleFormat = columns(value)
			case "Style":
				name, s := parseStyle(record(styleFormat, value), legacy)
				styles[strings.ToLower(name)] = s
			}
		case "[events]":
			switch field {
			case "Format":
				eventFormat = columns(value)
			case "Dialogue":
				cue, ok, err := parseDialogue(record(eventFormat, value), styles)
				if err != nil {
					malformedErr = err
					continue
				}
				if ok {
					cues = append(cues, cue)
				}
			}
		}
	}

	if !sawEvents {
		return nil, fmt.Errorf("no [Events] section")
	}

	if len(cues) == 0 && malformedErr != nil {
		return nil, malformedErr
	}

	slices.SortStableFunc(cues, func(a, b Cue) int {
		return cmp.Compare(a.Start, b.Start)
	})

	return cues, nil
}

func (Styled) Render(c Cue) string {
	return paint(c)
}

func columns(value string) []string {
	return lo.Map(strings.Split(value, ","), func(c string, _ int) string {
		return strings.ToLower(strings.TrimSpace(c))
	})
}

// record maps a comma separated line to the columns of format. The last column keeps any commas.
func record(format []string, value string) map[string]string {
	if len(format) == 0 {
		return nil
	}

	fields := strings.SplitN(value, ",", len(format))
	rec := make(map[string]string, len(format))
	for i, f := range fields {
		if format[i] == "text" {
			rec[format[i]] = f
		} else {
			rec[format[i]] = strings.TrimSpace(f)
		}
	}
	return rec
}

func parseStyle(rec map[string]string, legacy bool) (string, Style) {
	s := Style{
		Bold:      assBool(rec["bold"]),
		Italic:    assBool(rec["italic"]),
		Underline: assBool(rec["underline"]),
		Color:     assColor(rec["primarycolour"]),
		Alignment: BottomCenter,
	}

	if n, err := strconv.Atoi(rec["alignment"]); err == nil {
		if legacy {
			s.Alignment = fromLegacy(n)
		} else if n >= 1 && n <= 9 {
			s.Alignment = Alignment(n)
		}
	}

	return rec["name"], s
}

func parseDialogue(rec map[string]string, styles map[string]Style) (Cue, bool, error) {
	start, err := parseClock(rec["start"])
	if err != nil {
		return Cue{}, false, err
	}

	end, err := parseClock(rec["end"])
	if err != nil {
		return Cue{}, false, err
	}

	s, ok := styles[strings.ToLower(strings.TrimPrefix(rec["style"], "*"))]
	if !ok {
		s = styles["default"]
	}
	if s.Alignment == 0 {
		s.Alignment = BottomCenter
	}

	cue := Cue{Start: start, End: end, Style: s}
	text := rec["text"]

	visible := false
	drawing := false
	rest := text
	for rest != "" {
		loc := overrideBlock.FindStringIndex(rest)
		if loc == nil {
			visible = visible || strings.TrimSpace(rest) != ""
			break
		}

		if strings.TrimSpace(rest[:loc[0]]) != "" {
			visible = true
		}

		block := rest[loc[0]+1 : loc[1]-1]
		drawing = applyOverrides(&cue.Style, block, !visible) || drawing
		rest = rest[loc[1]:]
	}

	if drawing {
		return Cue{}, false, nil
	}

	plain := overrideBlock.ReplaceAllString(text, "")
	plain = strings.NewReplacer(`\N`, "\n", `\n`, "\n", `\h`, " ").Replace(plain)

	for _, line := range strings.Split(plain, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			cue.Lines = append(cue.Lines, line)
		}
	}

	return cue, len(cue.Lines) > 0, nil
}

// applyOverrides applies the tags of one override block. Character styling is applied only
// when leading is true. It reports whether the block switches to drawing mode.
func applyOverrides(s *Style, block string, leading bool) (drawing bool) {
	for _, tag := range strings.Split(block, `\`) {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}

		if m := alignNumpad.FindStringSubmatch(tag); m != nil {
			n, _ := strconv.Atoi(m[1])
			s.Alignment = Alignment(n)
			continue
		}

		if m := posTag.FindStringSubmatch(tag); m != nil {
			x, errX := strconv.ParseFloat(m[1], 64)
			y, errY := strconv.ParseFloat(m[2], 64)
			if errX == nil && errY == nil {
				s.Position = mo.Some(Point{X: x, Y: y})
			}
			continue
		}

		if m := drawingTag.FindStringSubmatch(tag); m != nil {
			n, _ := strconv.Atoi(m[1])
			drawing = drawing || n > 0
			continue
		}

		if m := alignLegacy.FindStringSubmatch(tag); m != nil {
			n, _ := strconv.Atoi(m[1])
			s.Alignment = fromLegacy(n)
			continue
		}

		if !leading {
			continue
		}

		if m := boolTag.FindStringSubmatch(tag); m != nil {
			on := m[2] != "0"
			switch m[1] {
			case "b":
				s.Bold = on
			case "i":
				s.Italic = on
			case "u":
				s.Underline = on
			}
			continue
		}

		if m := colorTag.FindStringSubmatch(tag); m != nil {
			if c := assColor("&H" + m[1]); c != "" {
				s.Color = c
			}
		}
	}

	return drawing
}

func assBool(v string) bool {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	return err == nil && n != 0
}

// assColor converts "&HAABBGGRR", "&HBBGGRR" or a decimal BGR value to "#rrggbb".
func assColor(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}

	var bgr uint64
	var err error
	if strings.HasPrefix(strings.ToUpper(v), "&H") {
		bgr, err = strconv.ParseUint(strings.TrimRight(v[2:], "&"), 16, 32)
	} else {
		bgr, err = strconv.ParseUint(v, 10, 32)
	}
	if err != nil {
		return ""
	}

	b := (bgr >> 16) & 0xff
	g := (bgr >> 8) & 0xff
	r := bgr & 0xff
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

// fromLegacy converts SSA v4 alignment (1-3 bottom, +4 top, +8 middle) to numpad positions.
func fromLegacy(n int) Alignment {
	switch {
	case n >= 1 && n <= 3:
		return Alignment(n)
	case n >= 5 && n <= 7:
		return Alignment(n + 2)
	case n >= 9 && n <= 11:
		return Alignment(n - 5)
	default:
		return BottomCenter
	}
}
