package resolver

import (
	"bufio"
	"bytes"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/arflix-cli/arflix/filesystem"
	"github.com/arflix-cli/arflix/util"
	"github.com/arflix-cli/arflix/where"
	"github.com/samber/lo"
)

// Extension is the file extension of resolver scripts.
const Extension = ".lua"

// Script describes an installed resolver script without running it.
type Script struct {
	Name string
	Path string
	Meta Meta
}

// Meta is the "-- @key value" header of a script.
type Meta struct {
	Name    string
	URL     string
	Author  string
	License string
}

func (s *Script) String() string {
	return s.Name
}

// ID returns the identifier the loaded resolver will have.
func (s *Script) ID() string {
	return IDfromName(s.Name)
}

// Load compiles and runs the script.
func (s *Script) Load() (*Resolver, error) {
	return Load(s.Path)
}

// Scripts lists the resolver scripts installed in where.Resolvers(), sorted by name.
// Files starting with an underscore are libraries and are skipped.
func Scripts() ([]*Script, error) {
	dir := where.Resolvers()
	files, err := filesystem.API().ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var scripts []*Script
	for _, f := range files {
		if f.IsDir() || filepath.Ext(f.Name()) != Extension || strings.HasPrefix(f.Name(), "_") {
			continue
		}

		path := filepath.Join(dir, f.Name())
		scripts = append(scripts, &Script{
			Name: util.FileStem(f.Name()),
			Path: path,
			Meta: readMeta(path),
		})
	}

	slices.SortFunc(scripts, func(a, b *Script) int {
		return strings.Compare(a.Name, b.Name)
	})
	return scripts, nil
}

// Names returns the names of the installed scripts.
func Names() []string {
	scripts, _ := Scripts()
	return lo.Map(scripts, func(s *Script, _ int) string { return s.Name })
}

// Get finds an installed script by name.
func Get(name string) (*Script, bool) {
	scripts, err := Scripts()
	if err != nil {
		return nil, false
	}
	return lo.Find(scripts, func(s *Script) bool { return s.Name == name })
}

var metaLine = regexp.MustCompile(`^--\s*@(?P<key>\w+)\s+(?P<value>.+?)\s*$`)

// readMeta parses the leading comment block of the script at path.
func readMeta(path string) Meta {
	var meta Meta

	contents, err := filesystem.API().ReadFile(path)
	if err != nil {
		return meta
	}

	scanner := bufio.NewScanner(bytes.NewReader(contents))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "--") {
			break
		}

		groups := util.ReGroups(metaLine, line)
		switch groups["key"] {
		case "name":
			meta.Name = groups["value"]
		case "url":
			meta.URL = groups["value"]
		case "author":
			meta.Author = groups["value"]
		case "license":
			meta.License = groups["value"]
		}
	}

	return meta
}
