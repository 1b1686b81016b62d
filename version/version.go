// Package version checks for newer releases and compares semantic versions.
package version

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/arflix-cli/arflix/filesystem"
	"github.com/arflix-cli/arflix/network"
	"github.com/arflix-cli/arflix/where"
	"github.com/metafates/gache"
)

// ReleasesURL is the API endpoint of the latest stable release.
const ReleasesURL = "https://api.github.com/repos/arflix-cli/arflix/releases/latest"

const checkTimeout = 3 * time.Second

var versionCacher = gache.New[string](&gache.Options{
	Path:       filepath.Join(where.Cache(), "version.json"),
	Lifetime:   time.Hour * 24 * 2,
	FileSystem: &filesystem.GacheFs{},
})

// Latest returns the most recent stable version, cached for two days.
func Latest() (string, error) {
	ver, expired, err := versionCacher.Get()
	if err != nil {
		return "", err
	}

	if !expired && ver != "" {
		return ver, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	ver, err = fetchLatest(ctx, ReleasesURL)
	if err != nil {
		return "", err
	}

	_ = versionCacher.Set(ver)
	return ver, nil
}

func fetchLatest(ctx context.Context, url string) (string, error) {
	body, err := network.Get(ctx, network.Client, url, map[string]string{
		"Accept": "application/vnd.github+json",
	})
	if err != nil {
		return "", err
	}

	var release struct {
		TagName string `json:"tag_name"`
	}
	if err := json.Unmarshal(body, &release); err != nil {
		return "", err
	}

	if release.TagName == "" {
		return "", errors.New("empty tag name")
	}
	return strings.TrimPrefix(release.TagName, "v"), nil
}
