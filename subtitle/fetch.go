package subtitle

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/arflix-cli/arflix/auth"
	"github.com/arflix-cli/arflix/filesystem"
	"github.com/arflix-cli/arflix/key"
	"github.com/arflix-cli/arflix/log"
	"github.com/arflix-cli/arflix/network"
	"github.com/arflix-cli/arflix/where"
	"github.com/metafates/gache"
	"github.com/spf13/viper"
	"golang.org/x/net/html/charset"
	"golang.org/x/sync/singleflight"
)

// Fetcher downloads external subtitle files, decodes them to UTF-8 and caches them on disk.
// Concurrent fetches of the same URL share one request.
type Fetcher struct {
	Client   *http.Client
	Lifetime time.Duration
	// Dir holds the cache files. Empty means where.Subtitles().
	Dir string

	group singleflight.Group
}

// NewFetcher returns a fetcher using the fingerprinted client and the configured cache lifetime.
func NewFetcher() *Fetcher {
	lifetime := viper.GetDuration(key.SubtitlesCacheLifetime)
	if lifetime <= 0 {
		lifetime = time.Hour
	}

	return &Fetcher{
		Client:   network.Fingerprinted,
		Lifetime: lifetime,
	}
}

func (f *Fetcher) cacheOptions(url string) *gache.Options {
	dir := f.Dir
	if dir == "" {
		dir = where.Subtitles()
	}

	sum := sha256.Sum256([]byte(url))
	return &gache.Options{
		Path:       filepath.Join(dir, hex.EncodeToString(sum[:])+".json"),
		Lifetime:   f.Lifetime,
		FileSystem: &filesystem.GacheFs{},
	}
}

// Fetch returns the UTF-8 content of the subtitle file at url.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	ch := f.group.DoChan(url, func() (any, error) {
		return f.fetch(ctx, url)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	}
}

func (f *Fetcher) fetch(ctx context.Context, url string) ([]byte, error) {
	cacher := gache.New[string](f.cacheOptions(url))
	if cached, expired, err := cacher.Get(); err == nil && !expired && cached != "" {
		log.Debugf("subtitle cache hit for %s", url)
		return []byte(cached), nil
	}

	client := f.Client
	if client == nil {
		client = network.Client
	}

	body, err := network.Get(ctx, client, url, auth.Headers(url))
	if err != nil {
		return nil, fmt.Errorf("fetch subtitle: %w", err)
	}

	text, err := toUTF8(body)
	if err != nil {
		return nil, fmt.Errorf("decode subtitle: %w", err)
	}

	if err := cacher.Set(string(text)); err != nil {
		log.Warnf("cache subtitle %s: %s", url, err)
	}

	return text, nil
}

// Load fetches url and parses it with the renderer for format.
func (f *Fetcher) Load(ctx context.Context, url string, format Format) ([]Cue, error) {
	data, err := f.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	return Parse(format, data)
}

// toUTF8 sniffs the byte order mark or falls back to windows-1252 for invalid UTF-8.
func toUTF8(data []byte) ([]byte, error) {
	enc, name, _ := charset.DetermineEncoding(data, "text/plain")
	if name == "utf-8" {
		return bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")), nil
	}

	return enc.NewDecoder().Bytes(data)
}
