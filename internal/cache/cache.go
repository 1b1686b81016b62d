// Package cache prunes expired entries from the on-disk response caches.
package cache

import (
	"os"
	"path/filepath"
	"time"

	"github.com/arflix-cli/arflix/filesystem"
	"github.com/arflix-cli/arflix/key"
	"github.com/arflix-cli/arflix/log"
	"github.com/arflix-cli/arflix/resolver"
	"github.com/arflix-cli/arflix/where"
	"github.com/spf13/viper"
)

// Dir is a cache directory whose files expire after Lifetime.
type Dir struct {
	Path     string
	Lifetime time.Duration
}

// Dirs returns the cache directories with their configured lifetimes.
func Dirs() []Dir {
	return []Dir{
		{Path: resolver.CacheDir(), Lifetime: viper.GetDuration(key.ResolversCacheLifetime)},
		{Path: where.Subtitles(), Lifetime: viper.GetDuration(key.SubtitlesCacheLifetime)},
	}
}

// CollectGarbage removes files older than the lifetime of their directory and returns how many were removed.
// Directories with no lifetime are left untouched.
func CollectGarbage(dirs []Dir, now time.Time) int {
	var removed int

	for _, dir := range dirs {
		if dir.Lifetime <= 0 {
			continue
		}

		_ = filesystem.API().Walk(dir.Path, func(path string, info os.FileInfo, err error) error {
			if err != nil || info.IsDir() {
				return nil
			}

			if now.Sub(info.ModTime()) > dir.Lifetime {
				if err := filesystem.API().Remove(path); err != nil {
					log.Warnf("remove expired cache file %s: %v", filepath.Base(path), err)
					return nil
				}
				removed++
			}
			return nil
		})
	}

	if removed > 0 {
		log.Debugf("removed %d expired cache files", removed)
	}
	return removed
}
