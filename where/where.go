// Package where implements a cross-platform resolver for application-specific filesystem paths.
package where

import (
	"os"
	"path/filepath"

	"github.com/arflix-cli/arflix/constant"
	"github.com/arflix-cli/arflix/filesystem"
	"github.com/samber/lo"
)

// EnvConfigPath overrides the default configuration directory.
const EnvConfigPath = "ARFLIX_CONFIG_PATH"

func ensureDir(path string) string {
	lo.Must0(filesystem.API().MkdirAll(path, os.ModePerm))
	return path
}

// Config resolves the primary configuration directory, honoring ARFLIX_CONFIG_PATH.
func Config() string {
	if custom, ok := os.LookupEnv(EnvConfigPath); ok {
		return ensureDir(custom)
	}

	base := lo.Must(os.UserConfigDir())
	return ensureDir(filepath.Join(base, constant.Arflix))
}

// Cache resolves the persistent cache directory.
func Cache() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = filepath.Join(".", "cache")
	}
	return ensureDir(filepath.Join(base, constant.Arflix))
}

// Logs resolves the directory used for diagnostic logs.
func Logs() string {
	return ensureDir(filepath.Join(Config(), "logs"))
}

// Resolvers resolves the directory containing Lua stream resolver scripts.
func Resolvers() string {
	return ensureDir(filepath.Join(Config(), "resolvers"))
}

// Subtitles resolves the cache directory for fetched external subtitle files.
func Subtitles() string {
	return ensureDir(filepath.Join(Cache(), "subtitles"))
}

// Temp resolves a volatile directory for IPC sockets and transient subtitle files.
func Temp() string {
	return ensureDir(filepath.Join(os.TempDir(), constant.Arflix))
}
