package player

import (
	"os"
	"os/exec"

	"github.com/arflix-cli/arflix/capability"
	"github.com/arflix-cli/arflix/subtitle"
)

const iinaBundled = "/Applications/IINA.app/Contents/MacOS/iina-cli"

// IINA is the mpv engine embedded in IINA on macOS. iina-cli forwards "--mpv-" options,
// including the IPC server, so the same JSON-IPC protocol drives it. iina-cli returns once IINA is up.
type IINA struct {
	*MPV
}

// NewIINA returns an engine driving iina-cli at path.
func NewIINA(path string, cfg Config, fetcher *subtitle.Fetcher) *IINA {
	if path == "" {
		path = iinaBundled
	}
	m := newMPV(capability.Apple, path, "mpv-", cfg, fetcher)
	m.launcher = true
	return &IINA{MPV: m}
}

// FindIINA returns the path of iina-cli when IINA is installed.
func FindIINA() (string, bool) {
	if path, err := exec.LookPath("iina-cli"); err == nil {
		return path, true
	}
	if _, err := os.Stat(iinaBundled); err == nil {
		return iinaBundled, true
	}
	return "", false
}
