// Package constant defines immutable application-level identifiers and configuration defaults.
package constant

const (
	// Arflix is the canonical application identifier used for filesystem paths and CLI branding.
	Arflix = "arflix"

	// Version is the current application semantic version string.
	Version = "0.1.0"

	// UserAgent is the default HTTP User-Agent sent to resolver and subtitle hosts.
	UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Build metadata, set with -ldflags "-X github.com/arflix-cli/arflix/constant.Revision=..." by release builds.
var (
	BuiltAt  = "unknown"
	BuiltBy  = "unknown"
	Revision = "unknown"
)

// Values of runtime.GOOS that select engines, IPC transports and install hints.
const (
	Windows = "windows"
	Darwin  = "darwin"
	Linux   = "linux"
	Android = "android"
)
