package capability

import (
	"context"
	"os/exec"
	"strings"
	"sync"
)

// MPVProber probes decode support by listing the decoders and video outputs of a local mpv build.
// The lists are fetched once and reused for every sample.
type MPVProber struct {
	Path string

	// run executes mpv with args and returns its combined output. Replaced in tests.
	run func(ctx context.Context, path string, args ...string) ([]byte, error)

	once     sync.Once
	decoders string
	outputs  string
	err      error
}

// NewMPVProber returns a prober driving the mpv executable at path.
func NewMPVProber(path string) *MPVProber {
	return &MPVProber{Path: path, run: runCommand}
}

func runCommand(ctx context.Context, path string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, path, args...).CombinedOutput()
}

var decoderAliases = map[string][]string{
	"h264": {"h264"},
	"hevc": {"hevc", "h265"},
	"av1":  {"av1", "dav1d"},
	"vp9":  {"vp9"},
}

func (p *MPVProber) load(ctx context.Context) {
	out, err := p.run(ctx, p.Path, "--no-config", "--vd=help")
	if err != nil {
		p.err = err
		return
	}
	p.decoders = strings.ToLower(string(out))

	out, err = p.run(ctx, p.Path, "--no-config", "--vo=help")
	if err != nil {
		p.err = err
		return
	}
	p.outputs = strings.ToLower(string(out))
}

func (p *MPVProber) Probe(ctx context.Context, sample Sample) (bool, error) {
	p.once.Do(func() { p.load(ctx) })
	if p.err != nil {
		return false, p.err
	}

	names, ok := decoderAliases[strings.ToLower(sample.Codec)]
	if !ok {
		names = []string{strings.ToLower(sample.Codec)}
	}

	hasDecoder := false
	for _, name := range names {
		if strings.Contains(p.decoders, name) {
			hasDecoder = true
			break
		}
	}
	if !hasDecoder {
		return false, nil
	}

	if sample.HDR {
		return strings.Contains(p.outputs, "gpu-next"), nil
	}
	return true, nil
}
