package player

import (
	"context"
	"fmt"
	"os/exec"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/arflix-cli/arflix/capability"
	"github.com/arflix-cli/arflix/log"
	"github.com/arflix-cli/arflix/source"
	"github.com/arflix-cli/arflix/subtitle"
	"github.com/samber/mo"
)

// launchFunc opens target in an application this process does not control.
type launchFunc func(ctx context.Context, c *source.Candidate, target string) error

// Handoff passes the source to an external application and keeps only what it can observe locally:
// the lifecycle and attached subtitles, timed from the moment of the handoff.
// Transport and track controls return ErrUnsupported.
type Handoff struct {
	*base

	launch launchFunc
	text   *externalText

	clockMu sync.RWMutex
	started time.Time
}

func newHandoff(kind capability.Platform, launch launchFunc, cfg Config, opts Options) *Handoff {
	h := &Handoff{
		base:   newBase(kind, cfg),
		launch: launch,
	}

	fetcher := opts.Fetcher
	if fetcher == nil {
		fetcher = subtitle.NewFetcher()
	}
	h.text = newExternalText(fetcher, opts.Overlay, subtitle.ClockFunc(h.position), cfg.SubtitleOffset)
	return h
}

// NewIntent returns the Android engine, which starts a VIEW intent for the source.
func NewIntent(cfg Config, opts Options) *Handoff {
	return newHandoff(capability.Android, startIntent, cfg, opts)
}

// NewBrowser returns the web engine, which opens the source with the default URL handler.
func NewBrowser(cfg Config, opts Options) *Handoff {
	return newHandoff(capability.Web, func(_ context.Context, _ *source.Candidate, target string) error {
		return openBrowser(target)
	}, cfg, opts)
}

func startIntent(ctx context.Context, c *source.Candidate, target string) error {
	args := []string{
		"start",
		"-a", "android.intent.action.VIEW",
		"-d", target,
		"-t", "video/*",
		"--es", "title", sanitizeTitle(c.DisplayTitle()),
	}

	if len(c.Headers) > 0 {
		keys := make([]string, 0, len(c.Headers))
		for k := range c.Headers {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		escape := strings.NewReplacer(",", `\,`)
		pairs := make([]string, 0, 2*len(keys))
		for _, k := range keys {
			pairs = append(pairs, escape.Replace(k), escape.Replace(c.Headers[k]))
		}
		args = append(args, "--esa", "headers", strings.Join(pairs, ","))
	}

	out, err := exec.CommandContext(ctx, "am", args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("am start: %w", err)
	}
	if msg := string(out); strings.Contains(msg, "Error:") {
		return fmt.Errorf("am start: %s", strings.TrimSpace(msg))
	}
	return nil
}

func (h *Handoff) position() time.Duration {
	h.clockMu.RLock()
	defer h.clockMu.RUnlock()

	if h.started.IsZero() {
		return 0
	}
	return time.Since(h.started)
}

// UpdateConfig applies the new subtitle offset to attached tracks.
func (h *Handoff) UpdateConfig(cfg Config) {
	h.base.UpdateConfig(cfg)
	h.text.setOffset(cfg.SubtitleOffset)
}

func (h *Handoff) Load(ctx context.Context, c *source.Candidate) error {
	if err := h.alive(); err != nil {
		return err
	}
	if c == nil {
		return fmt.Errorf("load: %w", source.ErrNoURL)
	}

	target, err := sanitizeMediaTarget(c.URL)
	if err != nil {
		return fmt.Errorf("invalid media target: %w", err)
	}

	h.text.close()
	h.beginLoad()

	if err := h.launch(ctx, c, target); err != nil {
		h.fail(err)
		return err
	}

	h.clockMu.Lock()
	h.started = time.Now()
	h.clockMu.Unlock()

	if !h.setPhase(PhaseReady) {
		return h.alive()
	}

	log.Infof("handed %s to the %s handler", c, h.kind)
	h.emit(
		Event{Type: EventReady},
		Event{Type: EventTracks, Tracks: h.snapshotTracks()},
		Event{Type: EventCanPlay},
	)
	return nil
}

// Play marks the session as playing. The external application starts on its own.
func (h *Handoff) Play() error {
	if err := h.loaded(); err != nil {
		return err
	}
	if h.phase() == PhaseReady {
		h.setPhase(PhasePlaying)
	}
	return nil
}

func (h *Handoff) Pause() error              { return h.unsupported() }
func (h *Handoff) Seek(float64) error        { return h.unsupported() }
func (h *Handoff) SetVolume(float64) error   { return h.unsupported() }
func (h *Handoff) SetMuted(bool) error       { return h.unsupported() }
func (h *Handoff) SetQuality(string) error   { return h.unsupported() }
func (h *Handoff) SetAudio(string) error     { return h.unsupported() }
func (h *Handoff) SetQualityMax() error      { return h.unsupported() }
func (h *Handoff) Qualities() []Quality      { return nil }
func (h *Handoff) AudioTracks() []AudioTrack { return nil }
func (h *Handoff) TextTracks() []TextTrack   { return h.text.list() }

func (h *Handoff) unsupported() error {
	if err := h.alive(); err != nil {
		return err
	}
	return ErrUnsupported
}

func (h *Handoff) AttachExternalSubtitle(ctx context.Context, rawURL string, format subtitle.Format, lang, label string) (TextTrack, error) {
	if err := h.loaded(); err != nil {
		return TextTrack{}, err
	}

	track, err := h.text.attach(ctx, rawURL, format, lang, label)
	if err != nil {
		return TextTrack{}, err
	}

	h.setTracks(Tracks{Text: h.text.list()})
	h.emit(Event{Type: EventTracks, Tracks: h.snapshotTracks()})
	return track, nil
}

func (h *Handoff) SetText(id string) error {
	if err := h.loaded(); err != nil {
		return err
	}
	if err := h.text.show(id); err != nil {
		return err
	}

	next := mo.None[TextTrack]()
	if t, ok := h.findText(id); ok {
		next = mo.Some(t)
	}
	h.update(func(s *State) { s.Text = next })
	h.emit(Event{Type: EventTextChanged, Text: next})
	return nil
}

func (h *Handoff) Destroy() error {
	if !h.destroy() {
		return nil
	}
	h.text.close()
	return nil
}
