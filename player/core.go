package player

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/arflix-cli/arflix/capability"
	"github.com/arflix-cli/arflix/log"
	"github.com/arflix-cli/arflix/source"
	"github.com/arflix-cli/arflix/subtitle"
	"github.com/samber/lo"
)

// Options carries what engines share besides the playback policy.
type Options struct {
	// Fetcher downloads external subtitles. A default one is created when nil.
	Fetcher *subtitle.Fetcher
	// Overlay shows subtitles for engines that cannot render attached tracks themselves.
	Overlay subtitle.Overlay
	// MPVPath is the mpv executable for the desktop engine.
	MPVPath string
}

// Factory builds the engine of one platform.
type Factory func(cfg Config, opts Options) (Engine, error)

// Registry lists the engine built for each platform.
var Registry = map[capability.Platform]Factory{
	capability.Desktop: func(cfg Config, opts Options) (Engine, error) {
		return NewMPV(opts.MPVPath, cfg, opts.Fetcher), nil
	},
	capability.Apple: func(cfg Config, opts Options) (Engine, error) {
		if path, ok := FindIINA(); ok {
			return NewIINA(path, cfg, opts.Fetcher), nil
		}
		return newMPV(capability.Apple, opts.MPVPath, "", cfg, opts.Fetcher), nil
	},
	capability.Android: func(cfg Config, opts Options) (Engine, error) {
		return NewIntent(cfg, opts), nil
	},
	capability.Web: func(cfg Config, opts Options) (Engine, error) {
		return NewBrowser(cfg, opts), nil
	},
}

// Core owns the single active engine of a playback session. It applies the startup policy
// after each load and re-broadcasts every engine event, in order, to its own listeners.
type Core struct {
	*emitter

	kind    capability.Platform
	factory Factory
	opts    Options

	mu        sync.Mutex
	cfg       Config
	engine    Engine
	destroyed bool

	// gen identifies the engine whose events are forwarded.
	gen atomic.Int64

	// armed is the fallback for the playing source, nil when none is.
	armed *fallback
	// resuming tracks fallbacks in progress. Destroy waits for them.
	resuming sync.WaitGroup
}

// NewCore builds the engine registered for platform.
func NewCore(platform capability.Platform, cfg Config, opts Options) (*Core, error) {
	factory, ok := Registry[platform]
	if !ok {
		return nil, fmt.Errorf("no engine for platform %q", platform)
	}
	return newCore(platform, factory, cfg, opts)
}

func newCore(kind capability.Platform, factory Factory, cfg Config, opts Options) (*Core, error) {
	c := &Core{
		emitter: newEmitter(),
		kind:    kind,
		factory: factory,
		opts:    opts,
		cfg:     cfg,
	}

	e, err := factory(cfg, opts)
	if err != nil {
		c.close()
		return nil, err
	}
	c.attach(e)
	return c, nil
}

// attach makes e the active engine. c.mu must be held, or c not yet shared.
func (c *Core) attach(e Engine) {
	gen := c.gen.Add(1)
	c.engine = e
	e.On(func(ev Event) {
		if c.gen.Load() != gen {
			return
		}
		c.emit(ev)
		if ev.Type == EventError {
			c.failed(gen, ev.Err)
		}
	})
}

func (c *Core) current() (Engine, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.destroyed {
		return nil, ErrDestroyed
	}
	return c.engine, nil
}

// prepare returns an engine ready for a new source. An engine that has already loaded
// something is destroyed and replaced first.
func (c *Core) prepare() (Engine, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.destroyed {
		return nil, ErrDestroyed
	}
	if c.engine.State().Phase == PhaseConstructed {
		return c.engine, nil
	}

	old := c.engine
	c.gen.Add(1)
	if err := old.Destroy(); err != nil {
		log.Warnf("destroy previous %s engine: %v", old.Kind(), err)
	}

	e, err := c.factory(c.cfg, c.opts)
	if err != nil {
		return nil, fmt.Errorf("create %s engine: %w", c.kind, err)
	}
	c.attach(e)
	return e, nil
}

func (c *Core) config() Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg
}

// Load replaces the active source and applies the startup policy once the engine is ready.
// A source loaded this way has no fallback.
func (c *Core) Load(ctx context.Context, cand *source.Candidate) error {
	c.disarm()

	e, err := c.prepare()
	if err != nil {
		return err
	}
	if err := e.Load(ctx, cand); err != nil {
		return err
	}
	return c.start(e)
}

// start applies the startup policy: the highest quality strictly before autoplay,
// then preferred tracks and volume. Controls the engine lacks are skipped.
func (c *Core) start(e Engine) error {
	cfg := c.config()

	if cfg.PreferHighestOnStart && len(e.Qualities()) > 0 {
		if err := e.SetQualityMax(); !tolerable(err) {
			return fmt.Errorf("select highest quality: %w", err)
		}
	}

	if audio := e.AudioTracks(); len(audio) > 0 {
		langs := lo.Map(audio, func(a AudioTrack, _ int) string { return a.Lang })
		labels := lo.Map(audio, func(a AudioTrack, _ int) string { return a.Label })
		if i, ok := matchLanguage(cfg.PreferredAudioLang, langs, labels); ok {
			if err := e.SetAudio(audio[i].ID); !tolerable(err) {
				log.Warnf("select %s audio: %v", cfg.PreferredAudioLang, err)
			}
		}
	}

	if text := e.TextTracks(); len(text) > 0 {
		langs := lo.Map(text, func(t TextTrack, _ int) string { return t.Lang })
		labels := lo.Map(text, func(t TextTrack, _ int) string { return t.Label })
		if i, ok := matchLanguage(cfg.PreferredTextLang, langs, labels); ok {
			if err := e.SetText(text[i].ID); !tolerable(err) {
				log.Warnf("select %s subtitles: %v", cfg.PreferredTextLang, err)
			}
		}
	}

	if err := e.SetVolume(cfg.Volume); !tolerable(err) {
		log.Warnf("set volume: %v", err)
	}
	if err := e.SetMuted(cfg.Muted); !tolerable(err) {
		log.Warnf("set muted: %v", err)
	}

	if cfg.AutoPlay {
		if err := e.Play(); !tolerable(err) {
			return fmt.Errorf("autoplay: %w", err)
		}
	}
	return nil
}

func tolerable(err error) bool {
	return err == nil || errors.Is(err, ErrUnsupported)
}

// UpdateConfig merges u into the policy. Volume and mute apply immediately, the rest on the next relevant operation.
func (c *Core) UpdateConfig(u ConfigUpdate) {
	c.mu.Lock()
	c.cfg = c.cfg.Apply(u)
	cfg := c.cfg
	e := c.engine
	destroyed := c.destroyed
	c.mu.Unlock()

	if destroyed {
		return
	}
	if configurable, ok := e.(Configurable); ok {
		configurable.UpdateConfig(cfg)
	}
	if u.Volume.IsPresent() {
		if err := e.SetVolume(cfg.Volume); !tolerable(err) {
			log.Warnf("set volume: %v", err)
		}
	}
	if u.Muted.IsPresent() {
		if err := e.SetMuted(cfg.Muted); !tolerable(err) {
			log.Warnf("set muted: %v", err)
		}
	}
}

// Config returns the current policy.
func (c *Core) Config() Config {
	return c.config()
}

func (c *Core) Kind() capability.Platform {
	return c.kind
}

// State returns the snapshot of the active engine. After Destroy it is the final snapshot.
func (c *Core) State() State {
	c.mu.Lock()
	e := c.engine
	c.mu.Unlock()
	return e.State()
}

// Destroy releases the active engine. Calling it again is a no-op.
func (c *Core) Destroy() error {
	c.mu.Lock()
	if c.destroyed {
		c.mu.Unlock()
		return nil
	}
	c.destroyed = true
	c.armed = nil
	e := c.engine
	c.gen.Add(1)
	c.mu.Unlock()

	err := e.Destroy()
	c.resuming.Wait()
	c.close(Event{Type: EventStateChanged, State: e.State()})
	return err
}

func (c *Core) Play() error {
	return c.with(Engine.Play)
}

func (c *Core) Pause() error {
	return c.with(Engine.Pause)
}

func (c *Core) Seek(seconds float64) error {
	return c.with(func(e Engine) error { return e.Seek(seconds) })
}

func (c *Core) SetVolume(v float64) error {
	return c.with(func(e Engine) error { return e.SetVolume(v) })
}

func (c *Core) SetMuted(muted bool) error {
	return c.with(func(e Engine) error { return e.SetMuted(muted) })
}

func (c *Core) Qualities() []Quality {
	return tracksOf(c, Engine.Qualities)
}

func (c *Core) SetQuality(id string) error {
	return c.with(func(e Engine) error { return e.SetQuality(id) })
}

func (c *Core) SetQualityMax() error {
	return c.with(Engine.SetQualityMax)
}

func (c *Core) AudioTracks() []AudioTrack {
	return tracksOf(c, Engine.AudioTracks)
}

func (c *Core) SetAudio(id string) error {
	return c.with(func(e Engine) error { return e.SetAudio(id) })
}

func (c *Core) TextTracks() []TextTrack {
	return tracksOf(c, Engine.TextTracks)
}

func (c *Core) SetText(id string) error {
	return c.with(func(e Engine) error { return e.SetText(id) })
}

func (c *Core) AttachExternalSubtitle(ctx context.Context, url string, format subtitle.Format, lang, label string) (TextTrack, error) {
	e, err := c.current()
	if err != nil {
		return TextTrack{}, err
	}
	return e.AttachExternalSubtitle(ctx, url, format, lang, label)
}

func (c *Core) with(fn func(e Engine) error) error {
	e, err := c.current()
	if err != nil {
		return err
	}
	return fn(e)
}

func tracksOf[T any](c *Core, list func(e Engine) []T) []T {
	e, err := c.current()
	if err != nil {
		return nil
	}
	return list(e)
}
