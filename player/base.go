package player

import (
	"slices"
	"sync"

	"github.com/arflix-cli/arflix/capability"
	"github.com/arflix-cli/arflix/log"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// base holds what every engine shares: the registry, the state snapshot and the track lists.
type base struct {
	*emitter

	kind capability.Platform

	mu     sync.RWMutex
	state  State
	cfg    Config
	tracks Tracks

	// dead is closed by destroy. Blocking operations select on it.
	dead chan struct{}
}

func newBase(kind capability.Platform, cfg Config) *base {
	return &base{
		emitter: newEmitter(),
		kind:    kind,
		cfg:     cfg,
		dead:    make(chan struct{}),
		state: State{
			Phase:  PhaseConstructed,
			Volume: clamp(cfg.Volume),
			Muted:  cfg.Muted,
		},
	}
}

func (b *base) Kind() capability.Platform {
	return b.kind
}

// State returns a copy of the current snapshot. It is safe after Destroy.
func (b *base) State() State {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state
}

// UpdateConfig replaces the policy used by later operations.
func (b *base) UpdateConfig(cfg Config) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cfg = cfg
}

func (b *base) config() Config {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.cfg
}

func (b *base) phase() Phase {
	return b.State().Phase
}

func (b *base) alive() error {
	if b.phase() == PhaseDestroyed {
		return ErrDestroyed
	}
	return nil
}

func (b *base) loaded() error {
	switch p := b.phase(); {
	case p == PhaseDestroyed:
		return ErrDestroyed
	case !p.Loaded():
		return ErrNotLoaded
	default:
		return nil
	}
}

// setPhase moves to p and emits the new snapshot. Invalid transitions are ignored.
func (b *base) setPhase(p Phase) bool {
	b.mu.Lock()
	from := b.state.Phase
	if from == p || !from.CanTransition(p) {
		b.mu.Unlock()
		if from != p {
			log.Debugf("%s engine: ignoring transition %s -> %s", b.kind, from, p)
		}
		return false
	}
	b.state.Phase = p
	b.state.Playing = p == PhasePlaying
	snapshot := b.state
	b.mu.Unlock()

	b.emit(Event{Type: EventStateChanged, State: snapshot})
	return true
}

// update mutates the snapshot under the lock. Destroyed snapshots are frozen.
func (b *base) update(fn func(s *State)) (State, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state.Phase == PhaseDestroyed {
		return b.state, false
	}
	fn(&b.state)
	return b.state, true
}

// beginLoad resets per-source state and enters the loading phase.
func (b *base) beginLoad() {
	b.mu.Lock()
	b.tracks = Tracks{}
	b.state.CurrentTime = 0
	b.state.Duration = 0
	b.state.Buffered = 0
	b.state.Quality = mo.None[Quality]()
	b.state.Audio = mo.None[AudioTrack]()
	b.state.Text = mo.None[TextTrack]()
	b.mu.Unlock()

	b.setPhase(PhaseLoading)
	b.emit(Event{Type: EventLoadStart})
}

// fail enters the errored phase and reports err.
func (b *base) fail(err error) {
	if b.phase() == PhaseDestroyed {
		return
	}
	log.Errorf("%s engine: %v", b.kind, err)
	b.emit(Event{Type: EventError, Err: err})
	b.setPhase(PhaseErrored)
}

// destroy freezes the snapshot and tears the registry down. It reports false when already destroyed.
func (b *base) destroy() bool {
	b.mu.Lock()
	if b.state.Phase == PhaseDestroyed {
		b.mu.Unlock()
		return false
	}
	b.state.Phase = PhaseDestroyed
	b.state.Playing = false
	snapshot := b.state
	close(b.dead)
	b.mu.Unlock()

	b.close(Event{Type: EventStateChanged, State: snapshot})
	return true
}

// gone is closed once the engine is destroyed.
func (b *base) gone() <-chan struct{} {
	return b.dead
}

func (b *base) setTracks(t Tracks) {
	b.mu.Lock()
	b.tracks = t
	b.mu.Unlock()
}

func (b *base) Qualities() []Quality {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.tracks.Qualities)
}

func (b *base) AudioTracks() []AudioTrack {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.tracks.Audio)
}

func (b *base) TextTracks() []TextTrack {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.tracks.Text)
}

func (b *base) addText(t TextTrack) {
	b.mu.Lock()
	b.tracks.Text = append(b.tracks.Text, t)
	b.mu.Unlock()
}

func (b *base) snapshotTracks() Tracks {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return Tracks{
		Qualities: slices.Clone(b.tracks.Qualities),
		Audio:     slices.Clone(b.tracks.Audio),
		Text:      slices.Clone(b.tracks.Text),
	}
}

func (b *base) findQuality(id string) (Quality, bool) {
	return lo.Find(b.Qualities(), func(q Quality) bool { return q.ID == id })
}

func (b *base) findAudio(id string) (AudioTrack, bool) {
	return lo.Find(b.AudioTracks(), func(a AudioTrack) bool { return a.ID == id })
}

func (b *base) findText(id string) (TextTrack, bool) {
	return lo.Find(b.TextTracks(), func(t TextTrack) bool { return t.ID == id })
}
