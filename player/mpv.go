package player

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/arflix-cli/arflix/capability"
	"github.com/arflix-cli/arflix/constant"
	"github.com/arflix-cli/arflix/filesystem"
	"github.com/arflix-cli/arflix/log"
	"github.com/arflix-cli/arflix/source"
	"github.com/arflix-cli/arflix/subtitle"
	"github.com/arflix-cli/arflix/where"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

const (
	socketWaitRetries = 20
	socketWaitDelay   = 150 * time.Millisecond
	quitTimeout       = 3 * time.Second
)

// process is a spawned engine executable.
type process interface {
	Exited() <-chan struct{}
	Kill() error
}

type execProcess struct {
	cmd    *exec.Cmd
	exited chan struct{}
}

func (p *execProcess) Exited() <-chan struct{} { return p.exited }
func (p *execProcess) Kill() error             { return killProcess(p.cmd) }

func startProcess(path string, args []string) (process, error) {
	cmd := exec.Command(path, args...)

	// Detach from parent process group to prevent cascading shell panics.
	cmd.SysProcAttr = sysProcAttr()
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.Stdin = nil

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", filepath.Base(path), err)
	}

	p := &execProcess{cmd: cmd, exited: make(chan struct{})}
	// reap the process to prevent zombies
	go func() {
		_ = cmd.Wait()
		close(p.exited)
	}()
	return p, nil
}

// MPV drives a desktop mpv process over its JSON-IPC endpoint.
type MPV struct {
	*base

	path string
	// optPrefix is prepended to every mpv option, IINA forwards "--mpv-" options.
	optPrefix string
	// launcher marks a spawned process that exits once the player is up. Liveness follows the IPC connection.
	launcher bool
	socket   string
	spawn     func(path string, args []string) (process, error)
	dial      dialFunc
	fetcher   *subtitle.Fetcher

	loadMu sync.Mutex

	procMu sync.Mutex
	proc   process
	ipc    *ipcClient
	obs    *observer
	temps  []string

	waitMu  sync.Mutex
	waiter  chan error
	seeking bool
}

// NewMPV returns an engine driving the mpv executable at path. The process starts on the first Load.
func NewMPV(path string, cfg Config, fetcher *subtitle.Fetcher) *MPV {
	return newMPV(capability.Desktop, path, "", cfg, fetcher)
}

func newMPV(kind capability.Platform, path, optPrefix string, cfg Config, fetcher *subtitle.Fetcher) *MPV {
	if path == "" {
		path = "mpv"
	}
	if fetcher == nil {
		fetcher = subtitle.NewFetcher()
	}

	return &MPV{
		base:      newBase(kind, cfg),
		path:      path,
		optPrefix: optPrefix,
		socket:    ipcAddress(constant.Arflix + "-" + uuid.NewString()[:8]),
		spawn:     startProcess,
		dial:      dialIPC,
		fetcher:   fetcher,
	}
}

// Socket returns the IPC endpoint.
func (m *MPV) Socket() string {
	return m.socket
}

func (m *MPV) opt(name, value string) string {
	return fmt.Sprintf("--%s%s=%s", m.optPrefix, name, value)
}

// args respects the user's mpv.conf: no --vo, --profile or --hwdec.
func (m *MPV) args() []string {
	cfg := m.config()

	args := []string{
		m.opt("input-ipc-server", m.socket),
		m.opt("idle", "yes"),
		m.opt("force-window", "yes"),
		m.opt("terminal", "no"),
		m.opt("really-quiet", "yes"),
		m.opt("pause", "yes"),
		m.opt("volume", strconv.Itoa(int(clamp(cfg.Volume)*100))),
		m.opt("mute", yesNo(cfg.Muted)),
		m.opt("sub-delay", formatSeconds(cfg.SubtitleOffset)),
	}

	if !cfg.EnableABR {
		args = append(args, m.opt("hls-bitrate", "max"))
	}
	if cfg.MaxBufferSize > 0 {
		args = append(args, m.opt("demuxer-max-bytes", fmt.Sprintf("%dMiB", cfg.MaxBufferSize)))
	}
	if cfg.MaxBufferLength > 0 {
		args = append(args, m.opt("cache", "yes"), m.opt("cache-secs", strconv.Itoa(cfg.MaxBufferLength)))
	}

	return args
}

// UpdateConfig applies the runtime-adjustable options to a running process.
func (m *MPV) UpdateConfig(cfg Config) {
	m.base.UpdateConfig(cfg)

	ipc, ok := m.client()
	if !ok {
		return
	}
	if err := ipc.set("sub-delay", cfg.SubtitleOffset.Seconds()); err != nil {
		log.Warnf("mpv: set sub-delay: %v", err)
	}
	if err := ipc.set("hls-bitrate", lo.Ternary(cfg.EnableABR, "no", "max")); err != nil {
		log.Warnf("mpv: set hls-bitrate: %v", err)
	}
}

func (m *MPV) client() (*ipcClient, bool) {
	m.procMu.Lock()
	defer m.procMu.Unlock()

	if m.proc == nil || m.ipc == nil || m.obs == nil || !m.obs.alive() {
		return nil, false
	}
	select {
	case <-m.exited(m.proc):
		return nil, false
	default:
		return m.ipc, true
	}
}

// exited returns the channel signalling the end of the engine, nil for launchers.
func (m *MPV) exited(proc process) <-chan struct{} {
	if m.launcher {
		return nil
	}
	return proc.Exited()
}

// ensureRunning spawns the process and connects the event listener when needed.
func (m *MPV) ensureRunning(ctx context.Context) (*ipcClient, error) {
	if ipc, ok := m.client(); ok {
		return ipc, nil
	}

	m.procMu.Lock()
	defer m.procMu.Unlock()

	if m.obs != nil {
		m.obs.Stop()
		m.obs = nil
	}
	removeIPC(m.socket)

	proc, err := m.spawn(m.path, m.args())
	if err != nil {
		return nil, err
	}

	if err := m.waitForSocket(ctx, proc); err != nil {
		select {
		case <-proc.Exited():
		default:
			log.Warnf("killing %s: socket never became ready", m.path)
			_ = proc.Kill()
		}
		return nil, fmt.Errorf("mpv socket not ready: %w", err)
	}

	obs, err := observe(m.socket, m.dial, m.handle, m.disconnected)
	if err != nil {
		_ = proc.Kill()
		return nil, err
	}

	m.proc = proc
	m.ipc = newIPCClient(m.socket, m.dial)
	m.obs = obs
	return m.ipc, nil
}

// waitForSocket polls until the IPC endpoint is accepting connections.
func (m *MPV) waitForSocket(ctx context.Context, proc process) error {
	for i := 0; i < socketWaitRetries; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-m.gone():
			return ErrDestroyed
		case <-m.exited(proc):
			return ErrEngineExited
		case <-time.After(socketWaitDelay):
		}

		conn, err := m.dial(m.socket, dialTimeout)
		if err == nil {
			_ = conn.Close()
			return nil
		}
	}
	return fmt.Errorf("socket %s not ready after %d attempts", m.socket, socketWaitRetries)
}

// Load opens c in the running process, starting it first if needed. It returns once the file is loaded.
func (m *MPV) Load(ctx context.Context, c *source.Candidate) error {
	if err := m.alive(); err != nil {
		return err
	}
	if c == nil {
		return fmt.Errorf("load: %w", source.ErrNoURL)
	}

	// Sanitize the URL to prevent flag injection from resolver scripts
	target, err := sanitizeMediaTarget(c.URL)
	if err != nil {
		return fmt.Errorf("invalid media target: %w", err)
	}

	m.loadMu.Lock()
	defer m.loadMu.Unlock()

	m.beginLoad()

	if err := m.load(ctx, c, target); err != nil {
		m.fail(err)
		return err
	}

	return m.ready(ctx)
}

func (m *MPV) load(ctx context.Context, c *source.Candidate, target string) error {
	ipc, err := m.ensureRunning(ctx)
	if err != nil {
		return err
	}

	if err := ipc.set("http-header-fields", headerFields(c.Headers)); err != nil {
		return fmt.Errorf("set headers: %w", err)
	}
	if err := ipc.set("force-media-title", sanitizeTitle(c.DisplayTitle())); err != nil {
		return fmt.Errorf("set title: %w", err)
	}
	if err := ipc.set("pause", true); err != nil {
		return fmt.Errorf("pause: %w", err)
	}

	waiter := m.expect()
	defer m.expect()

	if _, err := ipc.command("loadfile", target, "replace"); err != nil {
		return fmt.Errorf("loadfile: %w", err)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-m.gone():
		return ErrDestroyed
	case err := <-waiter:
		return err
	}
}

// expect installs a fresh channel notified by the next file-loaded or failed end-file event.
func (m *MPV) expect() <-chan error {
	m.waitMu.Lock()
	defer m.waitMu.Unlock()
	m.waiter = make(chan error, 1)
	return m.waiter
}

func (m *MPV) notify(err error) {
	m.waitMu.Lock()
	defer m.waitMu.Unlock()

	select {
	case m.waiter <- err:
	default:
	}
}

// ready publishes the tracks of the loaded file. Tracks are never reported before this point.
func (m *MPV) ready(ctx context.Context) error {
	ipc, ok := m.client()
	if !ok {
		err := ErrEngineExited
		m.fail(err)
		return err
	}

	tracks, sel, err := m.fetchTracks(ipc)
	if err != nil {
		log.Warnf("mpv: track-list: %v", err)
	}
	duration, err := ipc.getFloat("duration")
	if err != nil && !isUnavailable(err) {
		log.Warnf("mpv: duration: %v", err)
	}

	m.setTracks(tracks)
	m.update(func(s *State) {
		s.Duration = duration
		s.Quality = sel.Quality
		s.Audio = sel.Audio
		s.Text = sel.Text
	})

	if ctx.Err() != nil {
		return ctx.Err()
	}

	if !m.setPhase(PhaseReady) {
		return m.alive()
	}

	m.emit(
		Event{Type: EventReady},
		Event{Type: EventTracks, Tracks: m.snapshotTracks()},
		Event{Type: EventCanPlay},
	)
	return nil
}

func (m *MPV) fetchTracks(ipc *ipcClient) (Tracks, selection, error) {
	data, err := ipc.command("get_property", "track-list")
	if err != nil {
		return Tracks{}, selection{}, err
	}
	list, err := parseTrackList(data)
	if err != nil {
		return Tracks{}, selection{}, err
	}
	tracks, sel := convertTracks(list)
	return tracks, sel, nil
}

// handle translates one mpv event. It runs on the listener goroutine.
func (m *MPV) handle(msg ipcMessage) {
	switch msg.Event {
	case "file-loaded":
		m.notify(nil)
	case "end-file":
		m.endFile(msg)
	case "property-change":
		m.propertyChanged(msg.Name, msg.Data)
	}
}

func (m *MPV) endFile(msg ipcMessage) {
	switch msg.Reason {
	case "error":
		err := fmt.Errorf("mpv: %s", lo.CoalesceOrEmpty(msg.FileError, "playback failed"))
		if m.phase().Loaded() {
			m.fail(err)
			return
		}
		m.notify(err)
	case "eof":
		m.finish()
	}
}

func (m *MPV) finish() {
	if m.phase().Loaded() && m.setPhase(PhaseEnded) {
		m.emit(Event{Type: EventEnded})
	}
}

// disconnected runs when the event connection drops without Stop, i.e. the process is gone.
func (m *MPV) disconnected(error) {
	switch p := m.phase(); {
	case p == PhaseDestroyed:
	case p.Loaded():
		log.Infof("mpv exited, treating as end of playback")
		m.finish()
	default:
		m.notify(ErrEngineExited)
	}
}

// propertyHandlers apply one observed property change each. Every name in observedProperties has one.
var propertyHandlers = map[string]func(*MPV, json.RawMessage){
	"time-pos":            (*MPV).timeChanged,
	"duration":            (*MPV).durationChanged,
	"pause":               (*MPV).pauseChanged,
	"seeking":             (*MPV).seekingChanged,
	"eof-reached":         (*MPV).eofReached,
	"demuxer-cache-state": (*MPV).cacheChanged,
	"track-list":          (*MPV).trackListChanged,
	"volume":              (*MPV).volumeChanged,
	"mute":                (*MPV).muteChanged,
	"sub-text":            (*MPV).cueChanged,
	"vid":                 (*MPV).videoChanged,
	"aid":                 (*MPV).audioChanged,
	"sid":                 (*MPV).textChanged,
}

func (m *MPV) propertyChanged(name string, data json.RawMessage) {
	if !m.phase().Loaded() {
		return
	}
	if handle, ok := propertyHandlers[name]; ok {
		handle(m, data)
	}
}

func (m *MPV) timeChanged(data json.RawMessage) {
	var pos float64
	if json.Unmarshal(data, &pos) != nil {
		return
	}
	if s, ok := m.update(func(s *State) { s.CurrentTime = pos }); ok {
		m.emit(Event{Type: EventTime, Time: s.CurrentTime, Duration: s.Duration})
	}
}

func (m *MPV) durationChanged(data json.RawMessage) {
	var d float64
	if json.Unmarshal(data, &d) == nil {
		m.update(func(s *State) { s.Duration = d })
	}
}

func (m *MPV) pauseChanged(data json.RawMessage) {
	var paused bool
	if json.Unmarshal(data, &paused) == nil {
		m.setPhase(lo.Ternary(paused, PhasePaused, PhasePlaying))
	}
}

func (m *MPV) seekingChanged(data json.RawMessage) {
	var seeking bool
	if json.Unmarshal(data, &seeking) != nil {
		return
	}
	m.waitMu.Lock()
	was := m.seeking
	m.seeking = seeking
	m.waitMu.Unlock()

	switch {
	case seeking && !was:
		m.emit(Event{Type: EventSeeking})
	case !seeking && was:
		m.emit(Event{Type: EventSeeked})
	}
}

func (m *MPV) eofReached(data json.RawMessage) {
	var eof bool
	if json.Unmarshal(data, &eof) == nil && eof {
		m.finish()
	}
}

func (m *MPV) cacheChanged(data json.RawMessage) {
	var cache struct {
		CacheEnd float64 `json:"cache-end"`
	}
	if json.Unmarshal(data, &cache) != nil {
		return
	}
	s, ok := m.update(func(s *State) {
		if s.Duration > 0 {
			s.Buffered = clamp(cache.CacheEnd / s.Duration)
		}
	})
	if ok {
		m.emit(Event{Type: EventBuffer, Buffered: s.Buffered})
	}
}

func (m *MPV) volumeChanged(data json.RawMessage) {
	var v float64
	if json.Unmarshal(data, &v) == nil {
		m.update(func(s *State) { s.Volume = clamp(v / 100) })
	}
}

func (m *MPV) muteChanged(data json.RawMessage) {
	var muted bool
	if json.Unmarshal(data, &muted) == nil {
		m.update(func(s *State) { s.Muted = muted })
	}
}

func (m *MPV) cueChanged(data json.RawMessage) {
	var text string
	_ = json.Unmarshal(data, &text)
	m.emit(Event{Type: EventCue, Cue: splitCue(text)})
}

func (m *MPV) trackListChanged(data json.RawMessage) {
	list, err := parseTrackList(data)
	if err != nil {
		return
	}
	tracks, _ := convertTracks(list)
	m.setTracks(tracks)
	m.emit(Event{Type: EventTracks, Tracks: m.snapshotTracks()})
}

func (m *MPV) videoChanged(data json.RawMessage) {
	q, ok := m.findQuality(trackID(data))
	next := lo.Ternary(ok, mo.Some(q), mo.None[Quality]())
	if m.State().Quality.OrEmpty().ID == next.OrEmpty().ID {
		return
	}
	m.update(func(s *State) { s.Quality = next })
	m.emit(Event{Type: EventQualityChanged, Quality: next})
}

func (m *MPV) audioChanged(data json.RawMessage) {
	a, ok := m.findAudio(trackID(data))
	next := lo.Ternary(ok, mo.Some(a), mo.None[AudioTrack]())
	if m.State().Audio.OrEmpty().ID == next.OrEmpty().ID {
		return
	}
	m.update(func(s *State) { s.Audio = next })
	m.emit(Event{Type: EventAudioChanged, Audio: next})
}

func (m *MPV) textChanged(data json.RawMessage) {
	t, ok := m.findText(trackID(data))
	next := lo.Ternary(ok, mo.Some(t), mo.None[TextTrack]())
	if m.State().Text.OrEmpty().ID == next.OrEmpty().ID {
		return
	}
	m.update(func(s *State) { s.Text = next })
	m.emit(Event{Type: EventTextChanged, Text: next})
}

// trackID reads aid, sid and vid, which are a number or false/"no" when disabled.
func trackID(data json.RawMessage) string {
	var id int
	if json.Unmarshal(data, &id) == nil {
		return strconv.Itoa(id)
	}
	return ""
}

func splitCue(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

func (m *MPV) control(fn func(ipc *ipcClient) error) error {
	if err := m.loaded(); err != nil {
		return err
	}
	ipc, ok := m.client()
	if !ok {
		return ErrEngineExited
	}
	return fn(ipc)
}

func (m *MPV) Play() error {
	return m.control(func(ipc *ipcClient) error {
		if err := ipc.set("pause", false); err != nil {
			return err
		}
		m.setPhase(PhasePlaying)
		return nil
	})
}

func (m *MPV) Pause() error {
	return m.control(func(ipc *ipcClient) error {
		if err := ipc.set("pause", true); err != nil {
			return err
		}
		m.setPhase(PhasePaused)
		return nil
	})
}

// Seek moves playback to the given absolute position in seconds.
func (m *MPV) Seek(seconds float64) error {
	return m.control(func(ipc *ipcClient) error {
		_, err := ipc.command("seek", max(seconds, 0), "absolute")
		return err
	})
}

func (m *MPV) SetVolume(v float64) error {
	if err := m.alive(); err != nil {
		return err
	}
	v = clamp(v)
	if ipc, ok := m.client(); ok {
		if err := ipc.set("volume", v*100); err != nil {
			return err
		}
	}
	m.update(func(s *State) { s.Volume = v })
	return nil
}

func (m *MPV) SetMuted(muted bool) error {
	if err := m.alive(); err != nil {
		return err
	}
	if ipc, ok := m.client(); ok {
		if err := ipc.set("mute", muted); err != nil {
			return err
		}
	}
	m.update(func(s *State) { s.Muted = muted })
	return nil
}

func (m *MPV) SetQuality(id string) error {
	return m.control(func(ipc *ipcClient) error {
		q, ok := m.findQuality(id)
		if !ok {
			return fmt.Errorf("unknown quality %q", id)
		}
		if err := ipc.set("vid", lo.Must(strconv.Atoi(q.ID))); err != nil {
			return err
		}
		s, _ := m.update(func(s *State) { s.Quality = mo.Some(q) })
		m.emit(Event{Type: EventQualityChanged, Quality: s.Quality})
		return nil
	})
}

func (m *MPV) SetQualityMax() error {
	if err := m.loaded(); err != nil {
		return err
	}
	q, ok := highest(m.Qualities()).Get()
	if !ok {
		return nil
	}
	return m.SetQuality(q.ID)
}

func (m *MPV) SetAudio(id string) error {
	return m.control(func(ipc *ipcClient) error {
		a, ok := m.findAudio(id)
		if !ok {
			return fmt.Errorf("unknown audio track %q", id)
		}
		if err := ipc.set("aid", lo.Must(strconv.Atoi(a.ID))); err != nil {
			return err
		}
		s, _ := m.update(func(s *State) { s.Audio = mo.Some(a) })
		m.emit(Event{Type: EventAudioChanged, Audio: s.Audio})
		return nil
	})
}

// SetText shows one subtitle track. The secondary track is always turned off first.
func (m *MPV) SetText(id string) error {
	return m.control(func(ipc *ipcClient) error {
		var next mo.Option[TextTrack]
		if id != TextOff {
			t, ok := m.findText(id)
			if !ok {
				return fmt.Errorf("unknown text track %q", id)
			}
			next = mo.Some(t)
		}

		if err := ipc.set("secondary-sid", "no"); err != nil && !isUnavailable(err) {
			return err
		}

		var value any = "no"
		if t, ok := next.Get(); ok {
			value = lo.Must(strconv.Atoi(t.ID))
		}
		if err := ipc.set("sid", value); err != nil {
			return err
		}

		s, _ := m.update(func(s *State) { s.Text = next })
		m.emit(Event{Type: EventTextChanged, Text: s.Text})
		return nil
	})
}

// AttachExternalSubtitle downloads the file and adds it as a track of the loaded source without selecting it.
func (m *MPV) AttachExternalSubtitle(ctx context.Context, rawURL string, format subtitle.Format, lang, label string) (TextTrack, error) {
	if err := m.loaded(); err != nil {
		return TextTrack{}, err
	}
	ipc, ok := m.client()
	if !ok {
		return TextTrack{}, ErrEngineExited
	}

	if format == "" {
		f, err := subtitle.FormatOf(rawURL)
		if err != nil {
			return TextTrack{}, err
		}
		format = f
	}

	data, err := m.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return TextTrack{}, fmt.Errorf("fetch subtitle: %w", err)
	}

	path, err := filesystem.WriteTemp(where.Temp(), format.Extension(), data)
	if err != nil {
		return TextTrack{}, err
	}
	m.procMu.Lock()
	m.temps = append(m.temps, path)
	m.procMu.Unlock()

	label = lo.CoalesceOrEmpty(label, lang, filepath.Base(rawURL))
	if _, err := ipc.command("sub-add", path, "auto", label, lang); err != nil {
		return TextTrack{}, fmt.Errorf("sub-add: %w", err)
	}

	data, err = ipc.command("get_property", "track-list")
	if err != nil {
		return TextTrack{}, err
	}
	list, err := parseTrackList(data)
	if err != nil {
		return TextTrack{}, err
	}

	added, ok := lo.Find(list, func(t mpvTrack) bool {
		return t.Type == "sub" && t.External && filepath.Clean(t.ExternalFilename) == path
	})
	if !ok {
		return TextTrack{}, fmt.Errorf("sub-add: track for %s not found", path)
	}

	track := TextTrack{
		ID:     strconv.Itoa(added.ID),
		Lang:   lo.CoalesceOrEmpty(lang, added.Lang),
		Kind:   textKind(added),
		Format: format,
		Label:  label,
	}

	tracks, _ := convertTracks(list)
	m.setTracks(tracks)
	m.emit(Event{Type: EventTracks, Tracks: m.snapshotTracks()})
	return track, nil
}

// Destroy quits the process and releases the socket and temporary files. Calling it again is a no-op.
func (m *MPV) Destroy() error {
	if !m.destroy() {
		return nil
	}

	m.procMu.Lock()
	defer m.procMu.Unlock()

	if m.obs != nil {
		m.obs.Stop()
		m.obs = nil
	}

	if m.proc != nil {
		// Try graceful quit via IPC
		_, _ = m.ipc.command("quit")

		if !m.launcher {
			select {
			case <-m.proc.Exited():
			case <-time.After(quitTimeout):
				_ = m.proc.Kill()
			}
		}
		m.proc = nil
		m.ipc = nil
	}

	removeIPC(m.socket)
	for _, path := range m.temps {
		_ = filesystem.API().Remove(path)
	}
	m.temps = nil

	return nil
}

// sanitizeMediaTarget validates that a URL is safe to pass to mpv.
// Prevents flag injection from untrusted resolver scripts.
func sanitizeMediaTarget(link string) (string, error) {
	l := strings.TrimSpace(link)
	if l == "" {
		return "", source.ErrNoURL
	}

	if strings.ContainsAny(l, "\x00\n\r") {
		return "", fmt.Errorf("invalid control characters in URL")
	}

	// URLs must not start with -
	if strings.HasPrefix(l, "-") {
		return "", fmt.Errorf("url must not start with '-' (looks like a flag)")
	}

	if strings.Contains(l, "://") {
		u, err := url.Parse(l)
		if err != nil {
			return "", fmt.Errorf("invalid URL: %w", err)
		}
		switch strings.ToLower(u.Scheme) {
		case "http", "https", "file":
			return l, nil
		default:
			return "", fmt.Errorf("unsupported URL scheme: %s", u.Scheme)
		}
	}

	// Treat as local file path
	return filepath.Clean(l), nil
}

// sanitizeTitle flattens the title to a single line for mpv.
func sanitizeTitle(title string) string {
	t := strings.NewReplacer("\n", " ", "\r", " ", "\t", " ", "\x00", "").Replace(title)
	return strings.TrimSpace(t)
}

func yesNo(b bool) string {
	return lo.Ternary(b, "yes", "no")
}

func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}
