package player

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"github.com/arflix-cli/arflix/log"
)

// observedProperties are watched for the lifetime of an mpv engine.
var observedProperties = []string{
	"time-pos",
	"duration",
	"pause",
	"seeking",
	"eof-reached",
	"demuxer-cache-state",
	"track-list",
	"volume",
	"mute",
	"sub-text",
	"aid",
	"sid",
	"vid",
}

// observer holds one persistent connection on which mpv pushes events.
// Property observers belong to the connection that registered them.
type observer struct {
	conn    net.Conn
	handle  func(ipcMessage)
	onClose func(err error)

	mu       sync.Mutex
	stopped  atomic.Bool
	done     chan struct{}
	stopOnce sync.Once
}

func observe(addr string, dial dialFunc, handle func(ipcMessage), onClose func(error)) (*observer, error) {
	conn, err := dial(addr, dialTimeout)
	if err != nil {
		return nil, fmt.Errorf("event listener connect: %w", err)
	}

	o := &observer{
		conn:    conn,
		handle:  handle,
		onClose: onClose,
		done:    make(chan struct{}),
	}

	for i, name := range observedProperties {
		if err := o.send("observe_property", i+1, name); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("observe %s: %w", name, err)
		}
	}

	go o.readLoop()

	log.Infof("mpv event listener started on %s", addr)
	return o, nil
}

func (o *observer) send(args ...any) error {
	payload, err := json.Marshal(ipcRequest{Command: args})
	if err != nil {
		return err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	_, err = o.conn.Write(append(payload, '\n'))
	return err
}

// Stop closes the connection and waits for the read loop. It must not be called from handle.
func (o *observer) Stop() {
	o.stopOnce.Do(func() {
		o.stopped.Store(true)
		_ = o.conn.Close()
	})
	<-o.done
}

func (o *observer) alive() bool {
	select {
	case <-o.done:
		return false
	default:
		return true
	}
}

func (o *observer) readLoop() {
	defer close(o.done)

	scanner := bufio.NewScanner(o.conn)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		var msg ipcMessage
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			continue
		}

		// replies to observe_property
		if msg.Event == "" {
			continue
		}
		o.handle(msg)
	}

	if o.stopped.Load() {
		return
	}

	err := scanner.Err()
	if err != nil {
		log.Warnf("event listener read error: %v", err)
	}
	if o.onClose != nil {
		o.onClose(err)
	}
}
