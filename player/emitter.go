package player

import (
	"slices"
	"sync"

	"github.com/arflix-cli/arflix/log"
	"github.com/google/uuid"
)

// Listener receives engine events on the engine's dispatch goroutine.
type Listener func(Event)

// ListenerID identifies a subscription for Off.
type ListenerID string

type subscription struct {
	id ListenerID
	fn Listener
}

// emitter is the publish/subscribe registry of one engine.
// Events are queued without blocking the emitting side and delivered in order
// by a single goroutine, so native callbacks never run listeners directly.
type emitter struct {
	mu      sync.Mutex
	subs    []subscription
	pending []Event
	closed  bool

	wake chan struct{}
	done chan struct{}
}

func newEmitter() *emitter {
	e := &emitter{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go e.dispatch()
	return e
}

// On subscribes l and returns its id.
func (e *emitter) On(l Listener) ListenerID {
	id := ListenerID(uuid.NewString())

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.closed {
		e.subs = append(e.subs, subscription{id: id, fn: l})
	}
	return id
}

// Off removes the subscription. Unknown ids are ignored.
func (e *emitter) Off(id ListenerID) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.subs = slices.DeleteFunc(e.subs, func(s subscription) bool {
		return s.id == id
	})
}

func (e *emitter) emit(events ...Event) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.pending = append(e.pending, events...)
	e.mu.Unlock()

	e.signal()
}

// close queues the final events and stops the registry once they are delivered.
// Pending time and buffer events are dropped. It does not wait, so a listener may destroy its engine.
func (e *emitter) close(final ...Event) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.pending = slices.DeleteFunc(e.pending, Event.Periodic)
	e.pending = append(e.pending, final...)
	e.mu.Unlock()

	e.signal()
}

// drained is closed after the last event has been delivered.
func (e *emitter) drained() <-chan struct{} {
	return e.done
}

func (e *emitter) signal() {
	select {
	case e.wake <- struct{}{}:
	default:
	}
}

func (e *emitter) dispatch() {
	defer close(e.done)

	for range e.wake {
		for {
			e.mu.Lock()
			batch := e.pending
			e.pending = nil
			subs := slices.Clone(e.subs)
			closed := e.closed
			if closed && len(batch) == 0 {
				e.subs = nil
			}
			e.mu.Unlock()

			if len(batch) == 0 {
				if closed {
					return
				}
				break
			}

			for _, ev := range batch {
				// close may land while a batch is being delivered.
				if ev.Periodic() && e.isClosed() {
					continue
				}
				for _, s := range subs {
					deliver(s, ev)
				}
			}
		}
	}
}

func (e *emitter) isClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

func deliver(s subscription, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("listener %s panicked on %s: %v", s.id, ev.Type, r)
		}
	}()

	s.fn(ev)
}
