package pusher

import (
	"context"
	"encoding/json"
	"sync"
)

// Event is a message received on a subscribed channel.
type Event struct {
	Name    string
	Channel string
	// Data is the event payload. Payloads the service delivers as JSON strings
	// are unquoted.
	Data []byte
}

// Decode unmarshals Data into v.
func (e Event) Decode(v any) error {
	return json.Unmarshal(e.Data, v)
}

// Subscription receives events fanned out by a Client.
type Subscription struct {
	ch     chan Event
	done   chan struct{}
	detach func()
	closed bool
	mu     sync.RWMutex
}

// C returns the receive channel. It is closed when the subscription or the
// client is closed.
func (s *Subscription) C() <-chan Event {
	return s.ch
}

// Close stops delivery and detaches the subscription from its client. It is
// idempotent.
func (s *Subscription) Close() error {
	if s.detach != nil {
		s.detach()
	}
	s.shut()
	return nil
}

func (s *Subscription) shut() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		close(s.ch)
		close(s.done)
		s.closed = true
	}
}

func (s *Subscription) send(ev Event) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false
	}

	select {
	case s.ch <- ev:
		return true
	default:
		return false
	}
}

// fanout delivers events to subscriptions without blocking the read loop.
type fanout struct {
	subs   map[*Subscription]struct{}
	buffer int
	closed bool
	done   chan struct{}
	mu     sync.RWMutex
}

func newFanout(buffer int) *fanout {
	return &fanout{
		subs:   make(map[*Subscription]struct{}),
		buffer: max(buffer, 1),
		done:   make(chan struct{}),
	}
}

func (f *fanout) subscribe(ctx context.Context) *Subscription {
	f.mu.Lock()
	defer f.mu.Unlock()

	sub := &Subscription{
		ch:   make(chan Event, f.buffer),
		done: make(chan struct{}),
	}
	if f.closed {
		sub.shut()
		return sub
	}
	sub.detach = func() { f.remove(sub) }
	f.subs[sub] = struct{}{}

	if ctx.Done() != nil {
		go func() {
			select {
			case <-ctx.Done():
				f.remove(sub)
			case <-sub.done:
			case <-f.done:
			}
		}()
	}

	return sub
}

// publish drops the event for subscribers whose buffer is full.
func (f *fanout) publish(ev Event) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.closed {
		return
	}
	for sub := range f.subs {
		sub.send(ev)
	}
}

func (f *fanout) remove(sub *Subscription) {
	f.mu.Lock()
	delete(f.subs, sub)
	f.mu.Unlock()

	sub.shut()
}

func (f *fanout) count() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subs)
}

func (f *fanout) close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return
	}
	f.closed = true
	close(f.done)
	for sub := range f.subs {
		sub.shut()
	}
	clear(f.subs)
}
