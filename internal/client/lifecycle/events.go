// Package lifecycle turns foreground/background events into login and
// logout records.
package lifecycle

import "sync"

// EventKind is the kind of a lifecycle event.
type EventKind int

const (
	Foreground EventKind = iota + 1
	Background
	ProcessDestroyed
)

func (k EventKind) String() string {
	switch k {
	case Foreground:
		return "foreground"
	case Background:
		return "background"
	case ProcessDestroyed:
		return "process_destroyed"
	default:
		return "unknown"
	}
}

// Event is a lifecycle transition of the signed-in user.
type Event struct {
	Kind   EventKind
	UserID string
}

// EventSource delivers lifecycle events. The channel is closed when the
// source has nothing more to say.
type EventSource interface {
	Events() <-chan Event
}

// Feed is an EventSource fed by explicit calls.
type Feed struct {
	ch     chan Event
	once   sync.Once
	mu     sync.RWMutex
	closed bool
}

// NewFeed returns a feed buffering up to size events.
func NewFeed(size int) *Feed {
	return &Feed{ch: make(chan Event, size)}
}

func (f *Feed) Events() <-chan Event { return f.ch }

// Publish delivers ev. It reports false once the feed is closed.
func (f *Feed) Publish(ev Event) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.closed {
		return false
	}
	f.ch <- ev
	return true
}

func (f *Feed) Close() {
	f.once.Do(func() {
		f.mu.Lock()
		f.closed = true
		close(f.ch)
		f.mu.Unlock()
	})
}
