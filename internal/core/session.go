package core

import "sync"

// sessionQueueSize bounds the per-connection event queue. A consumer that
// falls further behind than this starts losing events instead of blocking
// the registry.
const sessionQueueSize = 32

// Session is a live connection bound to one authenticated user. The
// transport's write loop is the sole consumer of Events; the registry,
// broadcaster and router are producers.
type Session struct {
	UserID string
	Events chan *Event

	closeOnce sync.Once
	done      chan struct{}
}

// NewSession constructs a session with an initialized event queue.
func NewSession(userID string) *Session {
	return &Session{
		UserID: userID,
		Events: make(chan *Event, sessionQueueSize),
		done:   make(chan struct{}),
	}
}

// Deliver enqueues an event without blocking. Returns false if the session
// is closed or its queue is full.
func (s *Session) Deliver(ev *Event) bool {
	select {
	case <-s.done:
		return false
	default:
	}

	select {
	case s.Events <- ev:
		return true
	default:
		// Drop if slow consumer.
		return false
	}
}

// Close marks the session dead. Idempotent; the transport watches Done to
// tear down the underlying connection (e.g. when superseded by a newer
// login from the same user).
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
}

// Done is closed when the session has been closed.
func (s *Session) Done() <-chan struct{} {
	return s.done
}
