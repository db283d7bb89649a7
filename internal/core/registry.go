package core

import (
	"sort"
	"sync"

	"github.com/rs/zerolog"
)

// Registry is the authoritative presence set: it maps a user id to at most
// one live session. It is the single shared mutable resource on the server
// side; every mutation and the snapshot used for the follow-up broadcast
// happen under one lock so connections never observe stale presence after
// a newer one.
type Registry struct {
	mu          sync.Mutex
	sessions    map[string]*Session
	broadcaster *PresenceBroadcaster
	log         *zerolog.Logger
}

// NewRegistry constructs an empty registry. Registries are plain values
// wired through the app, never package globals, so tests and future
// multi-instance setups can each own one.
func NewRegistry(broadcaster *PresenceBroadcaster, logger *zerolog.Logger) *Registry {
	return &Registry{
		sessions:    make(map[string]*Session),
		broadcaster: broadcaster,
		log:         logger,
	}
}

// Register binds a session to its user id. If the user already has a live
// session the old one is replaced and explicitly closed: last connection
// wins, and the superseded transport handle must not linger.
func (r *Registry) Register(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.sessions[s.UserID]; ok && old != s {
		old.Close()
		r.log.Debug().Str("user_id", s.UserID).Msg("replaced existing session")
	}
	r.sessions[s.UserID] = s

	r.broadcastLocked()
}

// Unregister removes the binding for the session's user, but only if s is
// still the current session: the deferred unregister of a replaced
// connection must not evict its successor. Idempotent.
func (r *Registry) Unregister(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.sessions[s.UserID]
	if !ok || current != s {
		return
	}
	delete(r.sessions, s.UserID)
	s.Close()

	r.broadcastLocked()
}

// Lookup returns the live session for a user, if any.
func (r *Registry) Lookup(userID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[userID]
	return s, ok
}

// Snapshot returns the sorted list of user ids with a live session.
func (r *Registry) Snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.snapshotLocked()
}

func (r *Registry) snapshotLocked() []string {
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// broadcastLocked pushes the current snapshot to every live session.
// Called with r.mu held: enqueueing under the lock keeps each session's
// queue ordered by mutation, and Deliver never blocks.
func (r *Registry) broadcastLocked() {
	if r.broadcaster == nil {
		return
	}

	online := r.snapshotLocked()
	targets := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		targets = append(targets, s)
	}
	r.broadcaster.Broadcast(targets, online)
}
