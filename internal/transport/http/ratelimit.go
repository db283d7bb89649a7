package http

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// limiterStore maintains per-user token buckets for message sending and
// evicts buckets idle for longer than the cleanup window.
type limiterStore struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	entries map[string]*limiterEntry
	stopCh  chan struct{}
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// newLimiterStore creates a store allowing perMinute events per key.
// perMinute <= 0 disables limiting.
func newLimiterStore(perMinute int) *limiterStore {
	s := &limiterStore{
		entries: make(map[string]*limiterEntry),
		stopCh:  make(chan struct{}),
	}
	if perMinute > 0 {
		s.limit = rate.Every(time.Minute / time.Duration(perMinute))
		s.burst = perMinute
		go s.cleanupLoop(time.Minute)
	}
	return s
}

// allow reports whether the key may send another message now.
func (s *limiterStore) allow(key string) bool {
	if s.burst == 0 {
		return true
	}

	s.mu.Lock()
	entry, ok := s.entries[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.entries[key] = entry
	}
	entry.lastSeen = time.Now()
	s.mu.Unlock()

	return entry.limiter.Allow()
}

func (s *limiterStore) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			cutoff := time.Now().Add(-10 * time.Minute)
			s.mu.Lock()
			for k, v := range s.entries {
				if v.lastSeen.Before(cutoff) {
					delete(s.entries, k)
				}
			}
			s.mu.Unlock()
		case <-s.stopCh:
			return
		}
	}
}

func (s *limiterStore) stop() {
	close(s.stopCh)
}
