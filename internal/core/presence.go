package core

import "github.com/rs/zerolog"

// PresenceBroadcaster pushes presence snapshots to live sessions. A
// failure to enqueue for one session never aborts delivery to the rest;
// the lagging connection simply misses an intermediate snapshot and
// catches up on the next registry change.
type PresenceBroadcaster struct {
	log *zerolog.Logger
}

// NewPresenceBroadcaster constructs a broadcaster.
func NewPresenceBroadcaster(logger *zerolog.Logger) *PresenceBroadcaster {
	return &PresenceBroadcaster{log: logger}
}

// Broadcast enqueues the online-user list to every target session.
func (b *PresenceBroadcaster) Broadcast(targets []*Session, online []string) {
	ev := OnlineUsersEvent(online)
	for _, s := range targets {
		if !s.Deliver(ev) {
			b.log.Warn().Str("user_id", s.UserID).Msg("presence event dropped for slow session")
		}
	}
}
