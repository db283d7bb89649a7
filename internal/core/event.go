package core

import "github.com/dmarkhas/driftchat/internal/store"

// EventKind is a notification the core emits to live connections.
type EventKind int

const (
	// EventOnlineUsers carries the full current presence snapshot.
	EventOnlineUsers EventKind = iota
	// EventNewMessage carries a message routed to this connection's user.
	EventNewMessage
)

// Event is sent to a session's queue and serialized by the transport
// write loop.
type Event struct {
	Kind    EventKind
	Online  []string
	Message *store.Message
}

// OnlineUsersEvent builds a presence snapshot event.
func OnlineUsersEvent(online []string) *Event {
	return &Event{Kind: EventOnlineUsers, Online: online}
}

// NewMessageEvent builds a message-arrived event.
func NewMessageEvent(msg *store.Message) *Event {
	return &Event{Kind: EventNewMessage, Message: msg}
}
