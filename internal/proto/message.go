package proto

// Wire contract shared by the server transport and the Go client.
// All realtime traffic is server -> client; clients send chat messages
// over HTTP and use the socket only to receive events.

const (
	ProtocolVersion = 1

	OutboundTypeEvent = "event"
	OutboundTypeError = "error"

	// EventOnlineUsers carries the full current online-user-id list.
	// Emitted to every live connection on each registry change.
	EventOnlineUsers = "online_users"
	// EventNewMessage carries a freshly routed message to its recipient.
	EventNewMessage = "new_message"
)

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// OnlineUsersData lists every user id with a live connection.
type OnlineUsersData struct {
	UserIDs []string `json:"user_ids"`
}

// User is the identity DTO exposed over HTTP.
type User struct {
	ID         string `json:"id"`
	FullName   string `json:"fullName"`
	Email      string `json:"email"`
	ProfilePic string `json:"profilePic,omitempty"`
	CreatedAt  string `json:"createdAt"`
	UpdatedAt  string `json:"updatedAt"`
}

// Message is the chat message DTO, shared by the send/history endpoints
// and the new_message socket event. At least one of Text/Image is set.
type Message struct {
	ID          string `json:"id"`
	SenderID    string `json:"senderId"`
	RecipientID string `json:"recipientId"`
	Text        string `json:"text,omitempty"`
	Image       string `json:"image,omitempty"`
	CreatedAt   string `json:"createdAt"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
