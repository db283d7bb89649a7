package client

import (
	"context"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/dmarkhas/driftchat/internal/proto"
)

// SendStatus tracks an outgoing message's confirmation state.
type SendStatus int

const (
	// SendConfirmed means the server accepted (or originated) the message.
	SendConfirmed SendStatus = iota
	// SendPending means the message was appended optimistically and the
	// send call is still in flight.
	SendPending
	// SendFailed means the send call failed; the message stays visible so
	// the UI can offer a retry, but it never reached the server.
	SendFailed
)

// ChatMessage is a conversation entry plus its confirmation state.
type ChatMessage struct {
	proto.Message
	Status SendStatus
}

// Chat mirrors the active conversation: the contact list, the selected
// partner, its message history, and a single subscription filtering the
// shared incoming stream down to that partner.
type Chat struct {
	c *Client

	mu              sync.Mutex
	users           []proto.User
	selectedUserID  string
	subscribedTo    string
	messages        []ChatMessage
	usersLoading    bool
	messagesLoading bool
}

func newChat(c *Client) *Chat {
	return &Chat{c: c}
}

func (ch *Chat) IsUsersLoading() bool {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return ch.usersLoading
}

func (ch *Chat) IsMessagesLoading() bool {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return ch.messagesLoading
}

// Users returns the last fetched contact list.
func (ch *Chat) Users() []proto.User {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	out := make([]proto.User, len(ch.users))
	copy(out, ch.users)
	return out
}

// Messages returns a snapshot of the conversation, in arrival order.
func (ch *Chat) Messages() []ChatMessage {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	out := make([]ChatMessage, len(ch.messages))
	copy(out, ch.messages)
	return out
}

// SelectedUserID returns the current conversation partner, or "".
func (ch *Chat) SelectedUserID() string {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return ch.selectedUserID
}

// GetUsers fetches the contact list.
func (ch *Chat) GetUsers(ctx context.Context) error {
	ch.setFlag(&ch.usersLoading, true)
	defer ch.setFlag(&ch.usersLoading, false)

	var users []proto.User
	if err := ch.c.doJSON(ctx, http.MethodGet, "/api/messages/users", nil, &users); err != nil {
		ch.c.notify.Error("could not load contacts")
		return err
	}

	ch.mu.Lock()
	ch.users = users
	ch.mu.Unlock()
	return nil
}

// SelectUser switches the conversation to the given partner and loads its
// history, replacing local message state.
func (ch *Chat) SelectUser(ctx context.Context, userID string) error {
	ch.setFlag(&ch.messagesLoading, true)
	defer ch.setFlag(&ch.messagesLoading, false)

	var history []proto.Message
	if err := ch.c.doJSON(ctx, http.MethodGet, "/api/messages/"+userID, nil, &history); err != nil {
		ch.c.notify.Error("could not load messages")
		return err
	}

	messages := make([]ChatMessage, 0, len(history))
	for _, m := range history {
		messages = append(messages, ChatMessage{Message: m, Status: SendConfirmed})
	}

	ch.mu.Lock()
	ch.selectedUserID = userID
	ch.messages = messages
	ch.mu.Unlock()
	return nil
}

// Subscribe attaches the incoming-message filter for the given partner.
// At most one filter is ever active: subscribing again replaces the
// previous filter rather than stacking a second handler.
func (ch *Chat) Subscribe(userID string) {
	ch.mu.Lock()
	if ch.subscribedTo != "" && ch.subscribedTo != userID {
		ch.c.log.Warn().
			Str("old", ch.subscribedTo).
			Str("new", userID).
			Msg("replacing active message subscription")
	}
	ch.subscribedTo = userID
	ch.mu.Unlock()
}

// Unsubscribe detaches the incoming-message filter.
func (ch *Chat) Unsubscribe() {
	ch.mu.Lock()
	ch.subscribedTo = ""
	ch.mu.Unlock()
}

// SendMessage sends text and/or an image (base64 data-URL) to the
// selected partner. The message appears locally as pending immediately
// and flips to confirmed or failed when the call resolves.
func (ch *Chat) SendMessage(ctx context.Context, text, imageDataURL string) error {
	ch.mu.Lock()
	recipientID := ch.selectedUserID
	ch.mu.Unlock()
	if recipientID == "" {
		ch.c.notify.Error("no conversation selected")
		return &APIError{Status: http.StatusBadRequest, Message: "no conversation selected"}
	}

	localID := uuid.NewString()
	ch.appendLocal(recipientID, localID, text, imageDataURL)

	var sent proto.Message
	err := ch.c.doJSON(ctx, http.MethodPost, "/api/messages/send/"+recipientID, map[string]string{
		"text":  text,
		"image": imageDataURL,
	}, &sent)
	if err != nil {
		ch.resolveLocal(localID, nil)
		ch.c.notify.Error("could not send message")
		return err
	}

	ch.resolveLocal(localID, &sent)
	return nil
}

// dispatch feeds one incoming message through the subscription filter.
// Messages from anyone but the subscribed partner are dropped from this
// view; they are still persisted server-side and show up in history.
func (ch *Chat) dispatch(msg proto.Message) {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	if ch.subscribedTo == "" || msg.SenderID != ch.subscribedTo {
		return
	}
	ch.messages = append(ch.messages, ChatMessage{Message: msg, Status: SendConfirmed})
}

// ==== internals ====

func (ch *Chat) setFlag(flag *bool, v bool) {
	ch.mu.Lock()
	*flag = v
	ch.mu.Unlock()
}

func (ch *Chat) appendLocal(recipientID, localID, text, image string) {
	senderID := ""
	if u := ch.c.Session.User(); u != nil {
		senderID = u.ID
	}

	ch.mu.Lock()
	ch.messages = append(ch.messages, ChatMessage{
		Message: proto.Message{
			ID:          localID,
			SenderID:    senderID,
			RecipientID: recipientID,
			Text:        text,
			Image:       image,
		},
		Status: SendPending,
	})
	ch.mu.Unlock()
}

// resolveLocal flips the optimistic entry to confirmed (replacing it with
// the server's version) or failed when sent is nil.
func (ch *Chat) resolveLocal(localID string, sent *proto.Message) {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	for i := range ch.messages {
		if ch.messages[i].ID != localID {
			continue
		}
		if sent == nil {
			ch.messages[i].Status = SendFailed
		} else {
			ch.messages[i] = ChatMessage{Message: *sent, Status: SendConfirmed}
		}
		return
	}
}
