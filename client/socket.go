package client

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/dmarkhas/driftchat/internal/proto"
)

// socket owns one live websocket connection and the context its read
// loop runs under.
type socket struct {
	conn   *websocket.Conn
	ctx    context.Context
	cancel context.CancelFunc
}

func (sk *socket) close() {
	sk.cancel()
	_ = sk.conn.Close(websocket.StatusNormalClosure, "bye")
}

// dialSocket opens the websocket. The handshake shares the REST client's
// cookie jar, so the session cookie rides along and the server binds the
// connection to our identity before any events flow. A dedicated client
// is used because websocket.Dial rejects http.Client.Timeout; the dial
// deadline comes from ctx instead.
func (s *Session) dialSocket(ctx context.Context) (*socket, error) {
	wsURL := strings.Replace(s.c.baseURL, "http", "ws", 1) + "/ws"

	conn, _, err := websocket.Dial(ctx, wsURL, &websocket.DialOptions{
		HTTPClient: &http.Client{Jar: s.c.hc.Jar},
	})
	if err != nil {
		return nil, err
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	return &socket{conn: conn, ctx: loopCtx, cancel: cancel}, nil
}

// inboundEnvelope mirrors proto.Outbound with a raw payload so each
// event can be decoded by kind.
type inboundEnvelope struct {
	Type  string          `json:"type"`
	Event string          `json:"event,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
	Error *proto.Error    `json:"error,omitempty"`
}

// runSocket consumes server events until the connection dies, then marks
// the session disconnected. Reconnection is not automatic; the next
// CheckAuth/ConnectSocket call re-establishes the socket.
func (s *Session) runSocket(sock *socket) {
	defer s.socketClosed(sock)
	defer sock.conn.Close(websocket.StatusNormalClosure, "done")

	for {
		var env inboundEnvelope
		if err := wsjson.Read(sock.ctx, sock.conn, &env); err != nil {
			if sock.ctx.Err() == nil {
				s.c.log.Debug().Err(err).Msg("socket read loop ended")
			}
			return
		}
		s.dispatch(env)
	}
}

func (s *Session) dispatch(env inboundEnvelope) {
	switch env.Event {
	case proto.EventOnlineUsers:
		var data proto.OnlineUsersData
		if err := json.Unmarshal(env.Data, &data); err != nil {
			s.c.log.Warn().Err(err).Msg("bad online_users payload")
			return
		}
		s.setOnline(data.UserIDs)

	case proto.EventNewMessage:
		var msg proto.Message
		if err := json.Unmarshal(env.Data, &msg); err != nil {
			s.c.log.Warn().Err(err).Msg("bad new_message payload")
			return
		}
		s.c.Chat.dispatch(msg)

	default:
		if env.Error != nil {
			s.c.log.Warn().Str("code", env.Error.Code).Str("msg", env.Error.Msg).Msg("server error event")
		}
	}
}
