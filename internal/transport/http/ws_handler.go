package http

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/dmarkhas/driftchat/internal/core"
)

// errSessionReplaced signals that a newer connection for the same user
// took over this session.
var errSessionReplaced = errors.New("session replaced by newer connection")

// WSHandler upgrades HTTP connections and binds them to the registry.
type WSHandler struct {
	registry *core.Registry
	log      *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(registry *core.Registry, logger *zerolog.Logger) *WSHandler {
	return &WSHandler{registry: registry, log: logger}
}

// Serve upgrades the request and runs the session until the connection
// closes, the user logs out, or a newer connection supersedes this one.
// The identity was already verified by AuthMiddleware from the cookie on
// the upgrade request, so the registry binding happens before any event
// traffic flows.
func (h *WSHandler) Serve(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	session := core.NewSession(userID)
	h.registry.Register(session)
	defer h.registry.Unregister(session)

	h.log.Debug().Str("user_id", userID).Msg("ws session registered")

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, conn)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, session)
	}()

	err = <-errCh
	cancel() // stop the other goroutine
	<-errCh

	status := websocket.StatusNormalClosure
	reason := "closing"
	switch {
	case errors.Is(err, errSessionReplaced):
		status = websocket.StatusPolicyViolation
		reason = "session replaced"
	case err != nil && !errors.Is(err, context.Canceled):
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != 0 {
			status = s
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			if status == websocket.StatusNormalClosure {
				status = websocket.StatusInternalError
			}
			reason = err.Error()
			h.log.Warn().Err(err).Str("user_id", userID).Msg("ws connection closed with error")
		}
	}

	conn.Close(status, reason)
	h.log.Debug().Str("user_id", userID).Msg("ws session closed")
}

// readLoop drains inbound frames. Clients send chat over HTTP, not the
// socket, so reading serves only to notice the peer going away.
func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn) error {
	for {
		if _, _, err := conn.Read(ctx); err != nil {
			return err
		}
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, session *core.Session) error {
	for {
		select {
		case event, ok := <-session.Events:
			if !ok {
				return nil
			}
			if err := wsjson.Write(ctx, conn, outboundFromEvent(event)); err != nil {
				h.log.Error().Err(err).Str("user_id", session.UserID).Msg("write ws event")
				return err
			}
		case <-session.Done():
			return errSessionReplaced
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
