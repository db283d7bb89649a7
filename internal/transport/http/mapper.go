package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/dmarkhas/driftchat/internal/core"
	"github.com/dmarkhas/driftchat/internal/proto"
	"github.com/dmarkhas/driftchat/internal/store"
)

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// statusFromError maps a domain error to an HTTP status. Validation,
// conflict and auth failures all answer 400 by this system's convention;
// anything unexpected is a 500.
func statusFromError(err error) (int, ErrorResponse) {
	var coreErr *core.Error
	if errors.As(err, &coreErr) {
		switch coreErr.Kind {
		case core.KindValidation, core.KindConflict, core.KindAuth:
			return http.StatusBadRequest, ErrorResponse{Error: coreErr.Message}
		}
	}
	return http.StatusInternalServerError, ErrorResponse{Error: "internal server error"}
}

func userToDTO(u *store.User) proto.User {
	return proto.User{
		ID:         u.ID,
		FullName:   u.FullName,
		Email:      u.Email,
		ProfilePic: u.ProfilePic,
		CreatedAt:  u.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:  u.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func messageToDTO(m *store.Message) proto.Message {
	return proto.Message{
		ID:          m.ID,
		SenderID:    m.SenderID,
		RecipientID: m.RecipientID,
		Text:        m.Text,
		Image:       m.Image,
		CreatedAt:   m.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventOnlineUsers:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventOnlineUsers,
			Data:  proto.OnlineUsersData{UserIDs: event.Online},
		}
	case core.EventNewMessage:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventNewMessage,
			Data:  messageToDTO(event.Message),
		}
	default:
		return proto.Outbound{Type: proto.OutboundTypeEvent}
	}
}
