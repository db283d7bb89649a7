package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dmarkhas/driftchat/internal/config"
	"github.com/dmarkhas/driftchat/internal/core"
	"github.com/dmarkhas/driftchat/internal/media"
	"github.com/dmarkhas/driftchat/internal/proto"
	"github.com/dmarkhas/driftchat/internal/store"
)

// MessageHandlers provides HTTP handlers for the messaging endpoints.
type MessageHandlers struct {
	router   *core.Router
	store    store.Store
	uploader media.Uploader
	limiter  *limiterStore
	log      *zerolog.Logger
}

// NewMessageHandlers creates a new message handlers instance.
func NewMessageHandlers(router *core.Router, st store.Store, uploader media.Uploader, cfg *config.Config, logger *zerolog.Logger) *MessageHandlers {
	return &MessageHandlers{
		router:   router,
		store:    st,
		uploader: uploader,
		limiter:  newLimiterStore(cfg.SendPerMinute),
		log:      logger,
	}
}

// SendRequest represents the send-message request body.
type SendRequest struct {
	Text  string `json:"text"`
	Image string `json:"image"`
}

// ListUsers returns every user except the caller, for the contact list.
// GET /api/messages/users
func (h *MessageHandlers) ListUsers(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	users, err := h.store.ListUsersExcept(c.Request.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Msg("list users failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]proto.User, 0, len(users))
	for _, u := range users {
		response = append(response, userToDTO(u))
	}
	c.JSON(http.StatusOK, response)
}

// GetConversation returns the full message history with one partner.
// GET /api/messages/:userId
func (h *MessageHandlers) GetConversation(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}
	partnerID := c.Param("userId")

	messages, err := h.store.ListConversation(c.Request.Context(), userID, partnerID)
	if err != nil {
		h.log.Error().Err(err).Str("partner_id", partnerID).Msg("list conversation failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]proto.Message, 0, len(messages))
	for _, m := range messages {
		response = append(response, messageToDTO(m))
	}
	c.JSON(http.StatusOK, response)
}

// Send persists a message to the recipient and pushes it to their live
// connection when one exists. Push failures stay invisible to the sender.
// POST /api/messages/send/:userId
func (h *MessageHandlers) Send(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}
	recipientID := c.Param("userId")

	if !h.limiter.allow(userID) {
		c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "too many messages, slow down"})
		return
	}

	var req SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	if req.Text == "" && req.Image == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "message must have text or an image"})
		return
	}

	imageURL := ""
	if req.Image != "" {
		if h.uploader == nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "image uploads are disabled"})
			return
		}
		url, err := h.uploader.Upload(c.Request.Context(), req.Image)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid image"})
			return
		}
		imageURL = url
	}

	msg := &store.Message{
		ID:          uuid.NewString(),
		SenderID:    userID,
		RecipientID: recipientID,
		Text:        req.Text,
		Image:       imageURL,
		CreatedAt:   time.Now().UTC(),
	}

	outcome, err := h.router.Route(c.Request.Context(), msg)
	if err != nil {
		h.log.Error().Err(err).Str("recipient_id", recipientID).Msg("message route failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.log.Debug().
		Str("message_id", msg.ID).
		Str("outcome", outcome.String()).
		Msg("message routed")
	c.JSON(http.StatusOK, messageToDTO(msg))
}
