package core

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/dmarkhas/driftchat/internal/store"
)

// DeliveryOutcome reports how far a routed message got.
type DeliveryOutcome int

const (
	// PersistFailed means the storage write failed; the sender sees an error.
	PersistFailed DeliveryOutcome = iota
	// PersistedOnly means the recipient had no live session; they will see
	// the message on their next history fetch.
	PersistedOnly
	// PersistedAndPushed means the message was also pushed to the
	// recipient's live session.
	PersistedAndPushed
)

func (o DeliveryOutcome) String() string {
	switch o {
	case PersistFailed:
		return "persist_failed"
	case PersistedOnly:
		return "persisted_only"
	case PersistedAndPushed:
		return "persisted_and_pushed"
	default:
		return "unknown"
	}
}

// Router persists messages and forwards them to the recipient's live
// session when one exists. Persistence is mandatory; the realtime push is
// best-effort and fire-and-forget.
type Router struct {
	store    store.MessageStore
	registry *Registry
	log      *zerolog.Logger
}

// NewRouter constructs a message router.
func NewRouter(st store.MessageStore, registry *Registry, logger *zerolog.Logger) *Router {
	return &Router{
		store:    st,
		registry: registry,
		log:      logger,
	}
}

// Route persists msg and attempts realtime delivery to msg.RecipientID.
// A push failure downgrades the outcome but is not an error: persistence
// already succeeded, so the recipient recovers the message from history.
func (r *Router) Route(ctx context.Context, msg *store.Message) (DeliveryOutcome, error) {
	if err := r.store.SaveMessage(ctx, msg); err != nil {
		return PersistFailed, fmt.Errorf("persist message: %w", err)
	}

	session, ok := r.registry.Lookup(msg.RecipientID)
	if !ok {
		return PersistedOnly, nil
	}

	if !session.Deliver(NewMessageEvent(msg)) {
		r.log.Warn().
			Str("code", ErrCodeDelivery).
			Str("message_id", msg.ID).
			Str("recipient_id", msg.RecipientID).
			Msg("message push dropped")
		return PersistedOnly, nil
	}

	return PersistedAndPushed, nil
}
