package hub

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/minstant/messenger/internal/domain"
	"github.com/minstant/messenger/internal/store"
)

var (
	// ErrInvalidMessage rejects an empty body or blank room id.
	ErrInvalidMessage = errors.New("invalid message")
	// ErrPersistence wraps a store failure. Nothing is delivered when the
	// append fails.
	ErrPersistence = errors.New("persistence failure")
)

// Broadcaster persists inbound messages and fans them out to the live
// participants of the target room. Persistence happens before any delivery.
type Broadcaster struct {
	store    store.Store
	registry *Registry
}

// NewBroadcaster creates a Broadcaster over the given store and registry.
func NewBroadcaster(s store.Store, reg *Registry) *Broadcaster {
	return &Broadcaster{store: s, registry: reg}
}

// Publish validates, persists, and delivers a message to every live
// connection in the room, including the sender's own connections. Delivery
// is best-effort per connection: a slow or dead peer never blocks the rest.
func (b *Broadcaster) Publish(sender, roomID, body string) error {
	if strings.TrimSpace(body) == "" || strings.TrimSpace(roomID) == "" {
		return ErrInvalidMessage
	}

	// No registry lock is held across the store call.
	evt, err := b.store.AppendMessage(sender, roomID, body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	data, err := domain.Encode(domain.Outbound{Type: domain.MsgChat, MessageEvent: evt})
	if err != nil {
		return err
	}

	members := b.registry.MembersOf(roomID)
	for _, c := range members {
		c.Send(data)
	}
	log.Debug().Str("room", roomID).Str("sender", sender).Int("delivered", len(members)).Msg("message fanned out")
	return nil
}
